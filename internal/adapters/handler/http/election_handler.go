package http

import (
	"net/http"
	"strconv"

	"github.com/vncsmyrnk/elections/internal/core/ports"
)

type ElectionHandler struct {
	service ports.ElectionService
	results ports.ResultService
	resp    *Responder
}

func NewElectionHandler(service ports.ElectionService, results ports.ResultService, resp *Responder) *ElectionHandler {
	return &ElectionHandler{
		service: service,
		results: results,
		resp:    resp,
	}
}

// ListElections godoc
// @Summary      Lists elections visible to the caller
// @Tags         elections
// @Produce      json
// @Param        include_archived  query  bool  false  "include archived elections"
// @Success      200
// @Failure      401
// @Router       /api/elections [get]
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("include_archived"))

	elections, err := h.service.List(r.Context(), caller.Roles, includeArchived)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, elections)
}

// GetElection godoc
// @Summary      Gets one election
// @Tags         elections
// @Produce      json
// @Param        id  path  string  true  "election id"
// @Success      200
// @Failure      404
// @Router       /api/elections/{id} [get]
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	caller, _ := CallerFrom(r.Context())

	election, err := h.service.Get(r.Context(), id, caller.Roles)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, election)
}

// GetResults godoc
// @Summary      Aggregated results of an election
// @Description  Admins may read results at any time, everyone else once the election is closed.
// @Tags         elections
// @Produce      json
// @Param        id  path  string  true  "election id"
// @Success      200
// @Failure      403
// @Failure      404
// @Router       /api/elections/{id}/results [get]
func (h *ElectionHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	caller, _ := CallerFrom(r.Context())

	results, err := h.results.GetResults(r.Context(), id, caller.Roles)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, results)
}
