package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/elections/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
	resp    *Responder
}

func NewVoteHandler(service ports.VoteService, resp *Responder) *VoteHandler {
	return &VoteHandler{
		service: service,
		resp:    resp,
	}
}

type voteRequest struct {
	AnswerIDs []string `json:"answer_ids"`
}

type voteResponse struct {
	BallotIDs []uuid.UUID `json:"ballot_ids"`
}

type voteStatusResponse struct {
	HasVoted bool `json:"has_voted"`
}

// SubmitVote godoc
// @Summary      Casts the caller's vote
// @Description  Records one ballot per selected answer. A caller can vote once per election.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "election id"
// @Success      201
// @Failure      400
// @Failure      403
// @Failure      404
// @Failure      409
// @Failure      503
// @Router       /api/elections/{id}/votes [post]
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	electionID, err := electionIDParam(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var req voteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	caller, ok := CallerFrom(r.Context())
	if !ok {
		h.resp.Unauthorized(w)
		return
	}

	ids, err := h.service.SubmitVote(r.Context(), ports.SubmitVoteInput{
		ElectionID: electionID,
		Identity:   caller.Identity,
		Roles:      caller.Roles,
		AnswerIDs:  req.AnswerIDs,
	})
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, voteResponse{BallotIDs: ids})
}

// GetVoteStatus godoc
// @Summary      Tells whether the caller already voted
// @Tags         votes
// @Produce      json
// @Param        id  path  string  true  "election id"
// @Success      200
// @Failure      400
// @Failure      404
// @Router       /api/elections/{id}/vote-status [get]
func (h *VoteHandler) GetVoteStatus(w http.ResponseWriter, r *http.Request) {
	electionID, err := electionIDParam(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	caller, ok := CallerFrom(r.Context())
	if !ok {
		h.resp.Unauthorized(w)
		return
	}

	voted, err := h.service.GetVoteStatus(r.Context(), electionID, caller.Identity, caller.Roles)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, voteStatusResponse{HasVoted: voted})
}
