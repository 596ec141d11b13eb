package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vncsmyrnk/elections/internal/core/domain"
	"github.com/vncsmyrnk/elections/internal/core/ports"
)

type AdminHandler struct {
	elections  ports.ElectionService
	anonymizer ports.AnonymizationService
	salt       []byte
	validate   *validator.Validate
	resp       *Responder
}

func NewAdminHandler(elections ports.ElectionService, anonymizer ports.AnonymizationService, salt []byte, resp *Responder) *AdminHandler {
	return &AdminHandler{
		elections:  elections,
		anonymizer: anonymizer,
		salt:       salt,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		resp:       resp,
	}
}

type answerRequest struct {
	ID   string `json:"id"   validate:"required,max=64"`
	Text string `json:"text" validate:"required,max=500"`
}

type createElectionRequest struct {
	Title          string          `json:"title"           validate:"required,max=200"`
	Question       string          `json:"question"        validate:"required,max=2000"`
	VotingType     string          `json:"voting_type"     validate:"required,oneof=single-choice multi-choice"`
	MaxSelections  int             `json:"max_selections"  validate:"gte=0"`
	Answers        []answerRequest `json:"answers"         validate:"required,min=2,dive"`
	Eligibility    string          `json:"eligibility"     validate:"required,oneof=all members admins"`
	ScheduledStart *time.Time      `json:"scheduled_start"`
	ScheduledEnd   *time.Time      `json:"scheduled_end"`
	Hidden         bool            `json:"hidden"`
}

type hiddenRequest struct {
	Hidden *bool `json:"hidden" validate:"required"`
}

type anonymizeResponse struct {
	Anonymized int64 `json:"anonymized"`
}

// CreateElection godoc
// @Summary      Creates a draft election
// @Tags         admin
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      400
// @Failure      403
// @Router       /api/admin/elections [post]
func (h *AdminHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req createElectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.resp.Error(w, r, validationError(err))
		return
	}

	caller, _ := CallerFrom(r.Context())
	answers := make([]domain.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, domain.Answer{ID: a.ID, Text: a.Text})
	}

	election, err := h.elections.Create(r.Context(), ports.CreateElectionInput{
		Title:          req.Title,
		Question:       req.Question,
		VotingType:     domain.VotingType(req.VotingType),
		MaxSelections:  req.MaxSelections,
		Answers:        answers,
		Eligibility:    domain.Eligibility(req.Eligibility),
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		Hidden:         req.Hidden,
		Actor:          caller.Identity,
	})
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, election)
}

// TransitionElection godoc
// @Summary      Moves an election through its lifecycle
// @Tags         admin
// @Produce      json
// @Param        id      path  string  true  "election id"
// @Param        action  path  string  true  "publish, pause, resume, close or archive"
// @Success      200
// @Failure      400
// @Failure      404
// @Failure      409
// @Router       /api/admin/elections/{id}/{action} [post]
func (h *AdminHandler) TransitionElection(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	action := domain.Action(chi.URLParam(r, "action"))

	election, err := h.elections.Transition(r.Context(), id, action, caller.Identity)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, election)
}

func (h *AdminHandler) SetHidden(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var req hiddenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.resp.Error(w, r, validationError(err))
		return
	}
	caller, _ := CallerFrom(r.Context())

	election, err := h.elections.SetHidden(r.Context(), id, *req.Hidden, caller.Identity)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, election)
}

// AnonymizeElection godoc
// @Summary      Replaces voter identities of a closed election with keyed hashes
// @Description  Irreversible. Superuser only.
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "election id"
// @Success      200
// @Failure      403
// @Failure      404
// @Failure      409
// @Failure      429
// @Router       /api/admin/elections/{id}/anonymize [post]
func (h *AdminHandler) AnonymizeElection(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	caller, _ := CallerFrom(r.Context())

	n, err := h.anonymizer.AnonymizeClosedElection(r.Context(), id, h.salt, caller.Identity)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, anonymizeResponse{Anonymized: n})
}
