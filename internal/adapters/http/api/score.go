package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	service "github.com/okian/coinrush/internal/app"
	"github.com/okian/coinrush/internal/domain/model"
	"github.com/okian/coinrush/pkg/logger"
)

const maxBodyBytes = 1 << 16

// Error bodies returned by /score.
const (
	msgRequired    = "Player and score required"
	msgInvalidBody = "invalid request body"
	msgPersist     = "failed to persist score"
	msgUnavailable = "service unavailable"
)

// scoreRequest mirrors the POST /score body. Pointers tell an absent
// field apart from a zero value.
type scoreRequest struct {
	ID     string  `json:"id"     validate:"max=128"`
	Player *string `json:"player" validate:"required"`
	Score  *int    `json:"score"  validate:"required"`
}

// ScoreHandler serves the leaderboard resource.
type ScoreHandler struct {
	deps     Dependencies
	validate *validator.Validate
	logger   logger.Logger
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies, lg logger.Logger) *ScoreHandler {
	if lg == nil {
		lg = logger.Nop()
	}
	return &ScoreHandler{deps: deps, validate: validator.New(), logger: lg}
}

// HandleScore dispatches /score by method.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet:
		h.handleGet(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ScoreHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_score"
	board, err := h.deps.Board(r.Context())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *ScoreHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"

	var req scoreRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.logger.Debug(r.Context(), "rejecting score body", logger.Error(WrapKind(op, ErrBadRequest, err)))
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && onlyRequired(verrs) {
			writeError(w, http.StatusBadRequest, msgRequired)
			return
		}
		h.logger.Debug(r.Context(), "rejecting score body", logger.Error(WrapKind(op, ErrBadRequest, err)))
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	board, err := h.deps.Submit(r.Context(), model.Submission{
		ID:     req.ID,
		Player: *req.Player,
		Score:  *req.Score,
	})
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *ScoreHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSubmission):
		writeError(w, http.StatusBadRequest, msgRequired)
	case errors.Is(err, service.ErrNotStarted):
		h.logger.Warn(r.Context(), "score request before start", logger.Error(WrapKind(op, ErrUnavailable, err)))
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
	default:
		h.logger.Error(r.Context(), "score request failed", logger.Error(WrapKind(op, ErrInternal, err)))
		writeError(w, http.StatusInternalServerError, msgPersist)
	}
}

func onlyRequired(errs validator.ValidationErrors) bool {
	for _, fe := range errs {
		if fe.Tag() != "required" {
			return false
		}
	}
	return true
}
