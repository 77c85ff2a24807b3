package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/squadscore/squadscore/internal/usecase"
)

func (h *Handler) SubmitMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitMatchResult")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req submitMatchResultRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.matchService.Submit(ctx, usecase.SubmitMatchResultInput{
		UserID:        principal.UserID,
		LeaderboardID: req.LeaderboardID,
		Lines:         toSubmitLineInputs(req.Lines),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit match result failed", "user_id", principal.UserID, "leaderboard_id", req.LeaderboardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchResultToDTO(ctx, result))
}

func (h *Handler) ListPendingMatchResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPendingMatchResults")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	results, err := h.matchService.ListPending(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list pending match results failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchResultDTO, 0, len(results))
	for _, result := range results {
		items = append(items, matchResultToDTO(ctx, result))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMatchResultLines(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchResultLines")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	matchResultID := strings.TrimSpace(r.PathValue("matchResultID"))

	lines, err := h.matchService.Lines(ctx, matchResultID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list match result lines failed", "user_id", principal.UserID, "match_result_id", matchResultID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]resultLineDTO, 0, len(lines))
	for _, line := range lines {
		items = append(items, resultLineToDTO(line))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ApproveMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveMatchResult")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	matchResultID := strings.TrimSpace(r.PathValue("matchResultID"))

	result, err := h.matchService.Approve(ctx, matchResultID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "approve match result failed", "user_id", principal.UserID, "match_result_id", matchResultID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchResultToDTO(ctx, result))
}

func (h *Handler) RejectMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RejectMatchResult")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	matchResultID := strings.TrimSpace(r.PathValue("matchResultID"))

	result, err := h.matchService.Reject(ctx, matchResultID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "reject match result failed", "user_id", principal.UserID, "match_result_id", matchResultID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchResultToDTO(ctx, result))
}
