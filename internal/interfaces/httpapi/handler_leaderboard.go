package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/squadscore/squadscore/internal/usecase"
)

func (h *Handler) CreateLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeaderboard")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createLeaderboardRequest
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

	created, err := h.leaderboardService.Create(ctx, usecase.CreateLeaderboardInput{
		UserID:        principal.UserID,
		Name:          req.Name,
		GameName:      req.GameName,
		SquadID:       req.SquadID,
		MemberUserIDs: req.MemberUserIDs,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create leaderboard failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, leaderboardToDTO(ctx, created))
}

func (h *Handler) ListMyLeaderboards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyLeaderboards")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	boards, err := h.leaderboardService.ListMine(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my leaderboards failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardDTO, 0, len(boards))
	for _, board := range boards {
		items = append(items, leaderboardToDTO(ctx, board))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	leaderboardID := strings.TrimSpace(r.PathValue("leaderboardID"))

	detail, err := h.leaderboardService.GetWithEntries(ctx, leaderboardID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "user_id", principal.UserID, "leaderboard_id", leaderboardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardDetailToDTO(ctx, detail))
}

func (h *Handler) DeleteLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteLeaderboard")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	leaderboardID := strings.TrimSpace(r.PathValue("leaderboardID"))

	if err := h.leaderboardService.Delete(ctx, leaderboardID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "delete leaderboard failed", "user_id", principal.UserID, "leaderboard_id", leaderboardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) AddLeaderboardMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddLeaderboardMembers")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	leaderboardID := strings.TrimSpace(r.PathValue("leaderboardID"))

	var req addLeaderboardMembersRequest
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

	result, err := h.leaderboardService.AddMembers(ctx, leaderboardID, principal.UserID, req.UserIDs)
	if err != nil {
		h.logger.WarnContext(ctx, "add leaderboard members failed", "user_id", principal.UserID, "leaderboard_id", leaderboardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, addLeaderboardMembersDTO{
		Added:   result.Added,
		Skipped: result.Skipped,
	})
}

func (h *Handler) RemoveLeaderboardMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveLeaderboardMember")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	leaderboardID := strings.TrimSpace(r.PathValue("leaderboardID"))
	targetUserID := strings.TrimSpace(r.PathValue("userID"))

	if err := h.leaderboardService.RemoveUser(ctx, leaderboardID, principal.UserID, targetUserID); err != nil {
		h.logger.WarnContext(ctx, "remove leaderboard member failed", "user_id", principal.UserID, "leaderboard_id", leaderboardID, "target_user_id", targetUserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"removed": true})
}
