package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/squadscore/squadscore/internal/domain/squad"
	"github.com/squadscore/squadscore/internal/usecase"
)

func (h *Handler) CreateSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSquad")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createSquadRequest
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

	created, err := h.squadService.Create(ctx, usecase.CreateSquadInput{
		UserID:      principal.UserID,
		Name:        req.Name,
		Description: req.Description,
		Visibility:  squad.Visibility(req.Visibility),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create squad failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, squadToDTO(ctx, created))
}

func (h *Handler) ListMySquads(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMySquads")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	squads, err := h.squadService.ListMine(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my squads failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]mySquadDTO, 0, len(squads))
	for _, item := range squads {
		items = append(items, mySquadToDTO(ctx, item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) JoinSquadByInvite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinSquadByInvite")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req joinSquadByInviteRequest
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

	joined, err := h.squadService.JoinByInviteCode(ctx, principal.UserID, req.InviteCode)
	if err != nil {
		h.logger.WarnContext(ctx, "join squad by invite failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadToDTO(ctx, joined))
}

func (h *Handler) GetSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSquad")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	squadID := strings.TrimSpace(r.PathValue("squadID"))

	item, err := h.squadService.Get(ctx, squadID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get squad failed", "user_id", principal.UserID, "squad_id", squadID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadToDTO(ctx, item))
}

func (h *Handler) UpdateSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateSquad")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	squadID := strings.TrimSpace(r.PathValue("squadID"))

	var req updateSquadRequest
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

	updated, err := h.squadService.Update(ctx, usecase.UpdateSquadInput{
		SquadID:     squadID,
		UserID:      principal.UserID,
		Description: req.Description,
		Visibility:  squad.Visibility(req.Visibility),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update squad failed", "user_id", principal.UserID, "squad_id", squadID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadToDTO(ctx, updated))
}

func (h *Handler) DeleteSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteSquad")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	squadID := strings.TrimSpace(r.PathValue("squadID"))

	if err := h.squadService.Delete(ctx, squadID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "delete squad failed", "user_id", principal.UserID, "squad_id", squadID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) ListSquadMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSquadMembers")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	squadID := strings.TrimSpace(r.PathValue("squadID"))

	members, err := h.squadService.ListMembers(ctx, squadID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list squad members failed", "user_id", principal.UserID, "squad_id", squadID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]squadMemberDTO, 0, len(members))
	for _, member := range members {
		items = append(items, squadMemberToDTO(member))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) PromoteSquadMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PromoteSquadMember")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	squadID := strings.TrimSpace(r.PathValue("squadID"))
	targetUserID := strings.TrimSpace(r.PathValue("userID"))

	if err := h.squadService.Promote(ctx, squadID, principal.UserID, targetUserID); err != nil {
		h.logger.WarnContext(ctx, "promote squad member failed", "user_id", principal.UserID, "squad_id", squadID, "target_user_id", targetUserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"promoted": true})
}

func (h *Handler) DemoteSquadMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DemoteSquadMember")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	squadID := strings.TrimSpace(r.PathValue("squadID"))
	targetUserID := strings.TrimSpace(r.PathValue("userID"))

	if err := h.squadService.Demote(ctx, squadID, principal.UserID, targetUserID); err != nil {
		h.logger.WarnContext(ctx, "demote squad member failed", "user_id", principal.UserID, "squad_id", squadID, "target_user_id", targetUserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"demoted": true})
}

func (h *Handler) RemoveSquadMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveSquadMember")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	squadID := strings.TrimSpace(r.PathValue("squadID"))
	targetUserID := strings.TrimSpace(r.PathValue("userID"))

	if err := h.squadService.Remove(ctx, squadID, principal.UserID, targetUserID); err != nil {
		h.logger.WarnContext(ctx, "remove squad member failed", "user_id", principal.UserID, "squad_id", squadID, "target_user_id", targetUserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"removed": true})
}

func (h *Handler) ListSquadLeaderboards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSquadLeaderboards")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	squadID := strings.TrimSpace(r.PathValue("squadID"))

	boards, err := h.leaderboardService.ListBySquad(ctx, squadID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list squad leaderboards failed", "user_id", principal.UserID, "squad_id", squadID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardDTO, 0, len(boards))
	for _, board := range boards {
		items = append(items, leaderboardToDTO(ctx, board))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
