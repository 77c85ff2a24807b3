package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/squadscore/squadscore/internal/usecase"
)

func (h *Handler) SendSquadMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SendSquadMessage")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	squadID := strings.TrimSpace(r.PathValue("squadID"))

	var req sendMessageRequest
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

	message, err := h.chatService.SendMessage(ctx, squadID, principal.UserID, req.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "send squad message failed", "user_id", principal.UserID, "squad_id", squadID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, chatMessageToDTO(message))
}

func (h *Handler) ListSquadMessages(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSquadMessages")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	squadID := strings.TrimSpace(r.PathValue("squadID"))

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	messages, err := h.chatService.ListMessages(ctx, squadID, principal.UserID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list squad messages failed", "user_id", principal.UserID, "squad_id", squadID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]chatMessageDTO, 0, len(messages))
	for _, message := range messages {
		items = append(items, chatMessageToDTO(message))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
