package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/squadscore/squadscore/internal/platform/realtime"
	"github.com/squadscore/squadscore/internal/usecase"
)

type Handler struct {
	squadService       *usecase.SquadService
	leaderboardService *usecase.LeaderboardService
	matchService       *usecase.MatchService
	chatService        *usecase.ChatService
	broker             *realtime.Broker
	logger             *slog.Logger
	validator          *validator.Validate
}

func NewHandler(
	squadService *usecase.SquadService,
	leaderboardService *usecase.LeaderboardService,
	matchService *usecase.MatchService,
	chatService *usecase.ChatService,
	broker *realtime.Broker,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		squadService:       squadService,
		leaderboardService: leaderboardService,
		matchService:       matchService,
		chatService:        chatService,
		broker:             broker,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
