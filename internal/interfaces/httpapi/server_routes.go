package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, devHeaderAllowed bool) {
	authed := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, devHeaderAllowed, h)
	}

	mux.Handle("POST /v1/squads", authed(handler.CreateSquad))
	mux.Handle("GET /v1/squads/my-squads", authed(handler.ListMySquads))
	mux.Handle("POST /v1/squads/join", authed(handler.JoinSquadByInvite))
	mux.Handle("GET /v1/squads/{squadID}", authed(handler.GetSquad))
	mux.Handle("PUT /v1/squads/{squadID}", authed(handler.UpdateSquad))
	mux.Handle("DELETE /v1/squads/{squadID}", authed(handler.DeleteSquad))
	mux.Handle("GET /v1/squads/{squadID}/members", authed(handler.ListSquadMembers))
	mux.Handle("POST /v1/squads/{squadID}/members/{userID}/promote", authed(handler.PromoteSquadMember))
	mux.Handle("POST /v1/squads/{squadID}/members/{userID}/demote", authed(handler.DemoteSquadMember))
	mux.Handle("DELETE /v1/squads/{squadID}/members/{userID}", authed(handler.RemoveSquadMember))
	mux.Handle("GET /v1/squads/{squadID}/leaderboards", authed(handler.ListSquadLeaderboards))
	mux.Handle("GET /v1/squads/{squadID}/messages", authed(handler.ListSquadMessages))
	mux.Handle("POST /v1/squads/{squadID}/messages", authed(handler.SendSquadMessage))

	mux.Handle("GET /v1/ws", authed(handler.Subscribe))

	mux.Handle("POST /v1/leaderboards", authed(handler.CreateLeaderboard))
	mux.Handle("GET /v1/leaderboards/my", authed(handler.ListMyLeaderboards))
	mux.Handle("GET /v1/leaderboards/{leaderboardID}", authed(handler.GetLeaderboard))
	mux.Handle("DELETE /v1/leaderboards/{leaderboardID}", authed(handler.DeleteLeaderboard))
	mux.Handle("POST /v1/leaderboards/{leaderboardID}/members", authed(handler.AddLeaderboardMembers))
	mux.Handle("DELETE /v1/leaderboards/{leaderboardID}/members/{userID}", authed(handler.RemoveLeaderboardMember))

	mux.Handle("POST /v1/match-results", authed(handler.SubmitMatchResult))
	mux.Handle("GET /v1/match-results/pending", authed(handler.ListPendingMatchResults))
	mux.Handle("GET /v1/match-results/{matchResultID}/lines", authed(handler.ListMatchResultLines))
	mux.Handle("PATCH /v1/match-results/{matchResultID}/approve", authed(handler.ApproveMatchResult))
	mux.Handle("PATCH /v1/match-results/{matchResultID}/reject", authed(handler.RejectMatchResult))
}
