package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/squadscore/squadscore/internal/domain/leaderboard"
	"github.com/squadscore/squadscore/internal/domain/match"
	"github.com/squadscore/squadscore/internal/domain/squad"
	"github.com/squadscore/squadscore/internal/domain/standings"
	"github.com/squadscore/squadscore/internal/usecase"
)

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type createSquadRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Visibility  string `json:"visibility" validate:"omitempty,oneof=private public"`
}

type updateSquadRequest struct {
	Description string `json:"description" validate:"omitempty,max=500"`
	Visibility  string `json:"visibility" validate:"omitempty,oneof=private public"`
}

type joinSquadByInviteRequest struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

type createLeaderboardRequest struct {
	Name          string   `json:"name" validate:"required,max=100"`
	GameName      string   `json:"game_name" validate:"required,max=100"`
	SquadID       string   `json:"squad_id" validate:"omitempty"`
	MemberUserIDs []string `json:"member_user_ids" validate:"omitempty,dive,required"`
}

type addLeaderboardMembersRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,dive,required"`
}

type submitMatchResultRequest struct {
	LeaderboardID string                   `json:"leaderboard_id" validate:"required"`
	Lines         []submitResultLineRecord `json:"lines" validate:"required,min=1,dive"`
}

type submitResultLineRecord struct {
	PlayerID string `json:"player_id" validate:"required"`
	Score    *int   `json:"score"`
	Outcome  string `json:"outcome" validate:"omitempty,oneof=win loss draw"`
}

type sendMessageRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

type squadDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Visibility   string `json:"visibility"`
	InviteCode   string `json:"invite_code"`
	CreatedBy    string `json:"created_by"`
	CreatedAtUTC string `json:"created_at_utc"`
	UpdatedAtUTC string `json:"updated_at_utc"`
}

type mySquadDTO struct {
	squadDTO
	Role        string `json:"role"`
	MemberCount int    `json:"member_count"`
}

type squadMemberDTO struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	JoinedAtUTC string `json:"joined_at_utc"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

type leaderboardDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	GameName     string `json:"game_name"`
	SquadID      string `json:"squad_id,omitempty"`
	AdminUserID  string `json:"admin_user_id"`
	Status       string `json:"status"`
	CreatedAtUTC string `json:"created_at_utc"`
}

type leaderboardDetailDTO struct {
	leaderboardDTO
	MemberCount int                   `json:"member_count"`
	Entries     []leaderboardEntryDTO `json:"entries"`
}

type leaderboardEntryDTO struct {
	PlayerID   string `json:"player_id"`
	Username   string `json:"username"`
	Rank       int    `json:"rank"`
	TotalScore int    `json:"total_score"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Draws      int    `json:"draws"`
}

type addLeaderboardMembersDTO struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
}

type matchResultDTO struct {
	ID            string `json:"id"`
	LeaderboardID string `json:"leaderboard_id"`
	Status        string `json:"status"`
	SubmittedBy   string `json:"submitted_by"`
	ReviewedBy    string `json:"reviewed_by,omitempty"`
	CreatedAtUTC  string `json:"created_at_utc"`
	ReviewedAtUTC string `json:"reviewed_at_utc,omitempty"`
}

type resultLineDTO struct {
	ID            string `json:"id"`
	MatchResultID string `json:"match_result_id"`
	PlayerID      string `json:"player_id"`
	Score         *int   `json:"score,omitempty"`
	Outcome       string `json:"outcome,omitempty"`
}

type chatMessageDTO struct {
	ID           string `json:"id"`
	RoomID       string `json:"room_id"`
	SenderID     string `json:"sender_id"`
	SenderName   string `json:"sender_name"`
	Body         string `json:"body"`
	CreatedAtUTC string `json:"created_at_utc"`
}

func squadToDTO(ctx context.Context, v squad.Squad) squadDTO {
	ctx, span := startSpan(ctx, "httpapi.squadToDTO")
	defer span.End()

	return squadDTO{
		ID:           v.ID,
		Name:         v.Name,
		Description:  v.Description,
		Visibility:   string(v.Visibility),
		InviteCode:   v.InviteCode,
		CreatedBy:    v.CreatedBy,
		CreatedAtUTC: v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC: v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mySquadToDTO(ctx context.Context, v usecase.SquadWithRole) mySquadDTO {
	return mySquadDTO{
		squadDTO:    squadToDTO(ctx, v.Squad),
		Role:        string(v.Role),
		MemberCount: v.MemberCount,
	}
}

func squadMemberToDTO(v usecase.SquadMemberDetail) squadMemberDTO {
	return squadMemberDTO{
		UserID:      v.UserID,
		Role:        string(v.Role),
		JoinedAtUTC: v.JoinedAt.UTC().Format(time.RFC3339),
		Username:    v.Username,
		DisplayName: v.DisplayName,
		Email:       v.Email,
	}
}

func leaderboardToDTO(ctx context.Context, v leaderboard.Leaderboard) leaderboardDTO {
	ctx, span := startSpan(ctx, "httpapi.leaderboardToDTO")
	defer span.End()

	squadID := ""
	if v.SquadID != nil {
		squadID = *v.SquadID
	}

	return leaderboardDTO{
		ID:           v.ID,
		Name:         v.Name,
		GameName:     v.GameName,
		SquadID:      squadID,
		AdminUserID:  v.AdminUserID,
		Status:       string(v.Status),
		CreatedAtUTC: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func leaderboardDetailToDTO(ctx context.Context, v usecase.LeaderboardWithEntries) leaderboardDetailDTO {
	entries := make([]leaderboardEntryDTO, 0, len(v.Entries))
	for _, entry := range v.Entries {
		entries = append(entries, leaderboardEntryDTO{
			PlayerID:   entry.PlayerID,
			Username:   entry.Username,
			Rank:       entry.Rank,
			TotalScore: entry.TotalScore,
			Wins:       entry.Wins,
			Losses:     entry.Losses,
			Draws:      entry.Draws,
		})
	}

	return leaderboardDetailDTO{
		leaderboardDTO: leaderboardToDTO(ctx, v.Leaderboard),
		MemberCount:    v.MemberCount,
		Entries:        entries,
	}
}

func matchResultToDTO(ctx context.Context, v match.Result) matchResultDTO {
	ctx, span := startSpan(ctx, "httpapi.matchResultToDTO")
	defer span.End()

	dto := matchResultDTO{
		ID:            v.ID,
		LeaderboardID: v.LeaderboardID,
		Status:        string(v.Status),
		SubmittedBy:   v.SubmittedBy,
		CreatedAtUTC:  v.CreatedAt.UTC().Format(time.RFC3339),
	}
	if v.ReviewedBy != nil {
		dto.ReviewedBy = *v.ReviewedBy
	}
	if v.ReviewedAt != nil {
		dto.ReviewedAtUTC = v.ReviewedAt.UTC().Format(time.RFC3339)
	}

	return dto
}

func resultLineToDTO(v match.ResultLine) resultLineDTO {
	dto := resultLineDTO{
		ID:            v.ID,
		MatchResultID: v.MatchResultID,
		PlayerID:      v.PlayerID,
		Score:         v.Score,
	}
	if v.Outcome != nil {
		dto.Outcome = string(*v.Outcome)
	}

	return dto
}

func chatMessageToDTO(v usecase.ChatMessageDetail) chatMessageDTO {
	return chatMessageDTO{
		ID:           v.ID,
		RoomID:       v.RoomID,
		SenderID:     v.SenderID,
		SenderName:   v.SenderName,
		Body:         v.Body,
		CreatedAtUTC: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toSubmitLineInputs(records []submitResultLineRecord) []usecase.SubmitResultLineInput {
	lines := make([]usecase.SubmitResultLineInput, 0, len(records))
	for _, record := range records {
		line := usecase.SubmitResultLineInput{
			PlayerID: record.PlayerID,
			Score:    record.Score,
		}
		if record.Outcome != "" {
			outcome := standings.Outcome(record.Outcome)
			line.Outcome = &outcome
		}
		lines = append(lines, line)
	}

	return lines
}
