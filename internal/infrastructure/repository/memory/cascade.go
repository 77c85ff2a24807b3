package memory

// Cascade links the repositories so deletes remove dependent rows the
// way the postgres schema's ON DELETE CASCADE foreign keys do: a squad
// delete drops its leaderboards and chat room, and a leaderboard
// delete drops its match results and lines. Unlinked repositories only
// delete their own rows.
func Cascade(squads *SquadRepository, boards *LeaderboardRepository, matches *MatchRepository, chats *ChatRepository) {
	squads.boards = boards
	squads.chats = chats
	boards.matches = matches
}
