package realtime

// Topic names shared by publishers and the websocket bridge.

func ChatTopic(squadID string) string {
	return "chat:" + squadID
}

func LeaderboardTopic(leaderboardID string) string {
	return "leaderboard:" + leaderboardID
}
