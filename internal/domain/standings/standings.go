// Package standings holds the pure scoring core: aggregation of raw
// result lines into per-player totals, and tie-aware competition
// ranking of those totals.
package standings

import "sort"

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// Line is one player's contribution within an approved match result.
// A nil score counts as zero; a nil outcome bumps no counter.
type Line struct {
	PlayerID string
	Score    *int
	Outcome  *Outcome
}

// PlayerTotals is the accumulated standing of one player.
type PlayerTotals struct {
	PlayerID   string
	TotalScore int
	Wins       int
	Losses     int
	Draws      int
}

// RankedEntry is a player's final leaderboard position.
type RankedEntry struct {
	PlayerID   string
	Rank       int
	TotalScore int
	Wins       int
	Losses     int
	Draws      int
}

// Aggregate reduces result lines into per-player totals in one pass.
// Players appear in first-seen order, which downstream ranking keeps
// for equal scores. Unknown outcome values are ignored.
func Aggregate(lines []Line) []PlayerTotals {
	index := make(map[string]int, len(lines))
	totals := make([]PlayerTotals, 0, len(lines))

	for _, line := range lines {
		i, ok := index[line.PlayerID]
		if !ok {
			i = len(totals)
			index[line.PlayerID] = i
			totals = append(totals, PlayerTotals{PlayerID: line.PlayerID})
		}

		if line.Score != nil {
			totals[i].TotalScore += *line.Score
		}
		if line.Outcome == nil {
			continue
		}
		switch *line.Outcome {
		case OutcomeWin:
			totals[i].Wins++
		case OutcomeLoss:
			totals[i].Losses++
		case OutcomeDraw:
			totals[i].Draws++
		}
	}

	return totals
}

// Rank sorts totals by score descending and assigns standard
// competition ranks: equal scores share a rank, and the next distinct
// score resumes at its 1-based position. The sort is stable, so equal
// scores keep their input order.
func Rank(totals []PlayerTotals) []RankedEntry {
	ordered := append([]PlayerTotals(nil), totals...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TotalScore > ordered[j].TotalScore
	})

	entries := make([]RankedEntry, 0, len(ordered))
	currentRank := 0
	var lastScore int
	for i, t := range ordered {
		if i == 0 || t.TotalScore != lastScore {
			currentRank = i + 1
			lastScore = t.TotalScore
		}
		entries = append(entries, RankedEntry{
			PlayerID:   t.PlayerID,
			Rank:       currentRank,
			TotalScore: t.TotalScore,
			Wins:       t.Wins,
			Losses:     t.Losses,
			Draws:      t.Draws,
		})
	}

	return entries
}
