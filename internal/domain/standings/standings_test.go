package standings

import (
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func outcomePtr(o Outcome) *Outcome { return &o }

func TestAggregate_SinglePass(t *testing.T) {
	t.Parallel()

	lines := []Line{
		{PlayerID: "p1", Score: intPtr(10), Outcome: outcomePtr(OutcomeWin)},
		{PlayerID: "p1", Score: intPtr(5), Outcome: outcomePtr(OutcomeLoss)},
		{PlayerID: "p2", Score: intPtr(15), Outcome: outcomePtr(OutcomeWin)},
	}

	got := Aggregate(lines)
	want := []PlayerTotals{
		{PlayerID: "p1", TotalScore: 15, Wins: 1, Losses: 1},
		{PlayerID: "p2", TotalScore: 15, Wins: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("aggregate = %+v, want %+v", got, want)
	}
}

func TestAggregate_NilScoreAndOutcome(t *testing.T) {
	t.Parallel()

	unknown := Outcome("forfeit")
	lines := []Line{
		{PlayerID: "p1", Score: nil, Outcome: outcomePtr(OutcomeDraw)},
		{PlayerID: "p1", Score: intPtr(3), Outcome: nil},
		{PlayerID: "p1", Score: intPtr(2), Outcome: &unknown},
	}

	got := Aggregate(lines)
	want := []PlayerTotals{{PlayerID: "p1", TotalScore: 5, Draws: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("aggregate = %+v, want %+v", got, want)
	}
}

func TestAggregate_ConservesScoreSum(t *testing.T) {
	t.Parallel()

	lines := []Line{
		{PlayerID: "a", Score: intPtr(7)},
		{PlayerID: "b", Score: nil},
		{PlayerID: "a", Score: intPtr(-2)},
		{PlayerID: "c", Score: intPtr(11)},
		{PlayerID: "b", Score: intPtr(0)},
	}

	lineSum := 0
	for _, l := range lines {
		if l.Score != nil {
			lineSum += *l.Score
		}
	}

	totalSum := 0
	for _, t := range Aggregate(lines) {
		totalSum += t.TotalScore
	}

	if totalSum != lineSum {
		t.Fatalf("aggregate sum = %d, line sum = %d", totalSum, lineSum)
	}
}

func TestRank_CompetitionRanking(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scores []int
		ranks  []int
	}{
		{name: "tie in the middle", scores: []int{10, 9, 7, 7, 3}, ranks: []int{1, 2, 3, 3, 5}},
		{name: "gap after tie", scores: []int{10, 7, 7, 3}, ranks: []int{1, 2, 2, 4}},
		{name: "all tied", scores: []int{5, 5, 5}, ranks: []int{1, 1, 1}},
		{name: "single entry", scores: []int{0}, ranks: []int{1}},
		{name: "empty", scores: nil, ranks: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			totals := make([]PlayerTotals, len(tc.scores))
			for i, s := range tc.scores {
				totals[i] = PlayerTotals{PlayerID: string(rune('a' + i)), TotalScore: s}
			}

			entries := Rank(totals)
			if len(entries) != len(tc.ranks) {
				t.Fatalf("got %d entries, want %d", len(entries), len(tc.ranks))
			}
			for i, e := range entries {
				if e.Rank != tc.ranks[i] {
					t.Fatalf("entry %d rank = %d, want %d", i, e.Rank, tc.ranks[i])
				}
			}
		})
	}
}

func TestRank_StableForEqualScores(t *testing.T) {
	t.Parallel()

	totals := []PlayerTotals{
		{PlayerID: "p1", TotalScore: 15, Wins: 1, Losses: 1},
		{PlayerID: "p2", TotalScore: 15, Wins: 1},
	}

	entries := Rank(totals)
	if entries[0].PlayerID != "p1" || entries[1].PlayerID != "p2" {
		t.Fatalf("equal scores reordered: %+v", entries)
	}
	if entries[0].Rank != 1 || entries[1].Rank != 1 {
		t.Fatalf("tied entries ranks = %d, %d, want 1, 1", entries[0].Rank, entries[1].Rank)
	}
}

func TestRank_Idempotent(t *testing.T) {
	t.Parallel()

	totals := []PlayerTotals{
		{PlayerID: "a", TotalScore: 4},
		{PlayerID: "b", TotalScore: 9},
		{PlayerID: "c", TotalScore: 9},
	}

	first := Rank(totals)
	second := Rank(totals)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("rank not idempotent: %+v vs %+v", first, second)
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	totals := []PlayerTotals{
		{PlayerID: "low", TotalScore: 1},
		{PlayerID: "high", TotalScore: 9},
	}

	Rank(totals)
	if totals[0].PlayerID != "low" {
		t.Fatalf("input slice reordered: %+v", totals)
	}
}
