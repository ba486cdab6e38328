package game

import (
	"sort"

	"live-quiz-service/internal/domain"
)

// Leaderboard ranks players by score, then streak, then join order. It never mutates players.
func Leaderboard(players []domain.Player) []domain.LeaderboardEntry {
	order := make([]int, len(players))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := players[order[a]], players[order[b]]
		if pa.Score != pb.Score {
			return pa.Score > pb.Score
		}
		return pa.Streak > pb.Streak
	})

	entries := make([]domain.LeaderboardEntry, len(order))
	for rank, idx := range order {
		p := players[idx]
		entries[rank] = domain.LeaderboardEntry{
			Rank:     rank + 1,
			PlayerID: p.ID,
			Nickname: p.Nickname,
			Avatar:   p.Avatar,
			Score:    p.Score,
			Streak:   p.Streak,
			TeamID:   p.TeamID,
		}
	}
	return entries
}

type badgeRule struct {
	name        string
	icon        string
	description string
	// value returns the player's metric and whether they qualify.
	value func(p domain.Player) (float64, bool)
	// better reports whether a beats b; ties never beat, so the earlier player keeps the badge.
	better func(a, b float64) bool
}

func lower(a, b float64) bool  { return a < b }
func higher(a, b float64) bool { return a > b }

var badgeRules = []badgeRule{
	{
		name:        "Speed Demon",
		icon:        "⚡",
		description: "Fastest average response time",
		value:       func(p domain.Player) (float64, bool) { return p.AverageResponseMs() },
		better:      lower,
	},
	{
		name:        "Sharpshooter",
		icon:        "🎯",
		description: "Highest answer accuracy",
		value: func(p domain.Player) (float64, bool) {
			acc, ok := p.Accuracy()
			return acc, ok && p.CorrectCount > 0
		},
		better: higher,
	},
	{
		name:        "On Fire",
		icon:        "🔥",
		description: "Longest streak of correct answers",
		value: func(p domain.Player) (float64, bool) {
			return float64(p.LongestStreak), p.LongestStreak > 0
		},
		better: higher,
	},
	{
		name:        "Quick Draw",
		icon:        "⏱️",
		description: "Fastest single answer",
		value: func(p domain.Player) (float64, bool) {
			return float64(p.FastestAnswerMs), p.FastestAnswerMs != domain.NoAnswerMs
		},
		better: lower,
	},
}

// ComputeBadges awards one winner per category from final player stats. It is deterministic:
// players are scanned in join order and ties go to the first registered player.
func ComputeBadges(players []domain.Player) []domain.Badge {
	badges := make([]domain.Badge, 0, len(badgeRules))
	for _, rule := range badgeRules {
		winner := -1
		var best float64
		for i, p := range players {
			v, ok := rule.value(p)
			if !ok {
				continue
			}
			if winner < 0 || rule.better(v, best) {
				winner, best = i, v
			}
		}
		if winner < 0 {
			continue
		}
		p := players[winner]
		badges = append(badges, domain.Badge{
			PlayerID:    p.ID,
			Nickname:    p.Nickname,
			Avatar:      p.Avatar,
			BadgeName:   rule.name,
			Icon:        rule.icon,
			Description: rule.description,
		})
	}
	return badges
}
