// Package scoring computes points for every question type. Everything here is pure.
package scoring

import "math"

const (
	MaxPoints             = 1000
	MinPointsFraction     = 0.5
	StreakBonusThreshold  = 3
	StreakBonusMultiplier = 1.2

	OrderMaxPoints    = 1000
	OrderTimeBonusMax = 200

	MatchPairPoints      = 100
	MatchCleanSweepBonus = 500
	MatchMinTimeFraction = 0.15

	BlitzBasePoints = 100
	BlitzGrowth     = 1.5
	// BlitzMaxExponent keeps very long runs inside int range.
	BlitzMaxExponent = 40

	AnagramLetterPoints = 100
	AnagramHintPenalty  = 200
	MaxAnagramHints     = 2
)

// TimeFraction is remaining/total clamped to [0, 1].
func TimeFraction(remainingMs, totalMs int64) float64 {
	if totalMs <= 0 || remainingMs <= 0 {
		return 0
	}
	if remainingMs >= totalMs {
		return 1
	}
	return float64(remainingMs) / float64(totalMs)
}

// StreakMultiplier is 1.0 until the streak reaches StreakBonusThreshold.
func StreakMultiplier(streak int) float64 {
	if streak >= StreakBonusThreshold {
		return StreakBonusMultiplier
	}
	return 1
}

// BasePoints is the time-decayed score for multiple and truefalse questions. A correct answer
// earns between half and full credit depending on the remaining time, scaled by the streak
// multiplier for streakAfter (the streak including this answer).
func BasePoints(correct bool, remainingMs, totalMs int64, streakAfter int) int {
	if !correct {
		return 0
	}
	decay := MinPointsFraction + (1-MinPointsFraction)*TimeFraction(remainingMs, totalMs)
	return int(math.Round(MaxPoints * decay * StreakMultiplier(streakAfter)))
}

// OrderPoints awards partial credit per correct position and a time bonus only for a perfect order.
func OrderPoints(fractionCorrect float64, remainingMs, totalMs int64) int {
	points := int(math.Round(fractionCorrect * OrderMaxPoints))
	if fractionCorrect == 1 {
		points += int(math.Round(TimeFraction(remainingMs, totalMs) * OrderTimeBonusMax))
	}
	return points
}

// MatchPoints is the match-round formula; completedMs is when the last pair was resolved.
func MatchPoints(totalPairs int, completedMs, timeLimitMs int64, cleanSweep bool) int {
	fraction := MatchMinTimeFraction
	if timeLimitMs > 0 {
		if f := float64(timeLimitMs-completedMs) / float64(timeLimitMs); f > fraction {
			fraction = f
		}
	}
	if fraction > 1 {
		fraction = 1
	}
	points := int(math.Round(float64(totalPairs) * MatchPairPoints * fraction))
	if cleanSweep {
		points += MatchCleanSweepBonus
	}
	return points
}

// BlitzPoints grows exponentially with the streak: 100 × 1.5^(streak−1).
func BlitzPoints(correct bool, streakAfter int) int {
	if !correct || streakAfter < 1 {
		return 0
	}
	exp := streakAfter - 1
	if exp > BlitzMaxExponent {
		exp = BlitzMaxExponent
	}
	return int(math.Round(BlitzBasePoints * math.Pow(BlitzGrowth, float64(exp))))
}

// AnagramPoints is wordLength × 100 × timeFraction − 200 × hintsUsed, never negative.
func AnagramPoints(wordLength int, timeFraction float64, hintsUsed int) int {
	points := int(math.Round(float64(wordLength)*AnagramLetterPoints*timeFraction)) - AnagramHintPenalty*hintsUsed
	if points < 0 {
		return 0
	}
	return points
}
