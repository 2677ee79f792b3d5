package domain

import (
	"fmt"
	"strings"
)

// SpreadSize is the number of cards in a Greek Cross reading
const SpreadSize = 5

// DefaultQuestion is used when the querent does not ask anything specific
const DefaultQuestion = "General life guidance"

var positionLabels = [SpreadSize]string{
	"1. Current situation",
	"2. Obstacle / cause",
	"3. Trend if nothing changes",
	"4. Remedy",
	"5. Final outcome",
}

// PositionLabel returns the spread position for a card index.
// Indexes past the spread fall back to an ordinal label such as "6th card".
func PositionLabel(index int) string {
	if index >= 0 && index < len(positionLabels) {
		return positionLabels[index]
	}
	return fmt.Sprintf("%s card", ordinal(index+1))
}

// PositionLabels returns a copy of the spread layout
func PositionLabels() []string {
	out := make([]string, len(positionLabels))
	copy(out, positionLabels[:])
	return out
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// QuestionOrDefault substitutes DefaultQuestion for a blank question
func QuestionOrDefault(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return DefaultQuestion
	}
	return q
}
