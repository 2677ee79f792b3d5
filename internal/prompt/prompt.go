// Package prompt renders reading state into model-ready prompts.
// Every function is pure: the same cards, dialogue and question always
// produce the same text.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"tarot-reading/internal/domain"
)

// PreviewRunes bounds how much of each earlier interpretation is repeated in the final prompt
const PreviewRunes = 120

const noTables = "Do not use tables; the answer is shown as formatted prose."

// RenderSingle builds the prompt explaining the card at index.
// Only cards drawn before index are mentioned, by name and orientation.
func RenderSingle(cards []domain.DrawnCard, index int, question string) (string, error) {
	if err := checkIndex(cards, index); err != nil {
		return "", err
	}
	target := cards[index]

	var b strings.Builder
	b.WriteString("You are an experienced tarot reader giving an interactive Greek Cross reading.\n")
	fmt.Fprintf(&b, "Reading topic: %s\n\n", domain.QuestionOrDefault(question))

	b.WriteString("Cards drawn before this one:\n")
	if index == 0 {
		b.WriteString("- none, this is the first card\n")
	}
	for i := 0; i < index; i++ {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", domain.PositionLabel(i), cards[i].Card.Name, cards[i].Orientation.Label())
	}

	b.WriteString("\nCard to explain now:\n")
	writeCard(&b, index, target)

	b.WriteString("\nExplain what this card means in this position for the querent in roughly 200 characters. ")
	b.WriteString("Refer to the earlier cards when they are relevant. ")
	b.WriteString("Close with a gentle question asking whether the card resonates with their situation. ")
	b.WriteString("Write loosely structured prose; short paragraphs or a few bullet points are fine. ")
	b.WriteString(noTables)
	b.WriteString("\n")
	return b.String(), nil
}

// RenderFeedback builds the prompt answering the querent's latest feedback on one card
func RenderFeedback(cards []domain.DrawnCard, index int, turns []domain.DialogueTurn, feedback string) (string, error) {
	if err := checkIndex(cards, index); err != nil {
		return "", err
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return "", fmt.Errorf("%w: feedback is empty", domain.ErrInvalidRequest)
	}
	if len(turns) == 0 {
		return "", fmt.Errorf("%w: no dialogue recorded for card %d", domain.ErrInvalidRequest, index)
	}

	var b strings.Builder
	b.WriteString("You are an experienced tarot reader in a conversation with the querent about one card.\n\n")
	writeCard(&b, index, cards[index])

	b.WriteString("\nConversation so far:\n")
	for i, t := range turns {
		fmt.Fprintf(&b, "Round %d\n", i+1)
		writeTurn(&b, t, 0)
	}

	fmt.Fprintf(&b, "\nThe querent now says: %q\n\n", feedback)
	b.WriteString("Reply with empathy in roughly 100 characters. ")
	b.WriteString("Acknowledge what they shared and tie it back to this card's message. ")
	b.WriteString(noTables)
	b.WriteString("\n")
	return b.String(), nil
}

// RenderFinal builds the closing synthesis prompt for a complete spread
func RenderFinal(cards []domain.DrawnCard, interactions map[int][]domain.DialogueTurn, question string) (string, error) {
	if len(cards) != domain.SpreadSize {
		return "", fmt.Errorf("%w: final reading needs %d cards, have %d", domain.ErrInvalidRequest, domain.SpreadSize, len(cards))
	}
	withHistory := historyIndexes(interactions, len(cards))
	if len(withHistory) == 0 {
		return "", fmt.Errorf("%w: final reading needs dialogue for at least one card", domain.ErrInvalidRequest)
	}

	var b strings.Builder
	b.WriteString("You are an experienced tarot reader closing a Greek Cross reading.\n\n")

	b.WriteString("The spread:\n")
	for i, c := range cards {
		fmt.Fprintf(&b, "%s: %s (%s) - base meaning: %s\n", domain.PositionLabel(i), c.Card.Name, c.Orientation.Label(), c.Meaning())
	}

	b.WriteString("\nWhat was said about each card:\n")
	for _, i := range withHistory {
		fmt.Fprintf(&b, "[%s] %s\n", domain.PositionLabel(i), cards[i].Card.Name)
		for _, t := range interactions[i] {
			writeTurn(&b, t, PreviewRunes)
		}
	}

	fmt.Fprintf(&b, "\nReading topic: %s\n\n", domain.QuestionOrDefault(question))
	b.WriteString("Write a comprehensive reading in prose with these parts:\n")
	b.WriteString("1. An overview of the whole spread\n")
	b.WriteString("2. What each card and the conversation about it revealed\n")
	b.WriteString("3. How the cards relate to one another\n")
	b.WriteString("4. Final advice offering hope and practical guidance\n")
	b.WriteString("Headings and lists are welcome. ")
	b.WriteString(noTables)
	b.WriteString("\n")
	return b.String(), nil
}

// Preview shortens s to at most limit runes, marking the cut with "..."
func Preview(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

func checkIndex(cards []domain.DrawnCard, index int) error {
	if index < 0 || index >= len(cards) {
		return fmt.Errorf("%w: %w: card index %d with %d cards drawn", domain.ErrInvalidRequest, domain.ErrInvalidIndex, index, len(cards))
	}
	return nil
}

func writeCard(b *strings.Builder, index int, c domain.DrawnCard) {
	fmt.Fprintf(b, "Position: %s\n", domain.PositionLabel(index))
	fmt.Fprintf(b, "Card: %s (%s)\n", c.Card.Name, c.Orientation.Label())
	fmt.Fprintf(b, "Meaning: %s\n", c.Meaning())
}

// writeTurn prints the filled fields of a turn; limit > 0 truncates the interpretation
func writeTurn(b *strings.Builder, t domain.DialogueTurn, limit int) {
	if t.Interpretation != nil {
		text := *t.Interpretation
		if limit > 0 {
			text = Preview(text, limit)
		}
		fmt.Fprintf(b, "- Reader: %s\n", text)
	}
	if t.Feedback != nil {
		fmt.Fprintf(b, "- Querent: %s\n", *t.Feedback)
	}
	if t.Reaction != nil {
		fmt.Fprintf(b, "- Reader: %s\n", *t.Reaction)
	}
}

// historyIndexes lists drawn card indexes with dialogue, ascending
func historyIndexes(interactions map[int][]domain.DialogueTurn, drawn int) []int {
	out := make([]int, 0, len(interactions))
	for i, turns := range interactions {
		if i < 0 || i >= drawn || len(turns) == 0 {
			continue
		}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
