package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tarot-reading/internal/domain"
	"tarot-reading/internal/ports/input"
)

const rule = "------------------------------------------------------------"

// Reader runs one interactive five-card reading on a terminal
type Reader struct {
	tarot input.TarotService
	in    *bufio.Scanner
	out   io.Writer
}

// NewReader func
func NewReader(tarot input.TarotService, in io.Reader, out io.Writer) *Reader {
	return &Reader{
		tarot: tarot,
		in:    bufio.NewScanner(in),
		out:   out,
	}
}

// Run draws the spread, interprets each card, asks for the querent's
// thoughts after each one and finishes with the full reading
func (r *Reader) Run(ctx context.Context, question string) error {
	sessionID := uuid.NewString()
	question = domain.QuestionOrDefault(question)
	if err := r.tarot.SetQuestion(sessionID, question); err != nil {
		return err
	}

	fmt.Fprintf(r.out, "Reading topic: %s\n\n", question)

	for i := 0; i < domain.SpreadSize; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := r.tarot.DrawCard(sessionID)
		if err != nil {
			return err
		}
		card := result.NewCard
		fmt.Fprintln(r.out, rule)
		fmt.Fprintf(r.out, "%s: %s (%s)\n", domain.PositionLabel(i), card.Card.Name, card.Orientation.Label())
		fmt.Fprintf(r.out, "Meaning: %s\n\n", card.Meaning())

		text, err := r.tarot.Converse(ctx, sessionID, domain.SingleRequest{CardIndex: i})
		if err != nil {
			if !errors.Is(err, domain.ErrInterpretationFailed) {
				return err
			}
			logrus.Warnf("Card %d could not be interpreted: %v", i+1, err)
			fmt.Fprintln(r.out, "The reader is silent on this card. Let us move on.")
			continue
		}
		fmt.Fprintf(r.out, "%s\n\n", text)

		feedback, ok := r.ask("Your thoughts on this card (press Enter to skip): ")
		if !ok {
			return io.ErrUnexpectedEOF
		}
		if feedback == "" {
			continue
		}

		reaction, err := r.tarot.Converse(ctx, sessionID, domain.FeedbackRequest{CardIndex: i, Feedback: feedback})
		if err != nil {
			if !errors.Is(err, domain.ErrInterpretationFailed) {
				return err
			}
			logrus.Warnf("Feedback on card %d got no reaction: %v", i+1, err)
			continue
		}
		fmt.Fprintf(r.out, "\n%s\n\n", reaction)
	}

	fmt.Fprintln(r.out, rule)
	fmt.Fprintln(r.out, "The full reading")
	fmt.Fprintln(r.out, rule)

	final, err := r.tarot.Interpret(ctx, sessionID, domain.FinalRequest{})
	if err != nil {
		return fmt.Errorf("final reading: %w", err)
	}
	fmt.Fprintln(r.out, final)
	return nil
}

func (r *Reader) ask(prompt string) (string, bool) {
	fmt.Fprint(r.out, prompt)
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}
