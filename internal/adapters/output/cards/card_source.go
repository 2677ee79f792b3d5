package cards

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"tarot-reading/internal/domain"
	"tarot-reading/internal/ports/output"
)

//go:embed data/all_cards.json
var embeddedCards []byte

var (
	_ output.CardSource = (*EmbeddedSource)(nil)
	_ output.CardSource = (*FileSource)(nil)
)

// EmbeddedSource serves the 78-card dataset compiled into the binary
type EmbeddedSource struct {
	once  sync.Once
	cards []domain.Card
	err   error
}

// NewEmbeddedSource func
func NewEmbeddedSource() *EmbeddedSource {
	return &EmbeddedSource{}
}

// LoadCards parses the embedded dataset once and returns a copy on every call
func (s *EmbeddedSource) LoadCards(ctx context.Context) ([]domain.Card, error) {
	s.once.Do(func() {
		s.cards, s.err = Parse(embeddedCards)
	})
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.Card, len(s.cards))
	copy(out, s.cards)
	return out, nil
}

// FileSource reads a JSON dataset from disk
type FileSource struct {
	path string
}

// NewFileSource func
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// LoadCards func
func (s *FileSource) LoadCards(ctx context.Context) ([]domain.Card, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataLoad, err)
	}
	cards, err := Parse(data)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Loaded %d cards from %s", len(cards), s.path)
	return cards, nil
}

// Parse decodes a JSON array of {name, meaning_up, meaning_rev} entries.
// Unparsable input, an empty list, a nameless entry or a duplicate name fail with domain.ErrDataLoad.
func Parse(data []byte) ([]domain.Card, error) {
	var cards []domain.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataLoad, err)
	}
	deck, err := domain.NewDeck(cards)
	if err != nil {
		return nil, err
	}
	return deck.Cards(), nil
}
