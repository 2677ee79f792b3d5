package domain

import (
	"fmt"
	"strings"
)

// Deck is the immutable keyed collection of card definitions.
// Draws never mutate the deck; each draw works on its own candidate list,
// so one Deck is safely shared by every session.
type Deck struct {
	cards  []Card
	byName map[string]int
}

// NewDeck validates the dataset and builds a deck from it.
// An empty dataset, an entry without a name, or a duplicate name fail with ErrDataLoad.
func NewDeck(cards []Card) (*Deck, error) {
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: dataset is empty", ErrDataLoad)
	}

	d := &Deck{
		cards:  make([]Card, len(cards)),
		byName: make(map[string]int, len(cards)),
	}
	for i, c := range cards {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrDataLoad, i)
		}
		if _, dup := d.byName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate card %q", ErrDataLoad, name)
		}
		c.Name = name
		d.cards[i] = c
		d.byName[name] = i
	}
	return d, nil
}

// Size returns the number of cards in the deck
func (d *Deck) Size() int {
	return len(d.cards)
}

// Cards returns a copy of the card definitions in dataset order
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Lookup finds a card by name
func (d *Deck) Lookup(name string) (Card, bool) {
	i, ok := d.byName[name]
	if !ok {
		return Card{}, false
	}
	return d.cards[i], true
}

// DrawOne picks uniformly among the cards whose names are not in excluding.
func (d *Deck) DrawOne(excluding map[string]struct{}, rng RNG) (Card, error) {
	candidates := make([]Card, 0, len(d.cards))
	for _, c := range d.cards {
		if _, skip := excluding[c.Name]; skip {
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return Card{}, ErrDeckExhausted
	}
	return candidates[rng.Intn(len(candidates))], nil
}

// RandomOrientation is a 50/50 choice between upright and reversed
func RandomOrientation(rng RNG) Orientation {
	if rng.Intn(2) == 1 {
		return OrientationReversed
	}
	return OrientationUpright
}
