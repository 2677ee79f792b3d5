package domain

// RNG abstracts random number generation so draws can be replayed in tests
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Orientation represents whether a drawn card is read upright or reversed
type Orientation string

const (
	// OrientationUpright - card read upright
	OrientationUpright Orientation = "upright"
	// OrientationReversed - card read reversed
	OrientationReversed Orientation = "reversed"
)

// Label returns the human readable orientation
func (o Orientation) Label() string {
	if o == OrientationReversed {
		return "Reversed"
	}
	return "Upright"
}

// Card is one entry of the card-meaning dataset. Immutable after load.
type Card struct {
	Name            string `json:"name"`
	MeaningUpright  string `json:"meaning_up"`
	MeaningReversed string `json:"meaning_rev"`
}

// DrawnCard is a card together with the orientation it was drawn in
type DrawnCard struct {
	Card        Card        `json:"card"`
	Orientation Orientation `json:"orientation"`
}

// Meaning returns the meaning matching the drawn orientation
func (d DrawnCard) Meaning() string {
	if d.Orientation == OrientationReversed {
		return d.Card.MeaningReversed
	}
	return d.Card.MeaningUpright
}
