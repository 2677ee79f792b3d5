package output

import (
	"context"

	"tarot-reading/internal/domain"
)

// CardSource interface - Output port
// Provides the card-meaning dataset once at startup.
// A missing or malformed dataset fails with domain.ErrDataLoad.
type CardSource interface {
	LoadCards(ctx context.Context) ([]domain.Card, error)
}
