package output

import "context"

// ModelClient interface - Output port
// Sends one prompt to a language model and returns its text.
// Transport, timeout and provider failures are returned as errors.
type ModelClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
