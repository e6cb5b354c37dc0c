package drafting

import "context"

// Generator sends one prompt to a text-generation backend and returns its
// text. Implementations must not retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
