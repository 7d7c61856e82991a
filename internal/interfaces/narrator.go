package interfaces

import "context"

// Narrator turns a rendered metrics report into written commentary from the
// point of view of an expert profile.
type Narrator interface {
	Narrate(ctx context.Context, profile, report string) (string, error)

	// Provider names the backing model provider ("claude", "gemini")
	Provider() string
}
