package genai

import (
	"context"
	"errors"
	"fmt"

	"github.com/BTreeMap/PlayaBooth/internal/models"
)

// UnavailableGenerator stands in for a client that could not be constructed.
// The booth keeps running and every generation falls back to the request display.
type UnavailableGenerator struct {
	cause error
}

// Unavailable returns a generator whose Generate always fails with cause.
func Unavailable(cause error) *UnavailableGenerator {
	if cause == nil {
		cause = errors.New("generator unavailable")
	}
	return &UnavailableGenerator{cause: cause}
}

// Generate always fails.
func (u *UnavailableGenerator) Generate(ctx context.Context, messages []models.Message) (string, error) {
	return "", fmt.Errorf("%w: %w", ErrGenerationFailed, u.cause)
}
