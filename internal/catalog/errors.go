package catalog

import (
	"errors"
	"fmt"

	"catalog-service/internal/store"
)

var (
	ErrNotAuthenticated = errors.New("catalog: not authenticated")
	ErrNotAuthorized    = errors.New("catalog: not the owner")
	ErrDuplicate        = errors.New("catalog: duplicate")
	ErrInvalid          = errors.New("catalog: invalid input")

	// ErrNotFound also matches store.ErrNotFound.
	ErrNotFound = fmt.Errorf("catalog: %w", store.ErrNotFound)
)

func notFound(what string, ref any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, what, ref)
}

// translate maps store lookups onto catalog errors.
func translate(err error, what string, ref any) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(what, ref)
	}
	return err
}
