package session

import (
	"fmt"

	"catalog-service/internal/utils"
)

// GenerateID returns a 256-bit random session id.
func GenerateID() (string, error) {
	id, err := utils.RandomString(32)
	if err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return id, nil
}
