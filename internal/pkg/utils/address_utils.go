package utils

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"portfolio_dashboard/internal/domain/entity"
)

const publicKeyLength = 32

// ValidateAddress checks that address is a base58-encoded 32-byte public key.
func ValidateAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("%w: empty address", entity.ErrInvalidAddress)
	}
	decoded, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", entity.ErrInvalidAddress, address, err)
	}
	if len(decoded) != publicKeyLength {
		return fmt.Errorf("%w: %q decodes to %d bytes, want %d", entity.ErrInvalidAddress, address, len(decoded), publicKeyLength)
	}
	return nil
}
