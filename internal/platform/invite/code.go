package invite

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
)

// Alphabet skips characters that are easy to misread (I, O, 0, 1).
const (
	alphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength  = 12
	groupSize   = 4
	maxAttempts = 12
)

var ErrAttemptsExhausted = errors.New("could not generate a unique invite code")

// ExistsFunc reports whether a candidate code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// NewCode produces a unique dash-grouped invite code (XXXX-XXXX-XXXX),
// retrying on collision up to a bounded attempt count. Two concurrent
// generations can still race on the same code before either persists;
// with a 32-character alphabet and 12 positions that collision window
// is accepted.
func NewCode(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate, err := randomCode()
		if err != nil {
			return "", err
		}

		if exists == nil {
			return candidate, nil
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check invite code uniqueness: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, maxAttempts)
}

// Normalize prepares user-typed codes for lookup.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes for invite code: %w", err)
	}

	var b strings.Builder
	b.Grow(codeLength + codeLength/groupSize - 1)
	for i, raw := range buf {
		if i > 0 && i%groupSize == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(alphabet[int(raw)%len(alphabet)])
	}
	return b.String(), nil
}
