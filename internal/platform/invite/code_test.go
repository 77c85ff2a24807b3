package invite

import (
	"context"
	"errors"
	"regexp"
	"testing"
)

var codePattern = regexp.MustCompile(`^[A-Z2-9]{4}-[A-Z2-9]{4}-[A-Z2-9]{4}$`)

func TestNewCode_Format(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		code, err := NewCode(context.Background(), nil)
		if err != nil {
			t.Fatalf("NewCode error: %v", err)
		}
		if !codePattern.MatchString(code) {
			t.Fatalf("code %q does not match expected pattern", code)
		}
		for _, r := range code {
			switch r {
			case 'I', 'O', '0', '1':
				t.Fatalf("code %q contains ambiguous character %q", code, r)
			}
		}
	}
}

func TestNewCode_RetriesOnCollision(t *testing.T) {
	t.Parallel()

	calls := 0
	exists := func(_ context.Context, code string) (bool, error) {
		calls++
		return calls <= 3, nil
	}

	code, err := NewCode(context.Background(), exists)
	if err != nil {
		t.Fatalf("NewCode error: %v", err)
	}
	if code == "" {
		t.Fatal("expected a code after retries")
	}
	if calls != 4 {
		t.Fatalf("expected 4 uniqueness checks, got %d", calls)
	}
}

func TestNewCode_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	alwaysTaken := func(_ context.Context, _ string) (bool, error) {
		calls++
		return true, nil
	}

	_, err := NewCode(context.Background(), alwaysTaken)
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("expected ErrAttemptsExhausted, got %v", err)
	}
	if calls != maxAttempts {
		t.Fatalf("expected %d attempts, got %d", maxAttempts, calls)
	}
}

func TestNewCode_PropagatesCheckerError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db unreachable")
	_, err := NewCode(context.Background(), func(_ context.Context, _ string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected checker error, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	if got := Normalize("  abcd-efgh-jklm \n"); got != "ABCD-EFGH-JKLM" {
		t.Fatalf("unexpected normalized code %q", got)
	}
}
