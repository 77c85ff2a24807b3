package supabase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/squadscore/squadscore/internal/domain/user"
	basecache "github.com/squadscore/squadscore/internal/platform/cache"
	"github.com/squadscore/squadscore/internal/platform/resilience"
	"github.com/squadscore/squadscore/internal/usecase"
)

const verifiedTokenTTL = 30 * time.Second

var errSupabaseTransient = crerr.New("supabase transient failure")

// Client verifies Supabase access tokens against the auth user
// endpoint. Verified principals are cached briefly so bursts of
// requests with the same token do not fan out to Supabase. A circuit
// breaker guards against a flapping auth backend; while the breaker is
// open every verification fails fast with ErrDependencyUnavailable.
type Client struct {
	httpClient *http.Client
	verifyURL  string
	anonKey    string
	breaker    *resilience.CircuitBreaker
	cache      *basecache.Store
	logger     *slog.Logger
}

func NewClient(httpClient *http.Client, baseURL, anonKey string, cfg resilience.CircuitBreakerConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	var breaker *resilience.CircuitBreaker
	if cfg.Enabled {
		cfg = resilience.NormalizeCircuitBreakerConfig(cfg)
		breaker = resilience.NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq)
	}

	return &Client{
		httpClient: httpClient,
		verifyURL:  buildURL(baseURL, "/auth/v1/user"),
		anonKey:    anonKey,
		breaker:    breaker,
		cache:      basecache.NewStore(verifiedTokenTTL),
		logger:     logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	cacheKey := "token:" + hashToken(token)
	if v, ok := c.cache.Get(ctx, cacheKey); ok {
		principal, _ := v.(user.Principal)
		return principal, nil
	}

	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return user.Principal{}, fmt.Errorf("%w: auth backend circuit open", usecase.ErrDependencyUnavailable)
		}
	}

	principal, err := c.verify(ctx, token)
	if c.breaker != nil {
		if isTransient(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		if isTransient(err) {
			return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return user.Principal{}, err
	}

	c.cache.Set(ctx, cacheKey, principal)
	return principal, nil
}

func (c *Client) verify(ctx context.Context, token string) (user.Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.verifyURL, nil)
	if err != nil {
		return user.Principal{}, fmt.Errorf("create verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: request supabase auth: %v", errSupabaseTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: read verify response: %v", errSupabaseTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return user.Principal{}, fmt.Errorf("%w: token rejected", usecase.ErrUnauthorized)
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.WarnContext(ctx, "supabase auth server error",
			"status_code", resp.StatusCode,
		)
		return user.Principal{}, fmt.Errorf("%w: supabase auth status %d", errSupabaseTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return user.Principal{}, fmt.Errorf("supabase auth unexpected status %d", resp.StatusCode)
	}

	var decoded verifyResponse
	if err := jsoniter.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal verify response: %w", err)
	}
	if strings.TrimSpace(decoded.ID) == "" {
		return user.Principal{}, fmt.Errorf("invalid verify response: id is empty")
	}

	return user.Principal{
		UserID:      decoded.ID,
		Email:       decoded.Email,
		Username:    decoded.UserMetadata.Username,
		DisplayName: decoded.UserMetadata.FullName,
	}, nil
}

type verifyResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Username string `json:"user_name"`
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}
