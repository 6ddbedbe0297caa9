package categorizer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"fjacquet/statement-ledger/internal/apperrors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/googleapis/gax-go/v2/apierror"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
)

// AIClient sends a prompt to a language model and returns its text reply.
// Implementations return an error recognized by IsRateLimited when the
// provider throttles the caller.
type AIClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// IsRateLimited reports whether err signals an HTTP 429 or an equivalent
// quota exhaustion from one of the supported providers.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrRateLimited) {
		return true
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusTooManyRequests {
		return true
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPCode() == http.StatusTooManyRequests {
			return true
		}
		if st := apiErr.GRPCStatus(); st != nil && st.Code() == codes.ResourceExhausted {
			return true
		}
	}

	var aErr *anthropic.Error
	if errors.As(err, &aErr) && aErr.StatusCode == http.StatusTooManyRequests {
		return true
	}

	return strings.Contains(err.Error(), "429")
}

// RateLimitedClient paces calls to the wrapped client.
type RateLimitedClient struct {
	next    AIClient
	limiter *rate.Limiter
}

// NewRateLimitedClient allows at most requestsPerMinute calls per minute.
// A non-positive value disables pacing.
func NewRateLimitedClient(next AIClient, requestsPerMinute int) *RateLimitedClient {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60)
	}
	return &RateLimitedClient{next: next, limiter: rate.NewLimiter(limit, 1)}
}

func (c *RateLimitedClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.next.Complete(ctx, prompt)
}

// Close closes the wrapped client when it holds resources.
func (c *RateLimitedClient) Close() error {
	if closer, ok := c.next.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
