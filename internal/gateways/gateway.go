// Package gateway holds the SMS provider clients. Two providers are wired:
// the primary one (send plus inbox feeds) and a transactional-only one.
// Callers should not rely on provider response schemas beyond the success
// flag; the raw decoded payload is passed through for logging.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valyala/fasthttp"

	"github.com/cshealth/reminder-gateway/pkg/prom"
)

var (
	// ErrTransient marks network trouble, timeouts and 5xx responses;
	// callers retry these.
	ErrTransient = errors.New("transient gateway error")

	// ErrPermanent marks 4xx responses and malformed payloads; retrying
	// cannot help.
	ErrPermanent = errors.New("permanent gateway error")
)

// Some providers serve bot-looking clients an HTML interstitial instead of
// JSON, so every request claims to be a desktop browser.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

const defaultTimeout = 30 * time.Second

// SendResult is what a send returns: a success flag plus the provider's
// decoded response verbatim.
type SendResult struct {
	Success bool
	Raw     []byte
}

// InboxMessage is one repaired inbound message with its arrival time.
type InboxMessage struct {
	Body       string
	ReceivedAt time.Time
}

// Sender is the capability both providers share.
type Sender interface {
	Send(ctx context.Context, body, phone string) (*SendResult, error)
}

// InboxReader is only implemented by the primary provider. The map is keyed
// by phone number; slices preserve the feed's arrival order.
type InboxReader interface {
	ReadInbox(ctx context.Context) (map[string][]InboxMessage, error)
}

// Gateway is the full capability set of the primary provider.
type Gateway interface {
	Sender
	InboxReader
}

// RateLimiter gates each outbound send; pkg/ratelimit satisfies it.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

func newHTTPClient(timeout time.Duration) *fasthttp.Client {
	return &fasthttp.Client{
		ReadTimeout:         timeout,
		WriteTimeout:        timeout,
		MaxIdleConnDuration: 60 * time.Second,
	}
}

// doRequest performs one HTTP exchange and classifies the failure mode.
func doRequest(ctx context.Context, name string, client *fasthttp.Client, timeout time.Duration, req *fasthttp.Request) ([]byte, error) {
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetUserAgent(userAgent)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(timeout)
	}

	start := time.Now()
	err := client.DoDeadline(req, resp, deadline)
	prom.ObserveHistogramVec(prom.SystemGateway, prom.MetricGatewayDuration, time.Since(start).Seconds(), name)

	if err != nil {
		prom.IncCounterVec(prom.SystemGateway, prom.MetricGatewayRequests, name, "network_error")
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	statusCode := resp.StatusCode()
	switch {
	case statusCode >= 200 && statusCode < 300:
		prom.IncCounterVec(prom.SystemGateway, prom.MetricGatewayRequests, name, "ok")
	case statusCode == fasthttp.StatusTooManyRequests || statusCode >= 500:
		prom.IncCounterVec(prom.SystemGateway, prom.MetricGatewayRequests, name, "transient")
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrTransient, statusCode)
	default:
		prom.IncCounterVec(prom.SystemGateway, prom.MetricGatewayRequests, name, "permanent")
		return nil, fmt.Errorf("%w: unexpected status code %d, body: %s", ErrPermanent, statusCode, resp.Body())
	}

	result := make([]byte, len(resp.Body()))
	copy(result, resp.Body())

	return result, nil
}

// withRetry runs op under exponential backoff, three retries, giving up
// immediately on permanent errors.
func withRetry(ctx context.Context, op func() error) error {
	wrapped := func() error {
		err := op()
		if err != nil && errors.Is(err, ErrPermanent) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(wrapped, policy)
}

func hasNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return true
		}
	}
	return false
}
