package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

type HSPConfig struct {
	BaseURL  string
	APIKey   string
	Username string
	Sender   string
	Timeout  time.Duration
}

// HSPClient is the transactional gateway. Transactional routes bypass DND
// registries, so it carries the reminder traffic; it has no inbox.
type HSPClient struct {
	config  HSPConfig
	client  *fasthttp.Client
	limiter RateLimiter
}

var _ Sender = (*HSPClient)(nil)

func NewHSPClient(cfg HSPConfig, limiter RateLimiter) *HSPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &HSPClient{
		config:  cfg,
		client:  newHTTPClient(cfg.Timeout),
		limiter: limiter,
	}
}

// Send issues a GET to /sendSMS. The response is an array of loosely-typed
// objects; the send worked iff one of them carries the submit acknowledgement
// in its responseCode.
func (c *HSPClient) Send(ctx context.Context, body, phone string) (*SendResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var raw []byte
	err := withRetry(ctx, func() error {
		req := fasthttp.AcquireRequest()
		defer fasthttp.ReleaseRequest(req)

		req.SetRequestURI(c.config.BaseURL + "/sendSMS")
		req.Header.SetMethod(fasthttp.MethodGet)

		args := req.URI().QueryArgs()
		args.Set("username", c.config.Username)
		args.Set("message", body)
		args.Set("sendername", c.config.Sender)
		args.Set("smstype", "TRANS")
		args.Set("numbers", phone)
		args.Set("apikey", c.config.APIKey)

		var err error
		raw, err = doRequest(ctx, "hsp", c.client, c.config.Timeout, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed send response: %v", ErrPermanent, err)
	}

	success := false
	for _, entry := range decoded {
		if code, ok := entry["responseCode"].(string); ok &&
			strings.Contains(code, "SuccessFully Submitted") {
			success = true
			break
		}
	}

	return &SendResult{
		Success: success,
		Raw:     raw,
	}, nil
}
