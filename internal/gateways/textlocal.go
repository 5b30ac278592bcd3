package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/text/encoding/charmap"

	"github.com/cshealth/reminder-gateway/internal/hexcodec"
	"github.com/cshealth/reminder-gateway/pkg/logger"
)

// The feed timestamps carry no zone; they are wall time in the account's
// configured timezone.
const feedTimeLayout = "2006-01-02 15:04:05"

// A message counts as new for a full day after arrival. The feed's own isNew
// flag is ignored: it flips as soon as anyone opens the web inbox.
const newWindow = 24 * time.Hour

type TextLocalConfig struct {
	BaseURL string
	APIKey  string
	InboxID string
	Sender  string
	Timeout time.Duration

	// Location interprets the zone-less feed timestamps.
	Location *time.Location
}

// TextLocalClient is the primary gateway: send, inbox and send-history feeds.
type TextLocalClient struct {
	config  TextLocalConfig
	client  *fasthttp.Client
	limiter RateLimiter
	now     func() time.Time
}

var _ Gateway = (*TextLocalClient)(nil)

func NewTextLocalClient(cfg TextLocalConfig, limiter RateLimiter) *TextLocalClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &TextLocalClient{
		config:  cfg,
		client:  newHTTPClient(cfg.Timeout),
		limiter: limiter,
		now:     time.Now,
	}
}

type textLocalSendResponse struct {
	Status   string          `json:"status"`
	Message  json.RawMessage `json:"message"`
	Messages json.RawMessage `json:"messages"`
	Errors   json.RawMessage `json:"errors"`
}

// Send submits a form-encoded POST to /send/. The unicode flag is set only
// when the body carries a non-ASCII byte; a flagged SMS carries 70 characters
// per segment instead of 160.
func (c *TextLocalClient) Send(ctx context.Context, body, phone string) (*SendResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var raw []byte
	err := withRetry(ctx, func() error {
		req := fasthttp.AcquireRequest()
		defer fasthttp.ReleaseRequest(req)

		req.SetRequestURI(c.config.BaseURL + "/send/?")
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/x-www-form-urlencoded")

		args := req.PostArgs()
		args.Set("numbers", phone)
		args.Set("message", body)
		args.Set("sender", c.config.Sender)
		args.Set("apikey", c.config.APIKey)
		if hasNonASCII(body) {
			args.Set("unicode", "true")
		} else {
			args.Set("unicode", "false")
		}

		var err error
		raw, err = doRequest(ctx, "textlocal", c.client, c.config.Timeout, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	var decoded textLocalSendResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed send response: %v", ErrPermanent, err)
	}

	return &SendResult{
		Success: decoded.Status == "success",
		Raw:     raw,
	}, nil
}

type textLocalInboxResponse struct {
	Messages []struct {
		ID      json.Number `json:"id"`
		Number  string      `json:"number"`
		Message string      `json:"message"`
		Date    string      `json:"date"`
		IsNew   interface{} `json:"isNew"`
		Status  string      `json:"status"`
	} `json:"messages"`
}

// ReadInbox fetches the primary inbox feed, repairs each body and returns
// the new messages bucketed by sender number. Within a bucket the feed order
// is preserved; replies to a multi-part conversation depend on it.
func (c *TextLocalClient) ReadInbox(ctx context.Context) (map[string][]InboxMessage, error) {
	raw, err := c.getFeed(ctx, "/get_messages/", map[string]string{
		"apikey":   c.config.APIKey,
		"inbox_id": c.config.InboxID,
	})
	if err != nil {
		return nil, err
	}

	var decoded textLocalInboxResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed inbox feed: %v", ErrPermanent, err)
	}

	out := make(map[string][]InboxMessage)
	for _, m := range decoded.Messages {
		receivedAt, ok := c.feedTime(m.Date)
		if !ok {
			logger.Warn("inbox message with unparseable date, skipped", "number", m.Number, "date", m.Date)
			continue
		}
		if !c.isNew(receivedAt) {
			continue
		}
		out[m.Number] = append(out[m.Number], InboxMessage{
			Body:       hexcodec.Repair(m.Message),
			ReceivedAt: receivedAt,
		})
	}
	return out, nil
}

type textLocalHistoryResponse struct {
	Messages []struct {
		Number   string `json:"number"`
		Content  string `json:"content"`
		Datetime string `json:"datetime"`
		Status   string `json:"status"`
	} `json:"messages"`
}

// ReadSendHistory is the outbound counterpart of ReadInbox: what we sent in
// the last day, repaired and bucketed by recipient.
func (c *TextLocalClient) ReadSendHistory(ctx context.Context) (map[string][]InboxMessage, error) {
	raw, err := c.getFeed(ctx, "/get_history_api/", map[string]string{
		"apikey": c.config.APIKey,
	})
	if err != nil {
		return nil, err
	}

	var decoded textLocalHistoryResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed history feed: %v", ErrPermanent, err)
	}

	out := make(map[string][]InboxMessage)
	for _, m := range decoded.Messages {
		sentAt, ok := c.feedTime(m.Datetime)
		if !ok {
			logger.Warn("history message with unparseable datetime, skipped", "number", m.Number, "datetime", m.Datetime)
			continue
		}
		if !c.isNew(sentAt) {
			continue
		}
		out[m.Number] = append(out[m.Number], InboxMessage{
			Body:       hexcodec.DecodeEcho(hexcodec.Repair(m.Content)),
			ReceivedAt: sentAt,
		})
	}
	return out, nil
}

// getFeed fetches one feed endpoint and transcodes the Latin-1 wire bytes to
// UTF-8 so json.Unmarshal sees valid text.
func (c *TextLocalClient) getFeed(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	var raw []byte
	err := withRetry(ctx, func() error {
		req := fasthttp.AcquireRequest()
		defer fasthttp.ReleaseRequest(req)

		req.SetRequestURI(c.config.BaseURL + path)
		req.Header.SetMethod(fasthttp.MethodGet)
		for k, v := range params {
			req.URI().QueryArgs().Set(k, v)
		}

		var err error
		raw, err = doRequest(ctx, "textlocal", c.client, c.config.Timeout, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: feed transcode: %v", ErrPermanent, err)
	}
	return decoded, nil
}

func (c *TextLocalClient) feedTime(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(feedTimeLayout, s, c.config.Location)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (c *TextLocalClient) isNew(t time.Time) bool {
	return c.now().In(c.config.Location).Sub(t) <= newWindow
}
