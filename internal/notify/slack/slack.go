// Package slack posts marketplace digests to a Slack channel.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/matchyard/matchyard/internal/notify"
	slackapi "github.com/slack-go/slack"
)

// maxRetries is the max number of retries for rate-limited API calls.
const maxRetries = 3

// client abstracts the Slack API methods we use, enabling test mocks.
type client interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Notifier posts digests with the Slack Web API.
type Notifier struct {
	client    client
	channelID string
	backoff   time.Duration
}

// Opts holds parameters for creating a Slack Notifier.
type Opts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client client
}

// New creates a Slack Notifier.
func New(opts Opts) (*Notifier, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel id is required")
	}

	n := &Notifier{
		client:    opts.Client,
		channelID: opts.ChannelID,
		backoff:   time.Second,
	}
	if n.client == nil {
		n.client = slackapi.New(opts.BotToken)
	}
	return n, nil
}

// Name implements notify.Notifier.
func (n *Notifier) Name() string { return "slack" }

// Send posts d as a message with one attachment.
func (n *Notifier) Send(ctx context.Context, d notify.Digest) error {
	options := buildMessageOptions(d)
	err := retryOnRateLimit(ctx, n.backoff, func() error {
		_, _, postErr := n.client.PostMessage(n.channelID, options...)
		return postErr
	})
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

// buildMessageOptions translates a digest into Slack MsgOptions. The plain
// text rendering is kept as the notification fallback.
func buildMessageOptions(d notify.Digest) []slackapi.MsgOption {
	return []slackapi.MsgOption{
		slackapi.MsgOptionText(d.Text(), false),
		slackapi.MsgOptionAttachments(digestToAttachment(d)),
	}
}

// digestToAttachment converts a digest to a Slack Attachment.
func digestToAttachment(d notify.Digest) slackapi.Attachment {
	att := slackapi.Attachment{
		Title:    d.Title,
		Text:     d.Summary,
		Color:    d.Color,
		Fallback: d.Title,
		Footer:   "matchyard",
		Ts:       jsonTime(d.GeneratedAt),
	}
	for _, f := range d.Fields {
		att.Fields = append(att.Fields, slackapi.AttachmentField{
			Title: f.Name,
			Value: f.Value,
			Short: f.Short,
		})
	}
	return att
}

func jsonTime(t time.Time) json.Number {
	if t.IsZero() {
		return ""
	}
	return json.Number(strconv.FormatInt(t.Unix(), 10))
}

// retryOnRateLimit calls fn and retries with backoff on Slack rate limit errors.
// The RetryAfter duration from Slack wins over the computed backoff.
func retryOnRateLimit(ctx context.Context, backoff time.Duration, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(maxRetries+1),
		retry.Delay(backoff),
		retry.DelayType(rateLimitDelay),
		retry.RetryIf(isRateLimited),
		retry.LastErrorOnly(true),
	)
}

func isRateLimited(err error) bool {
	var rle *slackapi.RateLimitedError
	return errors.As(err, &rle)
}

func rateLimitDelay(n uint, err error, cfg *retry.Config) time.Duration {
	var rle *slackapi.RateLimitedError
	if errors.As(err, &rle) && rle.RetryAfter > 0 {
		return rle.RetryAfter
	}
	return retry.BackOffDelay(n, err, cfg)
}
