package discord

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/matchyard/matchyard/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock Discord session ---

type sentMessage struct {
	channelID string
	data      *discordgo.MessageSend
}

type mockSession struct {
	mu   sync.Mutex
	sent []sentMessage
	errs []error // returned in order, then nil
}

func (m *mockSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{channelID: channelID, data: data})
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return nil, err
	}
	return &discordgo.Message{ID: "msg-1", ChannelID: channelID}, nil
}

func rateLimited() error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}
}

func fastNotifier(t *testing.T, ms *mockSession) *Notifier {
	t.Helper()
	n, err := New(Opts{ChannelID: "chan-1", Session: ms})
	require.NoError(t, err)
	n.baseBackoff = time.Millisecond
	n.maxBackoff = 5 * time.Millisecond
	return n
}

func digest() notify.Digest {
	return notify.Digest{
		Title:       "Marketplace digest",
		Summary:     "5 listings",
		Color:       "#36a64f",
		GeneratedAt: time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC),
		Fields: []notify.Field{
			{Name: "Total listings", Value: "5", Short: true},
			{Name: "Special Tools", Value: "50% success"},
		},
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Opts{ChannelID: "c"})
	assert.ErrorContains(t, err, "bot token is required")

	_, err = New(Opts{BotToken: "token"})
	assert.ErrorContains(t, err, "channel id is required")

	n, err := New(Opts{BotToken: "token", ChannelID: "c"})
	require.NoError(t, err)
	assert.Equal(t, "discord", n.Name())
}

func TestSend(t *testing.T) {
	ms := &mockSession{}
	n := fastNotifier(t, ms)

	require.NoError(t, n.Send(context.Background(), digest()))
	require.Len(t, ms.sent, 1)
	assert.Equal(t, "chan-1", ms.sent[0].channelID)

	data := ms.sent[0].data
	assert.Equal(t, "5 listings", data.Content)
	require.Len(t, data.Embeds, 1)
	embed := data.Embeds[0]
	assert.Equal(t, "Marketplace digest", embed.Title)
	assert.Equal(t, 0x36a64f, embed.Color)
	assert.Equal(t, "2026-03-16T08:00:00Z", embed.Timestamp)
	require.Len(t, embed.Fields, 2)
	assert.True(t, embed.Fields[0].Inline)
	assert.False(t, embed.Fields[1].Inline)
}

func TestSend_RetriesRateLimit(t *testing.T) {
	ms := &mockSession{errs: []error{rateLimited(), rateLimited()}}
	n := fastNotifier(t, ms)

	require.NoError(t, n.Send(context.Background(), digest()))
	assert.Len(t, ms.sent, 3)
}

func TestSend_GivesUpAfterMaxRetries(t *testing.T) {
	var errs []error
	for i := 0; i <= maxRetries; i++ {
		errs = append(errs, rateLimited())
	}
	ms := &mockSession{errs: errs}
	n := fastNotifier(t, ms)

	err := n.Send(context.Background(), digest())
	require.Error(t, err)
	assert.Len(t, ms.sent, maxRetries+1)
}

func TestSend_NoRetryOnOtherErrors(t *testing.T) {
	ms := &mockSession{errs: []error{
		&discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}},
	}}
	n := fastNotifier(t, ms)

	err := n.Send(context.Background(), digest())
	require.Error(t, err)
	assert.Len(t, ms.sent, 1)

	ms = &mockSession{errs: []error{errors.New("network down")}}
	n = fastNotifier(t, ms)
	assert.ErrorContains(t, n.Send(context.Background(), digest()), "discord: send message: network down")
}

func TestRetryOnRateLimit_ContextCancelled(t *testing.T) {
	n := fastNotifier(t, &mockSession{})
	n.baseBackoff = time.Hour
	n.maxBackoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := n.retryOnRateLimit(ctx, rateLimited)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"#36a64f", 0x36a64f},
		{"daa038", 0xdaa038},
		{"#FFFFFF", 0xffffff},
		{"", 0},
		{"#zz", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseHexColor(tt.in), tt.in)
	}
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, isRateLimited(rateLimited()))
	assert.False(t, isRateLimited(&discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}))
	assert.False(t, isRateLimited(&discordgo.RESTError{}))
	assert.False(t, isRateLimited(errors.New("network down")))
}

func TestSend_BackoffCapped(t *testing.T) {
	ms := &mockSession{errs: []error{rateLimited(), rateLimited(), rateLimited()}}
	n := fastNotifier(t, ms)
	n.baseBackoff = 20 * time.Millisecond
	n.maxBackoff = 20 * time.Millisecond

	start := time.Now()
	require.NoError(t, n.Send(context.Background(), digest()))
	assert.Len(t, ms.sent, 4)
	assert.Less(t, time.Since(start), time.Second)
}
