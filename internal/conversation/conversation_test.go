package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"tarediiran-industries.com/trainbot/internal/common"
	"tarediiran-industries.com/trainbot/internal/gateway"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

type fakeGateway struct {
	mu      sync.Mutex
	texts   []string
	reply   func(text string) (gateway.ChatReply, error)
	release chan struct{}
}

func (f *fakeGateway) SendMessage(ctx context.Context, text string) (gateway.ChatReply, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	release := f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return gateway.ChatReply{}, ctx.Err()
		}
	}
	if f.reply == nil {
		return gateway.ChatReply{Message: "echo " + text}, nil
	}
	return f.reply(text)
}

func (f *fakeGateway) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

var fixedNow = time.Date(2024, 3, 9, 14, 7, 0, 0, time.UTC)

func newConversation(t *testing.T, gw *fakeGateway) *Conversation {
	t.Helper()
	c := New(context.Background(), gw, Options{
		Logger: zaptest.NewLogger(t),
		Clock:  func() time.Time { return fixedNow },
	})
	t.Cleanup(c.Close)
	return c
}

func idle(c *Conversation) func() bool {
	return func() bool { return !c.Snapshot().IsLoading }
}

func TestNew_Welcome(t *testing.T) {
	c := newConversation(t, &fakeGateway{})

	snap := c.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, WelcomeText, snap.Messages[0].Text)
	assert.Equal(t, WelcomeTimestamp, snap.Messages[0].Timestamp)
	assert.False(t, snap.Messages[0].IsUser)
	assert.False(t, snap.IsLoading)
}

func TestSend_BlankIsNoop(t *testing.T) {
	gw := &fakeGateway{}
	c := newConversation(t, gw)

	for _, text := range []string{"", "   ", "\n\t "} {
		assert.False(t, c.Send(text))
	}

	assert.Len(t, c.Snapshot().Messages, 1)
	assert.Empty(t, gw.sent())
}

func TestSend_AppendsUserMessageImmediately(t *testing.T) {
	gw := &fakeGateway{release: make(chan struct{})}
	c := newConversation(t, gw)

	require.True(t, c.Send("trains from delhi"))

	snap := c.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.True(t, snap.IsLoading)
	assert.Equal(t, "trains from delhi", snap.Messages[1].Text)
	assert.True(t, snap.Messages[1].IsUser)
	assert.Equal(t, "02:07 PM", snap.Messages[1].Timestamp)

	close(gw.release)
	require.Eventually(t, idle(c), waitFor, tick)
	assert.Len(t, c.Snapshot().Messages, 3)
}

func TestSend_ReplyWithTrains(t *testing.T) {
	gw := &fakeGateway{reply: func(string) (gateway.ChatReply, error) {
		return gateway.ChatReply{
			Message: "Found 2 trains",
			Trains: []gateway.ChatTrain{
				{TrainName: "Express", TrainNumber: "101", SourceStation: "A", DestinationStation: "B"},
				{TrainName: "Mail", TrainNumber: "202", SourceStation: "C", DestinationStation: "D"},
			},
		}, nil
	}}
	c := newConversation(t, gw)
	c.SetInput("a to b")

	require.True(t, c.Send("a to b"))
	require.Eventually(t, idle(c), waitFor, tick)

	snap := c.Snapshot()
	require.Len(t, snap.Messages, 3)
	reply := snap.Messages[2]
	assert.False(t, reply.IsUser)
	assert.Equal(t, "Found 2 trains\n\n1. Express (101)\n   From: A To: B\n\n2. Mail (202)\n   From: C To: D", reply.Text)
	assert.Len(t, reply.FoundTrains, 2)
	assert.True(t, reply.HasTrains())
	assert.Empty(t, snap.InputText)
}

func TestSend_ReplyWithoutTrains(t *testing.T) {
	gw := &fakeGateway{reply: func(string) (gateway.ChatReply, error) {
		return gateway.ChatReply{Message: "No matching trains found"}, nil
	}}
	c := newConversation(t, gw)

	require.True(t, c.Send("hello"))
	require.Eventually(t, idle(c), waitFor, tick)

	reply := c.Snapshot().Messages[2]
	assert.Equal(t, "No matching trains found", reply.Text)
	assert.Nil(t, reply.FoundTrains)
	assert.False(t, reply.HasTrains())
}

func TestSend_FailureAppendsFallback(t *testing.T) {
	gw := &fakeGateway{reply: func(string) (gateway.ChatReply, error) {
		return gateway.ChatReply{}, &gateway.NetworkError{Endpoint: gateway.EndpointChat, Err: errors.New("refused")}
	}}
	c := newConversation(t, gw)
	c.SetInput("draft")

	require.True(t, c.Send("x"))
	require.Eventually(t, idle(c), waitFor, tick)

	snap := c.Snapshot()
	require.Len(t, snap.Messages, 3)
	assert.Equal(t, "x", snap.Messages[1].Text)
	assert.Equal(t, FallbackMessage, snap.Messages[2].Text)
	assert.False(t, snap.Messages[2].IsUser)
	assert.Empty(t, snap.InputText)
}

func TestSend_RepliesInRequestOrder(t *testing.T) {
	gw := &fakeGateway{release: make(chan struct{})}
	c := newConversation(t, gw)

	require.True(t, c.Send("first"))
	require.True(t, c.Send("second"))
	require.True(t, c.Send("third"))

	snap := c.Snapshot()
	assert.True(t, snap.IsLoading)
	assert.Len(t, snap.Messages, 4, "user messages are appended before any reply")

	close(gw.release)
	require.Eventually(t, idle(c), waitFor, tick)

	var texts []string
	for _, m := range c.Snapshot().Messages[1:] {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"first", "second", "third", "echo first", "echo second", "echo third"}, texts)
	assert.Equal(t, []string{"first", "second", "third"}, gw.sent())
}

func TestSetInput(t *testing.T) {
	notifier := common.NewNotifier()
	updates := notifier.Subscribe()
	defer notifier.Unsubscribe(updates)

	c := New(context.Background(), &fakeGateway{}, Options{Notifier: notifier})
	defer c.Close()

	c.SetInput("trains to mumbai")
	assert.Equal(t, "trains to mumbai", c.Snapshot().InputText)

	select {
	case <-updates:
	default:
		t.Fatal("SetInput did not broadcast")
	}
}

func TestClose_DropsOutstandingReplies(t *testing.T) {
	gw := &fakeGateway{release: make(chan struct{})}
	c := New(context.Background(), gw, Options{Logger: zaptest.NewLogger(t)})

	require.True(t, c.Send("hello"))
	c.Close()

	assert.Len(t, c.Snapshot().Messages, 2)
	assert.False(t, c.Send("after close"))
	c.Close()
}

func TestFormatReply(t *testing.T) {
	tests := []struct {
		name  string
		reply gateway.ChatReply
		want  string
	}{
		{
			name:  "message only",
			reply: gateway.ChatReply{Message: "No matching trains found"},
			want:  "No matching trains found",
		},
		{
			name: "single train",
			reply: gateway.ChatReply{
				Message: "Found 1 trains",
				Trains:  []gateway.ChatTrain{{TrainName: "Express", TrainNumber: "101", SourceStation: "A", DestinationStation: "B"}},
			},
			want: "Found 1 trains\n\n1. Express (101)\n   From: A To: B",
		},
		{
			name:  "trailing whitespace trimmed",
			reply: gateway.ChatReply{Message: "Hi  \n"},
			want:  "Hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatReply(tt.reply))
		})
	}
}
