// Package conversation owns the chat log, the input draft and the loading
// flag of the chat view.
package conversation

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tarediiran-industries.com/trainbot/internal/common"
	"tarediiran-industries.com/trainbot/internal/gateway"
)

const DefaultClockFormat = "03:04 PM"

// Gateway is the slice of the backend client a conversation needs.
type Gateway interface {
	SendMessage(ctx context.Context, text string) (gateway.ChatReply, error)
}

type Options struct {
	Logger      *zap.Logger
	Notifier    common.Broadcaster
	Clock       func() time.Time
	ClockFormat string
}

// Snapshot is a copy of the conversation state.
type Snapshot struct {
	Messages  []Message
	InputText string
	IsLoading bool
}

// Conversation sends user messages one at a time in the order they were
// submitted. Each send appends the user message immediately and exactly one
// assistant message once the backend answers or fails.
type Conversation struct {
	send        Gateway
	logger      *zap.Logger
	notify      common.Broadcaster
	clock       func() time.Time
	clockFormat string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	messages []Message
	input    string
	pending  []string
	draining bool
	closed   bool
}

func New(ctx context.Context, gw Gateway, opts Options) *Conversation {
	ctx, cancel := context.WithCancel(ctx)

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	format := opts.ClockFormat
	if format == "" {
		format = DefaultClockFormat
	}

	return &Conversation{
		send:        gw,
		logger:      common.OrNop(opts.Logger).Named("conversation"),
		notify:      opts.Notifier,
		clock:       clock,
		clockFormat: format,
		ctx:         ctx,
		cancel:      cancel,
		messages:    []Message{welcome(clock())},
	}
}

func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Messages:  slices.Clone(c.messages),
		InputText: c.input,
		IsLoading: len(c.pending) > 0,
	}
}

// SetInput stores the input draft.
func (c *Conversation) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
	c.changed()
}

// Send submits text to the backend. Blank text is ignored and Send returns
// false without any network call.
func (c *Conversation) Send(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}

	now := c.clock()
	c.messages = append(c.messages, Message{
		Text:      text,
		IsUser:    true,
		Timestamp: now.Format(c.clockFormat),
		SentAt:    now,
	})
	c.pending = append(c.pending, text)
	if !c.draining {
		c.draining = true
		c.wg.Add(1)
		go c.drain()
	}
	c.mu.Unlock()

	c.changed()
	return true
}

// Close stops the send worker and waits for it. Replies still outstanding
// are dropped.
func (c *Conversation) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Conversation) drain() {
	defer c.wg.Done()

	for {
		c.mu.Lock()
		if len(c.pending) == 0 || c.closed {
			c.draining = false
			c.mu.Unlock()
			return
		}
		text := c.pending[0]
		c.mu.Unlock()

		reply := c.exchange(text)

		c.mu.Lock()
		if c.closed {
			c.draining = false
			c.mu.Unlock()
			return
		}
		c.messages = append(c.messages, reply)
		c.pending = c.pending[1:]
		c.input = ""
		c.mu.Unlock()
		c.changed()
	}
}

func (c *Conversation) exchange(text string) Message {
	benchmarker := common.NewBenchmarker(c.logger, "chat exchange")
	defer benchmarker.Close()

	reply, err := c.send.SendMessage(c.ctx, text)
	now := c.clock()
	if err != nil {
		c.logger.Error("chat request failed", zap.Error(err))
		return Message{
			Text:      FallbackMessage,
			Timestamp: now.Format(c.clockFormat),
			SentAt:    now,
		}
	}

	message := Message{
		Text:      FormatReply(reply),
		Timestamp: now.Format(c.clockFormat),
		SentAt:    now,
	}
	if len(reply.Trains) > 0 {
		message.FoundTrains = slices.Clone(reply.Trains)
	}
	return message
}

func (c *Conversation) changed() {
	if c.notify != nil {
		c.notify.Broadcast()
	}
}
