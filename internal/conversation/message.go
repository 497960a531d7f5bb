package conversation

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"tarediiran-industries.com/trainbot/internal/gateway"
)

const (
	WelcomeText      = "Welcome to TrainBot! How can I assist you with your journey today?"
	WelcomeTimestamp = "Just now"
	FallbackMessage  = "Sorry, I encountered an error while searching for trains. Please try again."
)

// Message is one entry of the chat log. Messages are never edited once
// appended.
type Message struct {
	Text        string
	IsUser      bool
	Timestamp   string
	SentAt      time.Time
	FoundTrains []gateway.ChatTrain
}

// HasTrains reports whether the message carries a found-trains table.
func (m Message) HasTrains() bool {
	return len(m.FoundTrains) > 0
}

func welcome(now time.Time) Message {
	return Message{
		Text:      WelcomeText,
		Timestamp: WelcomeTimestamp,
		SentAt:    now,
	}
}

// FormatReply renders a chat reply as the assistant's message text: the
// reply message, then one numbered block per train.
func FormatReply(reply gateway.ChatReply) string {
	var b strings.Builder
	b.WriteString(reply.Message)
	b.WriteString("\n\n")

	for i, train := range reply.Trains {
		fmt.Fprintf(&b, "%d. %s (%s)\n   From: %s To: %s\n\n",
			i+1, train.TrainName, train.TrainNumber, train.SourceStation, train.DestinationStation)
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}
