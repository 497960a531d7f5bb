package trainbot_web

import (
	"net/url"
	"strings"

	"tarediiran-industries.com/trainbot/internal/view"
)

type ChatForm struct {
	InputText string // sent as typed; blank input is dropped by the conversation
}

func ParseChatForm(values url.Values) ChatForm {
	return ChatForm{InputText: values.Get("input_text")}
}

// DraftSignals is the datastar signal payload posted while typing.
type DraftSignals struct {
	Input string `json:"input"`
}

// ParseTabParam returns the tab named by a route parameter and whether the
// name was recognised.
func ParseTabParam(param string) (view.Tab, bool) {
	name := strings.ToLower(strings.TrimSpace(param))
	if !view.Valid(name) {
		return view.TabHome, false
	}
	return view.Tab(name), true
}
