package view

// PageVM is the composed page. Exactly one of Home, Chat and Trains is set,
// matching Tab.
type PageVM struct {
	Tab    Tab
	Nav    []NavItemVM
	Home   *HomeVM
	Chat   *ChatVM
	Trains *TrainsVM
}

type NavItemVM struct {
	Tab    Tab
	Label  string
	Active bool
}

type ActionKind string

const (
	ActionOpenChat   ActionKind = "open-chat"
	ActionOpenTrains ActionKind = "open-trains"
	ActionSeed       ActionKind = "seed"
)

type ActionVM struct {
	Kind  ActionKind
	Label string
}

type HomeVM struct {
	Title           string
	Subtitle        string
	PrimaryAction   ActionVM
	SecondaryAction ActionVM
	Features        []FeatureVM
}

type FeatureVM struct {
	Title       string
	Description string
}

type ChatVM struct {
	Header      string
	Subheader   string
	Messages    []MessageVM
	Typing      bool
	TypingText  string
	InputText   string
	Placeholder string
}

type MessageVM struct {
	Text      string
	IsUser    bool
	Timestamp string
	// ShowText is false for assistant replies that render a trains table
	// in place of the prose.
	ShowText    bool
	TrainsIntro string
	Trains      []ChatTrainRowVM
}

type ChatTrainRowVM struct {
	Name   string
	Number string
	From   string
	To     string
}

type TrainsVM struct {
	Title           string
	Loading         bool
	LoadingText     string
	Error           string
	NeedsSeed       bool
	SeedPrompt      string
	RefreshLabel    string
	RefreshDisabled bool
	Cards           []TrainCardVM
}

type TrainCardVM struct {
	Name   string
	Number string
	Starts string
	Ends   string
}
