package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tarediiran-industries.com/trainbot/internal/view"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	activeTabStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("12"))
	tabStyle       = lipgloss.NewStyle().Faint(true)
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	botStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	faintStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cardStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderPage(m Model, page view.PageVM) string {
	var b strings.Builder
	b.WriteString(renderNav(page.Nav))
	b.WriteString("\n\n")

	switch {
	case page.Chat != nil:
		b.WriteString(renderChat(m, *page.Chat))
	case page.Trains != nil:
		b.WriteString(renderTrains(*page.Trains))
	case page.Home != nil:
		b.WriteString(renderHome(*page.Home))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(helpLine(page)))
	return b.String()
}

func renderNav(items []view.NavItemVM) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Active {
			parts = append(parts, activeTabStyle.Render(item.Label))
			continue
		}
		parts = append(parts, tabStyle.Render(item.Label))
	}
	return strings.Join(parts, "   ")
}

func renderHome(vm view.HomeVM) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(vm.Title))
	b.WriteString("\n")
	b.WriteString(vm.Subtitle)
	b.WriteString("\n\n")

	secondaryKey := "t"
	if vm.SecondaryAction.Kind == view.ActionSeed {
		secondaryKey = "s"
	}
	fmt.Fprintf(&b, "[c] %s   [%s] %s\n\n", vm.PrimaryAction.Label, secondaryKey, vm.SecondaryAction.Label)

	for _, feature := range vm.Features {
		b.WriteString(cardStyle.Render(lipgloss.NewStyle().Bold(true).Render(feature.Title) + "\n" + feature.Description))
		b.WriteString("\n")
	}
	return b.String()
}

func renderChat(m Model, vm view.ChatVM) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(vm.Header))
	b.WriteString(" ")
	b.WriteString(faintStyle.Render(vm.Subheader))
	b.WriteString("\n\n")
	b.WriteString(m.history.View())
	b.WriteString("\n")
	if vm.Typing {
		b.WriteString(m.spin.View())
		b.WriteString(vm.TypingText)
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}

func renderMessages(vm view.ChatVM, width int) string {
	wrap := lipgloss.NewStyle().Width(max(width-2, 20))

	var b strings.Builder
	for _, msg := range vm.Messages {
		speaker := botStyle.Render("TrainBot")
		if msg.IsUser {
			speaker = userStyle.Render("You")
		}
		fmt.Fprintf(&b, "%s %s\n", speaker, faintStyle.Render(msg.Timestamp))

		if msg.TrainsIntro != "" {
			b.WriteString(wrap.Render(msg.TrainsIntro))
			b.WriteString("\n")
		}
		if msg.ShowText {
			b.WriteString(wrap.Render(msg.Text))
			b.WriteString("\n")
		}
		for _, row := range msg.Trains {
			fmt.Fprintf(&b, "  %s (%s)  %s -> %s\n", row.Name, row.Number, row.From, row.To)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderTrains(vm view.TrainsVM) string {
	if vm.Loading {
		return vm.LoadingText
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(vm.Title))
	label := vm.RefreshLabel
	if vm.RefreshDisabled {
		label = faintStyle.Render(label)
	}
	fmt.Fprintf(&b, "   [r] %s   [f] Reload\n\n", label)

	switch {
	case vm.Error != "":
		b.WriteString(errorStyle.Render(vm.Error))
	case vm.NeedsSeed:
		b.WriteString(vm.SeedPrompt)
	default:
		for _, card := range vm.Cards {
			b.WriteString(cardStyle.Render(fmt.Sprintf("%s #%s\nFrom: %s  To: %s", card.Name, card.Number, card.Starts, card.Ends)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

func helpLine(page view.PageVM) string {
	switch page.Tab {
	case view.TabChat:
		return "enter send • pgup/pgdn scroll • tab switch view • ctrl+c quit"
	case view.TabTrain:
		return "r seed • f reload • tab switch view • ctrl+c quit"
	default:
		return "c chat • tab switch view • ctrl+c quit"
	}
}
