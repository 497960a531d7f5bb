package view

import (
	"tarediiran-industries.com/trainbot/internal/conversation"
	"tarediiran-industries.com/trainbot/internal/trainsync"
)

const (
	HomeTitle          = "Welcome to Train Enquiry"
	HomeSubtitle       = "Your smart assistant for all train-related information"
	ChatHeader         = "TrainBot Assistant"
	ChatSubheader      = "Always here to help"
	TypingText         = "TrainBot is typing..."
	InputPlaceholder   = "Type your message..."
	FoundTrainsIntro   = "Great news! We found matching trains for you:"
	TrainsTitle        = "Train Information"
	TrainsLoadingText  = "Loading trains data..."
	TrainsSeedPrompt   = "No trains are loaded yet. Seed the dataset to get started."
	RefreshLabel       = "Refresh Train Data"
	RefreshSeedingText = "Seeding Data..."
)

var homeFeatures = []FeatureVM{
	{Title: "Chat Assistance", Description: "Get real-time support and answers to all your train-related queries"},
	{Title: "Live Status", Description: "Track trains in real-time and get instant updates on schedules"},
	{Title: "Route Planning", Description: "Find the best routes and plan your journey efficiently"},
}

// Compose builds the page for tab. Only the selected view is built.
func Compose(tab Tab, chat conversation.Snapshot, trains trainsync.State) PageVM {
	page := PageVM{
		Tab: tab,
		Nav: BuildNav(tab),
	}

	switch tab {
	case TabChat:
		vm := BuildChatVM(chat)
		page.Chat = &vm
	case TabTrain:
		vm := BuildTrainsVM(trains)
		page.Trains = &vm
	default:
		page.Tab = TabHome
		vm := BuildHomeVM(trains)
		page.Home = &vm
	}
	return page
}

func BuildNav(active Tab) []NavItemVM {
	out := make([]NavItemVM, 0, len(Tabs))
	for _, tab := range Tabs {
		out = append(out, NavItemVM{Tab: tab, Label: tab.Label(), Active: tab == active})
	}
	return out
}

// BuildHomeVM offers seeding as the secondary action while the dataset is
// empty and the train list otherwise.
func BuildHomeVM(trains trainsync.State) HomeVM {
	secondary := ActionVM{Kind: ActionOpenTrains, Label: "Train List"}
	if trains.NeedsSeed() {
		secondary = ActionVM{Kind: ActionSeed, Label: "Seed Data"}
	}

	return HomeVM{
		Title:           HomeTitle,
		Subtitle:        HomeSubtitle,
		PrimaryAction:   ActionVM{Kind: ActionOpenChat, Label: "Start Chatting"},
		SecondaryAction: secondary,
		Features:        homeFeatures,
	}
}

func BuildChatVM(chat conversation.Snapshot) ChatVM {
	messages := make([]MessageVM, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		messages = append(messages, buildMessageVM(m))
	}

	return ChatVM{
		Header:      ChatHeader,
		Subheader:   ChatSubheader,
		Messages:    messages,
		Typing:      chat.IsLoading,
		TypingText:  TypingText,
		InputText:   chat.InputText,
		Placeholder: InputPlaceholder,
	}
}

func buildMessageVM(m conversation.Message) MessageVM {
	vm := MessageVM{
		Text:      m.Text,
		IsUser:    m.IsUser,
		Timestamp: m.Timestamp,
		ShowText:  true,
	}
	if m.IsUser || !m.HasTrains() {
		return vm
	}

	vm.ShowText = false
	vm.TrainsIntro = FoundTrainsIntro
	vm.Trains = make([]ChatTrainRowVM, 0, len(m.FoundTrains))
	for _, t := range m.FoundTrains {
		vm.Trains = append(vm.Trains, ChatTrainRowVM{
			Name:   t.TrainName,
			Number: t.TrainNumber,
			From:   t.SourceStation,
			To:     t.DestinationStation,
		})
	}
	return vm
}

func BuildTrainsVM(state trainsync.State) TrainsVM {
	vm := TrainsVM{
		Title:           TrainsTitle,
		Loading:         state.Loading,
		LoadingText:     TrainsLoadingText,
		RefreshLabel:    RefreshLabel,
		RefreshDisabled: state.Seeding,
	}
	if state.Seeding {
		vm.RefreshLabel = RefreshSeedingText
	}

	switch {
	case state.Loading:
		return vm
	case state.Err != "":
		vm.Error = state.Err
		return vm
	case state.NeedsSeed() && len(state.Trains) == 0:
		vm.NeedsSeed = true
		vm.SeedPrompt = TrainsSeedPrompt
		return vm
	}

	vm.Cards = make([]TrainCardVM, 0, len(state.Trains))
	for _, t := range state.Trains {
		vm.Cards = append(vm.Cards, TrainCardVM{
			Name:   t.TrainName,
			Number: t.TrainNo,
			Starts: t.Starts,
			Ends:   t.Ends,
		})
	}
	return vm
}
