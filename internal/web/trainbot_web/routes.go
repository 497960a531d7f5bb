package trainbot_web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"

	"tarediiran-industries.com/trainbot/internal/trainsync"
	"tarediiran-industries.com/trainbot/internal/view"
)

func (server *TrainbotWebServer) handleIndex(writer http.ResponseWriter, request *http.Request) {
	page := server.composePage(server.activeTab(request))

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := server.renderer.Render(writer, "layout.html", page); err != nil {
		server.logger.Error("render failed", zap.Error(err))
		http.Error(writer, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (server *TrainbotWebServer) handleSelectTab(writer http.ResponseWriter, request *http.Request) {
	tab, ok := ParseTabParam(chi.URLParam(request, "tab"))
	if !ok {
		http.NotFound(writer, request)
		return
	}

	server.saveTab(writer, request, tab)
	http.Redirect(writer, request, "/", http.StatusFound)
}

func (server *TrainbotWebServer) handleChatSend(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	form := ParseChatForm(request.PostForm)
	if !server.chat.Send(form.InputText) {
		server.logger.Debug("ignored blank chat message")
	}
	server.saveTab(writer, request, view.TabChat)
	http.Redirect(writer, request, "/", http.StatusSeeOther)
}

// handleChatDraft stores the input draft. Signals must be read before an
// SSE writer would consume the body.
func (server *TrainbotWebServer) handleChatDraft(writer http.ResponseWriter, request *http.Request) {
	var signals DraftSignals
	if err := datastar.ReadSignals(request, &signals); err != nil {
		http.Error(writer, "failed to read signals: "+err.Error(), http.StatusBadRequest)
		return
	}

	server.chat.SetInput(signals.Input)
	writer.WriteHeader(http.StatusNoContent)
}

func (server *TrainbotWebServer) handleTrainsSeed(writer http.ResponseWriter, request *http.Request) {
	if err := server.trains.Seed(); err != nil {
		if !errors.Is(err, trainsync.ErrSeedInProgress) {
			server.logger.Warn("seed rejected", zap.Error(err))
		}
	}
	http.Redirect(writer, request, "/", http.StatusSeeOther)
}

func (server *TrainbotWebServer) handleTrainsRefresh(writer http.ResponseWriter, request *http.Request) {
	server.trains.Refresh()
	http.Redirect(writer, request, "/", http.StatusSeeOther)
}

// handleUpdates is the long-lived SSE stream. The page is already rendered
// by handleIndex, so nothing is sent until the first state change.
func (server *TrainbotWebServer) handleUpdates(writer http.ResponseWriter, request *http.Request) {
	tab := server.activeTab(request)
	sse := datastar.NewSSE(writer, request)

	updates := server.updates.Subscribe()
	defer server.updates.Unsubscribe(updates)

	ctx := request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			fragment, err := server.renderer.RenderString("app", server.composePage(tab))
			if err != nil {
				_ = sse.ConsoleError(err)
				continue
			}
			if err := sse.PatchElements(fragment); err != nil {
				server.logger.Debug("update stream closed", zap.Error(err))
				return
			}
		}
	}
}

func (server *TrainbotWebServer) composePage(tab view.Tab) view.PageVM {
	return view.Compose(tab, server.chat.Snapshot(), server.trains.Snapshot())
}

func (server *TrainbotWebServer) activeTab(request *http.Request) view.Tab {
	session, err := server.sessions.Get(request, sessionName)
	if err != nil {
		return view.TabHome
	}
	name, _ := session.Values[sessionTab].(string)
	return view.ParseTab(name)
}

func (server *TrainbotWebServer) saveTab(writer http.ResponseWriter, request *http.Request, tab view.Tab) {
	// Get returns a fresh session alongside a decode error, which is fine to overwrite.
	session, _ := server.sessions.Get(request, sessionName)
	session.Values[sessionTab] = string(tab)
	if err := session.Save(request, writer); err != nil {
		server.logger.Warn("failed to save session", zap.Error(err))
	}
}
