package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tarediiran-industries.com/trainbot/internal/gateway"
	"tarediiran-industries.com/trainbot/internal/trainstore"
)

const (
	MessageNoMatch  = "No matching trains found"
	pingTimeout     = 5 * time.Second
	maxRequestBytes = 1 << 20
)

type trainsDataResponse struct {
	Status string                `json:"status"`
	Data   []gateway.ListedTrain `json:"data"`
	Count  int                   `json:"count"`
}

type seedResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Count    int64  `json:"count"`
	Inserted int64  `json:"inserted"`
}

type chatResponse struct {
	Message string              `json:"message"`
	Trains  []gateway.ChatTrain `json:"trains"`
}

type chatRequest struct {
	InputText *string `json:"input_text"`
}

func (server *TrainbotAPIServer) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (server *TrainbotAPIServer) handleDBHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := server.store.Ping(ctx); err != nil {
		server.logger.Error("database ping failed", zap.Error(err))
		ErrorText(w, http.StatusInternalServerError, "Database connection failed: "+err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"database_connected": true,
		"database_url":       server.store.DSN(),
	})
}

func (server *TrainbotAPIServer) handleTrainsData(w http.ResponseWriter, r *http.Request) {
	trains, err := server.store.ListTrains(r.Context())
	if err != nil {
		server.logger.Error("failed to list trains", zap.Error(err))
		if errors.Is(err, trainstore.ErrTableNotFound) {
			Error(w, http.StatusNotFound, "Trains table not found", CodeTableNotFound)
			return
		}
		Error(w, http.StatusInternalServerError, "Database error occurred", CodeDatabaseError)
		return
	}

	data := make([]gateway.ListedTrain, len(trains))
	for i, train := range trains {
		data[i] = gateway.ListedTrain{
			ID:        train.ID,
			TrainNo:   train.TrainNo,
			TrainName: train.TrainName,
			Starts:    train.Starts,
			Ends:      train.Ends,
		}
	}

	JSON(w, http.StatusOK, trainsDataResponse{Status: "success", Data: data, Count: len(data)})
}

func (server *TrainbotAPIServer) handleSeedData(w http.ResponseWriter, r *http.Request) {
	result, err := server.store.SeedFromCSV(r.Context(), server.seedCSV)
	if err != nil {
		server.logger.Error("seed failed", zap.String("csv", server.seedCSV), zap.Error(err))
		switch {
		case errors.Is(err, trainstore.ErrEmptyCSV):
			Error(w, http.StatusBadRequest, "CSV file is empty", CodeEmptyCSV)
		case errors.Is(err, trainstore.ErrCSVNotFound):
			Error(w, http.StatusNotFound, "CSV file not found", CodeFileNotFound)
		case errors.Is(err, trainstore.ErrDatabase), errors.Is(err, trainstore.ErrTableNotFound):
			Error(w, http.StatusInternalServerError, "Database error occurred", CodeDatabaseError)
		default:
			Error(w, http.StatusInternalServerError, "An unexpected error occurred: "+err.Error(), CodeInternalError)
		}
		return
	}

	JSON(w, http.StatusOK, seedResponse{
		Status:   "success",
		Message:  fmt.Sprintf("Successfully seeded %d trains", result.Rows),
		Count:    result.Rows,
		Inserted: result.Inserted,
	})
}

func (server *TrainbotAPIServer) handleChatResponse(w http.ResponseWriter, r *http.Request) {
	var request chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&request); err != nil || request.InputText == nil {
		ErrorText(w, http.StatusUnprocessableEntity, "input_text is required")
		return
	}

	reply, err := server.answer(r.Context(), *request.InputText)
	if err != nil {
		server.logger.Error("chat query failed", zap.Error(err))
		ErrorText(w, http.StatusInternalServerError, err.Error())
		return
	}
	JSON(w, http.StatusOK, reply)
}

// answer tries a from/to route search first, then falls back to matching
// any long word against name, stations and number.
func (server *TrainbotAPIServer) answer(ctx context.Context, text string) (chatResponse, error) {
	from, to := ParseStationQuery(text)
	if from != "" || to != "" {
		trains, err := server.store.SearchRoute(ctx, from, to)
		if err != nil {
			return chatResponse{}, err
		}
		if len(trains) > 0 {
			return chatResponse{Message: routeMessage(from, to), Trains: chatTrains(trains)}, nil
		}
	}

	words := FindMatchingWords(text)
	if len(words) > 0 {
		trains, err := server.store.SearchWords(ctx, words)
		if err != nil {
			return chatResponse{}, err
		}
		if len(trains) > 0 {
			return chatResponse{
				Message: "Found trains matching: " + strings.Join(words, ", "),
				Trains:  chatTrains(trains),
			}, nil
		}
	}

	return chatResponse{Message: MessageNoMatch, Trains: []gateway.ChatTrain{}}, nil
}

func routeMessage(from, to string) string {
	switch {
	case from != "" && to != "":
		return fmt.Sprintf("Found trains from %s to %s", from, to)
	case from != "":
		return "Found trains from " + from
	default:
		return "Found trains to " + to
	}
}

func chatTrains(trains []trainstore.Train) []gateway.ChatTrain {
	out := make([]gateway.ChatTrain, len(trains))
	for i, train := range trains {
		out[i] = gateway.ChatTrain{
			ID:                 train.ID,
			TrainName:          train.TrainName,
			TrainNumber:        train.TrainNo,
			SourceStation:      train.Starts,
			DestinationStation: train.Ends,
		}
	}
	return out
}
