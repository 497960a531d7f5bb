package gateway

import (
	"encoding/json"
	"strings"
)

// ChatTrain is the train shape carried by chat replies.
type ChatTrain struct {
	ID                 int64  `json:"id,omitempty"`
	TrainName          string `json:"train_name"`
	TrainNumber        string `json:"train_number"`
	SourceStation      string `json:"source_station"`
	DestinationStation string `json:"destination_station"`
}

// ListedTrain is the train shape served by the train list endpoint. Field
// names differ from ChatTrain on the wire; the two are kept apart on purpose.
type ListedTrain struct {
	ID        int64  `json:"id"`
	TrainNo   string `json:"train_no"`
	TrainName string `json:"train_name"`
	Starts    string `json:"starts"`
	Ends      string `json:"ends"`
}

type ChatRequest struct {
	InputText string `json:"input_text"`
}

type ChatReply struct {
	Message string      `json:"message"`
	Trains  []ChatTrain `json:"trains,omitempty"`
}

type TrainList struct {
	Status string        `json:"status,omitempty"`
	Data   []ListedTrain `json:"data"`
	Count  int           `json:"count,omitempty"`
}

// ErrorDetail is the structured error payload, {"detail": {...}}.
type ErrorDetail struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// parseErrorDetail extracts the detail from an error body. The backend sends
// either an object or a bare string; anything else yields a zero detail.
func parseErrorDetail(body []byte) ErrorDetail {
	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ErrorDetail{}
	}

	var detail ErrorDetail
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		return detail
	}

	var message string
	if err := json.Unmarshal(envelope.Detail, &message); err == nil {
		return ErrorDetail{Message: strings.TrimSpace(message)}
	}
	return ErrorDetail{}
}
