package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tarediiran-industries.com/trainbot/internal/db"
	"tarediiran-industries.com/trainbot/internal/gateway"
	"tarediiran-industries.com/trainbot/internal/trainstore"
)

const sampleCSV = `Train no.,Train name,Starts,Ends
12301,Howrah Rajdhani Express,Howrah Jn,New Delhi
12951,Mumbai Rajdhani Express,Mumbai Central,New Delhi
12627,Karnataka Express,Ksr Bengaluru,New Delhi
16526,Island Express,Ksr Bengaluru,Kanniyakumari
`

type testAPI struct {
	server *TrainbotAPIServer
	store  *trainstore.Store
	csv    string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	database, err := db.NewDatabaseConnection(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store := trainstore.New(database, zaptest.NewLogger(t))
	require.NoError(t, store.InitSchema(context.Background()))

	csv := filepath.Join(t.TempDir(), "All_Indian_Trains.csv")
	require.NoError(t, os.WriteFile(csv, []byte(sampleCSV), 0o644))

	server, err := NewTrainbotAPIServer(ServerConfig{
		ListenAddress: ":0",
		Store:         store,
		SeedCSV:       csv,
		CORSOrigins:   []string{"http://localhost:5173"},
		Logger:        zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return &testAPI{server: server, store: store, csv: csv}
}

func (a *testAPI) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func (a *testAPI) seed(t *testing.T) {
	t.Helper()
	_, err := a.store.SeedFromCSV(context.Background(), a.csv)
	require.NoError(t, err)
}

func TestNewTrainbotAPIServer_RequiresStore(t *testing.T) {
	_, err := NewTrainbotAPIServer(ServerConfig{})
	assert.Error(t, err)
}

func TestHealthcheck(t *testing.T) {
	a := newTestAPI(t)
	rec, body := a.do(t, http.MethodGet, "/api/healthcheck", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "ok"}, body)
}

func TestDBHealth(t *testing.T) {
	a := newTestAPI(t)
	rec, body := a.do(t, http.MethodGet, "/api/db/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["database_connected"])
	assert.Equal(t, "sqlite://:memory:", body["database_url"])
}

func TestTrainsData(t *testing.T) {
	a := newTestAPI(t)

	rec, body := a.do(t, http.MethodGet, "/api/trains-data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, []any{}, body["data"])
	assert.EqualValues(t, 0, body["count"])

	a.seed(t)
	rec, body = a.do(t, http.MethodGet, "/api/trains-data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 4, body["count"])
	first := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{
		"id":         float64(1),
		"train_no":   "12301",
		"train_name": "Howrah Rajdhani Express",
		"starts":     "Howrah Jn",
		"ends":       "New Delhi",
	}, first)
}

func TestSeedData(t *testing.T) {
	a := newTestAPI(t)

	for _, path := range []string{"/api/seed-data", "/api/seed-data/"} {
		t.Run(path, func(t *testing.T) {
			rec, body := a.do(t, http.MethodPost, path, "{}")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "success", body["status"])
			assert.Equal(t, "Successfully seeded 4 trains", body["message"])
			assert.EqualValues(t, 4, body["count"])
		})
	}

	trains, err := a.store.ListTrains(context.Background())
	require.NoError(t, err)
	assert.Len(t, trains, 4)
}

func TestSeedData_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		status  int
		code    string
		message string
	}{
		{name: "missing file", status: http.StatusNotFound, code: CodeFileNotFound, message: "CSV file not found"},
		{name: "empty file", content: ptr(""), status: http.StatusBadRequest, code: CodeEmptyCSV, message: "CSV file is empty"},
		{name: "bad columns", content: ptr("a,b\n1,2\n"), status: http.StatusInternalServerError, code: CodeInternalError, message: "An unexpected error occurred: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(t)
			require.NoError(t, os.Remove(a.csv))
			if tt.content != nil {
				require.NoError(t, os.WriteFile(a.csv, []byte(*tt.content), 0o644))
			}

			rec, body := a.do(t, http.MethodPost, "/api/seed-data/", "{}")
			assert.Equal(t, tt.status, rec.Code)
			detail := body["detail"].(map[string]any)
			assert.Equal(t, "error", detail["status"])
			assert.Equal(t, tt.code, detail["code"])
			assert.True(t, strings.HasPrefix(detail["message"].(string), tt.message), detail["message"])
		})
	}
}

func TestChatResponse(t *testing.T) {
	a := newTestAPI(t)
	a.seed(t)

	tests := []struct {
		text    string
		message string
		numbers []string
	}{
		{"trains from bengaluru to delhi", "Found trains from bengaluru to delhi", []string{"12627"}},
		{"from howrah", "Found trains from howrah", []string{"12301"}},
		{"anything to kanniyakumari", "Found trains to kanniyakumari", []string{"16526"}},
		{"from bengaluru to patna", "Found trains matching: bengaluru, patna", []string{"12627", "16526"}},
		{"Rajdhani please", "Found trains matching: rajdhani, please", []string{"12301", "12951"}},
		{"12951", "Found trains matching: 12951", []string{"12951"}},
		{"hi", MessageNoMatch, []string{}},
		{"", MessageNoMatch, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			payload, err := json.Marshal(map[string]string{"input_text": tt.text})
			require.NoError(t, err)

			rec, body := a.do(t, http.MethodPost, "/api/chatResponse", string(payload))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.message, body["message"])

			trains := body["trains"].([]any)
			numbers := make([]string, len(trains))
			for i, train := range trains {
				numbers[i] = train.(map[string]any)["train_number"].(string)
			}
			assert.Equal(t, tt.numbers, numbers)
		})
	}
}

func TestChatResponse_TrainShape(t *testing.T) {
	a := newTestAPI(t)
	a.seed(t)

	_, body := a.do(t, http.MethodPost, "/api/chatResponse", `{"input_text":"island"}`)
	assert.Equal(t, []any{map[string]any{
		"id":                  float64(4),
		"train_number":        "16526",
		"train_name":          "Island Express",
		"source_station":      "Ksr Bengaluru",
		"destination_station": "Kanniyakumari",
	}}, body["trains"])
}

func TestChatResponse_InvalidBody(t *testing.T) {
	a := newTestAPI(t)
	for _, body := range []string{"", "{}", "not json"} {
		rec, decoded := a.do(t, http.MethodPost, "/api/chatResponse", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "input_text is required", decoded["detail"])
	}
}

type brokenStore struct {
	listErr error
}

func (s brokenStore) Ping(context.Context) error { return errors.New("connection refused") }
func (s brokenStore) DSN() string                { return "postgres://u:***@db/trains" }
func (s brokenStore) ListTrains(context.Context) ([]trainstore.Train, error) {
	return nil, s.listErr
}
func (s brokenStore) SearchRoute(context.Context, string, string) ([]trainstore.Train, error) {
	return nil, fmt.Errorf("%w: boom", trainstore.ErrDatabase)
}
func (s brokenStore) SearchWords(context.Context, []string) ([]trainstore.Train, error) {
	return nil, fmt.Errorf("%w: boom", trainstore.ErrDatabase)
}
func (s brokenStore) SeedFromCSV(context.Context, string) (trainstore.SeedResult, error) {
	return trainstore.SeedResult{}, fmt.Errorf("%w: disk full", trainstore.ErrDatabase)
}

func newBrokenAPI(t *testing.T, listErr error) *testAPI {
	server, err := NewTrainbotAPIServer(ServerConfig{Store: brokenStore{listErr: listErr}, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	return &testAPI{server: server}
}

func TestStoreFailures(t *testing.T) {
	t.Run("db health", func(t *testing.T) {
		rec, body := newBrokenAPI(t, nil).do(t, http.MethodGet, "/api/db/health", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Database connection failed: connection refused", body["detail"])
	})

	t.Run("trains data", func(t *testing.T) {
		rec, body := newBrokenAPI(t, fmt.Errorf("%w: timeout", trainstore.ErrDatabase)).do(t, http.MethodGet, "/api/trains-data", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, CodeDatabaseError, body["detail"].(map[string]any)["code"])
	})

	t.Run("missing table", func(t *testing.T) {
		rec, body := newBrokenAPI(t, fmt.Errorf("%w: no such table", trainstore.ErrTableNotFound)).do(t, http.MethodGet, "/api/trains-data", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, CodeTableNotFound, body["detail"].(map[string]any)["code"])
	})

	t.Run("seed", func(t *testing.T) {
		rec, body := newBrokenAPI(t, nil).do(t, http.MethodPost, "/api/seed-data", "{}")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		detail := body["detail"].(map[string]any)
		assert.Equal(t, CodeDatabaseError, detail["code"])
		assert.Equal(t, "Database error occurred", detail["message"])
	})

	t.Run("chat", func(t *testing.T) {
		rec, body := newBrokenAPI(t, nil).do(t, http.MethodPost, "/api/chatResponse", `{"input_text":"from howrah"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "database error: boom", body["detail"])
	})
}

func TestCORS(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chatResponse", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/healthcheck", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcard(t *testing.T) {
	handler := CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://anywhere.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

// The gateway client and the API agree on the wire contract.
func TestGatewayRoundTrip(t *testing.T) {
	a := newTestAPI(t)
	ts := httptest.NewServer(a.server.Handler())
	defer ts.Close()

	client, err := gateway.New(gateway.Config{BaseURL: ts.URL + "/api", Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, client.Health(ctx))

	list, err := client.ListTrains(ctx)
	require.NoError(t, err)
	assert.Empty(t, list.Data)

	require.NoError(t, client.SeedTrains(ctx))

	list, err = client.ListTrains(ctx)
	require.NoError(t, err)
	require.Len(t, list.Data, 4)
	assert.Equal(t, gateway.ListedTrain{ID: 2, TrainNo: "12951", TrainName: "Mumbai Rajdhani Express", Starts: "Mumbai Central", Ends: "New Delhi"}, list.Data[1])

	reply, err := client.SendMessage(ctx, "from mumbai")
	require.NoError(t, err)
	assert.Equal(t, "Found trains from mumbai", reply.Message)
	require.Len(t, reply.Trains, 1)
	assert.Equal(t, "Mumbai Rajdhani Express", reply.Trains[0].TrainName)

	require.NoError(t, os.Remove(a.csv))
	err = client.SeedTrains(ctx)
	var seedErr *gateway.SeedError
	require.ErrorAs(t, err, &seedErr)
	assert.Equal(t, "CSV file not found", seedErr.Detail)
	assert.Equal(t, CodeFileNotFound, seedErr.Code)
}

func ptr(s string) *string { return &s }
