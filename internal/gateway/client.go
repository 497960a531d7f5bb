// Package gateway is the HTTP client for the TrainBot backend contract:
// chat, train list, seed and health. Every call is exactly one request.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tarediiran-industries.com/trainbot/internal/common"
)

const (
	EndpointChat   = "chatResponse"
	EndpointTrains = "trains-data"
	EndpointSeed   = "seed-data"
	EndpointHealth = "healthcheck"
)

// Config is injected at construction; there is no global base URL.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Metrics    *common.Metrics
	Logger     *zap.Logger
}

type Client struct {
	baseURL string
	client  *http.Client
	metrics *common.Metrics
	logger  *zap.Logger
}

type response struct {
	StatusCode int
	Body       []byte
}

func (r *response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("gateway: invalid base URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No timeout: a hung request stays pending until its context ends.
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL: base,
		client:  httpClient,
		metrics: cfg.Metrics,
		logger:  common.OrNop(cfg.Logger),
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendMessage posts the user's text to the chat endpoint.
func (c *Client) SendMessage(ctx context.Context, text string) (ChatReply, error) {
	resp, err := c.do(ctx, http.MethodPost, EndpointChat, ChatRequest{InputText: text})
	if err != nil {
		return ChatReply{}, err
	}
	if !resp.ok() {
		c.countError(EndpointChat, "status")
		return ChatReply{}, &NetworkError{Endpoint: EndpointChat, StatusCode: resp.StatusCode}
	}

	var reply ChatReply
	if err := json.Unmarshal(resp.Body, &reply); err != nil {
		c.countError(EndpointChat, "decode")
		return ChatReply{}, &NetworkError{Endpoint: EndpointChat, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode reply: %w", err)}
	}
	return reply, nil
}

// ListTrains fetches the train dataset. An empty Data slice is a valid
// result meaning the dataset has not been seeded.
func (c *Client) ListTrains(ctx context.Context) (TrainList, error) {
	resp, err := c.do(ctx, http.MethodGet, EndpointTrains, nil)
	if err != nil {
		return TrainList{}, err
	}
	if !resp.ok() {
		c.countError(EndpointTrains, "status")
		detail := parseErrorDetail(resp.Body)
		return TrainList{}, &APIError{
			Endpoint:   EndpointTrains,
			StatusCode: resp.StatusCode,
			Message:    detail.Message,
			Code:       detail.Code,
		}
	}

	var list TrainList
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		c.countError(EndpointTrains, "decode")
		return TrainList{}, &NetworkError{Endpoint: EndpointTrains, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode train list: %w", err)}
	}
	return list, nil
}

// SeedTrains asks the backend to load its train dataset. Any 2xx is success.
func (c *Client) SeedTrains(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, EndpointSeed, struct{}{})
	if err != nil {
		return err
	}
	if resp.ok() {
		return nil
	}

	c.countError(EndpointSeed, "status")
	detail := parseErrorDetail(resp.Body)
	seedErr := &SeedError{StatusCode: resp.StatusCode, Detail: detail.Message, Code: detail.Code}
	if seedErr.Detail == "" {
		seedErr.Detail = DefaultSeedFailure
	}
	return seedErr
}

// Health probes the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, EndpointHealth, nil)
	if err != nil {
		return err
	}
	if !resp.ok() {
		c.countError(EndpointHealth, "status")
		return &NetworkError{Endpoint: EndpointHealth, StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any) (*response, error) {
	benchmarker := common.NewBenchmarker(c.logger, "gateway "+endpoint)
	defer benchmarker.Close()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, body)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.observe(endpoint, "error", start)
		c.countError(endpoint, "transport")
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.observe(endpoint, strconv.Itoa(resp.StatusCode), start)
	if err != nil {
		c.countError(endpoint, "transport")
		return nil, &NetworkError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if c.metrics != nil {
		c.metrics.HttpBytesTotal.WithLabelValues(endpoint).Add(float64(len(raw)))
	}

	c.logger.Debug("gateway response",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
	)

	return &response{StatusCode: resp.StatusCode, Body: raw}, nil
}

func (c *Client) observe(endpoint, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.HttpRequestSeconds.WithLabelValues(endpoint, status).Observe(time.Since(start).Seconds())
}

func (c *Client) countError(endpoint, kind string) {
	if c.metrics == nil {
		return
	}
	c.metrics.HttpErrorsTotal.WithLabelValues(endpoint, kind).Inc()
}
