package common

import (
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Metrics struct {
	HttpRequestSeconds *prometheus.HistogramVec
	HttpBytesTotal     *prometheus.CounterVec
	HttpErrorsTotal    *prometheus.CounterVec
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		HttpRequestSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trainbot_gateway_request_seconds",
				Help:    "Round trip time of backend gateway requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "status"},
		),
		HttpBytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trainbot_gateway_bytes_total",
				Help: "Response bytes read per backend endpoint",
			},
			[]string{"endpoint"},
		),
		HttpErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trainbot_gateway_errors_total",
				Help: "Failed backend requests per endpoint, by failure kind",
			},
			[]string{"endpoint", "kind"},
		),
	}

	registry.MustRegister(
		metrics.HttpRequestSeconds,
		metrics.HttpBytesTotal,
		metrics.HttpErrorsTotal,
	)

	return metrics
}

type TelemetryServer struct {
	addr     string
	mux      *http.ServeMux
	registry *prometheus.Registry
	logger   *zap.Logger

	server   *http.Server
	listener net.Listener
}

func NewTelemetryServer(addr string, logger *zap.Logger) *TelemetryServer {
	telemetry := &TelemetryServer{
		addr:     addr,
		registry: prometheus.NewRegistry(),
		mux:      http.NewServeMux(),
		logger:   OrNop(logger),
	}

	telemetry.mux.Handle(
		"/metrics",
		promhttp.HandlerFor(telemetry.registry, promhttp.HandlerOpts{}),
	)

	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trainbot_build_info",
			Help: "Build metadata",
		},
		[]string{"version", "git_commit"},
	)

	telemetry.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		buildInfo,
	)

	buildInfo.WithLabelValues(Version, GitCommit).Set(1)

	telemetry.mux.HandleFunc("/debug/pprof/", pprof.Index)
	telemetry.mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	telemetry.mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	telemetry.mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	telemetry.mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return telemetry
}

func (telemetry *TelemetryServer) GetRegistry() *prometheus.Registry {
	return telemetry.registry
}

func (telemetry *TelemetryServer) Handler() http.Handler {
	return telemetry.mux
}

func (telemetry *TelemetryServer) Start() error {
	telemetry.server = &http.Server{
		Addr:              telemetry.addr,
		Handler:           telemetry.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	listener, err := net.Listen("tcp", telemetry.addr)
	if err != nil {
		return err
	}

	telemetry.listener = listener

	go func() {
		if err := telemetry.server.Serve(telemetry.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.logger.Error("telemetry server error", zap.Error(err))
		}
	}()

	telemetry.logger.Info("telemetry server started", zap.String("addr", listener.Addr().String()))
	return nil
}

func (telemetry *TelemetryServer) Stop() error {
	if telemetry.server == nil {
		return nil
	}

	return telemetry.server.Close()
}
