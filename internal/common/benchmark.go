package common

import (
	"time"

	"go.uber.org/zap"
)

type Benchmarker struct {
	start  time.Time
	label  string
	logger *zap.Logger
}

func RuntimeBenchmark[T any](logger *zap.Logger, label string, functionUnderTest func() (T, error)) (T, error) {
	benchmarker := NewBenchmarker(logger, label)
	defer benchmarker.Close()
	return functionUnderTest()
}

func NewBenchmarker(logger *zap.Logger, label string) *Benchmarker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Benchmarker{start: time.Now(), label: label, logger: logger}
}

func (benchmarker *Benchmarker) Elapsed() time.Duration {
	return time.Since(benchmarker.start)
}

func (benchmarker *Benchmarker) Close() {
	benchmarker.logger.Debug("[BENCH]",
		zap.String("label", benchmarker.label),
		zap.Duration("took", benchmarker.Elapsed()),
	)
}
