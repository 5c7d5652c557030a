package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/socialchef/edgewatch/internal/logger"
)

const ExecutionTimeMetric = "function.execution_time"

// Monitor is the handle edge function code uses for observability.
type Monitor struct {
	policy Policy
	client Client
	now    func() time.Time
	log    *slog.Logger
}

type Option func(*Monitor)

// WithClock overrides the time source used for response timings.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithLogger sets the logger used for local diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		m.log = l
	}
}

// New initializes client with the policy and returns the Monitor bound to
// both. An Init failure is returned as is.
func New(policy Policy, client Client, opts ...Option) (*Monitor, error) {
	m := &Monitor{
		policy: policy,
		client: client,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if client == nil {
		return nil, errors.New("monitor: nil client")
	}
	if err := client.Init(policy.Options()); err != nil {
		return nil, fmt.Errorf("failed to initialize monitoring client: %w", err)
	}

	m.log.Info("Monitoring initialized",
		"environment", policy.Mode().String(),
		"traces_sample_rate", policy.TraceSampleRate(),
		"profiles_sample_rate", policy.ProfileSampleRate(),
		"release", policy.Release(),
	)
	return m, nil
}

// Client exposes the underlying backend.
func (m *Monitor) Client() Client {
	return m.client
}

func (m *Monitor) Policy() Policy {
	return m.policy
}

func (m *Monitor) IsProduction() bool {
	return m.policy.IsProduction()
}

func (m *Monitor) IsDevelopment() bool {
	return m.policy.IsDevelopment()
}

// Now reads the clock AnnotateResponse measures against.
func (m *Monitor) Now() time.Time {
	return m.now()
}

// Record adds a breadcrumb. In production debug and info breadcrumbs are
// dropped.
func (m *Monitor) Record(ctx context.Context, category, message string, level Level, data map[string]any) {
	level = level.Normalize()
	if !m.policy.ShouldRecord(level) {
		return
	}
	defer m.recover(ctx, "Failed to record breadcrumb", "category", category)

	m.client.AddBreadcrumb(ctx, Breadcrumb{
		Category: category,
		Message:  message,
		Level:    level,
		Data:     data,
	})
}

// Increment tracks a counter by one.
func (m *Monitor) Increment(ctx context.Context, name string, tags map[string]string) {
	m.Track(ctx, name, 1, tags)
}

// Track forwards a counter increment. Failures are logged, never returned.
func (m *Monitor) Track(ctx context.Context, name string, value float64, tags map[string]string) {
	defer m.recover(ctx, "Failed to track metric", "metric", name)

	if tags == nil {
		tags = map[string]string{}
	}
	if err := m.client.IncrementMetric(ctx, name, value, tags); err != nil {
		m.log.Warn("Failed to track metric", "metric", name, "error", err, logger.WithTraceContext(ctx))
	}
}

// StartSpan opens a child span under parent.
func (m *Monitor) StartSpan(parent Span, operation, description string) Span {
	if parent == nil {
		return NoopSpan{}
	}
	span := m.client.StartChildSpan(parent, operation, description)
	if span == nil {
		return NoopSpan{}
	}
	return span
}

// Capture reports err. Without a caller fingerprint the event is grouped by
// error kind and message.
func (m *Monitor) Capture(ctx context.Context, err error, c *CaptureContext) {
	if err == nil {
		return
	}
	defer m.recover(ctx, "Failed to capture error", "error", err)

	var cc CaptureContext
	if c != nil {
		cc = *c
	}
	if len(cc.Fingerprint) == 0 {
		cc.Fingerprint = []string{ErrorKind(err), err.Error()}
	}
	m.client.CaptureException(ctx, err, cc)
}

// AnnotateRequest attaches the declared request size to tx.
func (m *Monitor) AnnotateRequest(r *http.Request, tx Span) {
	if r == nil || tx == nil {
		return
	}
	if size, ok := declaredLength(r.ContentLength, r.Header); ok {
		tx.SetData("request_size_bytes", size)
	}
}

// AnnotateResponse attaches timing and size to tx and tracks the execution
// time tagged with the status code.
func (m *Monitor) AnnotateResponse(ctx context.Context, status int, header http.Header, tx Span, start time.Time) {
	elapsed := m.now().Sub(start).Milliseconds()

	if tx != nil {
		tx.SetData("response_time_ms", elapsed)
		if size, ok := declaredLength(-1, header); ok {
			tx.SetData("response_size_bytes", size)
		}
	}

	m.Track(ctx, ExecutionTimeMetric, float64(elapsed), map[string]string{
		"status": strconv.Itoa(status),
	})
}

func (m *Monitor) recover(ctx context.Context, msg string, args ...any) {
	if r := recover(); r != nil {
		m.log.Warn(msg, append(args, "panic", r, logger.WithTraceContext(ctx))...)
	}
}

// declaredLength prefers an explicit Content-Length header and falls back to
// a known positive length.
func declaredLength(known int64, header http.Header) (int64, bool) {
	if v := header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			return n, true
		}
	}
	if known > 0 {
		return known, true
	}
	return 0, false
}
