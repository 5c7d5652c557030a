package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/socialchef/edgewatch/internal/monitor"
	"github.com/stretchr/testify/require"
)

type recordedCapture struct {
	err error
	cc  monitor.CaptureContext
}

type recordedMetric struct {
	name  string
	value float64
	tags  map[string]string
}

type fakeClient struct {
	mu          sync.Mutex
	breadcrumbs []monitor.Breadcrumb
	captures    []recordedCapture
	metrics     []recordedMetric
}

func (c *fakeClient) Init(monitor.Options) error { return nil }

func (c *fakeClient) AddBreadcrumb(_ context.Context, b monitor.Breadcrumb) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breadcrumbs = append(c.breadcrumbs, b)
}

func (c *fakeClient) CaptureException(_ context.Context, err error, cc monitor.CaptureContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.captures = append(c.captures, recordedCapture{err: err, cc: cc})
}

func (c *fakeClient) IncrementMetric(_ context.Context, name string, value float64, tags map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = append(c.metrics, recordedMetric{name: name, value: value, tags: tags})
	return nil
}

func (c *fakeClient) StartChildSpan(parent monitor.Span, operation, description string) monitor.Span {
	return parent.StartChild(operation, description)
}

type fakeSpan struct {
	name     string
	data     map[string]any
	status   int
	finished bool
}

func (s *fakeSpan) StartChild(operation, _ string) monitor.Span {
	return &fakeSpan{name: operation, data: map[string]any{}}
}

func (s *fakeSpan) SetData(key string, value any) { s.data[key] = value }
func (s *fakeSpan) SetHTTPStatus(code int)        { s.status = code }
func (s *fakeSpan) Finish()                       { s.finished = true }

type fakeTransactions struct {
	last *fakeSpan
}

func (f *fakeTransactions) StartTransaction(ctx context.Context, r *http.Request) (context.Context, monitor.Span) {
	f.last = &fakeSpan{name: r.Method + " " + r.URL.Path, data: map[string]any{}}
	return ctx, f.last
}

// newTestMonitor returns a monitor whose clock advances by step on every read.
func newTestMonitor(t *testing.T, env string, step time.Duration) (*monitor.Monitor, *fakeClient) {
	t.Helper()

	policy, err := monitor.NewPolicy(monitor.Settings{Environment: env})
	require.NoError(t, err)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(step)
		return now
	}

	client := &fakeClient{}
	mon, err := monitor.New(policy, client,
		monitor.WithClock(clock),
		monitor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return mon, client
}
