package sentry

import (
	"context"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/socialchef/edgewatch/internal/monitor"
)

// Span adapts *sentry.Span to monitor.Span.
type Span struct {
	span *sentry.Span
}

var _ monitor.Span = (*Span)(nil)

func (s *Span) StartChild(operation, description string) monitor.Span {
	return &Span{span: s.span.StartChild(operation, sentry.WithDescription(description))}
}

func (s *Span) SetData(key string, value any) {
	s.span.SetData(key, value)
}

// SetHTTPStatus maps an HTTP status code onto the span status.
func (s *Span) SetHTTPStatus(code int) {
	s.span.Status = sentry.HTTPtoSpanStatus(code)
	s.span.SetData("http.response.status_code", code)
}

func (s *Span) Finish() {
	s.span.Finish()
}

// Raw exposes the wrapped sentry span.
func (s *Span) Raw() *sentry.Span {
	return s.span
}

// StartTransaction clones the root hub onto the request context and starts an
// http.server transaction, continuing an incoming trace when one is present.
func (c *Client) StartTransaction(ctx context.Context, r *http.Request) (context.Context, monitor.Span) {
	if c.hub == nil {
		return ctx, monitor.NoopSpan{}
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = c.hub.Clone()
		ctx = sentry.SetHubOnContext(ctx, hub)
	}
	hub.Scope().SetRequest(r)

	tx := sentry.StartTransaction(ctx,
		r.Method+" "+r.URL.Path,
		sentry.WithOpName("http.server"),
		sentry.ContinueFromRequest(r),
		sentry.WithTransactionSource(sentry.SourceURL),
	)
	tx.SetData("http.request.method", r.Method)

	return tx.Context(), &Span{span: tx}
}
