package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/google/uuid"
	apperrors "github.com/socialchef/edgewatch/internal/errors"
	"github.com/socialchef/edgewatch/internal/monitor"
)

const RequestIDHeader = "X-Request-ID"

const (
	transactionKey contextKey = "transaction"
	RequestIDKey   contextKey = "requestID"
)

// Transactions starts the root span for an incoming request.
type Transactions interface {
	StartTransaction(ctx context.Context, r *http.Request) (context.Context, monitor.Span)
}

type httpStatusSetter interface {
	SetHTTPStatus(code int)
}

// Instrument wraps a function handler with a transaction, request and
// response annotations, and panic capture.
func Instrument(mon *monitor.Monitor, transactions Transactions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := mon.Now()

			ctx, tx := transactions.StartTransaction(r.Context(), r)
			if tx == nil {
				tx = monitor.NoopSpan{}
			}

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)
			tx.SetData("request_id", requestID)

			ctx = context.WithValue(ctx, transactionKey, tx)
			ctx = context.WithValue(ctx, RequestIDKey, requestID)

			mon.AnnotateRequest(r, tx)
			mon.Record(ctx, "http", r.Method+" "+r.URL.Path, monitor.LevelInfo, map[string]any{
				"request_id": requestID,
			})

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				p := recover()
				if p != nil && p != http.ErrAbortHandler {
					panicErr := apperrors.NewInternalError("Internal server error", "UNHANDLED_PANIC", fmt.Errorf("panic: %v", p))
					mon.Capture(ctx, panicErr, &monitor.CaptureContext{
						Fingerprint: []string{"panic", r.URL.Path},
						Tags:        map[string]string{"request_id": requestID},
						Extra:       map[string]any{"stack": string(debug.Stack())},
					})
					// a handler that already wrote its header keeps its status
					if !rec.wroteHeader {
						apperrors.WriteHTTP(rec, panicErr)
					}
				}

				mon.AnnotateResponse(ctx, rec.status, rec.sizeHeader(), tx, start)
				if s, ok := tx.(httpStatusSetter); ok {
					s.SetHTTPStatus(rec.status)
				}
				tx.Finish()

				if p == http.ErrAbortHandler {
					panic(p)
				}
			}()

			next.ServeHTTP(rec, r.WithContext(ctx))
		})
	}
}

// TransactionFromContext returns the request transaction, or a no-op span
// outside Instrument.
func TransactionFromContext(ctx context.Context) monitor.Span {
	if tx, ok := ctx.Value(transactionKey).(monitor.Span); ok {
		return tx
	}
	return monitor.NoopSpan{}
}

// GetRequestID extracts the request ID from request context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (w *responseRecorder) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

func (w *responseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// sizeHeader returns the response headers with Content-Length filled in from
// the bytes written when the handler did not set it.
func (w *responseRecorder) sizeHeader() http.Header {
	header := w.Header()
	if header.Get("Content-Length") != "" || w.bytes == 0 {
		return header
	}
	header = header.Clone()
	header.Set("Content-Length", strconv.FormatInt(w.bytes, 10))
	return header
}
