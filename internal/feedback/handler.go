package feedback

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/socialchef/edgewatch/internal/errors"
	"github.com/socialchef/edgewatch/internal/middleware"
	"github.com/socialchef/edgewatch/internal/monitor"
)

const (
	maxMessageLength = 2000
	maxBodyBytes     = 64 << 10
)

type Request struct {
	Email   string `json:"email"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}

type Response struct {
	ID string `json:"id"`
}

type Handler struct {
	mon   *monitor.Monitor
	store Store
	now   func() time.Time
}

func NewHandler(mon *monitor.Monitor, store Store) *Handler {
	return &Handler{
		mon:   mon,
		store: store,
		now:   time.Now,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tx := middleware.TransactionFromContext(ctx)

	var req Request
	decodeSpan := h.mon.StartSpan(tx, "serialize", "decode feedback request")
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	decodeSpan.Finish()
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.fail(w, r, apperrors.NewPayloadTooLargeError("Request body is too large", "BODY_TOO_LARGE", "Keep the request under 64 KiB."))
		return
	}
	if err != nil {
		h.fail(w, r, apperrors.NewValidationError("Invalid request body", "INVALID_BODY", "Send a JSON object with email, message and rating."))
		return
	}

	if verr := validate(req); verr != nil {
		h.fail(w, r, verr)
		return
	}

	h.mon.Record(ctx, "feedback", "feedback validated", monitor.LevelDebug, map[string]any{
		"rating":         req.Rating,
		"message_length": len(req.Message),
	})

	userID, _ := middleware.GetUserID(ctx)
	entry := Entry{
		ID:        uuid.New(),
		UserID:    userID,
		Email:     strings.TrimSpace(req.Email),
		Message:   strings.TrimSpace(req.Message),
		Rating:    req.Rating,
		RequestID: middleware.GetRequestID(ctx),
		CreatedAt: h.now().UTC(),
	}

	span := h.mon.StartSpan(tx, "db.insert", "insert feedback")
	err = h.store.Insert(ctx, entry)
	span.Finish()
	if err != nil {
		h.mon.Record(ctx, "db", "feedback insert failed", monitor.LevelError, map[string]any{
			"feedback_id": entry.ID.String(),
		})
		storeErr := apperrors.NewStorageError("Failed to save feedback", "STORE_FAILED", err)
		h.mon.Capture(ctx, storeErr, &monitor.CaptureContext{
			Fingerprint: []string{"feedback", "store"},
			Tags:        map[string]string{"table": "feedback"},
			Extra:       map[string]any{"feedback_id": entry.ID.String()},
		})
		apperrors.WriteHTTP(w, storeErr)
		return
	}

	h.mon.Increment(ctx, "feedback.submitted", map[string]string{
		"rating": strconv.Itoa(req.Rating),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(Response{ID: entry.ID.String()})
}

// fail reports a client error. Every client error is captured and the
// production filter decides whether it is sent.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err *apperrors.AppError) {
	h.mon.Capture(r.Context(), err, &monitor.CaptureContext{
		Tags:  map[string]string{"error_code": err.Code()},
		Extra: map[string]any{"recovery": err.RecoverySuggestion()},
	})
	h.mon.Increment(r.Context(), "feedback.rejected", map[string]string{
		"reason": err.Code(),
	})
	apperrors.WriteHTTP(w, err)
}

func validate(req Request) *apperrors.AppError {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return apperrors.NewValidationError("Email is required", "EMAIL_REQUIRED", "Provide the address we can reply to.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.NewValidationError("Email is invalid", "EMAIL_INVALID", "Check the address for typos.")
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return apperrors.NewValidationError("Message is required", "MESSAGE_REQUIRED", "Tell us what happened.")
	}
	if len(message) > maxMessageLength {
		return apperrors.NewValidationError("Message is too long", "MESSAGE_TOO_LONG", "Keep feedback under 2000 characters.")
	}

	if req.Rating < 1 || req.Rating > 5 {
		return apperrors.NewValidationError("Rating must be between 1 and 5", "RATING_OUT_OF_RANGE", "Pick a rating from 1 to 5.")
	}
	return nil
}
