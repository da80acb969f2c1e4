package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Abrahamm4/HomeCare/internal/auth"
	"github.com/Abrahamm4/HomeCare/internal/schedule"
)

// Problem is the uniform error envelope every failure path returns.
type Problem struct {
	Status    int                 `json:"status"`
	Title     string              `json:"title"`
	Detail    string              `json:"detail,omitempty"`
	Instance  string              `json:"instance,omitempty"`
	TraceID   string              `json:"traceId,omitempty"`
	ErrorCode string              `json:"errorCode"`
	Method    string              `json:"method,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	writeJSON(w, status, Problem{
		Status:    status,
		Title:     http.StatusText(status),
		Detail:    detail,
		Instance:  r.URL.Path,
		TraceID:   GetRequestID(r.Context()),
		ErrorCode: code,
		Method:    r.Method,
	})
}

// writeValidationProblem reports every failed field in a single response.
func writeValidationProblem(w http.ResponseWriter, r *http.Request, fields map[string][]string) {
	writeJSON(w, http.StatusBadRequest, Problem{
		Status:    http.StatusBadRequest,
		Title:     http.StatusText(http.StatusBadRequest),
		Detail:    "one or more fields failed validation",
		Instance:  r.URL.Path,
		TraceID:   GetRequestID(r.Context()),
		ErrorCode: "validation_failed",
		Method:    r.Method,
		Errors:    fields,
	})
}

// writeError maps domain failures onto the problem envelope. Unexpected
// errors are logged with the trace id and surfaced opaquely.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var ve *schedule.ValidationError

	switch {
	case errors.As(err, &ve):
		writeValidationProblem(w, r, ve.Fields)
	case errors.Is(err, schedule.ErrSlotNotFound):
		writeProblem(w, r, http.StatusNotFound, "slot_not_found", err.Error())
	case errors.Is(err, schedule.ErrBookingNotFound):
		writeProblem(w, r, http.StatusNotFound, "booking_not_found", err.Error())
	case errors.Is(err, schedule.ErrPatientNotFound):
		writeProblem(w, r, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, schedule.ErrStaffNotFound):
		writeProblem(w, r, http.StatusNotFound, "staff_not_found", err.Error())
	case errors.Is(err, schedule.ErrSlotTaken):
		writeProblem(w, r, http.StatusConflict, "slot_already_booked", err.Error())
	case errors.Is(err, schedule.ErrSlotBooked):
		writeProblem(w, r, http.StatusConflict, "slot_has_live_booking", err.Error())
	case errors.Is(err, schedule.ErrSlotBeingBooked):
		writeProblem(w, r, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.Is(err, auth.ErrForbidden):
		writeProblem(w, r, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeProblem(w, r, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, auth.ErrUsernameTaken):
		writeValidationProblem(w, r, map[string][]string{"username": {"already taken"}})
	default:
		log.Error("request failed",
			zap.String("trace_id", GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeProblem(w, r, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
	}
}
