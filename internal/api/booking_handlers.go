package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Abrahamm4/HomeCare/internal/auth"
	"github.com/Abrahamm4/HomeCare/internal/schedule"
)

type bookingHandlers struct {
	bookings *schedule.BookingService
	validate *validator.Validate
	log      *zap.Logger
}

func newBookingHandlers(bookings *schedule.BookingService, validate *validator.Validate, log *zap.Logger) *bookingHandlers {
	return &bookingHandlers{bookings: bookings, validate: validate, log: log}
}

// resolvePatient decides who the booking is for. Patients always book for
// themselves; Admin books on behalf of any patient and must name one.
func resolvePatient(identity auth.Identity, requested string) (uuid.UUID, error) {
	if identity.HasRole(auth.RoleAdmin) {
		if requested == "" {
			ve := schedule.NewValidationError()
			ve.Add("patientId", "is required when booking on behalf of a patient")
			return uuid.Nil, ve.Err()
		}
		return uuid.Parse(requested)
	}

	if identity.PatientID == nil {
		return uuid.Nil, auth.ErrForbidden
	}
	if requested != "" && requested != identity.PatientID.String() {
		return uuid.Nil, auth.ErrForbidden
	}
	return *identity.PatientID, nil
}

func (h *bookingHandlers) create(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req BookingRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	slotID, err := uuid.Parse(req.SlotID)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid_slot_id", "slotId must be a valid UUID")
		return
	}

	patientID, err := resolvePatient(identity, req.PatientID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := auth.Authorize(identity, auth.OpBook, patientID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	booking, err := h.bookings.Book(r.Context(), slotID, patientID, req.Notes)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/bookings/%s", booking.ID))
	writeJSON(w, http.StatusCreated, toBookingResponse(*booking))
}

func (h *bookingHandlers) list(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	// Role scoping: patients see their own bookings, personnel the bookings
	// on their slots, admins everything.
	var f schedule.BookingFilter
	switch {
	case identity.HasRole(auth.RoleAdmin):
	case identity.HasRole(auth.RolePatient) && identity.PatientID != nil:
		f.PatientID = identity.PatientID
	case identity.HasRole(auth.RolePersonnel) && identity.StaffID != nil:
		f.StaffID = identity.StaffID
	default:
		writeError(w, r, h.log, auth.ErrForbidden)
		return
	}

	bookings, err := h.bookings.List(r.Context(), f)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	resp := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *bookingHandlers) get(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid_booking_id", "id must be a valid UUID")
		return
	}

	booking, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if !h.canSee(identity, booking) {
		writeError(w, r, h.log, auth.ErrForbidden)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(*booking))
}

func (h *bookingHandlers) canSee(identity auth.Identity, b *schedule.Booking) bool {
	if identity.HasRole(auth.RoleAdmin) {
		return true
	}
	if identity.PatientID != nil && *identity.PatientID == b.PatientID {
		return true
	}
	if identity.StaffID != nil && *identity.StaffID == b.StaffID {
		return true
	}
	return false
}

func (h *bookingHandlers) update(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid_booking_id", "id must be a valid UUID")
		return
	}

	var req UpdateBookingRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	booking, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := auth.Authorize(identity, auth.OpMove, booking.PatientID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	// Absent slotId means notes-only; the move to the same slot is a no-op.
	targetSlot := booking.SlotID
	if req.SlotID != nil {
		targetSlot, err = uuid.Parse(*req.SlotID)
		if err != nil {
			writeProblem(w, r, http.StatusBadRequest, "invalid_slot_id", "slotId must be a valid UUID")
			return
		}
	}

	if _, err := h.bookings.Move(r.Context(), id, targetSlot, req.Notes); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *bookingHandlers) delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid_booking_id", "id must be a valid UUID")
		return
	}

	booking, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := auth.Authorize(identity, auth.OpRelease, booking.PatientID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.bookings.Release(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
