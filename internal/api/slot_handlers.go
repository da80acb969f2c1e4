package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Abrahamm4/HomeCare/internal/auth"
	"github.com/Abrahamm4/HomeCare/internal/schedule"
)

type slotHandlers struct {
	slots    *schedule.SlotService
	validate *validator.Validate
	log      *zap.Logger
}

func newSlotHandlers(slots *schedule.SlotService, validate *validator.Validate, log *zap.Logger) *slotHandlers {
	return &slotHandlers{slots: slots, validate: validate, log: log}
}

func (h *slotHandlers) toInput(req SlotRequest) (schedule.SlotInput, map[string][]string) {
	fields := make(map[string][]string)

	staffID, err := uuid.Parse(req.StaffID)
	if err != nil {
		fields["staffId"] = append(fields["staffId"], "must be a valid UUID")
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		fields["date"] = append(fields["date"], "must be a date in YYYY-MM-DD format")
	}

	start, err := schedule.ParseMinuteOfDay(req.StartTime)
	if err != nil {
		fields["startTime"] = append(fields["startTime"], err.Error())
	}

	end, err := schedule.ParseMinuteOfDay(req.EndTime)
	if err != nil {
		fields["endTime"] = append(fields["endTime"], err.Error())
	}

	if len(fields) > 0 {
		return schedule.SlotInput{}, fields
	}
	return schedule.SlotInput{StaffID: staffID, Date: date, Start: start, End: end}, nil
}

func (h *slotHandlers) list(w http.ResponseWriter, r *http.Request) {
	var f schedule.SlotFilter

	if raw := r.URL.Query().Get("staffId"); raw != "" {
		staffID, err := uuid.Parse(raw)
		if err != nil {
			writeProblem(w, r, http.StatusBadRequest, "invalid_staff_id", "staffId must be a valid UUID")
			return
		}
		f.StaffID = &staffID
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			writeProblem(w, r, http.StatusBadRequest, "invalid_date", "date must be in YYYY-MM-DD format")
			return
		}
		f.Date = &date
	}
	f.FreeOnly = r.URL.Query().Get("free") == "true"

	slots, err := h.slots.List(r.Context(), f)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	resp := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		resp = append(resp, toSlotResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *slotHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid_slot_id", "id must be a valid UUID")
		return
	}

	slot, err := h.slots.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toSlotResponse(*slot))
}

func (h *slotHandlers) create(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req SlotRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	in, fields := h.toInput(req)
	if fields != nil {
		writeValidationProblem(w, r, fields)
		return
	}

	if err := auth.Authorize(identity, auth.OpCreateSlot, in.StaffID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	slot, err := h.slots.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/slots/%s", slot.ID))
	writeJSON(w, http.StatusCreated, toSlotResponse(schedule.SlotView{TimeSlot: *slot}))
}

func (h *slotHandlers) update(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid_slot_id", "id must be a valid UUID")
		return
	}

	var req SlotRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	in, fields := h.toInput(req)
	if fields != nil {
		writeValidationProblem(w, r, fields)
		return
	}

	existing, err := h.slots.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	// Ownership of both the current and the requested staff assignment.
	if err := auth.Authorize(identity, auth.OpUpdateSlot, existing.StaffID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if in.StaffID != existing.StaffID {
		if err := auth.Authorize(identity, auth.OpUpdateSlot, in.StaffID); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	}

	if _, err := h.slots.Update(r.Context(), id, in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *slotHandlers) delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid_slot_id", "id must be a valid UUID")
		return
	}

	slot, err := h.slots.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := auth.Authorize(identity, auth.OpDeleteSlot, slot.StaffID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.slots.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
