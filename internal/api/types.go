package api

import (
	"github.com/Abrahamm4/HomeCare/internal/schedule"
)

type SlotRequest struct {
	StaffID   string `json:"staffId" validate:"required,uuid4"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
}

type SlotResponse struct {
	ID        string `json:"id"`
	StaffID   string `json:"staffId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Booked    bool   `json:"booked"`
}

func toSlotResponse(s schedule.SlotView) SlotResponse {
	return SlotResponse{
		ID:        s.ID.String(),
		StaffID:   s.StaffID.String(),
		Date:      s.Date.Format("2006-01-02"),
		StartTime: s.Start.String(),
		EndTime:   s.End.String(),
		Booked:    s.Booked,
	}
}

type BookingRequest struct {
	SlotID    string `json:"slotId" validate:"required,uuid4"`
	PatientID string `json:"patientId" validate:"omitempty,uuid4"`
	Notes     string `json:"notes" validate:"max=500"`
}

// UpdateBookingRequest moves a booking, updates its notes, or both. A nil
// field is left as is.
type UpdateBookingRequest struct {
	SlotID *string `json:"slotId" validate:"omitempty,uuid4"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

type BookingResponse struct {
	ID        string `json:"id"`
	SlotID    string `json:"slotId"`
	PatientID string `json:"patientId"`
	StaffID   string `json:"staffId"`
	Date      string `json:"date"`
	Notes     string `json:"notes,omitempty"`
}

func toBookingResponse(b schedule.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID.String(),
		SlotID:    b.SlotID.String(),
		PatientID: b.PatientID.String(),
		StaffID:   b.StaffID.String(),
		Date:      b.Date.Format("2006-01-02"),
		Notes:     b.Notes,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
