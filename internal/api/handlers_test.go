package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Abrahamm4/HomeCare/internal/auth"
	redisclient "github.com/Abrahamm4/HomeCare/internal/redis"
	"github.com/Abrahamm4/HomeCare/internal/schedule"
)

type passthroughLocker struct{}

func (passthroughLocker) WithSlotLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ redisclient.Locker = passthroughLocker{}

// testEnv wires the full router against in-memory storage and real tokens.
type testEnv struct {
	handler http.Handler
	repo    *schedule.MemoryRepository
	tokens  *auth.TokenIssuer

	staffID      uuid.UUID
	otherStaffID uuid.UUID
	patientID    uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := zap.NewNop()
	repo := schedule.NewMemoryRepository()

	env := &testEnv{
		repo:         repo,
		tokens:       auth.NewTokenIssuer("test-secret", time.Hour),
		staffID:      uuid.New(),
		otherStaffID: uuid.New(),
		patientID:    uuid.New(),
	}
	repo.AddPersonnel(schedule.Personnel{ID: env.staffID, Name: "Nina Fields"})
	repo.AddPersonnel(schedule.Personnel{ID: env.otherStaffID, Name: "Omar Reyes"})
	repo.AddPatient(schedule.Patient{ID: env.patientID, Name: "Pia Holm"})

	env.handler = NewRouter(RouterConfig{
		Slots:    schedule.NewSlotService(repo, log),
		Bookings: schedule.NewBookingService(repo, passthroughLocker{}, log),
		Auth:     auth.NewService(auth.NewMemStore(), log),
		Tokens:   env.tokens,
		Validate: NewValidator(),
		Logger:   log,
	})
	return env
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	return e.issue(t, auth.Identity{Subject: "admin", UserID: uuid.New(), Roles: []auth.Role{auth.RoleAdmin}})
}

func (e *testEnv) personnelToken(t *testing.T, staffID uuid.UUID) string {
	t.Helper()
	return e.issue(t, auth.Identity{
		Subject: "staff", UserID: uuid.New(),
		Roles: []auth.Role{auth.RolePersonnel}, StaffID: &staffID,
	})
}

func (e *testEnv) patientToken(t *testing.T, patientID uuid.UUID) string {
	t.Helper()
	return e.issue(t, auth.Identity{
		Subject: "patient", UserID: uuid.New(),
		Roles: []auth.Role{auth.RolePatient}, PatientID: &patientID,
	})
}

func (e *testEnv) issue(t *testing.T, id auth.Identity) string {
	t.Helper()
	token, err := e.tokens.Issue(id)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) Problem {
	t.Helper()
	var p Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

// addSlot seeds a slot directly through the repository.
func (e *testEnv) addSlot(t *testing.T, staffID uuid.UUID, start schedule.MinuteOfDay) *schedule.TimeSlot {
	t.Helper()

	slot := &schedule.TimeSlot{
		ID:      uuid.New(),
		StaffID: staffID,
		Date:    schedule.DateOnly(time.Now().UTC().AddDate(0, 0, 7)),
		Start:   start,
		End:     start + 60,
	}
	require.NoError(t, e.repo.CreateSlot(context.Background(), slot))
	return slot
}

func futureDate() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/slots", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	p := decodeProblem(t, rec)
	assert.Equal(t, "missing_authorization_header", p.ErrorCode)
	assert.Equal(t, http.StatusUnauthorized, p.Status)
	assert.NotEmpty(t, p.TraceID)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	env := newTestEnv(t)

	expired := auth.NewTokenIssuer("test-secret", -time.Minute)
	token, err := expired.Issue(auth.Identity{Subject: "x", UserID: uuid.New(), Roles: []auth.Role{auth.RolePatient}})
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/slots", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateSlot(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/slots", env.personnelToken(t, env.staffID), SlotRequest{
		StaffID:   env.staffID.String(),
		Date:      futureDate(),
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Location"))

	var resp SlotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, env.staffID.String(), resp.StaffID)
	assert.Equal(t, "09:00", resp.StartTime)
	assert.False(t, resp.Booked)
}

func TestCreateSlotForOtherStaffIsForbidden(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/slots", env.personnelToken(t, env.staffID), SlotRequest{
		StaffID:   env.otherStaffID.String(),
		Date:      futureDate(),
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeProblem(t, rec).ErrorCode)
}

func TestCreateSlotValidationEnvelope(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/slots", env.personnelToken(t, env.staffID), SlotRequest{
		StaffID:   "not-a-uuid",
		Date:      futureDate(),
		StartTime: "09:00",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	p := decodeProblem(t, rec)
	assert.Equal(t, "validation_failed", p.ErrorCode)
	assert.Contains(t, p.Errors, "staffId")
	assert.Contains(t, p.Errors, "endTime")
}

func TestCreateOverlappingSlot(t *testing.T) {
	env := newTestEnv(t)
	env.addSlot(t, env.staffID, 9*60)

	rec := env.do(t, http.MethodPost, "/slots", env.personnelToken(t, env.staffID), SlotRequest{
		StaffID:   env.staffID.String(),
		Date:      futureDate(),
		StartTime: "09:30",
		EndTime:   "10:30",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeProblem(t, rec).Errors, "timeSlot")
}

func TestDeleteSlotOwnership(t *testing.T) {
	env := newTestEnv(t)
	slot := env.addSlot(t, env.otherStaffID, 9*60)

	rec := env.do(t, http.MethodDelete, "/slots/"+slot.ID.String(), env.personnelToken(t, env.staffID), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/slots/"+slot.ID.String(), env.personnelToken(t, env.otherStaffID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteBookedSlotConflicts(t *testing.T) {
	env := newTestEnv(t)
	slot := env.addSlot(t, env.staffID, 9*60)
	require.NoError(t, env.repo.CreateBooking(context.Background(), &schedule.Booking{
		SlotID: slot.ID, PatientID: env.patientID, StaffID: env.staffID, Date: slot.Date,
	}))

	rec := env.do(t, http.MethodDelete, "/slots/"+slot.ID.String(), env.personnelToken(t, env.staffID), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "slot_has_live_booking", decodeProblem(t, rec).ErrorCode)
}

func TestListSlotsFreeFilter(t *testing.T) {
	env := newTestEnv(t)
	free := env.addSlot(t, env.staffID, 9*60)
	booked := env.addSlot(t, env.staffID, 14*60)
	require.NoError(t, env.repo.CreateBooking(context.Background(), &schedule.Booking{
		SlotID: booked.ID, PatientID: env.patientID, StaffID: env.staffID, Date: booked.Date,
	}))

	rec := env.do(t, http.MethodGet, "/slots?free=true", env.patientToken(t, env.patientID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []SlotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, free.ID.String(), resp[0].ID)
}

func TestPatientBooksSlot(t *testing.T) {
	env := newTestEnv(t)
	slot := env.addSlot(t, env.staffID, 9*60)

	rec := env.do(t, http.MethodPost, "/bookings", env.patientToken(t, env.patientID), BookingRequest{
		SlotID: slot.ID.String(),
		Notes:  "side entrance",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Location"))

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, env.patientID.String(), resp.PatientID)
	assert.Equal(t, "side entrance", resp.Notes)
}

func TestBookingTakenSlotReturnsConflictEnvelope(t *testing.T) {
	env := newTestEnv(t)
	slot := env.addSlot(t, env.staffID, 9*60)

	otherPatient := uuid.New()
	env.repo.AddPatient(schedule.Patient{ID: otherPatient, Name: "Omar Reyes"})

	rec := env.do(t, http.MethodPost, "/bookings", env.patientToken(t, env.patientID), BookingRequest{SlotID: slot.ID.String()})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/bookings", env.patientToken(t, otherPatient), BookingRequest{SlotID: slot.ID.String()})
	require.Equal(t, http.StatusConflict, rec.Code)

	p := decodeProblem(t, rec)
	assert.Equal(t, "slot_already_booked", p.ErrorCode)
	assert.Equal(t, http.StatusConflict, p.Status)
	assert.Equal(t, "/bookings", p.Instance)
	assert.NotEmpty(t, p.TraceID)
}

func TestPatientCannotBookForSomeoneElse(t *testing.T) {
	env := newTestEnv(t)
	slot := env.addSlot(t, env.staffID, 9*60)

	rec := env.do(t, http.MethodPost, "/bookings", env.patientToken(t, env.patientID), BookingRequest{
		SlotID:    slot.ID.String(),
		PatientID: uuid.New().String(),
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminBookingMustNamePatient(t *testing.T) {
	env := newTestEnv(t)
	slot := env.addSlot(t, env.staffID, 9*60)

	rec := env.do(t, http.MethodPost, "/bookings", env.adminToken(t), BookingRequest{SlotID: slot.ID.String()})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeProblem(t, rec).Errors, "patientId")

	rec = env.do(t, http.MethodPost, "/bookings", env.adminToken(t), BookingRequest{
		SlotID:    slot.ID.String(),
		PatientID: env.patientID.String(),
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestBookingListIsRoleScoped(t *testing.T) {
	env := newTestEnv(t)

	otherPatient := uuid.New()
	env.repo.AddPatient(schedule.Patient{ID: otherPatient, Name: "Omar Reyes"})

	s1 := env.addSlot(t, env.staffID, 9*60)
	s2 := env.addSlot(t, env.otherStaffID, 9*60)

	ctx := context.Background()
	require.NoError(t, env.repo.CreateBooking(ctx, &schedule.Booking{SlotID: s1.ID, PatientID: env.patientID, StaffID: env.staffID, Date: s1.Date}))
	require.NoError(t, env.repo.CreateBooking(ctx, &schedule.Booking{SlotID: s2.ID, PatientID: otherPatient, StaffID: env.otherStaffID, Date: s2.Date}))

	var resp []BookingResponse

	rec := env.do(t, http.MethodGet, "/bookings", env.patientToken(t, env.patientID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, env.patientID.String(), resp[0].PatientID)

	rec = env.do(t, http.MethodGet, "/bookings", env.personnelToken(t, env.staffID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, env.staffID.String(), resp[0].StaffID)

	rec = env.do(t, http.MethodGet, "/bookings", env.adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestPatientMovesOwnBooking(t *testing.T) {
	env := newTestEnv(t)
	from := env.addSlot(t, env.staffID, 9*60)
	to := env.addSlot(t, env.staffID, 14*60)

	booking := &schedule.Booking{SlotID: from.ID, PatientID: env.patientID, StaffID: env.staffID, Date: from.Date}
	require.NoError(t, env.repo.CreateBooking(context.Background(), booking))

	slotID := to.ID.String()
	rec := env.do(t, http.MethodPut, "/bookings/"+booking.ID.String(), env.patientToken(t, env.patientID), UpdateBookingRequest{SlotID: &slotID})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	moved, err := env.repo.GetBookingByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, to.ID, moved.SlotID)
}

func TestPatientCannotTouchOthersBooking(t *testing.T) {
	env := newTestEnv(t)
	slot := env.addSlot(t, env.staffID, 9*60)

	booking := &schedule.Booking{SlotID: slot.ID, PatientID: env.patientID, StaffID: env.staffID, Date: slot.Date}
	require.NoError(t, env.repo.CreateBooking(context.Background(), booking))

	otherPatient := uuid.New()
	env.repo.AddPatient(schedule.Patient{ID: otherPatient, Name: "Omar Reyes"})

	rec := env.do(t, http.MethodDelete, "/bookings/"+booking.ID.String(), env.patientToken(t, otherPatient), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReleaseBooking(t *testing.T) {
	env := newTestEnv(t)
	slot := env.addSlot(t, env.staffID, 9*60)

	booking := &schedule.Booking{SlotID: slot.ID, PatientID: env.patientID, StaffID: env.staffID, Date: slot.Date}
	require.NoError(t, env.repo.CreateBooking(context.Background(), booking))

	rec := env.do(t, http.MethodDelete, "/bookings/"+booking.ID.String(), env.patientToken(t, env.patientID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The slot is free again.
	view, err := env.repo.GetSlotByID(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.False(t, view.Booked)

	rec = env.do(t, http.MethodDelete, "/bookings/"+booking.ID.String(), env.patientToken(t, env.patientID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterAndLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: "pia.holm",
		Email:    "pia@example.com",
		Password: "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.NotEmpty(t, reg.Token)

	// The issued token authenticates against protected routes.
	recList := env.do(t, http.MethodGet, "/slots", reg.Token, nil)
	assert.Equal(t, http.StatusOK, recList.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Username: "pia.holm", Password: "s3cret-pass"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Username: "pia.holm", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeProblem(t, rec).ErrorCode)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: "pi",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	p := decodeProblem(t, rec)
	assert.Equal(t, "validation_failed", p.ErrorCode)
	assert.Contains(t, p.Errors, "username")
	assert.Contains(t, p.Errors, "email")
	assert.Contains(t, p.Errors, "password")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	body := RegisterRequest{Username: "pia.holm", Email: "pia@example.com", Password: "s3cret-pass"}
	rec := env.do(t, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeProblem(t, rec).Errors, "username")
}
