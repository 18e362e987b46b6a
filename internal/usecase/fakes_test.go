package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/scheduling"
	"hospital-scheduler/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// fixedNow is 2025-03-10 14:00 IST
var fixedNow = time.Date(2025, 3, 10, 14, 0, 0, 0, scheduling.IST)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func mustDate(s string) time.Time {
	d, err := scheduling.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sameDay(a, b time.Time) bool {
	return a.Format(scheduling.DateLayout) == b.Format(scheduling.DateLayout)
}

func slotViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: entity.SlotIndexName}
}

// ---- doctors ----

type fakeDoctorRepo struct {
	mu      sync.Mutex
	doctors map[string]*entity.Doctor
}

func newFakeDoctorRepo(doctors ...entity.Doctor) *fakeDoctorRepo {
	r := &fakeDoctorRepo{doctors: map[string]*entity.Doctor{}}
	for i := range doctors {
		d := doctors[i]
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		r.doctors[d.Email] = &d
	}
	return r
}

func (r *fakeDoctorRepo) Create(_ context.Context, _ *gorm.DB, doctor *entity.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[doctor.Email]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "idx_doctors_email"}
	}
	d := *doctor
	r.doctors[d.Email] = &d
	return nil
}

func (r *fakeDoctorRepo) FindByEmail(_ context.Context, _ *gorm.DB, email string) (*entity.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[email]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDoctorRepo) FindAll(_ context.Context, _ *gorm.DB, filter entity.DoctorFilter) ([]entity.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Doctor
	for _, d := range r.doctors {
		if filter.Name != "" && !containsFold(d.Name, filter.Name) {
			continue
		}
		if filter.Specialization != "" && !containsFold(d.Specialization, filter.Specialization) {
			continue
		}
		if filter.City != "" && !containsFold(d.City, filter.City) {
			continue
		}
		out = append(out, *d)
	}
	sortDoctors(out)
	return out, nil
}

func (r *fakeDoctorRepo) Update(_ context.Context, _ *gorm.DB, doctor *entity.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := *doctor
	r.doctors[d.Email] = &d
	return nil
}

func (r *fakeDoctorRepo) SetAvailability(_ context.Context, _ *gorm.DB, email string, available bool, since *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[email]
	if !ok {
		return nil
	}
	d.Availability = available
	if available {
		since = nil
	}
	d.UnavailableSince = since
	return nil
}

func (r *fakeDoctorRepo) Delete(_ context.Context, _ *gorm.DB, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[email]; !ok {
		return 0, nil
	}
	delete(r.doctors, email)
	return 1, nil
}

// ---- leaves ----

type fakeLeaveRepo struct {
	mu     sync.Mutex
	leaves []entity.DoctorLeave
	// createDelay widens the window between overlap check and insert
	createDelay time.Duration
}

func (r *fakeLeaveRepo) Create(_ context.Context, _ *gorm.DB, leave *entity.DoctorLeave) error {
	if r.createDelay > 0 {
		time.Sleep(r.createDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if leave.ID == uuid.Nil {
		leave.ID = uuid.New()
	}
	if leave.Status == "" {
		leave.Status = entity.LeaveStatusPending
	}
	r.leaves = append(r.leaves, *leave)
	return nil
}

func (r *fakeLeaveRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.DoctorLeave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.leaves {
		if r.leaves[i].ID == id {
			l := r.leaves[i]
			return &l, nil
		}
	}
	return nil, nil
}

func (r *fakeLeaveRepo) FindAll(_ context.Context, _ *gorm.DB) ([]entity.DoctorLeave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.DoctorLeave(nil), r.leaves...), nil
}

func (r *fakeLeaveRepo) FindByDoctorEmail(_ context.Context, _ *gorm.DB, email string) ([]entity.DoctorLeave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.DoctorLeave
	for _, l := range r.leaves {
		if l.DoctorEmail == email {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLeaveRepo) FindOverlapping(_ context.Context, _ *gorm.DB, email string, from, to time.Time) (*entity.DoctorLeave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.leaves {
		l := r.leaves[i]
		if l.DoctorEmail == email && l.Blocking() && l.Overlaps(from, to) {
			return &l, nil
		}
	}
	return nil, nil
}

func (r *fakeLeaveRepo) FindApprovedCovering(_ context.Context, _ *gorm.DB, email string, day time.Time) (*entity.DoctorLeave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.leaves {
		l := r.leaves[i]
		if l.DoctorEmail == email && l.Status == entity.LeaveStatusApproved && l.Covers(day) {
			return &l, nil
		}
	}
	return nil, nil
}

func (r *fakeLeaveRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status entity.LeaveStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.leaves {
		if r.leaves[i].ID == id {
			r.leaves[i].Status = status
			return 1, nil
		}
	}
	return 0, nil
}

// ---- appointments ----

// fakeAppointmentRepo enforces the slot unique index like Postgres does.
// blindSlots makes FindBySlot miss, simulating a writer that slipped in
// after the pre-check.
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appts        map[uuid.UUID]*entity.Appointment
	blindSlots   bool
	failTokenFor map[uuid.UUID]bool
	// honourCtx makes reads and token writes fail once ctx is done, like a real driver.
	honourCtx bool
	// failBookedFrom fails FindBookedTimes from that call onwards; zero never fails.
	failBookedFrom int
	bookedCalls    int
}

func newFakeAppointmentRepo(appts ...entity.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{appts: map[uuid.UUID]*entity.Appointment{}, failTokenFor: map[uuid.UUID]bool{}}
	for i := range appts {
		a := appts[i]
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if a.Status == "" {
			a.Status = entity.AppointmentStatusPending
		}
		r.appts[a.ID] = &a
	}
	return r
}

func (r *fakeAppointmentRepo) get(id uuid.UUID) *entity.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

func (r *fakeAppointmentRepo) occupiedLocked(email string, day time.Time, clock string, excludeID uuid.UUID) bool {
	for _, a := range r.appts {
		if a.ID != excludeID && a.DoctorEmail == email && sameDay(a.Date, day) && a.Time == clock {
			return true
		}
	}
	return false
}

func (r *fakeAppointmentRepo) Create(_ context.Context, _ *gorm.DB, appt *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.occupiedLocked(appt.DoctorEmail, appt.Date, appt.Time, uuid.Nil) {
		return slotViolation()
	}
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	a := *appt
	r.appts[a.ID] = &a
	return nil
}

func (r *fakeAppointmentRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return r.get(id), nil
}

func (r *fakeAppointmentRepo) FindAll(_ context.Context, _ *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.appts {
		if filter.DoctorEmail != "" && a.DoctorEmail != filter.DoctorEmail {
			continue
		}
		if filter.PatientEmail != "" && a.Email != filter.PatientEmail {
			continue
		}
		if filter.Date != nil && !sameDay(a.Date, *filter.Date) {
			continue
		}
		out = append(out, *a)
	}
	sortAppointments(out)
	return out, nil
}

func (r *fakeAppointmentRepo) CountByDoctorEmail(_ context.Context, _ *gorm.DB, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.appts {
		if a.DoctorEmail == email {
			n++
		}
	}
	return n, nil
}

func (r *fakeAppointmentRepo) FindBookedTimes(_ context.Context, _ *gorm.DB, email string, day time.Time, excludeID *uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookedCalls++
	if r.failBookedFrom > 0 && r.bookedCalls >= r.failBookedFrom {
		return nil, errors.New("connection reset")
	}
	var out []string
	for _, a := range r.appts {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.DoctorEmail == email && sameDay(a.Date, day) {
			out = append(out, a.Time)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindBySlot(_ context.Context, _ *gorm.DB, email string, day time.Time, clock string, excludeID *uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.blindSlots {
		return nil, nil
	}
	for _, a := range r.appts {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.DoctorEmail == email && sameDay(a.Date, day) && a.Time == clock {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) FindImpacted(ctx context.Context, _ *gorm.DB, email string, day time.Time, cutoff string) ([]entity.Appointment, error) {
	if r.honourCtx && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.appts {
		if a.DoctorEmail == email && sameDay(a.Date, day) && a.AffectedBy(cutoff) {
			out = append(out, *a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (r *fakeAppointmentRepo) FindByRescheduleToken(_ context.Context, _ *gorm.DB, token string, now time.Time) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if a.RescheduleToken != nil && *a.RescheduleToken == token && a.HasLiveToken(now) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) SetRescheduleToken(ctx context.Context, _ *gorm.DB, id uuid.UUID, token string, expires time.Time) error {
	if r.honourCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTokenFor[id] {
		return errors.New("connection reset")
	}
	a, ok := r.appts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.RescheduleToken = &token
	a.RescheduleExpires = &expires
	return nil
}

func (r *fakeAppointmentRepo) Reschedule(_ context.Context, _ *gorm.DB, id uuid.UUID, token string, day time.Time, clock string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok || a.RescheduleToken == nil || *a.RescheduleToken != token || !a.HasLiveToken(now) {
		return 0, nil
	}
	if r.occupiedLocked(a.DoctorEmail, day, clock, id) {
		return 0, slotViolation()
	}
	a.Date = day
	a.Time = clock
	a.Status = entity.AppointmentStatusPending
	a.RescheduleToken = nil
	a.RescheduleExpires = nil
	return 1, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Status = status
	return nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appts[id]; !ok {
		return 0, nil
	}
	delete(r.appts, id)
	return 1, nil
}

// ---- audit ----

type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []entity.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, _ *gorm.DB, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = int64(len(r.logs) + 1)
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeAuditRepo) FindAll(_ context.Context, _ *gorm.DB, filter entity.AuditLogFilter) ([]entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.AuditLog
	for _, l := range r.logs {
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.Subject != "" && l.Subject != filter.Subject {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeAuditRepo) FindByID(_ context.Context, _ *gorm.DB, id int64) (*entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.logs {
		if r.logs[i].ID == id {
			l := r.logs[i]
			return &l, nil
		}
	}
	return nil, nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.logs))
	for i, l := range r.logs {
		out[i] = l.Action
	}
	return out
}

// ---- notifier ----

type sentNotice struct {
	kind  string
	email string
	token string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentNotice
	failFor map[string]bool
	// honourCtx makes sends fail once ctx is done.
	honourCtx bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: map[string]bool{}}
}

func (n *fakeNotifier) record(kind string, appt *entity.Appointment, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[appt.Email] {
		return errors.New("smtp: 550 mailbox unavailable")
	}
	n.sent = append(n.sent, sentNotice{kind: kind, email: appt.Email, token: token})
	return nil
}

func (n *fakeNotifier) SendRescheduleRequest(ctx context.Context, appt *entity.Appointment, token string) error {
	if n.honourCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	return n.record("reschedule_request", appt, token)
}

func (n *fakeNotifier) SendRescheduleConfirmation(_ context.Context, appt *entity.Appointment) error {
	return n.record("reschedule_confirmation", appt, "")
}

func (n *fakeNotifier) SendBookingConfirmation(_ context.Context, appt *entity.Appointment) error {
	return n.record("booking_confirmation", appt, "")
}

func (n *fakeNotifier) SendVisitCompleted(_ context.Context, appt *entity.Appointment) error {
	return n.record("visit_completed", appt, "")
}

func (n *fakeNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, s := range n.sent {
		if s.kind == kind {
			c++
		}
	}
	return c
}

// ---- locker ----

// noopLocker runs fn without any exclusion, leaving the unique index as the
// only guard.
type noopLocker struct{}

func (noopLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// busyLocker behaves as if another request always holds the key
type busyLocker struct{}

func (busyLocker) WithLock(context.Context, string, func(ctx context.Context) error) error {
	return service.ErrLockNotAcquired
}

// ---- fixture ----

var testGrid = scheduling.Grid{SlotLength: 15, LunchStart: "13:00", LunchLength: 45}

type fixture struct {
	doctors      *fakeDoctorRepo
	leaves       *fakeLeaveRepo
	appointments *fakeAppointmentRepo
	audit        *fakeAuditRepo
	notifier     *fakeNotifier
	locker       *service.SlotLockService

	slots       *slotUsecase
	disruption  *disruptionUsecase
	reschedule  *rescheduleUsecase
	appointment *appointmentUsecase
	leave       *leaveUsecase
	doctor      *doctorUsecase
}

func rao() entity.Doctor {
	return entity.Doctor{
		Email:          "dr.rao@hospital.in",
		Name:           "Anil Rao",
		Designation:    "Senior Consultant",
		Specialization: "Cardiology",
		WorkStart:      "10:00 AM",
		WorkEnd:        "06:00 PM",
		Availability:   true,
	}
}

func newFixture(doctors []entity.Doctor, appts ...entity.Appointment) *fixture {
	log := quietLogger()
	f := &fixture{
		doctors:      newFakeDoctorRepo(doctors...),
		leaves:       &fakeLeaveRepo{},
		appointments: newFakeAppointmentRepo(appts...),
		audit:        &fakeAuditRepo{},
		notifier:     newFakeNotifier(),
		locker:       service.NewSlotLockService(nil, time.Second, log),
	}
	auditService := service.NewAuditService(log, f.audit)
	now := func() time.Time { return fixedNow }

	f.slots = NewSlotUsecase(nil, log, testGrid, f.doctors, f.leaves, f.appointments).(*slotUsecase)
	f.slots.now = now

	f.disruption = NewDisruptionUsecase(nil, log, f.doctors, f.appointments, f.notifier, auditService, 24*time.Hour, 4).(*disruptionUsecase)
	f.disruption.now = now

	f.reschedule = NewRescheduleUsecase(nil, log, f.slots, f.doctors, f.appointments, f.locker, f.notifier, auditService).(*rescheduleUsecase)
	f.reschedule.now = now

	f.appointment = NewAppointmentUsecase(nil, log, f.slots, f.doctors, f.appointments, f.locker, f.notifier, auditService).(*appointmentUsecase)
	f.appointment.now = now

	f.leave = NewLeaveUsecase(nil, log, f.doctors, f.leaves, f.locker, auditService).(*leaveUsecase)

	f.doctor = NewDoctorUsecase(nil, log, f.doctors, nil, f.disruption, nil, auditService).(*doctorUsecase)
	f.doctor.now = now

	return f
}

func (f *fixture) close() {
	f.locker.Stop()
}

// issueToken attaches a live token to an appointment as a disruption would
func (f *fixture) issueToken(id uuid.UUID, token string, ttl time.Duration) {
	expires := fixedNow.Add(ttl)
	if err := f.appointments.SetRescheduleToken(context.Background(), nil, id, token, expires); err != nil {
		panic(err)
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func sortDoctors(ds []entity.Doctor) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].Name < ds[j].Name })
}

func sortAppointments(as []entity.Appointment) {
	sort.Slice(as, func(i, j int) bool {
		if !sameDay(as[i].Date, as[j].Date) {
			return as[i].Date.Before(as[j].Date)
		}
		return as[i].Time < as[j].Time
	})
}
