package stub

import (
	"context"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &Patient{}, &Doctor{}, &Appointment{}, &HistoryEntry{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedDoctor(t *testing.T, s *Store) *Doctor {
	t.Helper()
	d := &Doctor{Name: "Dr. Ahuja", Specialty: "Cardiology", Email: "ahuja@smartdoctor.local"}
	if err := s.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	return d
}

func seedPatient(t *testing.T, s *Store) *Patient {
	t.Helper()
	p := &Patient{Name: "alice", Email: "alice@b.com"}
	if err := s.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return p
}

func TestFreeSlots_FullGrid(t *testing.T) {
	s := NewStore(openTestDB(t))
	doc := seedDoctor(t, s)

	day := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	free, err := s.FreeSlots(context.Background(), doc.ID, day)
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	if len(free) != 16 {
		t.Fatalf("got %d free slots, want 16", len(free))
	}
	if free[0] != "09:00" || free[len(free)-1] != "16:30" {
		t.Fatalf("grid bounds wrong: first=%s last=%s", free[0], free[len(free)-1])
	}
}

func TestFreeSlots_ExcludesBooked(t *testing.T) {
	s := NewStore(openTestDB(t))
	doc := seedDoctor(t, s)
	pat := seedPatient(t, s)

	day := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	appt := &Appointment{
		DoctorID:        doc.ID,
		PatientID:       pat.ID,
		AppointmentDate: Day(day),
		TimeSlot:        "09:00",
		Status:          StatusPending,
	}
	if err := s.CreateAppointment(context.Background(), appt); err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	free, err := s.FreeSlots(context.Background(), doc.ID, day)
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	if len(free) != 15 {
		t.Fatalf("got %d free slots, want 15", len(free))
	}
	for _, slot := range free {
		if slot == "09:00" {
			t.Fatalf("booked slot 09:00 still listed as free")
		}
	}
}

func TestAppointmentAt_DetectsConflict(t *testing.T) {
	s := NewStore(openTestDB(t))
	doc := seedDoctor(t, s)
	pat := seedPatient(t, s)
	ctx := context.Background()

	day := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	if _, err := s.AppointmentAt(ctx, doc.ID, day, "10:30"); err != gorm.ErrRecordNotFound {
		t.Fatalf("empty slot lookup err = %v, want ErrRecordNotFound", err)
	}

	appt := &Appointment{
		DoctorID: doc.ID, PatientID: pat.ID,
		AppointmentDate: Day(day), TimeSlot: "10:30", Status: StatusConfirmed,
	}
	if err := s.CreateAppointment(ctx, appt); err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	got, err := s.AppointmentAt(ctx, doc.ID, day, "10:30")
	if err != nil {
		t.Fatalf("slot lookup: %v", err)
	}
	if got.ID != appt.ID {
		t.Fatalf("got appointment %d, want %d", got.ID, appt.ID)
	}
}

func TestCountAppointments_Filters(t *testing.T) {
	s := NewStore(openTestDB(t))
	doc := seedDoctor(t, s)
	pat := seedPatient(t, s)
	ctx := context.Background()

	today := Day(time.Now())
	yesterday := today.AddDate(0, 0, -1)

	for _, a := range []Appointment{
		{DoctorID: doc.ID, PatientID: pat.ID, AppointmentDate: today, TimeSlot: "09:00", Status: StatusPending},
		{DoctorID: doc.ID, PatientID: pat.ID, AppointmentDate: today, TimeSlot: "09:30", Status: StatusConfirmed},
		{DoctorID: doc.ID, PatientID: pat.ID, AppointmentDate: yesterday, TimeSlot: "09:00", Status: StatusCompleted},
	} {
		a := a
		if err := s.CreateAppointment(ctx, &a); err != nil {
			t.Fatalf("create appointment: %v", err)
		}
	}

	n, err := s.CountAppointments(ctx, doc.ID, today, StatusPending, StatusConfirmed)
	if err != nil {
		t.Fatalf("count today: %v", err)
	}
	if n != 2 {
		t.Fatalf("today count = %d, want 2", n)
	}

	n, err = s.CountAppointments(ctx, doc.ID, time.Time{}, StatusCompleted)
	if err != nil {
		t.Fatalf("count completed: %v", err)
	}
	if n != 1 {
		t.Fatalf("completed count = %d, want 1", n)
	}
}

func TestHistoryForUser_OrderAndScope(t *testing.T) {
	s := NewStore(openTestDB(t))
	ctx := context.Background()

	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	rows := []HistoryEntry{
		{UserID: 1, Role: MsgRoleHuman, Content: "Hi", Timestamp: base},
		{UserID: 1, Role: MsgRoleAI, Content: "Hello", Timestamp: base.Add(time.Second)},
		{UserID: 2, Role: MsgRoleHuman, Content: "other user", Timestamp: base},
	}
	for i := range rows {
		if err := s.AppendHistory(ctx, &rows[i]); err != nil {
			t.Fatalf("append history: %v", err)
		}
	}

	got, err := s.HistoryForUser(ctx, 1, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].Content != "Hi" || got[1].Content != "Hello" {
		t.Fatalf("rows out of order: %q then %q", got[0].Content, got[1].Content)
	}
}

func TestSeed_IsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := Seed(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	doctors, err := NewStore(db).ListDoctors(ctx, 0, 100)
	if err != nil {
		t.Fatalf("list doctors: %v", err)
	}
	if len(doctors) != 2 {
		t.Fatalf("got %d doctors after double seed, want 2", len(doctors))
	}
}
