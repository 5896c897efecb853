package stub

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
)

// Open opens the sqlite database at dsn and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&User{}, &Patient{}, &Doctor{}, &Appointment{}, &HistoryEntry{}); err != nil {
		return nil, err
	}
	return db, nil
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Day truncates t to midnight UTC, the granularity appointment dates use.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Store) CreateUser(ctx context.Context, u *User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id uint64) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreatePatient(ctx context.Context, p *Patient) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) SavePatient(ctx context.Context, p *Patient) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *Store) PatientByEmail(ctx context.Context, email string) (*Patient, error) {
	var p Patient
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) PatientByID(ctx context.Context, id uint64) (*Patient, error) {
	var p Patient
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPatients(ctx context.Context, offset, limit int) ([]Patient, error) {
	var out []Patient
	if err := s.db.WithContext(ctx).Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateDoctor(ctx context.Context, d *Doctor) error {
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *Store) DoctorByID(ctx context.Context, id uint64) (*Doctor, error) {
	var d Doctor
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) DoctorByEmail(ctx context.Context, email string) (*Doctor, error) {
	var d Doctor
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// DoctorByName matches case-insensitively, the way the booking flow refers
// to doctors.
func (s *Store) DoctorByName(ctx context.Context, name string) (*Doctor, error) {
	var d Doctor
	if err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) ListDoctors(ctx context.Context, offset, limit int) ([]Doctor, error) {
	var out []Doctor
	if err := s.db.WithContext(ctx).Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *Appointment) error {
	return s.db.WithContext(ctx).Create(a).Error
}

// AppointmentAt returns the appointment holding a doctor's slot on day, or
// gorm.ErrRecordNotFound when the slot is free.
func (s *Store) AppointmentAt(ctx context.Context, doctorID uint64, day time.Time, slot string) (*Appointment, error) {
	var a Appointment
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_date = ? AND time_slot = ?", doctorID, Day(day), slot).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AppointmentsOn returns a doctor's appointments for one day, earliest
// slot first, with patients preloaded.
func (s *Store) AppointmentsOn(ctx context.Context, doctorID uint64, day time.Time) ([]Appointment, error) {
	var out []Appointment
	err := s.db.WithContext(ctx).
		Preload("Patient").
		Where("doctor_id = ? AND appointment_date = ?", doctorID, Day(day)).
		Order("time_slot").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountAppointments counts a doctor's appointments on day restricted to
// statuses; a zero day means any date, no statuses means any status.
func (s *Store) CountAppointments(ctx context.Context, doctorID uint64, day time.Time, statuses ...string) (int64, error) {
	q := s.db.WithContext(ctx).Model(&Appointment{}).Where("doctor_id = ?", doctorID)
	if !day.IsZero() {
		q = q.Where("appointment_date = ?", Day(day))
	}
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// FreeSlots returns the half-hour slots between 09:00 and 17:00 that are
// not booked for a doctor on day, in ascending order.
func (s *Store) FreeSlots(ctx context.Context, doctorID uint64, day time.Time) ([]string, error) {
	appts, err := s.AppointmentsOn(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}
	booked := make(map[string]bool, len(appts))
	for _, app := range appts {
		booked[app.TimeSlot] = true
	}
	free := make([]string, 0, 16)
	for hour := 9; hour < 17; hour++ {
		for _, min := range []string{"00", "30"} {
			slot := fmt.Sprintf("%02d:%s", hour, min)
			if !booked[slot] {
				free = append(free, slot)
			}
		}
	}
	return free, nil
}

func (s *Store) AppendHistory(ctx context.Context, e *HistoryEntry) error {
	return s.db.WithContext(ctx).Create(e).Error
}

// HistoryForUser returns a user's transcript rows, oldest first.
func (s *Store) HistoryForUser(ctx context.Context, userID uint64, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []HistoryEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
