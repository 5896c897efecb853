package stub

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	dateRE = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	slotRE = regexp.MustCompile(`\b([01][0-9]|2[0-3]):[0-5][0-9]\b`)
)

// Assistant is the scripted stand-in for the production agent. It routes
// on keywords and answers from the same tables the real tools query; no
// model is involved, which keeps the stub runnable offline.
type Assistant struct {
	store *Store
	log   *log.Logger
	now   func() time.Time
}

func NewAssistant(store *Store, logger *log.Logger) *Assistant {
	if logger == nil {
		logger = log.Default()
	}
	return &Assistant{store: store, log: logger, now: time.Now}
}

// Reply produces the assistant's answer to one user message.
func (a *Assistant) Reply(ctx context.Context, user *User, text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "report"):
		return a.dailyReport(ctx, user, text)
	case strings.Contains(lower, "book"):
		return a.book(ctx, user, text)
	case strings.Contains(lower, "availab") || strings.Contains(lower, "free slot"):
		return a.availability(ctx, text)
	case strings.Contains(lower, "doctor"):
		return a.listDoctors(ctx)
	case strings.HasPrefix(lower, "hello") || strings.HasPrefix(lower, "hi"):
		return "Hello! I can check doctor availability, book appointments, and generate daily reports for doctors. What would you like to do?"
	default:
		return "I can check doctor availability, book appointments, and generate daily reports for doctors. Try \"Is Dr. Ahuja available on 2025-07-02?\""
	}
}

func (a *Assistant) availability(ctx context.Context, text string) string {
	doctor, err := a.findDoctor(ctx, text)
	if err != nil {
		return a.listDoctors(ctx)
	}

	day := a.parseDate(text)
	free, err := a.store.FreeSlots(ctx, doctor.ID, day)
	if err != nil {
		a.log.Printf("[assistant] availability doctor_id=%d: %v", doctor.ID, err)
		return "Sorry, I could not look up availability right now. Please try again."
	}
	date := day.Format("2006-01-02")
	if len(free) == 0 {
		return fmt.Sprintf("%s is fully booked on %s. Would you like to try another date?", doctor.Name, date)
	}
	return fmt.Sprintf("%s is available on %s at: %s.", doctor.Name, date, strings.Join(free, ", "))
}

func (a *Assistant) book(ctx context.Context, user *User, text string) string {
	doctor, err := a.findDoctor(ctx, text)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "Please tell me which doctor you would like to book, for example: \"Book Dr. Ahuja on 2025-07-02 at 09:30\"."
		}
		a.log.Printf("[assistant] find doctor: %v", err)
		return "Sorry, I could not look up our doctors right now. Please try again."
	}

	date := dateRE.FindString(text)
	slot := slotRE.FindString(text)
	if date == "" || slot == "" {
		return "Please provide the appointment date (YYYY-MM-DD) and a time slot (HH:MM)."
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "Invalid date format. Please use `YYYY-MM-DD`."
	}

	if _, err := a.store.AppointmentAt(ctx, doctor.ID, day, slot); err == nil {
		return fmt.Sprintf("Time slot '%s' on %s already booked for %s in our records.", slot, date, doctor.Name)
	} else if err != gorm.ErrRecordNotFound {
		a.log.Printf("[assistant] slot check doctor_id=%d: %v", doctor.ID, err)
		return "Sorry, something went wrong while booking. Please try again."
	}

	patient, err := a.patientFor(ctx, user)
	if err != nil {
		a.log.Printf("[assistant] patient for user_id=%d: %v", user.ID, err)
		return "Sorry, something went wrong while booking. Please try again."
	}

	eventID := uuid.NewString()
	appt := &Appointment{
		DoctorID:              doctor.ID,
		PatientID:             patient.ID,
		AppointmentDate:       Day(day),
		TimeSlot:              slot,
		Status:                StatusConfirmed,
		GoogleCalendarEventID: &eventID,
	}
	if err := a.store.CreateAppointment(ctx, appt); err != nil {
		a.log.Printf("[assistant] create appointment doctor_id=%d: %v", doctor.ID, err)
		return "Sorry, something went wrong while booking. Please try again."
	}

	return fmt.Sprintf("Appointment confirmed for %s with %s on %s at %s. A confirmation email has been sent to %s.",
		patient.Name, doctor.Name, date, slot, patient.Email)
}

func (a *Assistant) dailyReport(ctx context.Context, user *User, text string) string {
	if user.Role != RoleDoctor {
		return "Access denied. Only users with 'doctor' role can request reports."
	}

	doctor, err := a.store.DoctorByEmail(ctx, user.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "No doctor profile is linked to your account yet, so there is nothing to report on."
		}
		a.log.Printf("[assistant] doctor for user_id=%d: %v", user.ID, err)
		return "Sorry, I could not generate the report right now. Please try again."
	}

	day := a.parseDate(text)
	appts, err := a.store.AppointmentsOn(ctx, doctor.ID, day)
	if err != nil {
		a.log.Printf("[assistant] report doctor_id=%d: %v", doctor.ID, err)
		return "Sorry, I could not generate the report right now. Please try again."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "On %s, %s has %d appointments.", day.Format("2006-01-02"), doctor.Name, len(appts))
	for _, app := range appts {
		name := "unknown patient"
		if app.Patient != nil {
			name = app.Patient.Name
		}
		fmt.Fprintf(&b, "\n- %s with %s (%s)", app.TimeSlot, name, app.Status)
	}
	return b.String()
}

func (a *Assistant) listDoctors(ctx context.Context) string {
	doctors, err := a.store.ListDoctors(ctx, 0, 100)
	if err != nil {
		a.log.Printf("[assistant] list doctors: %v", err)
		return "Sorry, I could not look up our doctors right now. Please try again."
	}
	if len(doctors) == 0 {
		return "No doctors found in the system at the moment."
	}
	var b strings.Builder
	b.WriteString("Here are our doctors:")
	for _, d := range doctors {
		fmt.Fprintf(&b, "\n- %s (%s)", d.Name, d.Specialty)
	}
	return b.String()
}

// findDoctor matches a doctor mentioned anywhere in text by name, with or
// without the "Dr." honorific.
func (a *Assistant) findDoctor(ctx context.Context, text string) (*Doctor, error) {
	doctors, err := a.store.ListDoctors(ctx, 0, 100)
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(text)
	for i := range doctors {
		name := strings.ToLower(doctors[i].Name)
		bare := strings.TrimPrefix(strings.TrimPrefix(name, "dr. "), "dr ")
		if bare == "" {
			continue
		}
		if strings.Contains(lower, name) || strings.Contains(lower, bare) {
			return &doctors[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// patientFor returns the patient profile behind a user account, creating
// one from the email's local part when the account predates its profile.
func (a *Assistant) patientFor(ctx context.Context, user *User) (*Patient, error) {
	patient, err := a.store.PatientByEmail(ctx, user.Email)
	if err == nil {
		return patient, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	uid := user.ID
	patient = &Patient{
		UserID: &uid,
		Name:   emailLocalPart(user.Email),
		Email:  user.Email,
	}
	if err := a.store.CreatePatient(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (a *Assistant) parseDate(text string) time.Time {
	if m := dateRE.FindString(text); m != "" {
		if day, err := time.Parse("2006-01-02", m); err == nil {
			return Day(day)
		}
	}
	return Day(a.now())
}

func emailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
