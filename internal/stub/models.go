package stub

import "time"

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Transcript roles, matching what the client sends back as chat_history.
const (
	MsgRoleHuman = "human"
	MsgRoleAI    = "ai"
)

type User struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string `gorm:"not null" json:"-"`
	Role           string `gorm:"type:varchar(16);not null;default:patient" json:"role"`
	IsActive       bool   `gorm:"not null;default:true" json:"is_active"`
}

func (User) TableName() string { return "users" }

type Patient struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      *uint64 `gorm:"uniqueIndex" json:"user_id"`
	Name        string  `gorm:"index;not null" json:"name"`
	Email       string  `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

func (Patient) TableName() string { return "patients" }

type Doctor struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"index;not null" json:"name"`
	Specialty string `gorm:"not null" json:"specialty"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
}

func (Doctor) TableName() string { return "doctors" }

type Appointment struct {
	ID                    uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID              uint64    `gorm:"index;not null" json:"doctor_id"`
	PatientID             uint64    `gorm:"index;not null" json:"patient_id"`
	AppointmentDate       time.Time `gorm:"not null" json:"appointment_date"`
	TimeSlot              string    `gorm:"type:varchar(8);not null" json:"time_slot"`
	Status                string    `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	Notes                 *string   `json:"notes"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
	GoogleCalendarEventID *string   `json:"google_calendar_event_id"`

	Doctor  *Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Appointment) TableName() string { return "appointments" }

// HistoryEntry is one stored transcript row. Role is "human" or "ai".
type HistoryEntry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"index;not null" json:"user_id"`
	Role      string    `gorm:"type:varchar(8);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (HistoryEntry) TableName() string { return "conversation_history" }
