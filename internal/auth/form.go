package auth

import "github.com/GitGautamHub/smart-doctor-cli/internal/api"

// Mode selects which flow Submit runs.
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

// Form is the transient login/registration state. It is never persisted;
// toggling the mode resets every other field to its default.
type Form struct {
	Mode     Mode
	Email    string
	Password string

	// Registration only.
	Role            string
	DoctorName      string
	DoctorSpecialty string

	// Error holds the last submit failure, Notice the post-registration
	// instruction. Both are display strings, cleared on toggle.
	Error  string
	Notice string
}

func defaultForm() Form {
	return Form{Mode: ModeLogin, Role: api.RolePatient}
}
