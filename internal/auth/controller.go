// Package auth drives the login/registration form to an established
// session, or to a single human-readable error string.
package auth

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/GitGautamHub/smart-doctor-cli/internal/api"
	"github.com/GitGautamHub/smart-doctor-cli/internal/session"
)

const (
	errTextAuthFailed = "Authentication failed"
	errTextNetwork    = "Network error or server unavailable"

	noticeRegistered = "Registration successful! Please log in."
)

// Controller owns the auth form. One submit may be in flight at a time;
// a second one while pending is a silent no-op.
type Controller struct {
	api   *api.Client
	store *session.Store
	log   *log.Logger

	mu   sync.Mutex
	busy bool
	form Form
}

func NewController(client *api.Client, store *session.Store, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{api: client, store: store, log: logger, form: defaultForm()}
}

// Form returns a snapshot of the current form state.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// SetCredentials fills the fields both flows share.
func (c *Controller) SetCredentials(email, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Email = email
	c.form.Password = password
}

// SetRegistration fills the register-only fields. Name and specialty only
// travel to the backend when role is doctor.
func (c *Controller) SetRegistration(role, doctorName, doctorSpecialty string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Role = role
	c.form.DoctorName = doctorName
	c.form.DoctorSpecialty = doctorSpecialty
}

// ToggleMode flips between login and register and unconditionally resets
// every other field, the error included.
func (c *Controller) ToggleMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	mode := ModeRegister
	if c.form.Mode == ModeRegister {
		mode = ModeLogin
	}
	c.form = defaultForm()
	c.form.Mode = mode
}

// Submit issues exactly one HTTP request for the current form.
//
// Registration success creates no session: the mode flips back to login,
// the fields clear, and the notice tells the user to log in. Login success
// persists the token and returns it so the caller can bootstrap the
// conversation. Failures of either flow land in Form().Error and leave any
// existing session untouched.
func (c *Controller) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return "", nil
	}
	c.busy = true
	c.form.Error = ""
	c.form.Notice = ""
	form := c.form
	c.mu.Unlock()

	var (
		token string
		err   error
	)
	if form.Mode == ModeRegister {
		err = c.register(ctx, form)
	} else {
		token, err = c.login(ctx, form)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.busy = false }()

	if err != nil {
		c.form.Error = submitErrorText(err)
		return "", err
	}

	if form.Mode == ModeRegister {
		c.form = defaultForm()
		c.form.Notice = noticeRegistered
		return "", nil
	}

	c.form = defaultForm()
	return token, nil
}

func (c *Controller) register(ctx context.Context, form Form) error {
	req := api.RegisterRequest{
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
	}
	if form.Role == api.RoleDoctor {
		req.Name = form.DoctorName
		req.Specialty = form.DoctorSpecialty
	}
	return c.api.Register(ctx, req)
}

func (c *Controller) login(ctx context.Context, form Form) (string, error) {
	token, err := c.api.Login(ctx, form.Email, form.Password)
	if err != nil {
		return "", err
	}
	if err := c.store.SetToken(token); err != nil {
		// The session still works for this run; it just will not survive
		// a restart.
		c.log.Printf("[auth] persist token: %v", err)
	}
	return token, nil
}

// submitErrorText maps a submit failure to the single string the form
// shows: the backend's detail when there is one, a generic auth failure
// for detail-less HTTP errors, and a network message when no response
// arrived at all.
func submitErrorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return errTextAuthFailed
	}
	return errTextNetwork
}
