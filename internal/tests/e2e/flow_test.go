// Package e2e runs the real client controllers against the in-process stub
// backend: every request crosses a real HTTP boundary, every row lands in a
// real (in-memory) database.
package e2e

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GitGautamHub/smart-doctor-cli/internal/api"
	"github.com/GitGautamHub/smart-doctor-cli/internal/auth"
	"github.com/GitGautamHub/smart-doctor-cli/internal/chat"
	"github.com/GitGautamHub/smart-doctor-cli/internal/config"
	"github.com/GitGautamHub/smart-doctor-cli/internal/session"
	"github.com/GitGautamHub/smart-doctor-cli/internal/stub"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stack struct {
	auth    *auth.Controller
	chat    *chat.Controller
	store   *session.Store
	baseURL string
}

func newStack(t *testing.T) *stack {
	t.Helper()

	db, err := stub.Open("file::memory:")
	require.NoError(t, err)
	require.NoError(t, stub.Seed(context.Background(), db))

	router := stub.NewRouter(db, config.Config{
		JWTSecret: "e2e-secret",
		TokenTTL:  30 * time.Minute,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	store, err := session.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	client := api.New(srv.URL, 0)
	return &stack{
		auth:    auth.NewController(client, store, nil),
		chat:    chat.NewController(client, store, nil),
		store:   store,
		baseURL: srv.URL,
	}
}

// register drives the auth controller through a full registration; the
// form must land back on login with the instruction notice.
func (s *stack) register(t *testing.T, email, password, role, name, specialty string) {
	t.Helper()
	if s.auth.Form().Mode != auth.ModeRegister {
		s.auth.ToggleMode()
	}
	s.auth.SetCredentials(email, password)
	s.auth.SetRegistration(role, name, specialty)

	token, err := s.auth.Submit(context.Background())
	require.NoError(t, err)
	require.Empty(t, token, "registration must not create a session")
	require.Equal(t, auth.ModeLogin, s.auth.Form().Mode)
	require.NotEmpty(t, s.auth.Form().Notice)
}

func (s *stack) login(t *testing.T, email, password string) {
	t.Helper()
	s.auth.SetCredentials(email, password)
	token, err := s.auth.Submit(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NoError(t, s.chat.Bootstrap(context.Background(), token))
}

func lastMessage(t *testing.T, c *chat.Controller) api.Message {
	t.Helper()
	msgs := c.Messages()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func TestPatientAvailabilityAndBookingFlow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	s.register(t, "alice@example.com", "pw123456", api.RolePatient, "", "")
	s.login(t, "alice@example.com", "pw123456")

	// fresh account: the welcome message seeds the transcript
	require.Equal(t, []api.Message{{Role: api.RoleAI, Content: chat.WelcomeText}}, s.chat.Messages())
	profile := s.chat.Profile()
	require.NotNil(t, profile)
	assert.Equal(t, api.RolePatient, profile.Role)

	// token survived the round trip through the session store
	stored, err := s.store.Token()
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	require.NoError(t, s.chat.Send(ctx, "Is Dr. Ahuja available on 2025-07-02?"))
	reply := lastMessage(t, s.chat)
	assert.Equal(t, api.RoleAI, reply.Role)
	assert.Contains(t, reply.Content, "Dr. Ahuja is available on 2025-07-02")

	require.NoError(t, s.chat.Send(ctx, "Book Dr. Ahuja on 2025-07-02 at 09:30"))
	assert.Contains(t, lastMessage(t, s.chat).Content, "Appointment confirmed")

	// the canonical transcript holds every exchange in order
	msgs := s.chat.Messages()
	assert.Equal(t, chat.WelcomeText, msgs[0].Content)
	assert.Equal(t, "Is Dr. Ahuja available on 2025-07-02?", msgs[1].Content)

	// report shortcut is role-gated: for a patient it never leaves the client
	before := len(s.chat.Messages())
	require.NoError(t, s.chat.RequestDailyReport(ctx))
	assert.Len(t, s.chat.Messages(), before)
}

func TestDoctorReportFlow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	s.register(t, "smith@example.com", "pw123456", api.RoleDoctor, "Dr. Smith", "Neurology")
	s.login(t, "smith@example.com", "pw123456")

	require.NoError(t, s.chat.RequestDailyReport(ctx))

	msgs := s.chat.Messages()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, chat.ReportPrompt, msgs[len(msgs)-2].Content)
	assert.Contains(t, msgs[len(msgs)-1].Content, "Dr. Smith has 0 appointments")
}

func TestHistorySurvivesRelogin(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	s.register(t, "bob@example.com", "pw123456", api.RolePatient, "", "")
	s.login(t, "bob@example.com", "pw123456")
	require.NoError(t, s.chat.Send(ctx, "Which doctors do you have?"))

	s.chat.Logout()
	require.False(t, s.chat.LoggedIn())
	stored, err := s.store.Token()
	require.NoError(t, err)
	require.Empty(t, stored)

	s.login(t, "bob@example.com", "pw123456")

	// the stored history comes back verbatim: the exchange, without the
	// synthetic welcome message the first session started with
	msgs := s.chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, api.Message{Role: api.RoleHuman, Content: "Which doctors do you have?"}, msgs[0])
	assert.Equal(t, api.RoleAI, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "Dr. Ahuja")
}

func TestWrongPasswordSurfacesBackendDetail(t *testing.T) {
	s := newStack(t)

	s.register(t, "carol@example.com", "pw123456", api.RolePatient, "", "")
	s.auth.SetCredentials("carol@example.com", "wrong")

	token, err := s.auth.Submit(context.Background())
	require.Error(t, err)
	assert.Empty(t, token)
	assert.Equal(t, "Incorrect username or password", s.auth.Form().Error)
	assert.False(t, s.chat.LoggedIn())
}

func TestTamperedTokenForcesLogoutOnBootstrap(t *testing.T) {
	s := newStack(t)

	require.NoError(t, s.store.SetToken("not-a-real-token"))
	err := s.chat.Bootstrap(context.Background(), "not-a-real-token")
	require.Error(t, err)

	assert.False(t, s.chat.LoggedIn())
	assert.Nil(t, s.chat.Profile())
	assert.Equal(t, []api.Message{{Role: api.RoleAI, Content: chat.NoticeLoggedOut}}, s.chat.Messages())

	stored, err := s.store.Token()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDuplicateRegistrationShowsDetailInline(t *testing.T) {
	s := newStack(t)

	s.register(t, "dave@example.com", "pw123456", api.RolePatient, "", "")

	require.Equal(t, auth.ModeLogin, s.auth.Form().Mode)
	s.auth.ToggleMode()
	s.auth.SetCredentials("dave@example.com", "pw123456")
	s.auth.SetRegistration(api.RolePatient, "", "")

	_, err := s.auth.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Email already registered", s.auth.Form().Error)
	assert.Equal(t, auth.ModeRegister, s.auth.Form().Mode, "a failed registration stays on the form")
}

func TestRegisteredDoctorIsBookable(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	// a doctor registration also creates the doctor fixture the
	// assistant's availability lookup resolves against
	s.register(t, "who@example.com", "pw123456", api.RoleDoctor, "Dr. Who", "Chronology")

	s.register(t, "eve@example.com", "pw123456", api.RolePatient, "", "")
	s.login(t, "eve@example.com", "pw123456")

	require.NoError(t, s.chat.Send(ctx, "Is Dr. Who available on 2025-07-02?"))
	reply := lastMessage(t, s.chat)
	assert.True(t, strings.Contains(reply.Content, "Dr. Who is available") ||
		strings.Contains(reply.Content, "fully booked"), "reply: %s", reply.Content)
}
