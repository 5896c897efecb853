// Package chat owns the conversation state: the ordered transcript, the
// current session, and the one-exchange-at-a-time busy gate.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/GitGautamHub/smart-doctor-cli/internal/api"
	"github.com/GitGautamHub/smart-doctor-cli/internal/session"
)

// Transcript notices. The assistant speaks these, the backend never does.
const (
	WelcomeText          = "Hello! I'm your Smart Doctor Assistant. How can I help you today?"
	NoticeLoggedOut      = "You have been logged out."
	NoticeSessionExpired = "Your session has expired. Please log in again."
)

// Controller mediates between the UI, the session store and the backend.
// All exported methods are safe for concurrent use; the busy flag, not a
// queue, is what keeps exchanges serialized.
type Controller struct {
	api   *api.Client
	store *session.Store
	log   *log.Logger

	mu       sync.Mutex
	busy     bool
	token    string
	profile  *api.User
	messages []api.Message
}

func NewController(client *api.Client, store *session.Store, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{api: client, store: store, log: logger}
}

// Bootstrap establishes a session from token: it fetches the profile, then
// the stored transcript. Any failure on either call invalidates the session
// wholesale; there is no telling a dead server from a dead token here, so
// both end in a logout.
func (c *Controller) Bootstrap(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	// 1) who does the backend say this token belongs to
	profile, err := c.api.Me(ctx, token)
	if err != nil {
		c.forceLogout()
		return err
	}

	// 2) their stored transcript, oldest first
	history, err := c.api.History(ctx, token)
	if err != nil {
		c.forceLogout()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.profile = profile
	if len(history) == 0 {
		c.messages = []api.Message{{Role: api.RoleAI, Content: WelcomeText}}
	} else {
		c.messages = history
	}
	return nil
}

// Send runs one exchange: optimistic append, one authenticated POST, then
// wholesale replacement of the transcript with the backend's version. Blank
// text, a missing session, or an exchange already in flight all make this a
// silent no-op.
func (c *Controller) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	if c.busy || c.token == "" {
		c.mu.Unlock()
		return nil
	}
	// 1) gate further sends, append the human message optimistically and
	// snapshot the history as it stood before the append
	c.busy = true
	prior := historyPayload(c.messages)
	c.messages = append(c.messages, api.Message{Role: api.RoleHuman, Content: text})
	token := c.token
	c.mu.Unlock()

	// 2) one exchange on the wire, no lock held
	updated, err := c.api.Chat(ctx, token, text, prior)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.busy = false }()

	switch {
	case err == nil:
		// 3) the backend's transcript replaces ours, optimistic entry included
		c.messages = updated
		return nil
	case api.IsSessionExpired(err):
		// 4) dead token: drop the session and tell the user in-transcript
		c.logoutLocked()
		c.messages = append(c.messages, api.Message{Role: api.RoleAI, Content: NoticeSessionExpired})
		return err
	default:
		// 5) transient failure: keep the optimistic entry, append the reason
		c.messages = append(c.messages, api.Message{Role: api.RoleAI, Content: errorNotice(err)})
		return err
	}
}

// Logout drops the session and resets the transcript to a single notice.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logoutLocked()
}

func (c *Controller) forceLogout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logoutLocked()
}

func (c *Controller) logoutLocked() {
	c.token = ""
	c.profile = nil
	c.messages = []api.Message{{Role: api.RoleAI, Content: NoticeLoggedOut}}
	if err := c.store.Clear(); err != nil {
		c.log.Printf("[chat] clear session: %v", err)
	}
}

// LoggedIn reports whether a session is currently established.
func (c *Controller) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != ""
}

// Busy reports whether an exchange is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Profile returns the authenticated user, or nil when logged out.
func (c *Controller) Profile() *api.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return nil
	}
	p := *c.profile
	return &p
}

// Messages returns a copy of the transcript in display order.
func (c *Controller) Messages() []api.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// historyPayload filters a transcript down to the human/ai entries the
// backend accepts as chat_history.
func historyPayload(msgs []api.Message) []api.Message {
	out := make([]api.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == api.RoleHuman || m.Role == api.RoleAI {
			out = append(out, m)
		}
	}
	return out
}

func errorNotice(err error) string {
	reason := api.Detail(err)
	if reason == "" {
		reason = err.Error()
	}
	return fmt.Sprintf("Sorry, something went wrong: %s", reason)
}
