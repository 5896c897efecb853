package api

// Conversation roles as the backend stores them.
const (
	RoleHuman = "human"
	RoleAI    = "ai"
)

// Account roles.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Message is one transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// User is the profile the backend derives from a bearer token.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// RegisterRequest creates an account. Name and Specialty are required for
// doctors and must be absent for patients.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
	Specialty string `json:"specialty,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// historyEntry is a stored conversation row. Timestamp stays a string
// because the backend emits naive ISO 8601 datetimes that time.Time
// refuses to parse.
type historyEntry struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type chatRequest struct {
	UserMessage string    `json:"user_message"`
	ChatHistory []Message `json:"chat_history"`
}

type chatResponse struct {
	AIResponse         string    `json:"ai_response"`
	UpdatedChatHistory []Message `json:"updated_chat_history"`
}
