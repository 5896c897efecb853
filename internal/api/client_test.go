package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 0)
}

func TestRequestsCarryRequestID(t *testing.T) {
	var id string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		id = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(User{ID: 1})
	})

	_, err := c.Me(context.Background(), "T")
	require.NoError(t, err)
	assert.Len(t, id, 26, "request id should be a ULID")
}

func TestLoginSpeaksPasswordFlow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token/", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "a@b.com", r.PostFormValue("username"))
		require.Equal(t, "pw", r.PostFormValue("password"))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "T", "token_type": "bearer"})
	})

	token, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "T", token)
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token_type": "bearer"})
	})

	_, err := c.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
}

func TestErrorCarriesStatusAndDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Email already registered"})
	})

	err := c.Register(context.Background(), RegisterRequest{Email: "a@b.com", Password: "pw", Role: RolePatient})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Email already registered", apiErr.Detail)
	assert.Equal(t, "Email already registered", Detail(err))
	assert.False(t, IsSessionExpired(err))
}

func TestSessionExpiredCovers401And403(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		e := &Error{StatusCode: status}
		assert.True(t, e.SessionExpired(), "status %d", status)
	}
	assert.False(t, (&Error{StatusCode: http.StatusInternalServerError}).SessionExpired())
}

func TestErrorToleratesNonJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := c.Me(context.Background(), "T")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Detail)
}

func TestHistoryKeepsOrderAndDropsRowMetadata(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer T", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 7, "user_id": 1, "role": "human", "content": "Hi", "timestamp": "2025-07-01T09:00:00"},
			{"id": 8, "user_id": 1, "role": "ai", "content": "Hello", "timestamp": "2025-07-01T09:00:01"},
		})
	})

	msgs, err := c.History(context.Background(), "T")
	require.NoError(t, err)
	assert.Equal(t, []Message{
		{Role: RoleHuman, Content: "Hi"},
		{Role: RoleAI, Content: "Hello"},
	}, msgs)
}

func TestChatEncodesNilHistoryAsEmptyArray(t *testing.T) {
	var raw []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]any{
			"ai_response":          "Hello",
			"updated_chat_history": []Message{{Role: RoleHuman, Content: "Hi"}, {Role: RoleAI, Content: "Hello"}},
		})
	})

	msgs, err := c.Chat(context.Background(), "T", "Hi", nil)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"chat_history":[]`)
	assert.Len(t, msgs, 2)
}
