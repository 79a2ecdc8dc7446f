package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apt-tech/connect-backend/internal/meetings"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newMeetingRouter() *gin.Engine {
	svc := meetings.NewService(meetings.NewMemoryRepository())
	ver := &fakeVerifier{claims: map[string]map[string]interface{}{
		"host-token": {"sub": "host-1"},
	}}
	g := gin.New()
	NewMeetingHandler(svc, ver, nil).Register(g)
	return g
}

func postMeeting(g *gin.Engine, body, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	g.ServeHTTP(w, req)
	return w
}

func TestCreateMeeting(t *testing.T) {
	g := newMeetingRouter()

	// unauthenticated -> 401
	require.Equal(t, http.StatusUnauthorized, postMeeting(g, `{"roomId":"room-1"}`, "").Code)

	// missing roomId -> 400
	require.Equal(t, http.StatusBadRequest, postMeeting(g, `{}`, "host-token").Code)

	// create -> 201, repeat -> 409
	require.Equal(t, http.StatusCreated, postMeeting(g, `{"roomId":"room-1"}`, "host-token").Code)
	require.Equal(t, http.StatusConflict, postMeeting(g, `{"roomId":"room-1"}`, "host-token").Code)
}
