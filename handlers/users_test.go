package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/apt-tech/connect-backend/internal/models"
	"github.com/apt-tech/connect-backend/internal/sessions"
	"github.com/apt-tech/connect-backend/internal/tokens"
	"github.com/apt-tech/connect-backend/internal/users"
	"github.com/apt-tech/connect-backend/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToken / fakeVerifier implement middleware.Token / middleware.Verifier
// for handler tests. Each known raw token maps to a fixed claims map.
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

type fakeVerifier struct {
	claims map[string]map[string]interface{}
}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if c, ok := f.claims[raw]; ok {
		return &fakeToken{data: c}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func newUserRouter() (*gin.Engine, *users.Service, *fakeVerifier) {
	svc := users.NewService(users.NewMemoryRepository())
	ver := &fakeVerifier{claims: map[string]map[string]interface{}{
		"good-token": {"sub": "uid-1", "email": "asha@example.com", "name": "Asha Rao"},
	}}
	g := gin.New()
	NewUserHandler(svc, ver, nil, nil).Register(g)
	return g, svc, ver
}

func postJSON(g *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	return w
}

const createBody = `{"firstname":"Asha","lastname":"Rao","email":"asha@example.com","password":"secret","college":"APT College","year_of_study":"3"}`

func TestUserCRUDFlow(t *testing.T) {
	g, _, _ := newUserRouter()

	// CREATE
	w := postJSON(g, "/users", createBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var cr map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cr))
	id := cr["id"]
	require.NotEmpty(t, id)

	// GET returns the created fields
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/"+id, nil)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Asha", got["firstname"])
	assert.Equal(t, "asha@example.com", got["email"])
	assert.Nil(t, got["isStudentApproved"])

	// LIST includes the record with its id
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])

	// PATCH merges only supplied fields
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/users/"+id, strings.NewReader(`{"lastname":"X"}`))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/users/"+id, nil)
	g.ServeHTTP(w, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "X", got["lastname"])
	assert.Equal(t, "Asha", got["firstname"])

	// DELETE then GET -> 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/users/"+id, nil)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/users/"+id, nil)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateUser_MissingField(t *testing.T) {
	g, svc, _ := newUserRouter()

	w := postJSON(g, "/users", `{"firstname":"Asha","email":"a@b.c"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// rejected creates must not insert anything
	all, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	g, _, _ := newUserRouter()

	require.Equal(t, http.StatusCreated, postJSON(g, "/users", createBody).Code)
	w := postJSON(g, "/users", createBody)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestUserRoutes_MissingID(t *testing.T) {
	g, _, _ := newUserRouter()

	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodGet, "/users/missing", ""},
		{http.MethodPatch, "/users/missing", `{"lastname":"X"}`},
		{http.MethodDelete, "/users/missing", ""},
	} {
		w := httptest.NewRecorder()
		var req *http.Request
		if tc.body != "" {
			req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(tc.method, tc.path, nil)
		}
		g.ServeHTTP(w, req)
		require.Equalf(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestLogin(t *testing.T) {
	g, _, _ := newUserRouter()

	// valid token echoes identity
	w := postJSON(g, "/users/login", `{"token":"good-token"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, "uid-1", user["uid"])
	assert.Equal(t, "asha@example.com", user["email"])
	assert.Equal(t, "Asha Rao", user["name"])

	// unknown token -> 401
	w = postJSON(g, "/users/login", `{"token":"bad-token"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// missing token -> 400
	w = postJSON(g, "/users/login", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	bl := sessions.NewBlacklist(client)

	secret := "testsecret123456789012345678901234"
	ver := tokens.NewLocalVerifier(secret)
	tok, err := tokens.GenerateAccessToken(secret, &models.User{ID: "uid-1", Email: "a@b.c"}, time.Hour)
	require.NoError(t, err)

	g := gin.New()
	svc := users.NewService(users.NewMemoryRepository())
	NewUserHandler(svc, ver, bl, nil).Register(g)

	// first logout succeeds and blacklists the token
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// the same token is now rejected by the auth middleware
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPhotoEndpoints_StorageNotConfigured(t *testing.T) {
	g, _, _ := newUserRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/uid-1/photo", nil)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/users/uid-1/photo", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
