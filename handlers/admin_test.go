package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/apt-tech/connect-backend/internal/activity"
	"github.com/apt-tech/connect-backend/internal/models"
	"github.com/apt-tech/connect-backend/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAdminRouter(t *testing.T) (*gin.Engine, *users.Service, *activity.MemoryRepository, []string) {
	t.Helper()
	repo := users.NewMemoryRepository()
	svc := users.NewService(repo)
	ctx := context.Background()

	// approval values in store order: true, nil, false, nil
	states := []*bool{approvedPtr(true), nil, approvedPtr(false), nil}
	ids := make([]string, len(states))
	for i, st := range states {
		u := &models.User{
			Firstname: "Student",
			Lastname:  string(rune('A' + i)),
			Email:     string(rune('a'+i)) + "@students.example.com",
			Role:      models.RoleStudent,
		}
		id, err := repo.Insert(ctx, u)
		require.NoError(t, err)
		if st != nil {
			require.NoError(t, svc.SetApproval(ctx, id, *st))
		}
		ids[i] = id
	}

	actRepo := activity.NewMemoryRepository()
	ver := &fakeVerifier{claims: map[string]map[string]interface{}{
		"admin-token":   {"sub": "admin-1", "role": "admin"},
		"student-token": {"sub": ids[0], "role": "student"},
	}}

	g := gin.New()
	NewAdminHandler(svc, activity.NewService(actRepo), ver, nil).Register(g)
	return g, svc, actRepo, ids
}

func approvedPtr(b bool) *bool { return &b }

func adminGet(g *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	g.ServeHTTP(w, req)
	return w
}

func TestAdminRoutes_RequireAuth(t *testing.T) {
	g, _, _, _ := newAdminRouter(t)

	// missing header -> 401 before anything else happens
	require.Equal(t, http.StatusUnauthorized, adminGet(g, "/admin/students", "").Code)
	require.Equal(t, http.StatusUnauthorized, adminGet(g, "/admin/activities", "").Code)

	// authenticated non-admin -> 403
	require.Equal(t, http.StatusForbidden, adminGet(g, "/admin/students", "student-token").Code)
	require.Equal(t, http.StatusForbidden, adminGet(g, "/admin/activities", "student-token").Code)
}

func TestAdminStudents_SortedRoster(t *testing.T) {
	g, _, _, ids := newAdminRouter(t)

	w := adminGet(g, "/admin/students", "admin-token")
	require.Equal(t, http.StatusOK, w.Code)

	var roster []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roster))
	require.Len(t, roster, 4)

	// pending first in store order, then approved, then rejected
	want := []string{ids[1], ids[3], ids[0], ids[2]}
	for i, w := range want {
		assert.Equalf(t, w, roster[i]["uid"], "roster position %d", i)
	}
	// projection shape
	for _, entry := range roster {
		assert.Contains(t, entry, "email")
		assert.Contains(t, entry, "firstName")
		assert.Contains(t, entry, "lastName")
		assert.Contains(t, entry, "isStudentApproved")
	}
	assert.Nil(t, roster[0]["isStudentApproved"])
	assert.Equal(t, true, roster[2]["isStudentApproved"])
	assert.Equal(t, false, roster[3]["isStudentApproved"])
}

func TestAdminApproval(t *testing.T) {
	g, svc, _, ids := newAdminRouter(t)

	// approve a pending student
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/admin/students/"+ids[1]+"/approval", strings.NewReader(`{"approved":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer admin-token")
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	u, err := svc.GetByID(context.Background(), ids[1])
	require.NoError(t, err)
	require.NotNil(t, u.IsStudentApproved)
	require.True(t, *u.IsStudentApproved)

	// missing body -> 400
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/admin/students/"+ids[1]+"/approval", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer admin-token")
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// unknown uid -> 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/admin/students/missing/approval", strings.NewReader(`{"approved":false}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer admin-token")
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminActivities(t *testing.T) {
	g, _, actRepo, _ := newAdminRouter(t)

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	actRepo.Append(base, activity.Entry{"id": "a", "timestamp": base, "action": "login"})
	actRepo.Append(base.Add(time.Minute), activity.Entry{"id": "b", "timestamp": primitive.NewDateTimeFromTime(base.Add(time.Minute)), "action": "approval"})

	w := adminGet(g, "/admin/activities", "admin-token")
	require.Equal(t, http.StatusOK, w.Code)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	// newest first, timestamps serialized as RFC3339 strings
	assert.Equal(t, "b", entries[0]["id"])
	for _, e := range entries {
		ts, ok := e["timestamp"].(string)
		require.True(t, ok, "timestamp should be a string: %v", e)
		_, err := time.Parse(time.RFC3339, ts)
		require.NoError(t, err)
	}
}
