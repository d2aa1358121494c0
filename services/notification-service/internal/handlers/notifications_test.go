package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/md-rashed-zaman/tutorbook/libs/auth"
	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type mockInbox struct{ mock.Mock }

func (m *mockInbox) ListUnseen(ctx context.Context, userID string) ([]storage.Notification, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]storage.Notification)
	return items, args.Error(1)
}

func (m *mockInbox) MarkSeen(ctx context.Context, userID string, at time.Time) (int64, error) {
	args := m.Called(ctx, userID, at)
	return args.Get(0).(int64), args.Error(1)
}

func setup(t *testing.T) (*mockInbox, http.Handler, string) {
	t.Helper()
	inbox := &mockInbox{}
	h := New(inbox, slog.New(slog.NewTextHandler(io.Discard, nil)), secret)
	h.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	h.Register(r)
	token, err := auth.SignHS256(auth.Identity{ID: "u1", Role: auth.RoleStudent}, secret, time.Hour, time.Now())
	require.NoError(t, err)
	return inbox, r, token
}

func serve(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListMine(t *testing.T) {
	inbox, h, token := setup(t)
	inbox.On("ListUnseen", mock.Anything, "u1").Return([]storage.Notification{
		{ID: "n1", UserID: "u1", BookingID: "b1", Audience: "student", Status: "confirmed", Message: "Booking on 2026-03-02 (09:00 - 10:00) confirmed!"},
	}, nil)

	rec := serve(h, http.MethodGet, "/api/notifications/my", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "confirmed", items[0]["status"])
	assert.NotContains(t, items[0], "seenAt")
}

func TestMarkSeen(t *testing.T) {
	inbox, h, token := setup(t)
	inbox.On("MarkSeen", mock.Anything, "u1", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)).Return(int64(2), nil)

	rec := serve(h, http.MethodPost, "/api/notifications/my/seen", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["updated"])
	inbox.AssertExpectations(t)
}

func TestNotificationsRequireToken(t *testing.T) {
	_, h, _ := setup(t)
	rec := serve(h, http.MethodGet, "/api/notifications/my", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStoreFailureHidesCause(t *testing.T) {
	inbox, h, token := setup(t)
	inbox.On("ListUnseen", mock.Anything, "u1").Return(nil, errors.New("pq: connection refused"))

	rec := serve(h, http.MethodGet, "/api/notifications/my", token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
