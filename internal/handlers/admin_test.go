package handlers

import (
	"context"
	"net/http"
	"testing"

	"dating-match-server/internal/models"
	"dating-match-server/internal/repository"
	"dating-match-server/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminReports(t *testing.T) {
	s := newServer(t)
	a := testutil.CreateUser(t, s.db, "A")
	b := testutil.CreateUser(t, s.db, "B")
	report := &models.Report{ReporterID: a.ID, ReportedID: b.ID, Reason: "spam"}
	require.NoError(t, repository.NewReportRepository(s.db).Create(context.Background(), report))

	status, body := s.do(t, http.MethodGet, "/admin/reports?status=pending", a.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["reports"], 1)

	path := "/admin/reports/" + itoa(report.ID) + "/status"
	status, _ = s.do(t, http.MethodPut, path, a.ID, UpdateReportStatusRequest{Status: "escalated"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPut, "/admin/reports/999/status", a.ID, UpdateReportStatusRequest{Status: models.ReportResolved})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(t, http.MethodPut, path, a.ID, UpdateReportStatusRequest{Status: models.ReportResolved})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, models.ReportResolved, body["report"].(map[string]interface{})["status"])

	status, body = s.do(t, http.MethodGet, "/admin/reports?status=pending", a.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["reports"])
}

func TestAdminUsers(t *testing.T) {
	s := newServer(t)
	for _, name := range []string{"A", "B", "C"} {
		testutil.CreateUser(t, s.db, name)
	}

	status, body := s.do(t, http.MethodGet, "/admin/users?limit=2", 1, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["total"])
	assert.Len(t, body["users"], 2)
	assert.EqualValues(t, 2, body["limit"])
}

func TestNotifications(t *testing.T) {
	s := newServer(t)
	u := testutil.CreateUser(t, s.db, "A")
	repo := repository.NewNotificationRepository(s.db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Notification{UserID: u.ID, Type: models.NotificationLike, Message: "liked"}))
	require.NoError(t, repo.Create(ctx, &models.Notification{UserID: u.ID, Type: models.NotificationMatch, Message: "match"}))

	status, body := s.do(t, http.MethodGet, "/notifications", u.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["count"])

	status, body = s.do(t, http.MethodGet, "/notifications?type=match", u.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	status, _ = s.do(t, http.MethodGet, "/notifications?type=poke", u.ID, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodPut, "/notifications/read", u.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["updated"])
}
