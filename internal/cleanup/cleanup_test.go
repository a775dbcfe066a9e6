package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"dating-match-server/internal/models"
	"dating-match-server/internal/repository"
	"dating-match-server/internal/testutil"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nullEntry() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func TestRunOnceDeletesExpiredRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-31 * 24 * time.Hour)
	recent := now.Add(-time.Hour)

	require.NoError(t, db.Create(&[]models.Message{
		{SenderID: 1, ReceiverID: 2, Content: "old", CreatedAt: old},
		{SenderID: 1, ReceiverID: 2, Content: "new", CreatedAt: recent},
	}).Error)
	require.NoError(t, db.Create(&[]models.Notification{
		{UserID: 1, Type: models.NotificationLike, Message: "old read", IsRead: true, CreatedAt: old},
		{UserID: 1, Type: models.NotificationLike, Message: "old unread", IsRead: false, CreatedAt: old},
		{UserID: 1, Type: models.NotificationLike, Message: "new read", IsRead: true, CreatedAt: recent},
	}).Error)

	job := New("0 0 * * *", repository.NewMessageRepository(db), repository.NewNotificationRepository(db),
		30*24*time.Hour, 30*24*time.Hour, nullEntry())
	job.now = func() time.Time { return now }

	res, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Messages: 1, Notifications: 1}, res)

	var messages []models.Message
	require.NoError(t, db.Find(&messages).Error)
	require.Len(t, messages, 1)
	assert.Equal(t, "new", messages[0].Content)

	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&remaining).Error)
	assert.EqualValues(t, 2, remaining)
}

type failingPruner struct{}

func (failingPruner) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, errors.New("db down")
}

func (failingPruner) DeleteReadOlderThan(context.Context, time.Time) (int64, error) {
	return 0, errors.New("db down")
}

func TestRunOnceReportsErrors(t *testing.T) {
	job := New("0 0 * * *", failingPruner{}, failingPruner{}, time.Hour, time.Hour, nullEntry())

	_, err := job.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete old messages")
}

func TestStartRejectsBadSchedule(t *testing.T) {
	job := New("not a schedule", failingPruner{}, failingPruner{}, time.Hour, time.Hour, nullEntry())
	assert.Error(t, job.Start(context.Background()))
}

func TestStartAndStop(t *testing.T) {
	job := New("@every 1h", failingPruner{}, failingPruner{}, time.Hour, time.Hour, nullEntry())
	require.NoError(t, job.Start(context.Background()))
	job.Stop()
}
