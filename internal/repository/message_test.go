package repository

import (
	"context"
	"testing"
	"time"

	"dating-match-server/internal/models"
	"dating-match-server/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_Conversation(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, m := range []models.Message{
		{SenderID: 1, ReceiverID: 2, Content: "hi"},
		{SenderID: 2, ReceiverID: 1, Content: "hello"},
		{SenderID: 1, ReceiverID: 3, Content: "elsewhere"},
	} {
		m := m
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, &m))
	}

	msgs, err := repo.Conversation(ctx, 1, 2, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, "hello", msgs[1].Content)

	n, err := repo.MarkRead(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMessageRepository_DeleteOlderThan(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	old := models.Message{SenderID: 1, ReceiverID: 2, Content: "old", CreatedAt: time.Now().Add(-40 * 24 * time.Hour)}
	fresh := models.Message{SenderID: 1, ReceiverID: 2, Content: "fresh"}
	require.NoError(t, repo.Create(ctx, &old))
	require.NoError(t, repo.Create(ctx, &fresh))

	n, err := repo.DeleteOlderThan(ctx, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	msgs, err := repo.Conversation(ctx, 1, 2, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "fresh", msgs[0].Content)
}
