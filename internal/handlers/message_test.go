package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"dating-match-server/internal/models"
	"dating-match-server/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func matchPair(t *testing.T, db *gorm.DB, a, b *models.User) {
	t.Helper()
	a.Matches.Add(b.ID)
	b.Matches.Add(a.ID)
	require.NoError(t, db.Model(a).Update("matches", a.Matches).Error)
	require.NoError(t, db.Model(b).Update("matches", b.Matches).Error)
}

func TestSendMessageRequiresMatch(t *testing.T) {
	s := newServer(t)
	a := testutil.CreateUser(t, s.db, "A")
	b := testutil.CreateUser(t, s.db, "B")

	status, body := s.do(t, http.MethodPost, "/messages", a.ID, SendMessageRequest{ReceiverID: b.ID, Content: "hi"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeForbidden, body["code"])

	status, _ = s.do(t, http.MethodPost, "/messages", a.ID, SendMessageRequest{ReceiverID: a.ID, Content: "hi"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/messages", a.ID, SendMessageRequest{ReceiverID: 999, Content: "hi"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSendMessageRejectsBlocked(t *testing.T) {
	s := newServer(t)
	a := testutil.CreateUser(t, s.db, "A")
	b := testutil.CreateUser(t, s.db, "B")
	matchPair(t, s.db, a, b)
	b.BlockedUsers.Add(a.ID)
	require.NoError(t, s.db.Model(b).Update("blocked_users", b.BlockedUsers).Error)

	status, _ := s.do(t, http.MethodPost, "/messages", a.ID, SendMessageRequest{ReceiverID: b.ID, Content: "hi"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestConversation(t *testing.T) {
	s := newServer(t)
	a := testutil.CreateUser(t, s.db, "A")
	b := testutil.CreateUser(t, s.db, "B")
	matchPair(t, s.db, a, b)

	status, body := s.do(t, http.MethodPost, "/messages", a.ID, SendMessageRequest{ReceiverID: b.ID, Content: " first "})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "first", body["message"].(map[string]interface{})["content"])

	status, _ = s.do(t, http.MethodPost, "/messages", b.ID, SendMessageRequest{ReceiverID: a.ID, Content: "second"})
	require.Equal(t, http.StatusCreated, status)

	assert.Equal(t, []string{models.NotificationMessage}, s.pub.types(b.ID))
	assert.Equal(t, []string{models.NotificationMessage}, s.pub.types(a.ID))

	status, body = s.do(t, http.MethodGet, "/messages/"+itoa(a.ID), b.ID, nil)
	require.Equal(t, http.StatusOK, status)
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].(map[string]interface{})["content"])
	assert.Equal(t, "second", messages[1].(map[string]interface{})["content"])

	var unread int64
	require.NoError(t, s.db.Model(&models.Message{}).Where("receiver_id = ? AND is_read = ?", b.ID, false).Count(&unread).Error)
	assert.Zero(t, unread)
	require.NoError(t, s.db.Model(&models.Message{}).Where("receiver_id = ? AND is_read = ?", a.ID, false).Count(&unread).Error)
	assert.EqualValues(t, 1, unread)

	status, body = s.do(t, http.MethodGet, "/messages/"+itoa(a.ID)+"?page=2&limit=1", b.ID, nil)
	require.Equal(t, http.StatusOK, status)
	messages = body["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, "second", messages[0].(map[string]interface{})["content"])
}

func TestSendAudioMessage(t *testing.T) {
	s := newServer(t)
	a := testutil.CreateUser(t, s.db, "A")
	b := testutil.CreateUser(t, s.db, "B")
	matchPair(t, s.db, a, b)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("receiver_id", itoa(b.ID)))
	multipartFile(t, w, "audio", "voice.mp3", "audio/mpeg", []byte("mp3"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/messages", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	status, body := s.serve(t, req, a.ID)
	require.Equal(t, http.StatusCreated, status, body)
	msg := body["message"].(map[string]interface{})
	assert.Equal(t, models.MessageTypeAudio, msg["message_type"])
	assert.Contains(t, msg["audio_url"], "audio_messages/")
	assert.Len(t, s.storage.uploaded, 1)
}
