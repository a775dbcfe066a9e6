package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"dating-match-server/internal/config"
	"dating-match-server/internal/models"
	"dating-match-server/internal/notify"
	"dating-match-server/internal/repository"
	"dating-match-server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxMessageLength = 2000

type MessageHandler struct {
	users     *repository.UserRepository
	messages  *repository.MessageRepository
	publisher notify.Publisher
	storage   services.ObjectStorage
	cfg       *config.Config
	log       *logrus.Entry
}

type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

func NewMessageHandler(users *repository.UserRepository, messages *repository.MessageRepository, publisher notify.Publisher,
	storage services.ObjectStorage, cfg *config.Config, log *logrus.Entry) *MessageHandler {
	return &MessageHandler{
		users:     users,
		messages:  messages,
		publisher: publisher,
		storage:   storage,
		cfg:       cfg,
		log:       log,
	}
}

// SendMessage accepts either a JSON text message or a multipart form with
// receiver_id and an audio file. Sender and receiver must be matched and
// neither may have blocked the other.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	msg := &models.Message{SenderID: userID, MessageType: models.MessageTypeText}
	multipartReq := strings.HasPrefix(c.ContentType(), "multipart/")
	if multipartReq {
		id, err := strconv.ParseUint(c.PostForm("receiver_id"), 10, 32)
		if err != nil || id == 0 {
			respondError(c, models.NewInvalidInputError("Invalid receiver_id"))
			return
		}
		msg.ReceiverID = uint(id)
		msg.Content = strings.TrimSpace(c.PostForm("content"))
		msg.MessageType = models.MessageTypeAudio
	} else {
		var req SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		msg.ReceiverID = req.ReceiverID
		msg.Content = strings.TrimSpace(req.Content)
		if msg.Content == "" {
			respondError(c, models.NewInvalidInputError("Message content is required"))
			return
		}
	}
	if len(msg.Content) > maxMessageLength {
		respondError(c, models.NewInvalidInputError("Message is too long"))
		return
	}
	if msg.ReceiverID == userID {
		respondError(c, models.NewInvalidInputError("You cannot message yourself"))
		return
	}

	ctx := c.Request.Context()
	sender, err := h.users.FindByID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	receiver, err := h.users.FindByID(ctx, msg.ReceiverID)
	if err != nil {
		respondError(c, err)
		return
	}
	if sender.BlockedUsers.Contains(receiver.ID) || receiver.BlockedUsers.Contains(sender.ID) {
		respondError(c, models.NewForbiddenError("Messaging is blocked between these users"))
		return
	}
	if !sender.Matches.Contains(receiver.ID) {
		respondError(c, models.NewForbiddenError("You can only message your matches"))
		return
	}

	if multipartReq {
		url, err := h.uploadAudio(c, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		msg.AudioURL = &url
	}

	if err := h.messages.Create(ctx, msg); err != nil {
		respondError(c, err)
		return
	}

	if err := h.publisher.Publish(ctx, msg.ReceiverID, notify.MessageEvent(msg)); err != nil {
		h.log.WithError(err).WithField("message_id", msg.ID).Warn("Failed to queue message notification")
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *MessageHandler) uploadAudio(c *gin.Context, userID uint) (string, error) {
	if h.storage == nil {
		return "", models.NewInvalidStateError("Media storage is not configured")
	}
	header, err := c.FormFile("audio")
	if err != nil {
		return "", models.NewInvalidInputError("No audio provided")
	}
	if err := validateUpload(header, h.cfg.MaxFileSize, h.cfg.AllowedAudioTypes); err != nil {
		return "", err
	}
	file, err := header.Open()
	if err != nil {
		return "", models.NewInvalidInputError("Unreadable upload")
	}
	defer file.Close()

	key := services.ObjectKey("audio_messages", userID, header.Filename)
	url, err := h.storage.Upload(c.Request.Context(), file, header.Size, key, header.Header.Get("Content-Type"))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return url, nil
}

// GetMessages returns one page of the conversation with user_id, oldest
// first, and marks the other user's messages to the caller as read.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	page, limit, offset := pagination(c, 50)

	ctx := c.Request.Context()
	if _, err := h.users.FindByID(ctx, otherID); err != nil {
		respondError(c, err)
		return
	}

	messages, err := h.messages.Conversation(ctx, userID, otherID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.messages.MarkRead(ctx, userID, otherID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"page":     page,
		"limit":    limit,
	})
}
