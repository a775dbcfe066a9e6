package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"dating-match-server/internal/config"
	"dating-match-server/internal/likes"
	"dating-match-server/internal/models"
	"dating-match-server/internal/repository"
	"dating-match-server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxGalleryPics = 6

type UserHandler struct {
	users   *repository.UserRepository
	reports *repository.ReportRepository
	graph   *likes.Graph
	storage services.ObjectStorage
	cfg     *config.Config
	log     *logrus.Entry
}

// ProfileRequest carries the filter sections plus the free-text bio.
type ProfileRequest struct {
	models.FilterSections
	Bio *string `json:"bio,omitempty" binding:"omitempty,max=500"`
}

type DeviceTokenRequest struct {
	DeviceToken string `json:"device_token" binding:"required"`
}

type ReportRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

func NewUserHandler(users *repository.UserRepository, reports *repository.ReportRepository, graph *likes.Graph,
	storage services.ObjectStorage, cfg *config.Config, log *logrus.Entry) *UserHandler {
	return &UserHandler{
		users:   users,
		reports: reports,
		graph:   graph,
		storage: storage,
		cfg:     cfg,
		log:     log,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// CreateProfile stores the caller's filter sections for the first time.
func (h *UserHandler) CreateProfile(c *gin.Context) {
	h.saveProfile(c, true)
}

// UpdateProfile replaces the sections present in the request and leaves the
// others untouched.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	h.saveProfile(c, false)
}

func (h *UserHandler) saveProfile(c *gin.Context, create bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := req.FilterSections.Validate(); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	switch {
	case create && user.Filters != nil:
		respondError(c, models.NewDuplicateActionError("Profile already exists"))
		return
	case !create && user.Filters == nil:
		respondError(c, models.NewNotFoundError("Profile for user", userID))
		return
	}

	filters := user.Filters
	if filters == nil {
		filters = models.NewProfileFilter(userID, req.FilterSections)
	} else {
		filters.Apply(req.FilterSections)
	}
	if err := h.users.SaveFilters(ctx, filters); err != nil {
		respondError(c, err)
		return
	}

	if req.Bio != nil {
		if err := h.users.UpdateColumns(ctx, userID, map[string]interface{}{"bio": *req.Bio}); err != nil {
			respondError(c, err)
			return
		}
		user.Bio = req.Bio
	}
	user.Filters = filters

	status, message := http.StatusOK, "Profile updated successfully"
	if create {
		status, message = http.StatusCreated, "Profile created successfully"
	}
	c.JSON(status, gin.H{"message": message, "user": user})
}

// UploadMedia accepts multipart fields profilePicture, audioBio and
// galleryPics. A new gallery replaces the previous one.
func (h *UserHandler) UploadMedia(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if h.storage == nil {
		respondError(c, models.NewInvalidStateError("Media storage is not configured"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, models.NewInvalidInputError("Multipart form required"))
		return
	}
	pictures := form.File["profilePicture"]
	audio := form.File["audioBio"]
	gallery := form.File["galleryPics"]
	if len(pictures) == 0 && len(audio) == 0 && len(gallery) == 0 {
		respondError(c, models.NewInvalidInputError("No media provided"))
		return
	}
	if len(gallery) > maxGalleryPics {
		respondError(c, models.NewInvalidInputError(fmt.Sprintf("At most %d gallery pictures allowed", maxGalleryPics)))
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user.Filters == nil {
		respondError(c, models.NewNotFoundError("Profile for user", userID))
		return
	}
	filters := user.Filters

	var replaced []string
	if len(pictures) > 0 {
		url, err := h.upload(ctx, pictures[0], "profile_pictures", userID, h.cfg.AllowedImageTypes)
		if err != nil {
			respondError(c, err)
			return
		}
		if filters.ProfilePicture != nil {
			replaced = append(replaced, *filters.ProfilePicture)
		}
		filters.ProfilePicture = &url
	}
	if len(audio) > 0 {
		url, err := h.upload(ctx, audio[0], "audio_bios", userID, h.cfg.AllowedAudioTypes)
		if err != nil {
			respondError(c, err)
			return
		}
		if filters.AudioBio != nil {
			replaced = append(replaced, *filters.AudioBio)
		}
		filters.AudioBio = &url
	}
	if len(gallery) > 0 {
		urls := make([]string, 0, len(gallery))
		for _, header := range gallery {
			url, err := h.upload(ctx, header, "gallery_pics", userID, h.cfg.AllowedImageTypes)
			if err != nil {
				respondError(c, err)
				return
			}
			urls = append(urls, url)
		}
		replaced = append(replaced, filters.GalleryPics...)
		filters.GalleryPics = urls
	}

	if err := h.users.SaveFilters(ctx, filters); err != nil {
		respondError(c, err)
		return
	}

	for _, old := range replaced {
		if err := h.storage.Delete(ctx, old); err != nil {
			h.log.WithError(err).WithField("url", old).Warn("Failed to delete replaced media")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Media uploaded successfully", "filters": filters})
}

func (h *UserHandler) upload(ctx context.Context, header *multipart.FileHeader, folder string, userID uint, allowed []string) (string, error) {
	if err := validateUpload(header, h.cfg.MaxFileSize, allowed); err != nil {
		return "", err
	}
	file, err := header.Open()
	if err != nil {
		return "", models.NewInvalidInputError("Unreadable upload")
	}
	defer file.Close()

	key := services.ObjectKey(folder, userID, header.Filename)
	url, err := h.storage.Upload(ctx, file, header.Size, key, header.Header.Get("Content-Type"))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return url, nil
}

func validateUpload(header *multipart.FileHeader, maxSize int64, allowed []string) error {
	if header.Size > maxSize {
		return models.NewInvalidInputError(fmt.Sprintf("File too large, maximum size is %d bytes", maxSize))
	}
	contentType := header.Header.Get("Content-Type")
	for _, t := range allowed {
		if contentType == t {
			return nil
		}
	}
	return models.NewInvalidInputError(fmt.Sprintf("Invalid file type, allowed types are: %s", strings.Join(allowed, ", ")))
}

func (h *UserHandler) UpdateDeviceToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	columns := map[string]interface{}{"device_token": req.DeviceToken}
	if err := h.users.UpdateColumns(c.Request.Context(), userID, columns); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device token updated"})
}

func (h *UserHandler) BlockUser(c *gin.Context) {
	h.setBlocked(c, true)
}

func (h *UserHandler) UnblockUser(c *gin.Context) {
	h.setBlocked(c, false)
}

func (h *UserHandler) setBlocked(c *gin.Context, block bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	if targetID == userID {
		respondError(c, models.NewInvalidInputError("You cannot block yourself"))
		return
	}

	ctx := c.Request.Context()
	err := h.users.Transaction(ctx, func(tx repository.UserStore) error {
		if _, err := tx.FindByID(ctx, targetID); err != nil {
			return err
		}
		user, err := tx.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if block {
			if !user.BlockedUsers.Add(targetID) {
				return models.NewDuplicateActionError("User already blocked")
			}
		} else if !user.BlockedUsers.Remove(targetID) {
			return models.NewInvalidStateError("User is not blocked")
		}
		return tx.Save(ctx, user)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	message := "User unblocked successfully"
	if block {
		message = "User blocked successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *UserHandler) ReportUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	if targetID == userID {
		respondError(c, models.NewInvalidInputError("You cannot report yourself"))
		return
	}

	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "No specific reason provided"
	}

	ctx := c.Request.Context()
	if _, err := h.users.FindByID(ctx, targetID); err != nil {
		respondError(c, err)
		return
	}

	report := &models.Report{
		ReporterID: userID,
		ReportedID: targetID,
		Reason:     reason,
		Status:     models.ReportPending,
	}
	if err := h.reports.Create(ctx, report); err != nil {
		respondError(c, err)
		return
	}

	h.log.WithFields(logrus.Fields{"reporter_id": userID, "reported_id": targetID}).Info("User reported")
	c.JSON(http.StatusCreated, gin.H{"message": "User reported successfully", "report": report})
}

func (h *UserHandler) LikeUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	outcome, err := h.graph.RecordLike(c.Request.Context(), userID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "User liked successfully"
	if outcome.Matched {
		message = "It's a match!"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "matched": outcome.Matched})
}

func (h *UserHandler) AcceptLike(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	likerID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	outcome, err := h.graph.AcceptLike(c.Request.Context(), userID, likerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Like accepted", "already_matched": outcome.AlreadyMatched})
}

func (h *UserHandler) GetLikedBy(c *gin.Context) {
	h.listUsers(c, "likes", h.graph.ReceivedLikes)
}

func (h *UserHandler) GetAcceptedLikes(c *gin.Context) {
	h.listUsers(c, "accepted_likes", h.graph.AcceptedLikes)
}

func (h *UserHandler) GetMatches(c *gin.Context) {
	h.listUsers(c, "matches", h.graph.Matches)
}

func (h *UserHandler) listUsers(c *gin.Context, key string, load func(context.Context, uint) ([]models.PublicUser, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	users, err := load(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{key: users, "count": len(users)})
}
