// Package handlers exposes the HTTP API.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"dating-match-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var statusByCode = map[string]int{
	models.CodeInvalidInput:    http.StatusBadRequest,
	models.CodeNotFound:        http.StatusNotFound,
	models.CodeUnauthorized:    http.StatusUnauthorized,
	models.CodeForbidden:       http.StatusForbidden,
	models.CodeDuplicateAction: http.StatusConflict,
	models.CodeInvalidState:    http.StatusConflict,
	models.CodeRateLimited:     http.StatusTooManyRequests,
	models.CodeUnavailable:     http.StatusServiceUnavailable,
	models.CodeInternal:        http.StatusInternalServerError,
}

// respondError writes err as {"error", "code"} with the status its code maps
// to. Internal causes are attached to the gin context for the request logger
// and never sent to the client.
func respondError(c *gin.Context, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}
	status, ok := statusByCode[appErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": appErr.Message, "code": appErr.Code})
}

// bindError turns a ShouldBind failure into an INVALID_INPUT response.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		respondError(c, models.NewInvalidInputError(verrs[0].Field()+" failed on "+verrs[0].Tag()))
		return
	}
	respondError(c, models.NewInvalidInputError(err.Error()))
}

func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		respondError(c, models.NewUnauthorizedError("User not authenticated"))
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		respondError(c, models.NewUnauthorizedError("User not authenticated"))
		return 0, false
	}
	return id, true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondError(c, models.NewInvalidInputError("Invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// pagination reads page and limit, clamping limit to [1, 100].
func pagination(c *gin.Context, defaultLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}
