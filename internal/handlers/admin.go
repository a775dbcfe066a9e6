package handlers

import (
	"net/http"

	"dating-match-server/internal/models"
	"dating-match-server/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	users   *repository.UserRepository
	reports *repository.ReportRepository
	log     *logrus.Entry
}

type UpdateReportStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending reviewed resolved dismissed"`
}

type UserListResponse struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func NewAdminHandler(users *repository.UserRepository, reports *repository.ReportRepository, log *logrus.Entry) *AdminHandler {
	return &AdminHandler{
		users:   users,
		reports: reports,
		log:     log,
	}
}

func (h *AdminHandler) GetUsers(c *gin.Context) {
	page, limit, offset := pagination(c, 20)

	users, total, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserListResponse{
		Users: users,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *AdminHandler) GetReports(c *gin.Context) {
	page, limit, offset := pagination(c, 20)
	status := c.Query("status")

	reports, err := h.reports.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"page":    page,
		"limit":   limit,
	})
}

func (h *AdminHandler) UpdateReportStatus(c *gin.Context) {
	reportID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	report, err := h.reports.UpdateStatus(c.Request.Context(), reportID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	adminID, _ := c.Get("user_id")
	h.log.WithFields(logrus.Fields{"report_id": report.ID, "status": report.Status, "admin_id": adminID}).Info("Report status updated")
	c.JSON(http.StatusOK, gin.H{"message": "Report status updated successfully", "report": report})
}
