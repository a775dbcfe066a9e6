package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"dating-match-server/internal/matching"
	"dating-match-server/internal/models"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	finder *matching.Finder
}

type SearchRequest struct {
	Filters json.RawMessage `json:"filters"`
}

func NewMatchHandler(finder *matching.Finder) *MatchHandler {
	return &MatchHandler{finder: finder}
}

// Search ranks other users against the caller's profile on the requested
// fields. An optional limit query parameter truncates the ranked list.
func (h *MatchHandler) Search(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	spec, err := matching.ParseFieldSpec(req.Filters)
	if err != nil {
		respondError(c, err)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondError(c, models.NewInvalidInputError("Invalid limit"))
			return
		}
	}

	results, err := h.finder.Find(c.Request.Context(), userID, spec)
	if err != nil {
		respondError(c, err)
		return
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	message := "Matches found"
	if len(results) == 0 {
		message = "No matches found"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"matches": results,
		"message": message,
	})
}
