package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/moodlog-backend/internal/http/response"
	"github.com/yungbote/moodlog-backend/internal/platform/apierr"
	"github.com/yungbote/moodlog-backend/internal/platform/ctxutil"
	"github.com/yungbote/moodlog-backend/internal/services"
)

type MoodHandler struct {
	moods services.MoodService
}

func NewMoodHandler(moods services.MoodService) *MoodHandler {
	return &MoodHandler{moods: moods}
}

// requestUsername prefers an explicit handle, then the session.
func requestUsername(c *gin.Context, explicit string) string {
	if u := strings.TrimSpace(explicit); u != "" {
		return u
	}
	return ctxutil.SessionUsername(c.Request.Context())
}

// POST /api/moods
// body: { "username": "ana", "mood_type": "happy", "note": "..." }
func (mh *MoodHandler) Submit(c *gin.Context) {
	var req services.SubmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.InvalidInput(err))
		return
	}
	req.Username = requestUsername(c, req.Username)
	res, err := mh.moods.Submit(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/moods/recent?username=&days=&limit=
func (mh *MoodHandler) ListRecent(c *gin.Context) {
	days, err := optionalInt(c, "days")
	if err != nil {
		response.RespondAPIError(c, apierr.InvalidInput(err))
		return
	}
	limit, err := optionalInt(c, "limit")
	if err != nil {
		response.RespondAPIError(c, apierr.InvalidInput(err))
		return
	}
	h, err := mh.moods.ListRecent(c.Request.Context(), requestUsername(c, c.Query("username")), services.Window{Days: days, Limit: limit})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

// GET /api/moods/timeline?username=&from=&to=
// from/to accept RFC 3339 or YYYY-MM-DD; a bare "to" date includes that whole day.
func (mh *MoodHandler) Timeline(c *gin.Context) {
	from, err := parseBound(c.Query("from"), false)
	if err != nil {
		response.RespondAPIError(c, apierr.InvalidInput(fmt.Errorf("from: %w", err)))
		return
	}
	to, err := parseBound(c.Query("to"), true)
	if err != nil {
		response.RespondAPIError(c, apierr.InvalidInput(fmt.Errorf("to: %w", err)))
		return
	}
	tl, err := mh.moods.Timeline(c.Request.Context(), requestUsername(c, c.Query("username")), from, to)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, tl)
}

func optionalInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func parseBound(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", raw)
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return d, nil
}
