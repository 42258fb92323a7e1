package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/imagegen"
	"github.com/yungbote/moodlog-backend/internal/platform/apierr"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
	"github.com/yungbote/moodlog-backend/internal/services"
)

type generateImageRequest struct {
	Note     string `json:"note"`
	MoodType string `json:"moodType"`
}

type generateImageResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl,omitempty"`
	Model    string `json:"model,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
	Error    string `json:"error,omitempty"`
}

// GenerateImageHandler serves the image proxy endpoint. Its wire shape is
// flat, unlike the rest of the API.
type GenerateImageHandler struct {
	log         *logger.Logger
	images      services.ImageService
	placeholder *imagegen.PlaceholderProvider
}

func NewGenerateImageHandler(log *logger.Logger, images services.ImageService, placeholder *imagegen.PlaceholderProvider) *GenerateImageHandler {
	if placeholder == nil {
		placeholder = imagegen.NewPlaceholderProvider("", nil)
	}
	return &GenerateImageHandler{
		log:         log.With("handler", "GenerateImageHandler"),
		images:      images,
		placeholder: placeholder,
	}
}

// POST /generate-image
// body: { "note": "...", "moodType": "happy" | "neutral" | "sad" }
func (h *GenerateImageHandler) Generate(c *gin.Context) {
	var req generateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	note := strings.TrimSpace(req.Note)
	rawMood := strings.TrimSpace(req.MoodType)
	if note == "" || rawMood == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Note and moodType are required"})
		return
	}
	mood, err := types.ParseMoodLabel(rawMood)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	img, err := h.images.GenerateForNote(c.Request.Context(), note, mood)
	if err != nil {
		if apierr.CodeOf(err) == apierr.CodeInvalidInput {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Warn("generate-image fell back to placeholder", "error", err)
		c.JSON(http.StatusOK, generateImageResponse{
			Success:  true,
			ImageURL: h.placeholder.URL(),
			Model:    imagegen.PlaceholderName,
			Error:    "Fallback to placeholder due to error",
		})
		return
	}
	c.JSON(http.StatusOK, generateImageResponse{
		Success:  true,
		ImageURL: img.URL,
		Model:    img.Provider,
		Prompt:   img.Prompt,
	})
}
