package handler

import (
	"net/http"
	"strings"

	"github.com/folio/internal/logger"
	"github.com/gin-gonic/gin"
)

// UploadMedia 处理后台媒体上传：?folder= 指定目录，multipart 字段名为 file
func (a *API) UploadMedia(c *gin.Context) {
	folder := strings.TrimSpace(c.Query("folder"))

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid input.",
			"fields": gin.H{"file": "This field is required."},
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}
	defer src.Close()

	result, err := a.media.Upload(c.Request.Context(), folder, file.Filename, src, file.Size)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}

	reqLog := logger.FromContext(c)
	reqLog.Info().
		Str("key", result.Key).
		Str("content_type", result.ContentType).
		Int64("size", result.Size).
		Msg("media uploaded")

	c.JSON(http.StatusCreated, gin.H{
		"key":          result.Key,
		"url":          a.mediaURL(c, result.Key),
		"content_type": result.ContentType,
		"size":         result.Size,
	})
}
