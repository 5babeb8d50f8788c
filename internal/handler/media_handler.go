package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/folio/internal/logger"
	"github.com/folio/internal/service"
	"github.com/folio/internal/storage"
	"github.com/gin-gonic/gin"
)

// ServeMedia 以流的方式输出媒体文件
func (a *API) ServeMedia(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	reader, info, err := a.media.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			respondError(c, http.StatusNotFound, "File not found")
			return
		}
		respondServiceError(c, err, "File not found")
		return
	}
	defer reader.Close()

	headers := map[string]string{"Cache-Control": "public, max-age=86400"}
	if !info.LastModified.IsZero() {
		headers["Last-Modified"] = info.LastModified.UTC().Format(http.TimeFormat)
	}
	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, reader, headers)
}

// DownloadCV 以附件形式输出当前激活的简历
func (a *API) DownloadCV(c *gin.Context) {
	cv, err := a.cvs.Active()
	if err != nil {
		respondServiceError(c, err, "No active CV found")
		return
	}

	reader, info, err := a.media.Open(c.Request.Context(), cv.File)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			reqLog := logger.FromContext(c)
			reqLog.Warn().Str("file", cv.File).Uint("cv_id", cv.ID).Msg("active cv file missing")
			respondError(c, http.StatusNotFound, "CV file not found")
			return
		}
		respondServiceError(c, err, "CV file not found")
		return
	}
	defer reader.Close()

	filename := a.cvFilename(cv.File)
	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, filename),
		"Cache-Control":       "no-cache",
	})
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// cvFilename 优先使用配置的文件名，其次 CV_<姓名>.<扩展名>，最后 CV.<扩展名>
func (a *API) cvFilename(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ext == "" {
		ext = ".pdf"
	}

	if configured := strings.TrimSpace(a.cvDownloadName); configured != "" {
		return unsafeFilenameChars.ReplaceAllString(configured, "_")
	}

	info, err := a.profiles.GetPersonalInfo()
	if err != nil {
		if !errors.Is(err, service.ErrPersonalInfoNotFound) {
			logger.Warn().Err(err).Msg("load personal info for cv filename")
		}
		return "CV" + ext
	}

	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(info.Name, "_"), "_")
	if name == "" {
		return "CV" + ext
	}
	return "CV_" + name + ext
}
