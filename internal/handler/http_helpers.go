package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/folio/internal/logger"
	"github.com/folio/internal/service"
	"github.com/folio/internal/storage"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// pathID 解析 :id 参数，失败时直接写入 400 响应
func pathID(c *gin.Context) (uint, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid id.")
		return 0, false
	}
	return id, true
}

func queryBool(c *gin.Context, key string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Query(key)), "true")
}

// respondServiceError 把 service 层错误映射为 HTTP 响应，未知错误只记录日志不外泄细节
func respondServiceError(c *gin.Context, err error, notFoundMessage string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input.", "fields": verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, service.ErrPersonalInfoExists):
		respondError(c, http.StatusConflict, "Personal information already exists.")
	case errors.Is(err, service.ErrProjectSlugTaken):
		respondError(c, http.StatusConflict, "A project with this slug already exists.")
	case errors.Is(err, service.ErrConflict):
		respondError(c, http.StatusConflict, "The request conflicts with the current state.")
	case errors.Is(err, service.ErrUnsupportedMedia):
		respondError(c, http.StatusBadRequest, "Unsupported file content.")
	case errors.Is(err, storage.ErrInfected):
		respondError(c, http.StatusBadRequest, "The uploaded file was rejected.")
	default:
		c.Error(err)
		reqLog := logger.FromContext(c)
		reqLog.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		respondError(c, http.StatusInternalServerError, "Internal server error.")
	}
}
