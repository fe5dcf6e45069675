package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Argor01/OkoZnaniy-sub001/internal/http/handlers/common"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/service"
)

// MediaHandler обслуживает загрузку и выдачу файлов.
type MediaHandler struct {
	media *service.MediaService
}

// NewMediaHandler создаёт новый хэндлер.
func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Upload обрабатывает POST /api/media: multipart загрузка файла.
// Тип содержимого определяется по сигнатуре, а не по расширению.
func (h *MediaHandler) Upload(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(apperror.Validation("файл обязателен"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer f.Close()

	media, err := h.media.Upload(c.Request.Context(), userID, fileHeader.Filename, f)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, media)
}

// Download обрабатывает GET /api/media/:id: отдаёт содержимое файла
// владельцу или участнику чата, в который файл был отправлен.
func (h *MediaHandler) Download(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	mediaID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	media, rc, err := h.media.Download(c.Request.Context(), userID, mediaID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", media.FileType)
	c.Header("Content-Disposition", `attachment; filename="`+media.FileName+`"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}
