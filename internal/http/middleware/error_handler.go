package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Argor01/OkoZnaniy-sub001/internal/dto"
	"github.com/Argor01/OkoZnaniy-sub001/internal/logger"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository/common"
)

// ErrorHandler обрабатывает ошибки централизованно: переводит ошибки
// прикладного уровня в HTTP статусы и маскирует внутренние.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, code, message := classify(err)

		entry := logger.WithComponent("http").WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			entry.WithError(err).Error("запрос завершился внутренней ошибкой")
		} else {
			entry.WithError(err).Debug("запрос отклонён")
		}

		c.JSON(status, dto.ErrorResponse{Error: message, Code: code})
	}
}

// classify сопоставляет ошибке HTTP статус, машинный код и сообщение для
// клиента. Всё, что не распознано, маскируется как внутренняя ошибка.
func classify(err error) (int, string, string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus, string(appErr.Code), appErr.Message
	}

	switch {
	case errors.Is(err, repository.ErrChatNotFound):
		return http.StatusNotFound, string(apperror.ErrCodeNotFound), "чат не найден"
	case errors.Is(err, repository.ErrMessageNotFound):
		return http.StatusNotFound, string(apperror.ErrCodeNotFound), "сообщение не найдено"
	case errors.Is(err, repository.ErrOrderNotFound):
		return http.StatusNotFound, string(apperror.ErrCodeNotFound), "заказ не найден"
	case errors.Is(err, repository.ErrOfferNotFound), errors.Is(err, repository.ErrWorkOfferNotFound):
		return http.StatusNotFound, string(apperror.ErrCodeNotFound), "предложение не найдено"
	case errors.Is(err, repository.ErrClaimNotFound):
		return http.StatusNotFound, string(apperror.ErrCodeNotFound), "обращение не найдено"
	case errors.Is(err, repository.ErrMediaNotFound):
		return http.StatusNotFound, string(apperror.ErrCodeNotFound), "файл не найден"
	case errors.Is(err, repository.ErrNotificationNotFound):
		return http.StatusNotFound, string(apperror.ErrCodeNotFound), "уведомление не найдено"
	case errors.Is(err, common.ErrStatusConflict):
		return http.StatusConflict, string(apperror.ErrCodeConflict), "текущее состояние не допускает это действие"
	default:
		return http.StatusInternalServerError, string(apperror.ErrCodeInternal), "внутренняя ошибка сервера"
	}
}
