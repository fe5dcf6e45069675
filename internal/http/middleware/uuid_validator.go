package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Argor01/OkoZnaniy-sub001/internal/dto"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
)

// UUIDValidator отклоняет запрос до хэндлера, если параметр маршрута не
// является корректным UUID.
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			appErr := apperror.Validation("параметр " + paramName + " должен быть валидным UUID")
			c.AbortWithStatusJSON(appErr.HTTPStatus, dto.ErrorResponse{
				Error: appErr.Message,
				Code:  string(appErr.Code),
			})
			return
		}

		c.Next()
	}
}
