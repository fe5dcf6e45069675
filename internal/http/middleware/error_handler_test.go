package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository/common"
)

func performWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(err)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_AppError(t *testing.T) {
	w := performWithError(t, apperror.Conflict("предложение уже обработано"))

	assert.Equal(t, http.StatusConflict, w.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "CONFLICT", body["code"])
	assert.Equal(t, "предложение уже обработано", body["error"])
}

func TestErrorHandler_RepositorySentinels(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{repository.ErrOrderNotFound, http.StatusNotFound, "заказ не найден"},
		{repository.ErrChatNotFound, http.StatusNotFound, "чат не найден"},
		{repository.ErrOfferNotFound, http.StatusNotFound, "предложение не найдено"},
		{repository.ErrWorkOfferNotFound, http.StatusNotFound, "предложение не найдено"},
		{common.ErrStatusConflict, http.StatusConflict, "текущее состояние не допускает это действие"},
	}

	for _, tc := range cases {
		w := performWithError(t, tc.err)
		assert.Equal(t, tc.status, w.Code)

		var body map[string]string
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.message, body["error"])
	}
}

func TestErrorHandler_MasksInternalErrors(t *testing.T) {
	w := performWithError(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:", "детали внутренней ошибки не утекают клиенту")
	assert.Contains(t, w.Body.String(), "внутренняя ошибка сервера")
}

func TestErrorHandler_SkipsWrittenResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
