package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func performUUIDRequest(t *testing.T, param string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/orders/:id", UUIDValidator("id"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/"+param, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestUUIDValidator_RejectsMalformedParam(t *testing.T) {
	w := performUUIDRequest(t, "not-a-uuid")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Contains(t, body["error"], "id")
}

func TestUUIDValidator_PassesValidParam(t *testing.T) {
	w := performUUIDRequest(t, uuid.NewString())
	assert.Equal(t, http.StatusNoContent, w.Code)
}
