package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccessResponses(t *testing.T) {
	tests := []struct {
		name   string
		send   func(*gin.Context, interface{})
		status int
	}{
		{"Success", Success, http.StatusOK},
		{"Created", Created, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := setupTestContext()

			tt.send(c, map[string]int{"l_id": 3})

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.True(t, resp.Success)
			assert.Equal(t, map[string]interface{}{"l_id": float64(3)}, resp.Data)
			assert.Empty(t, resp.Error)
		})
	}
}

func TestNoContent(t *testing.T) {
	router := gin.New()
	router.DELETE("/test", func(c *gin.Context) {
		NoContent(c)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/test", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		send   func(*gin.Context, string)
		status int
	}{
		{"BadRequest", BadRequest, http.StatusBadRequest},
		{"Unauthorized", Unauthorized, http.StatusUnauthorized},
		{"Forbidden", Forbidden, http.StatusForbidden},
		{"NotFound", NotFound, http.StatusNotFound},
		{"Conflict", Conflict, http.StatusConflict},
		{"PayloadTooLarge", PayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"UnsupportedMediaType", UnsupportedMediaType, http.StatusUnsupportedMediaType},
		{"TooManyRequests", TooManyRequests, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := setupTestContext()

			tt.send(c, "something went wrong")

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Nil(t, resp.Data)
			assert.Equal(t, "something went wrong", resp.Error)
		})
	}
}

func TestInternalError(t *testing.T) {
	c, w := setupTestContext()

	InternalError(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w).Error)
}

func TestAbort(t *testing.T) {
	reached := false
	router := gin.New()
	router.GET("/guarded", func(c *gin.Context) {
		Abort(c, http.StatusForbidden, "insufficient permissions")
	}, func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, reached)
	assert.Equal(t, "insufficient permissions", decode(t, w).Error)
}
