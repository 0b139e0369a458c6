package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"micasa/internal/middleware"
	"micasa/internal/models"
	"micasa/internal/validator"
	"micasa/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.RegisterCustomValidators()
}

var (
	hunter = models.Actor{UID: "u-hunter", Email: "hunter@example.com", Role: models.RoleHunter}
	owner  = models.Actor{UID: "u-owner", Email: "owner@example.com", Role: models.RoleOwner}
	admin  = models.Actor{UID: "u-admin", Email: "admin@example.com", Role: models.RoleAdmin}
)

// asActor stands in for the auth middleware.
func asActor(actor models.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, actor.UID)
		c.Set(middleware.EmailKey, actor.Email)
		c.Set(middleware.RoleKey, actor.Role)
		c.Next()
	}
}

func jsonBody(t *testing.T, body interface{}) io.Reader {
	t.Helper()
	if s, ok := body.(string); ok {
		return bytes.NewBufferString(s)
	}
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// dataOf decodes the envelope's data into a generic map.
func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	resp := decode(t, w)
	assert.True(t, resp.Success)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return data
}

type formFile struct {
	field, name string
	content     []byte
}

// multipartBody builds a multipart form. Repeated keys are written in order.
func multipartBody(t *testing.T, fields [][2]string, files ...formFile) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		require.NoError(t, mw.WriteField(f[0], f[1]))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
