package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// APIResponse mirrors the response envelope with data decoded as a JSON object.
type APIResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   string         `json:"error"`
}

// File is one file part of a multipart request.
type File struct {
	Field   string
	Name    string
	Content []byte
}

// MakeRequest creates and executes a test HTTP request.
func MakeRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return MakeAuthRequest(t, router, method, path, "", body)
}

// MakeAuthRequest creates a request with Authorization header. An empty token sends none.
func MakeAuthRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader = http.NoBody
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, path, reqBody)
	require.NoError(t, err)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

// MakeMultipartRequest sends form fields and files as multipart/form-data.
// Repeated keys in fields become repeated form values.
func MakeMultipartRequest(t *testing.T, router *gin.Engine, method, path, token string, fields [][2]string, files ...File) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		require.NoError(t, mw.WriteField(f[0], f[1]))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Name)
		require.NoError(t, err)
		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

// ParseResponse parses JSON response into target struct.
func ParseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), target)
	require.NoError(t, err, "body: %s", w.Body.String())
}

// ParseAPIResponse decodes an envelope whose data is an object.
func ParseAPIResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	ParseResponse(t, w, &resp)
	return resp
}

// ParseData decodes the data field of the envelope into T.
func ParseData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	ParseResponse(t, w, &resp)
	require.True(t, resp.Success, "body: %s", w.Body.String())
	return resp.Data
}
