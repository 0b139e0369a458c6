package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name           string
		deps           map[string]Pinger
		expectedStatus int
		expectedBody   string
	}{
		{name: "no dependencies", deps: nil, expectedStatus: http.StatusOK, expectedBody: `{"checks":{},"status":"ok"}`},
		{name: "all healthy", deps: map[string]Pinger{"mongo": ok, "redis": ok}, expectedStatus: http.StatusOK, expectedBody: `{"checks":{"mongo":"ok","redis":"ok"},"status":"ok"}`},
		{name: "redis down", deps: map[string]Pinger{"mongo": ok, "redis": down}, expectedStatus: http.StatusServiceUnavailable, expectedBody: `{"checks":{"mongo":"ok","redis":"unreachable"},"status":"degraded"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", NewHealthHandler(tt.deps).Health)

			w := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
