package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/domain/errs"
)

func TestOpsController_HealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	r := newTestEngine(t)
	NewOpsController(r, zap.NewNop(), map[string]HealthCheck{"db": ok})
	rr := doReq(t, r, http.MethodGet, RouteHealth, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"db": "up"}, decodeBody(t, rr)["checks"])

	r = newTestEngine(t)
	NewOpsController(r, zap.NewNop(), map[string]HealthCheck{"db": ok, "redis": down})
	rr = doReq(t, r, http.MethodGet, RouteHealth, nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, map[string]any{"db": "up", "redis": "down"}, decodeBody(t, rr)["checks"])

	rr = doReq(t, r, http.MethodGet, RouteMetrics, nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &errs.ValidationError{Field: "name", Reason: "too long"}, http.StatusBadRequest},
		{"not authenticated", errs.ErrNotAuthenticated, http.StatusUnauthorized},
		{"bad credentials", errs.ErrInvalidCredentials, http.StatusUnauthorized},
		{"duplicate", errs.ErrAlreadyExists, http.StatusConflict},
		{"not found", &errs.NotFoundError{Resource: "file", ID: "1"}, http.StatusNotFound},
		{"partial", &errs.PartialDeleteError{ID: "1", Err: errors.New("x")}, http.StatusInternalServerError},
		{"storage", fmt.Errorf("wrapped: %w", &errs.StorageError{Op: "put blob", Err: errors.New("x")}), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := newTestEngine(t)
			r.GET("/x", func(c *gin.Context) { respondError(c, zap.NewNop(), "op", tt.err) })

			rr := doReq(t, r, http.MethodGet, "/x", nil, nil)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, decodeBody(t, rr), "error")
		})
	}
}
