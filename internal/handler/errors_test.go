package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"portfoliobuilder/internal/auth"
	"portfoliobuilder/internal/directory"
	"portfoliobuilder/internal/portfolio"
	"portfoliobuilder/internal/repository"
	"portfoliobuilder/internal/wizard"
	"portfoliobuilder/pkg/rbac"
)

func TestWriteError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{&portfolio.ValidationError{Field: "menuPosition", Expected: "one of {top}"}, http.StatusBadRequest},
		{&auth.ValidationError{Message: "bad email"}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", repository.ErrProjectNotFound), http.StatusNotFound},
		{directory.ErrProfileNotFound, http.StatusNotFound},
		{repository.ErrSlugTaken, http.StatusConflict},
		{auth.ErrEmailExists, http.StatusConflict},
		{wizard.ErrNotAtFinalStep, http.StatusConflict},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{rbac.CheckPermission(1, rbac.RoleUser, rbac.PermissionReplayOutbox), http.StatusForbidden},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		writeError(c, zap.NewNop(), tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	writeError(c, zap.NewNop(), errors.New("pq: password authentication failed"))
	assert.JSONEq(t, `{"error":"could not complete action"}`, w.Body.String())
}

func TestCurrentUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := currentUserID(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c.Set("user_id", 9)
	id, ok := currentUserID(c)
	assert.True(t, ok)
	assert.Equal(t, 9, id)
}
