package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arise-roster/internal/model"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", model.NewValidationError("name", "is required"), http.StatusBadRequest, CodeValidation},
		{"wrapped validation", fmt.Errorf("create: %w", model.NewValidationError("team", "bad")), http.StatusBadRequest, CodeValidation},
		{"username exists", model.ErrUsernameExists, http.StatusBadRequest, CodeUsernameExists},
		{"no session", model.ErrAuthenticationRequired, http.StatusUnauthorized, CodeUnauthorized},
		{"expired", model.ErrSessionExpired, http.StatusUnauthorized, CodeSessionExpired},
		{"disabled", model.ErrAccountDisabled, http.StatusUnauthorized, CodeAccountDisabled},
		{"credentials", model.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{"forbidden", model.NewForbiddenError("nope"), http.StatusForbidden, CodeForbidden},
		{"player not found", model.ErrPlayerNotFound, http.StatusNotFound, CodeNotFound},
		{"account not found", model.ErrAccountNotFound, http.StatusNotFound, CodeNotFound},
		{"rate limited", NewRateLimitedError(), http.StatusTooManyRequests, CodeRateLimited},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("pq: password authentication failed"))
	assert.NotContains(t, rr.Body.String(), "pq:")
}

func TestForbiddenCarriesMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, model.NewForbiddenError("assistant coaches can only add players to team %s", model.TeamRECTO))
	assert.Contains(t, rr.Body.String(), "team RECTO")
}
