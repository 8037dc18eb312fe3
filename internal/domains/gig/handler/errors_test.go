package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigmarket-backend/internal/domains/gig/model"
	"gigmarket-backend/internal/shared/response"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func writeErrorResult(t *testing.T, err error) (int, response.Response) {
	t.Helper()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	writeError(c, err)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"gig not found", model.NewGigNotFoundError(), 404, model.ErrCodeGigNotFound},
		{"application not found", model.NewApplicationNotFoundError(), 404, model.ErrCodeApplicationNotFound},
		{"forbidden", model.NewForbiddenError("accept applications"), 403, model.ErrCodeForbidden},
		{"duplicate application", model.NewDuplicateApplicationError(), 409, model.ErrCodeDuplicateApplication},
		{"already assigned", model.NewAlreadyAssignedError(), 409, model.ErrCodeAlreadyAssigned},
		{"not accepting", model.NewNotAcceptingError(model.GigStatusCompleted), 409, model.ErrCodeNotAccepting},
		{"invalid transition", model.NewInvalidTransitionError(model.GigStatusDraft, model.GigStatusCompleted), 409, model.ErrCodeConflict},
		{"application not pending", model.ErrApplicationNotPending, 409, model.ErrCodeConflict},
		{"version conflict", model.ErrVersionConflict, 409, model.ErrCodeConflict},
		{"invalid sort", model.NewInvalidSortError(), 400, model.ErrCodeInvalidSort},
		{"bare sentinel keeps fallback code", model.ErrGigNotFound, 404, model.ErrCodeGigNotFound},
		{"timeout", model.ErrTimeout, 504, model.ErrCodeTimeout},
		{"wrapped deadline exceeded", fmt.Errorf("failed to get gig: %w", context.DeadlineExceeded), 504, model.ErrCodeTimeout},
		{"wrapped cancellation", fmt.Errorf("failed to search gigs: %w", context.Canceled), 504, model.ErrCodeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := writeErrorResult(t, tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestWriteErrorValidationDetails(t *testing.T) {
	err := validation.Errors{"title": errors.New("cannot be blank")}

	status, body := writeErrorResult(t, err)

	assert.Equal(t, 400, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, model.ErrCodeValidation, body.Error.Code)
	assert.NotNil(t, body.Error.Details)
}

func TestWriteErrorUnknownErrorIsOpaque(t *testing.T) {
	status, body := writeErrorResult(t, errors.New("pool exhausted"))

	assert.Equal(t, 500, status)
	require.NotNil(t, body.Error)
	assert.NotContains(t, body.Error.Message, "pool")
}
