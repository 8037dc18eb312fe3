package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"gigmarket-backend/internal/domains/gig/model"
	"gigmarket-backend/internal/shared/response"
)

// writeError maps domain errors onto the HTTP surface. Conflict-class
// errors (lost races, duplicate applies, illegal transitions) are 409;
// everything the caller could have known upfront is 400.
func writeError(c *gin.Context, err error) {
	var gigErr *model.GigError
	code := model.ErrCodeValidation
	if errors.As(err, &gigErr) {
		code = gigErr.Code
	}

	switch {
	case errors.Is(err, model.ErrGigNotFound):
		response.ErrorResponse(c, http.StatusNotFound, orCode(code, model.ErrCodeGigNotFound), err.Error())
	case errors.Is(err, model.ErrApplicationNotFound):
		response.ErrorResponse(c, http.StatusNotFound, orCode(code, model.ErrCodeApplicationNotFound), err.Error())
	case errors.Is(err, model.ErrForbidden):
		response.ErrorResponse(c, http.StatusForbidden, orCode(code, model.ErrCodeForbidden), err.Error())
	case errors.Is(err, model.ErrDuplicateApplication),
		errors.Is(err, model.ErrGigAlreadyAssigned),
		errors.Is(err, model.ErrGigNotAcceptingApplications),
		errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrApplicationNotPending),
		errors.Is(err, model.ErrVersionConflict):
		response.ErrorResponse(c, http.StatusConflict, orCode(code, model.ErrCodeConflict), err.Error())
	case errors.Is(err, model.ErrInvalidSort):
		response.ErrorResponse(c, http.StatusBadRequest, orCode(code, model.ErrCodeInvalidSort), err.Error())
	case errors.Is(err, model.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		response.ErrorResponse(c, http.StatusGatewayTimeout, orCode(code, model.ErrCodeTimeout), model.ErrTimeout.Error())
	case isValidationError(err):
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeValidation, "Validation failed", err)
	default:
		response.InternalServerError(c, "Something went wrong")
	}
}

func orCode(code, fallback string) string {
	if code != model.ErrCodeValidation {
		return code
	}
	return fallback
}

func isValidationError(err error) bool {
	var ve validation.Errors
	if errors.As(err, &ve) {
		return true
	}
	var ie validation.ErrorObject
	return errors.As(err, &ie)
}
