package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/aeo-insights/internal/pipeline"
	"github.com/jonathan/aeo-insights/internal/recommendation"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound   *pipeline.NotFoundError
		invalid    *pipeline.ValidationError
		errInvalid *ErrValidation
		fieldErrs  validator.ValidationErrors
		syntaxErr  *json.SyntaxError
		typeErr    *json.UnmarshalTypeError
		generation *recommendation.GenerationError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, recommendation.ErrNoOpportunities):
		return http.StatusOK
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &errInvalid), errors.As(err, &fieldErrs),
		errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return http.StatusBadRequest
	case errors.As(err, &generation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the machine-readable "error" field of an error body
func errorCode(err error) string {
	var generation *recommendation.GenerationError
	switch status := HTTPStatus(err); {
	case errors.As(err, &generation):
		return "generation_failed"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusBadRequest:
		return "invalid_request"
	default:
		return "internal_error"
	}
}
