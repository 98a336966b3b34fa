package api

import (
	"context"
	"errors"
	"net/http"

	"storybook-ai/backend/internal/credentials"
	"storybook-ai/backend/internal/provider"
	"storybook-ai/backend/internal/service"
	"storybook-ai/backend/internal/story"
	apperrors "storybook-ai/backend/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Messages shown to callers for errors whose underlying text is not safe
// or not useful to expose
const (
	msgAccessDenied    = "Invalid access code or missing API keys"
	msgDefaults        = "Server provider credentials are not configured"
	msgPrompt          = "Story prompt template is unavailable"
	msgGeneratedStory  = "The generated story failed validation"
	msgSuppliedStory   = "The story failed validation"
	msgStorage         = "Failed to store the generated image"
	msgProviderTimeout = "The provider did not respond in time"
	msgInternal        = "An unexpected error occurred"
	msgBodyTooLarge    = "Request body too large"
	msgInvalidBody     = "Invalid request format"
)

// providerDetails is attached to PROVIDER_ERROR responses
type providerDetails struct {
	Provider   string `json:"provider"`
	Operation  string `json:"operation"`
	StatusCode int    `json:"status_code,omitempty"`
}

// fieldError describes one failed binding rule
type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// toAppError maps domain errors onto the API error taxonomy
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var providerErr *provider.Error
	var verr *story.ValidationError

	switch {
	case errors.Is(err, credentials.ErrUnauthorized):
		return apperrors.NewForbiddenError(apperrors.CodeAccessDenied, msgAccessDenied).WithCause(err)

	case errors.Is(err, credentials.ErrDefaultsIncomplete):
		return apperrors.NewInternalServerError(apperrors.CodeConfigurationError, msgDefaults).WithCause(err)

	case errors.Is(err, service.ErrPromptUnavailable):
		return apperrors.NewInternalServerError(apperrors.CodeConfigurationError, msgPrompt).WithCause(err)

	case errors.Is(err, service.ErrGeneratedStoryInvalid):
		appErr = apperrors.NewBadGatewayError(apperrors.CodeStoryInvalid, msgGeneratedStory).WithCause(err)
		if errors.As(err, &verr) {
			appErr = appErr.WithDetails(verr)
		}
		return appErr

	case errors.As(err, &verr):
		return apperrors.NewUnprocessableError(apperrors.CodeStoryInvalid, msgSuppliedStory).WithDetails(verr).WithCause(err)

	case errors.Is(err, story.ErrUnsupportedEventType):
		return apperrors.NewUnprocessableError(apperrors.CodeStoryInvalid, err.Error()).WithCause(err)

	case errors.Is(err, service.ErrStorage):
		return apperrors.NewInternalServerError(apperrors.CodeStorageError, msgStorage).WithCause(err)

	case errors.Is(err, service.ErrInvalidVoice),
		errors.Is(err, service.ErrEmptyInput),
		errors.Is(err, provider.ErrUnknownProvider):
		return apperrors.NewBadRequestError(apperrors.CodeInvalidRequest, err.Error()).WithCause(err)

	case errors.As(err, &providerErr):
		if providerErr.Timeout() {
			return apperrors.NewGatewayTimeoutError(apperrors.CodeProviderTimeout, msgProviderTimeout).
				WithDetails(providerDetails{Provider: providerErr.Provider, Operation: providerErr.Operation}).
				WithCause(err)
		}
		return apperrors.NewBadGatewayError(apperrors.CodeProviderError, providerErr.Error()).
			WithDetails(providerDetails{
				Provider:   providerErr.Provider,
				Operation:  providerErr.Operation,
				StatusCode: providerErr.StatusCode,
			}).
			WithCause(err)

	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewGatewayTimeoutError(apperrors.CodeProviderTimeout, msgProviderTimeout).WithCause(err)
	}

	return apperrors.NewInternalServerError(apperrors.CodeInternalError, msgInternal).WithCause(err)
}

// bindingError maps a ShouldBindJSON failure onto INVALID_REQUEST
func bindingError(err error) *apperrors.AppError {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return apperrors.NewBadRequestError(apperrors.CodeInvalidRequest, msgBodyTooLarge).WithCause(err)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		return apperrors.BadRequestWithDetails(apperrors.CodeInvalidRequest, msgInvalidBody, fields).WithCause(err)
	}

	return apperrors.BadRequestWithDetails(apperrors.CodeInvalidRequest, msgInvalidBody, err.Error()).WithCause(err)
}
