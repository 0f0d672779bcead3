package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/qubeio/microbees/errors"
)

// RespondWithError inspects err: if it is an *apperrors.AppError the status
// and structured body are derived from it; otherwise a generic 500 is sent.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.JSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse())
}

// RespondWithBindingError converts a request binding failure into a 400 with
// per-field messages when the underlying error came from the validator.
func RespondWithBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); ok {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldMessage(fe))
		}
		appErr := apperrors.Validation(strings.Join(fields, "; ")).
			WithDetail("fields", fields)
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	RespondWithError(c, apperrors.Validation("Request body is malformed.").WithCause(err))
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		*target = verrs
		return true
	}
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "max":
		return fe.Field() + " must be " + fe.Param() + " characters or less"
	default:
		return fe.Field() + " is invalid"
	}
}
