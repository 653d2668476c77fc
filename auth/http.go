package auth

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// HTTPErrorHandler renders errors returned by handlers as JSON
func HTTPErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = resolveLogger(logger)

	return func(c *fiber.Ctx, err error) error {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			logger.Debug("request validation failed", "path", c.Path(), "details", print.MaybePrettyJSON(verrs))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":     http.StatusText(fiber.StatusBadRequest),
				"message":   "validation failed",
				"text_code": TextCodeValidation,
				"details":   FormatValidationErrorToMap(verrs),
			})
		}

		var richErr *goerrors.Error
		if errors.As(err, &richErr) {
			code := StatusFromError(richErr)
			if code >= fiber.StatusInternalServerError {
				logger.Error("request failed",
					"path", c.Path(),
					"error", richErr.Error(),
					"category", richErr.Category,
					"details", print.MaybePrettyJSON(richErr.Metadata),
				)
			} else {
				logger.Info("request rejected",
					"path", c.Path(),
					"error", richErr.Message,
					"text_code", richErr.TextCode,
				)
			}
			return c.Status(code).JSON(fiber.Map{
				"error":     http.StatusText(code),
				"message":   richErr.Message,
				"text_code": richErr.TextCode,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error":   http.StatusText(fiberErr.Code),
				"message": fiberErr.Message,
			})
		}

		logger.Error("unexpected server error", "path", c.Path(), "error", err)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   http.StatusText(fiber.StatusInternalServerError),
			"message": "An unexpected server error occurred",
		})
	}
}

// StatusFromError returns the HTTP status for a categorized error
func StatusFromError(err *goerrors.Error) int {
	if err == nil {
		return fiber.StatusInternalServerError
	}

	if err.Code >= 400 && err.Code < 600 {
		return err.Code
	}

	switch err.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// FormatValidationErrorToMap flattens ozzo errors into field -> message
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		if err != nil {
			out["_"] = err.Error()
		}
		return out
	}

	for field, ferr := range verrs {
		if ferr != nil {
			out[field] = ferr.Error()
		}
	}
	return out
}
