package server

import (
	"errors"
	"strings"

	"musefeed/internal/models"
	"musefeed/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that a helper already committed the response.
// Handlers return nil on it so the ErrorHandler does not overwrite the body.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter as a positive uint.
// On failure it writes a 400 response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam turns "id" into "ID" and "commentId" into "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if prefix, ok := strings.CutSuffix(param, "Id"); ok {
		return strings.ToLower(prefix) + " ID"
	}
	return param
}

// parseBody decodes the JSON body into dst, writing a 400 on malformed input.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// respondServiceError maps a service error onto the failure envelope. Causes
// of internal errors are logged and never returned to the client.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status = appErr.Status()
	}

	if status >= fiber.StatusInternalServerError {
		observability.Logger.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
	}
	return models.RespondWithError(c, status, err)
}

// respondOK writes the success envelope with the payload under key.
func respondOK(c *fiber.Ctx, status int, message, key string, payload any) error {
	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if key != "" {
		body[key] = payload
	}
	return c.Status(status).JSON(body)
}
