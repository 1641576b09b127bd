package handlers

import (
	"log"

	"gameghor/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindAuth:
		return fiber.StatusUnauthorized
	case apperr.KindAuthorization:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindInvalidTransition:
		return fiber.StatusConflict
	case apperr.KindTransport:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as a {"detail": ...} body. Unclassified errors are
// logged and reported generically.
func respondError(c *fiber.Ctx, action string, err error) error {
	kind := apperr.KindOf(err)
	detail := apperr.DetailOf(err)
	if kind == apperr.KindUnknown {
		log.Printf("Error %s: %v", action, err)
		detail = "Could not " + action
	}
	return c.Status(StatusFor(kind)).JSON(fiber.Map{
		"detail": detail,
	})
}

func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body for %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"detail": "Invalid request body",
	})
}
