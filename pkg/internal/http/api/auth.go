package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pairline/pairline/pkg/internal/services"
)

// Identity is supplied by the out-of-scope session collaborator; the gateway
// in front of this service resolves the credential and forwards the account
// id in a trusted header.
func authMiddleware(c *fiber.Ctx) error {
	accountId := c.Get("X-Account-ID")
	if len(accountId) == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "account id is required")
	}

	account, err := services.GetAccount(accountId)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "account not found")
	}

	c.Locals("user", account)
	return c.Next()
}
