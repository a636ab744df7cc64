package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pairline/pairline/pkg/internal/models"
	"github.com/pairline/pairline/pkg/internal/services"
)

func getUserinfo(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	return c.JSON(user)
}

func getOthersInfo(c *fiber.Ctx) error {
	accountId := c.Params("accountId")

	account, err := services.GetAccount(accountId)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.JSON(account)
}

func listAccount(c *fiber.Ctx) error {
	take := c.QueryInt("take", 100)
	offset := c.QueryInt("offset", 0)

	if accounts, err := services.ListAccount(take, offset); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	} else {
		return c.JSON(accounts)
	}
}
