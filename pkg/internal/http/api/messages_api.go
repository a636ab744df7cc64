package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pairline/pairline/pkg/internal/http/exts"
	"github.com/pairline/pairline/pkg/internal/models"
	"github.com/pairline/pairline/pkg/internal/services"
)

func listMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)

	roomId, err := services.DeriveRoomID(user.ID, c.Params("peer"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if messages, err := services.Messages.List(c.Context(), roomId); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	} else {
		return c.JSON(messages)
	}
}

func newMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)

	var data struct {
		Text string `json:"text" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	roomId, err := services.DeriveRoomID(user.ID, c.Params("peer"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	message, err := services.Messages.Send(c.Context(), roomId, user.ID, data.Text)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) || errors.Is(err, services.ErrNotInRoom) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(message)
}
