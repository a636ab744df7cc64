package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pairline/pairline/pkg/internal/models"
	"github.com/pairline/pairline/pkg/internal/services"
)

func getOngoingCall(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)

	roomId, err := services.DeriveRoomID(user.ID, c.Params("peer"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if record, err := services.Calls.GetOngoingCall(c.Context(), roomId); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	} else {
		return c.JSON(record)
	}
}

func startCall(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)
	peer := c.Params("peer")

	roomId, err := services.DeriveRoomID(user.ID, peer)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	record, err := services.Calls.StartCall(c.Context(), roomId, user.ID, peer)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyInCall) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(record)
}

func acceptCall(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)

	roomId, err := services.DeriveRoomID(user.ID, c.Params("peer"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	record, err := services.Calls.AcceptCall(c.Context(), roomId, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotRinging) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if errors.Is(err, services.ErrNotReceiver) {
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(record)
}

func endCall(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)

	roomId, err := services.DeriveRoomID(user.ID, c.Params("peer"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	record, err := services.Calls.EndCall(c.Context(), roomId, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotParticipant) {
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(record)
}

func exchangeCallToken(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)

	roomId, err := services.DeriveRoomID(user.ID, c.Params("peer"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if _, err := services.Calls.GetOngoingCall(c.Context(), roomId); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	tk, err := services.EncodeCallToken(user.ID, roomId)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"token": tk,
	})
}
