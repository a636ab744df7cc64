package api

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/pairline/pairline/pkg/internal/models"
	"github.com/pairline/pairline/pkg/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func issueStreamTicket(c *fiber.Ctx) error {
	user := c.Locals("user").(models.Account)

	roomId, err := services.DeriveRoomID(user.ID, c.Params("peer"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	tk, err := services.CreateRoomTicket(user.ID, roomId)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"ticket": tk,
	})
}

// streamGateway multiplexes one room's message snapshots and signaling
// deltas into a single websocket. Each connection owns one chat session;
// closing the socket tears the session down, active call included.
func streamGateway(c *websocket.Conn) {
	defer c.Close()

	claims, err := services.ParseRoomTicket(c.Query("ticket"))
	if err != nil {
		_ = c.WriteJSON(models.StreamPackage{Action: "error", Payload: "invalid ticket"})
		return
	}

	var transport services.Transport
	if viper.GetBool("calling.watchdog") {
		lk := services.NewLiveKitTransport()
		_ = lk.Initialize("")
		transport = lk
	}

	session, err := services.NewChatSession(services.SessionContext{
		SelfID: claims.AccountID,
		PeerID: c.Params("peer"),
	}, services.Messages, services.Calls, transport, services.EncodeCallToken)
	if err != nil {
		_ = c.WriteJSON(models.StreamPackage{Action: "error", Payload: err.Error()})
		return
	}
	if session.RoomID() != claims.RoomID {
		_ = c.WriteJSON(models.StreamPackage{Action: "error", Payload: "ticket does not match this room"})
		return
	}

	updates := make(chan services.ChatSessionView, 8)
	session.OnUpdate(func(view services.ChatSessionView) {
		for {
			select {
			case updates <- view:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})

	if err := session.Open(context.Background()); err != nil {
		_ = c.WriteJSON(models.StreamPackage{Action: "error", Payload: err.Error()})
		return
	}
	defer session.Close()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for view := range updates {
			if err := c.WriteJSON(models.StreamPackage{Action: "session.update", Payload: view}); err != nil {
				return
			}
		}
	}()

	// The read side only watches for the client going away.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}

	session.Close()
	close(updates)
	<-writerDone
	log.Debug().Str("room", claims.RoomID).Str("account", claims.AccountID).Msg("Stream gateway connection closed.")
}
