package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Name("API")
	{
		api.Get("/users", listAccount)
		api.Get("/users/me", authMiddleware, getUserinfo)
		api.Get("/users/:accountId", getOthersInfo)

		rooms := api.Group("/rooms/:peer").Name("Rooms API")
		{
			rooms.Get("/messages", authMiddleware, listMessage)
			rooms.Post("/messages", authMiddleware, newMessage)

			rooms.Get("/calls/ongoing", authMiddleware, getOngoingCall)
			rooms.Post("/calls", authMiddleware, startCall)
			rooms.Post("/calls/ongoing/accept", authMiddleware, acceptCall)
			rooms.Delete("/calls/ongoing", authMiddleware, endCall)
			rooms.Post("/calls/ongoing/token", authMiddleware, exchangeCallToken)

			rooms.Post("/stream/ticket", authMiddleware, issueStreamTicket)
			rooms.Get("/stream", websocket.New(streamGateway))
		}
	}
}
