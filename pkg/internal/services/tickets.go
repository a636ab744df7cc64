package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

type RoomTicketClaims struct {
	AccountID string `json:"account_id"`
	RoomID    string `json:"room_id"`
	jwt.RegisteredClaims
}

// CreateRoomTicket issues the short-lived credential a client presents when
// attaching to a room's stream gateway.
func CreateRoomTicket(accountId, roomId string) (string, error) {
	claims := RoomTicketClaims{
		AccountID: accountId,
		RoomID:    roomId,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "pairline",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute * 10)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	tks, err := token.SignedString([]byte(viper.GetString("security.ticket_secret")))
	if err != nil {
		return "", fmt.Errorf("failed to sign ticket: %v", err)
	}
	return tks, nil
}

func ParseRoomTicket(tk string) (RoomTicketClaims, error) {
	var claims RoomTicketClaims
	token, err := jwt.ParseWithClaims(tk, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method)
		}
		return []byte(viper.GetString("security.ticket_secret")), nil
	})
	if err != nil {
		return claims, err
	}
	if !token.Valid {
		return claims, fmt.Errorf("invalid ticket")
	}
	return claims, nil
}
