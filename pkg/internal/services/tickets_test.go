package services

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomTicketRoundTrip(t *testing.T) {
	viper.Set("security.ticket_secret", "test-secret")
	defer viper.Set("security.ticket_secret", "")

	ticket, err := CreateRoomTicket("u1", "u1_u2")
	require.NoError(t, err)

	claims, err := ParseRoomTicket(ticket)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.AccountID)
	assert.Equal(t, "u1_u2", claims.RoomID)
}

func TestParseRoomTicketRejectsTampering(t *testing.T) {
	viper.Set("security.ticket_secret", "test-secret")
	defer viper.Set("security.ticket_secret", "")

	ticket, err := CreateRoomTicket("u1", "u1_u2")
	require.NoError(t, err)

	_, err = ParseRoomTicket(ticket + "x")
	assert.Error(t, err)

	viper.Set("security.ticket_secret", "another-secret")
	_, err = ParseRoomTicket(ticket)
	assert.Error(t, err)
}
