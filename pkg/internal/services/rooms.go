package services

import (
	"sort"
	"strings"
)

const RoomIDSeparator = "_"

// DeriveRoomID builds the canonical conversation key of a participant pair.
// The pair is sorted first, so both sides derive the same key no matter the
// argument order. An empty id fails the derivation outright; a partial key
// must never reach the stores.
func DeriveRoomID(selfId, peerId string) (string, error) {
	if len(selfId) == 0 || len(peerId) == 0 {
		return "", ErrInvalidIdentity
	}

	pair := []string{selfId, peerId}
	sort.Strings(pair)
	return strings.Join(pair, RoomIDSeparator), nil
}
