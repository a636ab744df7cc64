package services

import "github.com/spf13/viper"

var (
	Messages *MessageService
	Calls    *CallService
	Bridge   *StreamBridge
)

// Setup wires the default production instances: relational stores, the
// livekit room manager when calling is configured, and the cache bridge.
func Setup() {
	Messages = NewMessageService(GormMessageLog{})

	var rtc RoomManager
	if viper.GetBool("calling.enabled") {
		rtc = LiveKitRoomManager{}
	}
	Calls = NewCallService(GormCallRecordStore{}, rtc)

	Bridge = NewStreamBridge(Messages, Calls)
}
