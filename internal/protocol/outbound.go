package protocol

import "github.com/hamspncr/CSCI3280-Project/internal/domain"

// CreateRoomBroadcast announces a new room to every live connection. Lobby
// clients use it as a cue to re-fetch the room list; the creator reads the
// generated id from it.
type CreateRoomBroadcast struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LeaverInfo identifies the departed member so peers can tear down their
// side of the P2P link.
type LeaverInfo struct {
	Username string `json:"username"`
	MemberID string `json:"memberId"`
}

// LeaveRoomBroadcast carries the post-departure room state and the leaver's
// identity to the remaining members.
type LeaveRoomBroadcast struct {
	NewRoom domain.RoomSnapshot `json:"newRoom"`
	Leaver  LeaverInfo          `json:"leaver"`
}
