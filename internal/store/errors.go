package store

import "errors"

// Sentinel errors returned by RoomStore operations. Callers branch with
// errors.Is; none of these is fatal to the process.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrDuplicateMember = errors.New("memberId already present in room")
	ErrUnknownReaction = errors.New("unknown reaction kind")
	ErrInvalidMessage  = errors.New("invalid message kind")
)
