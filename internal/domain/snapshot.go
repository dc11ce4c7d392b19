package domain

// RoomSnapshot is the wire representation of a room's full current state.
// It is sent wholesale on every membership change instead of as an
// incremental delta, so clients resynchronize completely on join/leave.
type RoomSnapshot struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Members  []Member  `json:"members"`
	Messages []Message `json:"messages"`
}

// Snapshot builds a RoomSnapshot from a room. The result shares no mutable
// state with the room: member and message slices and every reaction map are
// copied, so a snapshot taken under the store lock stays consistent after
// the lock is released.
func Snapshot(r *Room) RoomSnapshot {
	snap := RoomSnapshot{
		ID:       r.ID,
		Name:     r.Name,
		Members:  make([]Member, len(r.Members)),
		Messages: make([]Message, len(r.Messages)),
	}
	copy(snap.Members, r.Members)
	for i, m := range r.Messages {
		msg := *m
		msg.Reactions = make(map[string]int, len(m.Reactions))
		for kind, count := range m.Reactions {
			msg.Reactions[kind] = count
		}
		snap.Messages[i] = msg
	}
	return snap
}
