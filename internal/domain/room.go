package domain

// Member is a connection's participation record within one room.
// ConnID is the server-generated opaque identifier of the underlying
// websocket connection; it never goes over the wire.
type Member struct {
	ConnID   string `json:"-"`
	Username string `json:"username"`
	MemberID string `json:"memberId"`
}

// Room is a named, server-resident chat/voice session. Rooms live for the
// whole process: they are created on demand and never destroyed, even when
// the last member leaves.
type Room struct {
	ID       string
	Name     string
	Members  []Member
	Messages []*Message
}

// MemberByID returns the member with the given memberId, or nil.
func (r *Room) MemberByID(memberID string) *Member {
	for i := range r.Members {
		if r.Members[i].MemberID == memberID {
			return &r.Members[i]
		}
	}
	return nil
}

// MessageByID returns the message with the given messageId, or nil.
// Linear scan; message volume is chat-scale.
func (r *Room) MessageByID(messageID string) *Message {
	for _, m := range r.Messages {
		if m.MessageID == messageID {
			return m
		}
	}
	return nil
}
