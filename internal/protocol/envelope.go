// Package protocol defines the {event, payload} wire envelope and the
// typed payload for every event the server accepts. Inbound frames are
// decoded into an explicit struct per event name with required fields
// validated up front, instead of trusting field presence in a loose map.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Event names, client -> server. Server -> client frames reuse the same
// names; the signaling events are forwarded verbatim.
const (
	EventGetRooms         = "get-rooms"
	EventGetRoom          = "get-room"
	EventCreateRoom       = "create-room"
	EventJoinRoom         = "join-room"
	EventLeaveRoom        = "leave-room"
	EventSendMessage      = "send-message"
	EventReaction         = "reaction"
	EventSendOffer        = "send-offer"
	EventSendAnswer       = "send-answer"
	EventSendICECandidate = "send-ice-candidate"
)

// Envelope wraps every client/server exchange.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// GetRoomPayload requests one room by id.
type GetRoomPayload struct {
	ID string `json:"id"`
}

// CreateRoomPayload creates a named room.
type CreateRoomPayload struct {
	Name string `json:"name"`
}

// JoinRoomPayload adds the connection to a room as a new member.
// MemberID is client-generated and must be unique within the room.
type JoinRoomPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	MemberID string `json:"memberId"`
}

// LeaveRoomPayload announces a voluntary departure. The member to remove is
// resolved by connection identity, not by these fields; they are kept for
// wire compatibility.
type LeaveRoomPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// MessageInfo is the client's view of a chat message. Reactions sent by the
// client are ignored; the server resets them to the zero set.
type MessageInfo struct {
	Username  string         `json:"username"`
	Kind      string         `json:"type"`
	MessageID string         `json:"messageId"`
	Content   string         `json:"content"`
	Reactions map[string]int `json:"reactions"`
}

// SendMessagePayload appends a message to a room.
type SendMessagePayload struct {
	ID          string      `json:"id"`
	MessageInfo MessageInfo `json:"messageInfo"`
}

// ReactionInfo names the message and the reaction kind to increment.
type ReactionInfo struct {
	MessageID    string `json:"messageId"`
	ReactionType string `json:"reactionType"`
}

// ReactionPayload applies one reaction increment.
type ReactionPayload struct {
	ID          string       `json:"id"`
	MessageInfo ReactionInfo `json:"messageInfo"`
}

// SignalPayload is shared by send-offer, send-answer and
// send-ice-candidate. Exactly one of Offer/Answer/Candidate is set,
// matching the event name; the server never inspects its contents.
type SignalPayload struct {
	ID         string          `json:"id"`
	SenderID   string          `json:"senderId"`
	ReceiverID string          `json:"receiverId"`
	Offer      json.RawMessage `json:"offer,omitempty"`
	Answer     json.RawMessage `json:"answer,omitempty"`
	Candidate  json.RawMessage `json:"candidate,omitempty"`
}

// Inbound is the decoded form of one client frame: the event name, the
// matching payload struct, and the raw frame bytes (the relay forwards
// signaling frames verbatim).
type Inbound struct {
	Event string
	Raw   []byte

	GetRoom     *GetRoomPayload
	CreateRoom  *CreateRoomPayload
	JoinRoom    *JoinRoomPayload
	LeaveRoom   *LeaveRoomPayload
	SendMessage *SendMessagePayload
	Reaction    *ReactionPayload
	Signal      *SignalPayload
}

// Decode parses and validates one inbound frame. Any error is a protocol
// error: the caller logs it and drops the frame without closing the
// connection.
func Decode(frame []byte) (*Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("envelope has no event name")
	}

	in := &Inbound{Event: env.Event, Raw: frame}
	switch env.Event {
	case EventGetRooms:
		// No payload fields required.
		return in, nil

	case EventGetRoom:
		p := &GetRoomPayload{}
		if err := decodePayload(env, p); err != nil {
			return nil, err
		}
		if p.ID == "" {
			return nil, missingField(env.Event, "id")
		}
		in.GetRoom = p
		return in, nil

	case EventCreateRoom:
		p := &CreateRoomPayload{}
		if err := decodePayload(env, p); err != nil {
			return nil, err
		}
		if p.Name == "" {
			return nil, missingField(env.Event, "name")
		}
		in.CreateRoom = p
		return in, nil

	case EventJoinRoom:
		p := &JoinRoomPayload{}
		if err := decodePayload(env, p); err != nil {
			return nil, err
		}
		if p.ID == "" {
			return nil, missingField(env.Event, "id")
		}
		if p.Username == "" {
			return nil, missingField(env.Event, "username")
		}
		if p.MemberID == "" {
			return nil, missingField(env.Event, "memberId")
		}
		in.JoinRoom = p
		return in, nil

	case EventLeaveRoom:
		p := &LeaveRoomPayload{}
		if err := decodePayload(env, p); err != nil {
			return nil, err
		}
		if p.ID == "" {
			return nil, missingField(env.Event, "id")
		}
		in.LeaveRoom = p
		return in, nil

	case EventSendMessage:
		p := &SendMessagePayload{}
		if err := decodePayload(env, p); err != nil {
			return nil, err
		}
		if p.ID == "" {
			return nil, missingField(env.Event, "id")
		}
		if p.MessageInfo.Username == "" {
			return nil, missingField(env.Event, "messageInfo.username")
		}
		if p.MessageInfo.Kind == "" {
			return nil, missingField(env.Event, "messageInfo.type")
		}
		in.SendMessage = p
		return in, nil

	case EventReaction:
		p := &ReactionPayload{}
		if err := decodePayload(env, p); err != nil {
			return nil, err
		}
		if p.ID == "" {
			return nil, missingField(env.Event, "id")
		}
		if p.MessageInfo.MessageID == "" {
			return nil, missingField(env.Event, "messageInfo.messageId")
		}
		if p.MessageInfo.ReactionType == "" {
			return nil, missingField(env.Event, "messageInfo.reactionType")
		}
		in.Reaction = p
		return in, nil

	case EventSendOffer, EventSendAnswer, EventSendICECandidate:
		p := &SignalPayload{}
		if err := decodePayload(env, p); err != nil {
			return nil, err
		}
		if p.ID == "" {
			return nil, missingField(env.Event, "id")
		}
		if p.SenderID == "" {
			return nil, missingField(env.Event, "senderId")
		}
		if p.ReceiverID == "" {
			return nil, missingField(env.Event, "receiverId")
		}
		switch env.Event {
		case EventSendOffer:
			if len(p.Offer) == 0 {
				return nil, missingField(env.Event, "offer")
			}
		case EventSendAnswer:
			if len(p.Answer) == 0 {
				return nil, missingField(env.Event, "answer")
			}
		case EventSendICECandidate:
			if len(p.Candidate) == 0 {
				return nil, missingField(env.Event, "candidate")
			}
		}
		in.Signal = p
		return in, nil

	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
}

// Marshal builds an outbound frame for the given event and payload.
func Marshal(event string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Payload: body})
}

func decodePayload(env Envelope, dst any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", env.Event)
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		return fmt.Errorf("%s: malformed payload: %w", env.Event, err)
	}
	return nil
}

func missingField(event, field string) error {
	return fmt.Errorf("%s: missing required field %q", event, field)
}
