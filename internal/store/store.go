// Package store owns all room state: the id -> room registry, each room's
// member list and append-only message history, and the reaction counters.
// Everything is in-memory and process-lifetime; one RWMutex guards the
// whole registry, which is plenty at chat-scale contention.
package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/hamspncr/CSCI3280-Project/internal/domain"
)

// RoomStore is the in-memory room registry. Safe for concurrent use.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
}

// NewRoomStore creates an empty RoomStore.
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*domain.Room),
	}
}

// CreateRoom inserts an empty room under a fresh unique id and returns the
// id. Never fails.
func (s *RoomStore) CreateRoom(name string) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.rooms[id] = &domain.Room{ID: id, Name: name}
	s.mu.Unlock()

	return id
}

// GetRoom returns a snapshot of the room with the given id, if it exists.
func (s *RoomStore) GetRoom(id string) (domain.RoomSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return domain.RoomSnapshot{}, false
	}
	return domain.Snapshot(room), true
}

// ListRooms returns a snapshot of every room, keyed by room id.
func (s *RoomStore) ListRooms() map[string]domain.RoomSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := make(map[string]domain.RoomSnapshot, len(s.rooms))
	for id, room := range s.rooms {
		snaps[id] = domain.Snapshot(room)
	}
	return snaps
}

// Join appends a member to the room and returns the updated snapshot plus
// the connIDs of every member (including the joiner) for the membership
// broadcast. Returns ErrRoomNotFound for an unknown room and
// ErrDuplicateMember if the memberId is already taken in that room.
func (s *RoomStore) Join(roomID, connID, username, memberID string) (domain.RoomSnapshot, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return domain.RoomSnapshot{}, nil, ErrRoomNotFound
	}
	if room.MemberByID(memberID) != nil {
		return domain.RoomSnapshot{}, nil, ErrDuplicateMember
	}

	room.Members = append(room.Members, domain.Member{
		ConnID:   connID,
		Username: username,
		MemberID: memberID,
	})
	return domain.Snapshot(room), s.memberConnsLocked(room), nil
}

// LeaveResult carries everything the hub needs to broadcast a departure.
type LeaveResult struct {
	RoomID     string
	Room       domain.RoomSnapshot
	Leaver     domain.Member
	Recipients []string
}

// Leave removes the member owned by connID, scanning all rooms for the
// first match. The boolean is false when the connection is not a member
// anywhere, which makes removal idempotent: an explicit leave-room followed
// by the transport close finds nothing the second time.
func (s *RoomStore) Leave(connID string) (LeaveResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, room := range s.rooms {
		for i := range room.Members {
			if room.Members[i].ConnID != connID {
				continue
			}
			leaver := room.Members[i]
			room.Members = append(room.Members[:i], room.Members[i+1:]...)
			return LeaveResult{
				RoomID:     room.ID,
				Room:       domain.Snapshot(room),
				Leaver:     leaver,
				Recipients: s.memberConnsLocked(room),
			}, true
		}
	}
	return LeaveResult{}, false
}

// RoomOfConn returns the id of the room the connection is currently a
// member of, if any. Used by the dispatcher to enforce single-room
// membership.
func (s *RoomStore) RoomOfConn(connID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, room := range s.rooms {
		for i := range room.Members {
			if room.Members[i].ConnID == connID {
				return room.ID, true
			}
		}
	}
	return "", false
}

// AppendMessage appends a message to the room's history and returns the
// stored form plus the member connIDs for the broadcast. The server is
// authoritative over the parts of the message clients must not control:
// reaction counters are reset to the zero set and a missing messageId gets
// a generated one. Message content stays opaque.
func (s *RoomStore) AppendMessage(roomID string, msg domain.Message) (domain.Message, []string, error) {
	if !domain.ValidMessageKind(msg.Kind) {
		return domain.Message{}, nil, ErrInvalidMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return domain.Message{}, nil, ErrRoomNotFound
	}

	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	msg.Reactions = domain.NewReactions()

	stored := msg
	room.Messages = append(room.Messages, &stored)

	// Hand back a copy so callers cannot reach the stored reaction map.
	out := stored
	out.Reactions = domain.NewReactions()
	return out, s.memberConnsLocked(room), nil
}

// ApplyReaction increments the named reaction counter of the message by
// exactly one and returns the member connIDs for the broadcast.
func (s *RoomStore) ApplyReaction(roomID, messageID, kind string) ([]string, error) {
	if !domain.ValidReactionKind(kind) {
		return nil, ErrUnknownReaction
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	msg := room.MessageByID(messageID)
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	msg.Reactions[kind]++
	return s.memberConnsLocked(room), nil
}

// MemberConn resolves a memberId within a room to its connID. Used by the
// signaling relay to address the receiving peer.
func (s *RoomStore) MemberConn(roomID, memberID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return "", ErrRoomNotFound
	}
	member := room.MemberByID(memberID)
	if member == nil {
		return "", ErrMemberNotFound
	}
	return member.ConnID, nil
}

// MemberConns returns the connIDs of every member of the room.
func (s *RoomStore) MemberConns(roomID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return s.memberConnsLocked(room), nil
}

// memberConnsLocked collects the room's member connIDs. Caller holds mu.
func (s *RoomStore) memberConnsLocked(room *domain.Room) []string {
	conns := make([]string, len(room.Members))
	for i := range room.Members {
		conns[i] = room.Members[i].ConnID
	}
	return conns
}
