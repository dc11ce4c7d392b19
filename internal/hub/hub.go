// Package hub coordinates all live connections: it registers and
// unregisters clients, dispatches decoded protocol events to the room
// store, fans room broadcasts out to member connections and relays
// signaling frames point-to-point between members.
package hub

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hamspncr/CSCI3280-Project/internal/domain"
	"github.com/hamspncr/CSCI3280-Project/internal/protocol"
	"github.com/hamspncr/CSCI3280-Project/internal/store"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer. Audio messages carry data URIs
	// so this is far larger than a text-chat limit.
	maxMessageSize = 1 << 20
)

// HubMessage types carried on the hub's internal channel.
const (
	MsgRegister   = "register"
	MsgUnregister = "unregister"
	MsgFrame      = "frame"
)

// HubMessage is one unit of work for the hub loop.
type HubMessage struct {
	Type    string
	Client  *Client
	RawData []byte
}

// Hub owns the connection registry and serializes all protocol handling
// through a single loop, which is what gives every room its total event
// order.
type Hub struct {
	messageChan chan HubMessage

	// clients is the connection registry: connID -> live client.
	// Only the hub loop touches it.
	clients map[string]*Client

	rooms *store.RoomStore
}

// NewHub creates a Hub backed by the given room store.
func NewHub(rooms *store.RoomStore) *Hub {
	if rooms == nil {
		panic("RoomStore cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		clients:     make(map[string]*Client),
		rooms:       rooms,
	}
}

// Run starts the hub's event loop. It should run in its own goroutine and
// exits when the message channel is closed.
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for msg := range h.messageChan {
		switch msg.Type {
		case MsgRegister:
			h.registerClient(msg.Client)
		case MsgUnregister:
			h.unregisterClient(msg.Client)
		case MsgFrame:
			// Handled inline, not in a goroutine: frame handling must stay
			// serialized so members observe room events in one order.
			h.dispatch(msg.Client, msg.RawData)
		default:
			log.Warnf("Received unknown hub message type: %s", msg.Type)
		}
	}
	log.Info("Hub is shutting down...")
}

// QueueMessage places a message on the hub's queue without blocking.
// Returns false if the queue is full.
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithField("message_type", msg.Type).Warn("Hub message channel full, dropping message")
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	h.clients[client.id] = client
	logrus.WithField("conn_id", client.id).Info("Client registered to Hub")
}

// unregisterClient removes a client from the registry and runs the same
// leave cleanup an explicit leave-room would, so an abrupt disconnect is
// indistinguishable from a voluntary departure for the rest of the room.
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	logCtx := logrus.WithField("conn_id", client.id)

	if _, ok := h.clients[client.id]; !ok {
		logCtx.Warn("Client not found in registry during unregister")
		return
	}

	// Broadcast the departure while the remaining members are still
	// registered. If the client already left explicitly this finds nothing.
	h.removeMember(client)

	delete(h.clients, client.id)
	select {
	case <-client.send:
		logCtx.Warn("Client send channel already closed or has data during unregister")
	default:
		close(client.send)
	}
	logCtx.Info("Client unregistered from Hub")
}

// dispatch decodes one inbound frame and routes it to its handler.
// Malformed frames and unknown events are logged and dropped; the
// connection stays open.
func (h *Hub) dispatch(client *Client, raw []byte) {
	logCtx := logrus.WithField("conn_id", client.id)

	in, err := protocol.Decode(raw)
	if err != nil {
		logCtx.WithError(err).Warn("Protocol error, dropping frame")
		return
	}
	logCtx = logCtx.WithField("event", in.Event)

	// Events below the first group require the connection to have joined a
	// room; before that, only the lobby operations are valid.
	switch in.Event {
	case protocol.EventGetRooms:
		h.handleGetRooms(client)
	case protocol.EventGetRoom:
		h.handleGetRoom(client, in.GetRoom)
	case protocol.EventCreateRoom:
		h.handleCreateRoom(client, in.CreateRoom)
	case protocol.EventJoinRoom:
		h.handleJoinRoom(client, in.JoinRoom)
	case protocol.EventLeaveRoom, protocol.EventSendMessage, protocol.EventReaction,
		protocol.EventSendOffer, protocol.EventSendAnswer, protocol.EventSendICECandidate:
		if _, joined := h.rooms.RoomOfConn(client.id); !joined {
			logCtx.Warn("Event requires room membership, dropping frame")
			return
		}
		switch in.Event {
		case protocol.EventLeaveRoom:
			h.handleLeaveRoom(client)
		case protocol.EventSendMessage:
			h.handleSendMessage(client, in.SendMessage)
		case protocol.EventReaction:
			h.handleReaction(client, in.Reaction)
		default:
			h.handleSignal(client, in)
		}
	}
}

func (h *Hub) handleGetRooms(client *Client) {
	frame, err := protocol.Marshal(protocol.EventGetRooms, h.rooms.ListRooms())
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal room list")
		return
	}
	h.sendToClient(client, frame)
}

// handleGetRoom answers with the room snapshot, or a null payload when the
// room does not exist; an unknown room is not an error to the connection.
func (h *Hub) handleGetRoom(client *Client, p *protocol.GetRoomPayload) {
	var payload any
	snap, ok := h.rooms.GetRoom(p.ID)
	if ok {
		payload = snap
	} else {
		logrus.WithFields(logrus.Fields{"conn_id": client.id, "room_id": p.ID}).Warn("get-room: room not found")
	}

	frame, err := protocol.Marshal(protocol.EventGetRoom, payload)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal room snapshot")
		return
	}
	h.sendToClient(client, frame)
}

// handleCreateRoom inserts the room and announces it to every live
// connection, joined or not, so lobby clients can refresh their room list.
func (h *Hub) handleCreateRoom(client *Client, p *protocol.CreateRoomPayload) {
	id := h.rooms.CreateRoom(p.Name)
	logrus.WithFields(logrus.Fields{
		"conn_id":   client.id,
		"room_id":   id,
		"room_name": p.Name,
	}).Info("Room created")

	frame, err := protocol.Marshal(protocol.EventCreateRoom, protocol.CreateRoomBroadcast{ID: id, Name: p.Name})
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal create-room broadcast")
		return
	}
	for _, c := range h.clients {
		h.sendToClient(c, frame)
	}
}

func (h *Hub) handleJoinRoom(client *Client, p *protocol.JoinRoomPayload) {
	logCtx := logrus.WithFields(logrus.Fields{
		"conn_id":   client.id,
		"room_id":   p.ID,
		"username":  p.Username,
		"member_id": p.MemberID,
	})

	// One room per connection. A second join is rejected outright instead
	// of silently corrupting the first membership.
	if roomID, joined := h.rooms.RoomOfConn(client.id); joined {
		logCtx.WithField("current_room_id", roomID).Warn("join-room while already joined, dropping frame")
		return
	}

	snap, recipients, err := h.rooms.Join(p.ID, client.id, p.Username, p.MemberID)
	if err != nil {
		logCtx.WithError(err).Warn("join-room failed")
		// Room missing (or memberId taken): report to the requester only,
		// with the same null-payload marker get-room uses.
		frame, merr := protocol.Marshal(protocol.EventJoinRoom, nil)
		if merr != nil {
			logrus.WithError(merr).Error("Failed to marshal join-room error reply")
			return
		}
		h.sendToClient(client, frame)
		return
	}
	logCtx.Info("Member joined room")

	// Full state resync for everyone, the new joiner included.
	frame, err := protocol.Marshal(protocol.EventJoinRoom, snap)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal join-room broadcast")
		return
	}
	h.sendToConns(recipients, frame)
}

func (h *Hub) handleLeaveRoom(client *Client) {
	h.removeMember(client)
}

// removeMember is the one removal path shared by leave-room and transport
// close. Removal is idempotent: if the connection is not a member anywhere
// this is a silent no-op and no broadcast happens.
func (h *Hub) removeMember(client *Client) {
	res, ok := h.rooms.Leave(client.id)
	if !ok {
		logrus.WithField("conn_id", client.id).Debug("Leave: connection is not a member of any room")
		return
	}
	logrus.WithFields(logrus.Fields{
		"conn_id":   client.id,
		"room_id":   res.RoomID,
		"username":  res.Leaver.Username,
		"member_id": res.Leaver.MemberID,
	}).Info("Member left room")

	frame, err := protocol.Marshal(protocol.EventLeaveRoom, protocol.LeaveRoomBroadcast{
		NewRoom: res.Room,
		Leaver:  protocol.LeaverInfo{Username: res.Leaver.Username, MemberID: res.Leaver.MemberID},
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal leave-room broadcast")
		return
	}
	h.sendToConns(res.Recipients, frame)
}

func (h *Hub) handleSendMessage(client *Client, p *protocol.SendMessagePayload) {
	logCtx := logrus.WithFields(logrus.Fields{"conn_id": client.id, "room_id": p.ID})

	msg := domain.Message{
		MessageID: p.MessageInfo.MessageID,
		Username:  p.MessageInfo.Username,
		Kind:      p.MessageInfo.Kind,
		Content:   p.MessageInfo.Content,
	}
	stored, recipients, err := h.rooms.AppendMessage(p.ID, msg)
	if err != nil {
		logCtx.WithError(err).Warn("send-message dropped")
		return
	}
	logCtx.WithFields(logrus.Fields{"message_id": stored.MessageID, "kind": stored.Kind}).Debug("Message appended")

	frame, err := protocol.Marshal(protocol.EventSendMessage, stored)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal send-message broadcast")
		return
	}
	h.sendToConns(recipients, frame)
}

// handleReaction broadcasts the increment, not the new total; clients apply
// the delta locally and late joiners get correct totals from the join
// snapshot.
func (h *Hub) handleReaction(client *Client, p *protocol.ReactionPayload) {
	logCtx := logrus.WithFields(logrus.Fields{
		"conn_id":    client.id,
		"room_id":    p.ID,
		"message_id": p.MessageInfo.MessageID,
		"reaction":   p.MessageInfo.ReactionType,
	})

	recipients, err := h.rooms.ApplyReaction(p.ID, p.MessageInfo.MessageID, p.MessageInfo.ReactionType)
	if err != nil {
		logCtx.WithError(err).Warn("reaction dropped")
		return
	}

	frame, err := protocol.Marshal(protocol.EventReaction, p.MessageInfo)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal reaction broadcast")
		return
	}
	h.sendToConns(recipients, frame)
}

// handleSignal forwards the original envelope, untouched, to the one member
// addressed by receiverId. A missing room or receiver is a silent no-op:
// the peer may legitimately have left between offer and answer.
func (h *Hub) handleSignal(client *Client, in *protocol.Inbound) {
	p := in.Signal
	logCtx := logrus.WithFields(logrus.Fields{
		"conn_id":     client.id,
		"event":       in.Event,
		"room_id":     p.ID,
		"sender_id":   p.SenderID,
		"receiver_id": p.ReceiverID,
	})

	connID, err := h.rooms.MemberConn(p.ID, p.ReceiverID)
	if err != nil {
		logCtx.Debug("Signal receiver not present, dropping")
		return
	}
	target, ok := h.clients[connID]
	if !ok {
		logCtx.Debug("Signal receiver connection already gone, dropping")
		return
	}

	logCtx.Debug("Relaying signaling frame")
	h.sendToClient(target, in.Raw)
}

// sendToConns fans one frame out to the given connection ids. Each send is
// independent so one dead or slow connection never aborts delivery to the
// rest of the room.
func (h *Hub) sendToConns(connIDs []string, frame []byte) {
	for _, id := range connIDs {
		client, ok := h.clients[id]
		if !ok {
			// Member's connection closed but its unregister has not been
			// processed yet; its own close event reconciles the room.
			continue
		}
		h.sendToClient(client, frame)
	}
}

// sendToClient queues a frame without blocking. A client whose send buffer
// is full loses the frame; its write pump disconnects it if the connection
// is actually dead.
func (h *Hub) sendToClient(client *Client, frame []byte) {
	select {
	case client.send <- frame:
	default:
		logrus.WithField("conn_id", client.id).Warn("Client send channel full, dropping frame for this client")
	}
}
