package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamspncr/CSCI3280-Project/internal/protocol"
)

func TestDecode_GetRooms(t *testing.T) {
	in, err := protocol.Decode([]byte(`{"event":"get-rooms","payload":{}}`))
	require.NoError(t, err)
	assert.Equal(t, protocol.EventGetRooms, in.Event)

	// get-rooms is also fine with no payload at all.
	in, err = protocol.Decode([]byte(`{"event":"get-rooms"}`))
	require.NoError(t, err)
	assert.Equal(t, protocol.EventGetRooms, in.Event)
}

func TestDecode_GetRoom(t *testing.T) {
	in, err := protocol.Decode([]byte(`{"event":"get-room","payload":{"id":"r1"}}`))
	require.NoError(t, err)
	require.NotNil(t, in.GetRoom)
	assert.Equal(t, "r1", in.GetRoom.ID)

	_, err = protocol.Decode([]byte(`{"event":"get-room","payload":{}}`))
	assert.Error(t, err, "id is required")
}

func TestDecode_CreateRoom(t *testing.T) {
	in, err := protocol.Decode([]byte(`{"event":"create-room","payload":{"name":"lounge"}}`))
	require.NoError(t, err)
	require.NotNil(t, in.CreateRoom)
	assert.Equal(t, "lounge", in.CreateRoom.Name)

	_, err = protocol.Decode([]byte(`{"event":"create-room","payload":{}}`))
	assert.Error(t, err, "name is required")
}

func TestDecode_JoinRoom(t *testing.T) {
	in, err := protocol.Decode([]byte(`{"event":"join-room","payload":{"id":"r1","username":"alice","memberId":"m1"}}`))
	require.NoError(t, err)
	require.NotNil(t, in.JoinRoom)
	assert.Equal(t, "r1", in.JoinRoom.ID)
	assert.Equal(t, "alice", in.JoinRoom.Username)
	assert.Equal(t, "m1", in.JoinRoom.MemberID)

	for _, frame := range []string{
		`{"event":"join-room","payload":{"username":"alice","memberId":"m1"}}`,
		`{"event":"join-room","payload":{"id":"r1","memberId":"m1"}}`,
		`{"event":"join-room","payload":{"id":"r1","username":"alice"}}`,
	} {
		_, err := protocol.Decode([]byte(frame))
		assert.Error(t, err, "frame %s should be rejected", frame)
	}
}

func TestDecode_SendMessage(t *testing.T) {
	in, err := protocol.Decode([]byte(`{"event":"send-message","payload":{"id":"r1","messageInfo":{"username":"alice","type":"text","messageId":"msg-1","content":"hi","reactions":{"good":0}}}}`))
	require.NoError(t, err)
	require.NotNil(t, in.SendMessage)
	assert.Equal(t, "r1", in.SendMessage.ID)
	assert.Equal(t, "text", in.SendMessage.MessageInfo.Kind)
	assert.Equal(t, "hi", in.SendMessage.MessageInfo.Content)

	_, err = protocol.Decode([]byte(`{"event":"send-message","payload":{"id":"r1","messageInfo":{"type":"text"}}}`))
	assert.Error(t, err, "username is required")

	_, err = protocol.Decode([]byte(`{"event":"send-message","payload":{"id":"r1","messageInfo":{"username":"alice"}}}`))
	assert.Error(t, err, "type is required")
}

func TestDecode_Reaction(t *testing.T) {
	in, err := protocol.Decode([]byte(`{"event":"reaction","payload":{"id":"r1","messageInfo":{"messageId":"msg-1","reactionType":"good"}}}`))
	require.NoError(t, err)
	require.NotNil(t, in.Reaction)
	assert.Equal(t, "msg-1", in.Reaction.MessageInfo.MessageID)
	assert.Equal(t, "good", in.Reaction.MessageInfo.ReactionType)

	_, err = protocol.Decode([]byte(`{"event":"reaction","payload":{"id":"r1","messageInfo":{"messageId":"msg-1"}}}`))
	assert.Error(t, err, "reactionType is required")
}

func TestDecode_SignalingEvents(t *testing.T) {
	in, err := protocol.Decode([]byte(`{"event":"send-offer","payload":{"id":"r1","senderId":"m1","receiverId":"m2","offer":{"sdp":"v=0","type":"offer"}}}`))
	require.NoError(t, err)
	require.NotNil(t, in.Signal)
	assert.Equal(t, "m1", in.Signal.SenderID)
	assert.Equal(t, "m2", in.Signal.ReceiverID)
	assert.NotEmpty(t, in.Signal.Offer)

	// The payload-specific field must match the event name.
	_, err = protocol.Decode([]byte(`{"event":"send-offer","payload":{"id":"r1","senderId":"m1","receiverId":"m2","answer":{}}}`))
	assert.Error(t, err, "offer field required for send-offer")

	_, err = protocol.Decode([]byte(`{"event":"send-answer","payload":{"id":"r1","senderId":"m1","receiverId":"m2","answer":{"sdp":"v=0"}}}`))
	assert.NoError(t, err)

	_, err = protocol.Decode([]byte(`{"event":"send-ice-candidate","payload":{"id":"r1","senderId":"m1","receiverId":"m2","candidate":{"candidate":"c"}}}`))
	assert.NoError(t, err)

	_, err = protocol.Decode([]byte(`{"event":"send-ice-candidate","payload":{"id":"r1","senderId":"m1","receiverId":"m2"}}`))
	assert.Error(t, err, "candidate field required")

	_, err = protocol.Decode([]byte(`{"event":"send-offer","payload":{"id":"r1","receiverId":"m2","offer":{}}}`))
	assert.Error(t, err, "senderId required")
}

func TestDecode_ProtocolErrors(t *testing.T) {
	_, err := protocol.Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = protocol.Decode([]byte(`{"payload":{}}`))
	assert.Error(t, err, "event name required")

	_, err = protocol.Decode([]byte(`{"event":"dance","payload":{}}`))
	assert.Error(t, err, "unknown event rejected")
}

func TestMarshal_WrapsEnvelope(t *testing.T) {
	frame, err := protocol.Marshal(protocol.EventCreateRoom, protocol.CreateRoomBroadcast{ID: "r1", Name: "lounge"})
	require.NoError(t, err)

	var env protocol.Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, protocol.EventCreateRoom, env.Event)
	assert.JSONEq(t, `{"id":"r1","name":"lounge"}`, string(env.Payload))
}

func TestMarshal_NullPayload(t *testing.T) {
	frame, err := protocol.Marshal(protocol.EventGetRoom, nil)
	require.NoError(t, err)

	var env protocol.Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, "null", string(env.Payload), "absent room is reported as a null payload")
}
