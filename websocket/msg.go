package websocket

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

const (
	ErrTypeMsgInvalid     = "msg-invalid"
	ErrTypeMsgUnknown     = "msg-unknown"
	ErrTypeWorldNotJoined = "world-not-joined"
)

// MsgType identifies the kind of a message.
type MsgType string

const (
	MsgTypeError MsgType = "error"

	MsgTypePing         MsgType = "ping"
	MsgTypePingResponse MsgType = "ping_response"

	MsgTypeWorldJoin           MsgType = "world_join"
	MsgTypeWorldJoinResponse   MsgType = "world_join_response"
	MsgTypeWorldDelete         MsgType = "world_delete"
	MsgTypeWorldDeleteResponse MsgType = "world_delete_response"

	MsgTypeVolumeAdd                     MsgType = "volume_add"
	MsgTypeVolumeAddResponse             MsgType = "volume_add_response"
	MsgTypeVolumeUpdateTransform         MsgType = "volume_update_transform"
	MsgTypeVolumeUpdateTransformResponse MsgType = "volume_update_transform_response"
	MsgTypeRaycast                       MsgType = "raycast"
	MsgTypeRaycastResponse               MsgType = "raycast_response"
	MsgTypeNoise                         MsgType = "noise"
	MsgTypeNoiseResponse                 MsgType = "noise_response"
)

// Msg is the envelope of every message exchanged with a client.
type Msg struct {
	Type      MsgType         `json:"type"`
	RequestID uint32          `json:"request_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMsg creates a message with the given payload encoded as its data.
func NewMsg(t MsgType, requestID uint32, data any) (Msg, error) {
	msg := Msg{
		Type:      t,
		RequestID: requestID,
		Timestamp: time.Now(),
	}

	if data == nil {
		return msg, nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return Msg{}, errors.New("encoding message data failed").
			WithTag("msg_type", t).
			Wrap(err)
	}
	msg.Data = b
	return msg, nil
}

// DataTo decodes the message data into v.
func (m Msg) DataTo(v any) error {
	if len(m.Data) == 0 {
		return nil
	}

	if err := json.Unmarshal(m.Data, v); err != nil {
		return errors.New("decoding message data failed").
			WithType(ErrTypeMsgInvalid).
			WithTag("msg_type", m.Type).
			Wrap(err)
	}
	return nil
}

// Receiver receives a message and returns the number of bytes read.
type Receiver func() (Msg, int, error)

// Sender sends a message and returns the number of bytes written.
type Sender func(Msg) (int, error)

// ResponseSender queues messages to be sent to a client.
type ResponseSender interface {
	Send(Msg)
}

// NewReceiver returns a receiver that reads JSON messages from conn.
func NewReceiver(conn *websocket.Conn) Receiver {
	return func() (Msg, int, error) {
		var b []byte
		if err := websocket.Message.Receive(conn, &b); err != nil {
			return Msg{}, 0, err
		}

		var msg Msg
		if err := json.Unmarshal(b, &msg); err != nil {
			return Msg{}, len(b), errors.New("decoding message failed").
				WithType(ErrTypeMsgInvalid).
				Wrap(err)
		}
		return msg, len(b), nil
	}
}

// NewSender returns a sender that writes JSON messages to conn.
func NewSender(conn *websocket.Conn) Sender {
	return func(msg Msg) (int, error) {
		b, err := json.Marshal(msg)
		if err != nil {
			return 0, errors.New("encoding message failed").
				WithTag("msg_type", msg.Type).
				Wrap(err)
		}

		if err := websocket.Message.Send(conn, string(b)); err != nil {
			return 0, err
		}
		return len(b), nil
	}
}
