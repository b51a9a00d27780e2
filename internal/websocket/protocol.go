package websocket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/poopay/poopay-realtime/types"
)

// PacketType identifies an Engine.IO packet, or a Socket.IO packet carried in
// an Engine.IO message.
type PacketType int

const (
	PacketUnknown PacketType = iota
	PacketOpen
	PacketClose
	PacketPing
	PacketPong
	PacketNoop
	PacketConnect
	PacketDisconnect
	PacketEvent
	PacketAck
	PacketConnectError
)

func (t PacketType) String() string {
	switch t {
	case PacketOpen:
		return "open"
	case PacketClose:
		return "close"
	case PacketPing:
		return "ping"
	case PacketPong:
		return "pong"
	case PacketNoop:
		return "noop"
	case PacketConnect:
		return "connect"
	case PacketDisconnect:
		return "disconnect"
	case PacketEvent:
		return "event"
	case PacketAck:
		return "ack"
	case PacketConnectError:
		return "connect_error"
	default:
		return "unknown"
	}
}

// Engine.IO prefixes
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
	eioNoop    = '6'
)

// Socket.IO prefixes, following the Engine.IO message prefix
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioAck          = '3'
	sioConnectError = '4'
)

var (
	ErrEmptyPacket            = errors.New("empty packet")
	ErrMissingDiscriminator   = errors.New("frame has no type")
	ErrMissingNotification    = errors.New("new_notification frame has no notification")
	errMalformedEventEnvelope = errors.New("event packet is not a [name, ...args] array")
)

// Packet is one decoded text frame. Data holds the JSON payload after the type
// prefix, namespace and ack id.
type Packet struct {
	Type      PacketType
	Namespace string
	Data      []byte
}

// ParsePacket decodes an Engine.IO text frame.
func ParsePacket(msg []byte) (Packet, error) {
	if len(msg) == 0 {
		return Packet{}, ErrEmptyPacket
	}

	switch msg[0] {
	case eioOpen:
		return Packet{Type: PacketOpen, Data: msg[1:]}, nil
	case eioClose:
		return Packet{Type: PacketClose}, nil
	case eioPing:
		return Packet{Type: PacketPing, Data: msg[1:]}, nil
	case eioPong:
		return Packet{Type: PacketPong, Data: msg[1:]}, nil
	case eioNoop:
		return Packet{Type: PacketNoop}, nil
	case eioMessage:
		return parseSocketPacket(msg[1:])
	default:
		return Packet{Type: PacketUnknown, Data: msg}, nil
	}
}

func parseSocketPacket(msg []byte) (Packet, error) {
	if len(msg) == 0 {
		return Packet{}, ErrEmptyPacket
	}

	var p Packet
	switch msg[0] {
	case sioConnect:
		p.Type = PacketConnect
	case sioDisconnect:
		p.Type = PacketDisconnect
	case sioEvent:
		p.Type = PacketEvent
	case sioAck:
		p.Type = PacketAck
	case sioConnectError:
		p.Type = PacketConnectError
	default:
		return Packet{Type: PacketUnknown, Data: msg}, nil
	}

	rest := msg[1:]

	// Optional namespace: "/chat,"
	if len(rest) > 0 && rest[0] == '/' {
		end := bytes.IndexByte(rest, ',')
		if end < 0 {
			p.Namespace = string(rest)
			return p, nil
		}
		p.Namespace = string(rest[:end])
		rest = rest[end+1:]
	}

	// Optional ack id digits
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	p.Data = rest[i:]
	return p, nil
}

// OpenPayload is the Engine.IO handshake body sent by the server.
type OpenPayload struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int64    `json:"maxPayload"`
}

// AuthPayload is the Socket.IO connect auth object.
type AuthPayload struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// ConnectErrorPayload is the body of a rejected namespace connect.
type ConnectErrorPayload struct {
	Message string `json:"message"`
}

// EncodeConnect builds the namespace connect packet carrying auth.
func EncodeConnect(auth AuthPayload) ([]byte, error) {
	data, err := json.Marshal(auth)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal auth payload: %w", err)
	}
	return append([]byte{eioMessage, sioConnect}, data...), nil
}

// EncodePong answers a server ping, echoing any ping data.
func EncodePong(ping Packet) []byte {
	return append([]byte{eioPong}, ping.Data...)
}

// EncodeDisconnect builds the namespace disconnect packet.
func EncodeDisconnect() []byte {
	return []byte{eioMessage, sioDisconnect}
}

// EncodeEvent builds an event packet. Used by tests standing in for the server.
func EncodeEvent(name string, arg interface{}) ([]byte, error) {
	data, err := json.Marshal([]interface{}{name, arg})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return append([]byte{eioMessage, sioEvent}, data...), nil
}

// DecodeEvent splits an event payload into its name and first argument.
func DecodeEvent(data []byte) (string, json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil || len(parts) == 0 {
		return "", nil, errMalformedEventEnvelope
	}

	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return "", nil, errMalformedEventEnvelope
	}
	if len(parts) < 2 {
		return name, nil, nil
	}
	return name, parts[1], nil
}

// EventNewNotification is both the Socket.IO event name and the payload
// discriminator of pushed notifications.
const EventNewNotification = "new_notification"

// Frame is a narrowed live payload.
type Frame interface {
	FrameType() string
}

// NewNotificationFrame carries one freshly created notification.
type NewNotificationFrame struct {
	Notification types.RawNotification
}

func (NewNotificationFrame) FrameType() string { return EventNewNotification }

// UnknownFrame is any well-formed payload with an unrecognized type. It is
// kept so unrelated payloads on the channel are skipped, not treated as errors.
type UnknownFrame struct {
	Type string
}

func (f UnknownFrame) FrameType() string { return f.Type }

// DecodeFrame narrows a {type, notification} payload.
func DecodeFrame(data json.RawMessage) (Frame, error) {
	var envelope struct {
		Type         string          `json:"type"`
		Notification json.RawMessage `json:"notification"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	switch envelope.Type {
	case "":
		return nil, ErrMissingDiscriminator
	case EventNewNotification:
		if len(envelope.Notification) == 0 || bytes.Equal(envelope.Notification, []byte("null")) {
			return nil, ErrMissingNotification
		}
		var raw types.RawNotification
		if err := json.Unmarshal(envelope.Notification, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		return NewNotificationFrame{Notification: raw}, nil
	default:
		return UnknownFrame{Type: envelope.Type}, nil
	}
}
