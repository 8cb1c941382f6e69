// Package sway speaks the i3-ipc protocol to the sway compositor: binary
// message framing, the command/query surface, and the event subscription
// stream.
package sway

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// magic is the fixed marker opening every i3-ipc frame.
var magic = []byte("i3-ipc")

const headerSize = 14 // 6-byte magic + 4-byte length + 4-byte type, little endian

// Request message types.
const (
	MessageRunCommand    uint32 = 0
	MessageGetWorkspaces uint32 = 1
	MessageSubscribe     uint32 = 2
	MessageGetTree       uint32 = 4
)

// Event frame types carry the high bit; the low bits select the event class.
const (
	eventFlag          uint32 = 0x80000000
	EventTypeWorkspace uint32 = eventFlag | 0
	EventTypeWindow    uint32 = eventFlag | 3
	EventTypeShutdown  uint32 = eventFlag | 6
)

var (
	// ErrBadMagic indicates a frame header without the i3-ipc marker.
	ErrBadMagic = errors.New("ipc frame has bad magic")
	// ErrTruncated indicates a frame cut short mid header or payload.
	ErrTruncated = errors.New("truncated ipc frame")
	// ErrConnectionClosed indicates the compositor closed the socket.
	ErrConnectionClosed = errors.New("compositor connection closed")
)

// Frame is one decoded i3-ipc message unit.
type Frame struct {
	Type    uint32
	Payload []byte
}

// IsEvent reports whether the frame carries an asynchronous event.
func (f Frame) IsEvent() bool {
	return f.Type&eventFlag != 0
}

// EncodeMessage renders a request frame: magic, little-endian payload length,
// little-endian message type, then the payload bytes.
func EncodeMessage(messageType uint32, payload []byte) []byte {
	buf := make([]byte, headerSize+len(payload))
	copy(buf, magic)
	binary.LittleEndian.PutUint32(buf[6:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[10:], messageType)
	copy(buf[headerSize:], payload)
	return buf
}

// WriteMessage writes one request frame to w.
func WriteMessage(w io.Writer, messageType uint32, payload []byte) error {
	if _, err := w.Write(EncodeMessage(messageType, payload)); err != nil {
		return fmt.Errorf("write ipc frame: %w", err)
	}
	return nil
}

// ReadMessage reads exactly one frame from r. It blocks until the declared
// payload length has been consumed. A clean EOF before the first header byte
// is reported as ErrConnectionClosed; anything shorter than a whole frame is
// ErrTruncated.
func ReadMessage(r io.Reader) (Frame, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, ErrConnectionClosed
		}
		return Frame{}, fmt.Errorf("%w: short header: %v", ErrTruncated, err)
	}
	if !bytes.Equal(header[:6], magic) {
		return Frame{}, fmt.Errorf("%w: %q", ErrBadMagic, header[:6])
	}

	length := binary.LittleEndian.Uint32(header[6:10])
	frame := Frame{
		Type:    binary.LittleEndian.Uint32(header[10:14]),
		Payload: make([]byte, length),
	}
	if _, err := io.ReadFull(r, frame.Payload); err != nil {
		return Frame{}, fmt.Errorf("%w: payload %d bytes: %v", ErrTruncated, length, err)
	}
	return frame, nil
}
