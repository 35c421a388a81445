package wasp

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

var ErrPayloadTooLong = errors.New("payload exceeds radio data length")

// LogTransport only logs packets.  It is the default when the
// controller runs without a radio attached.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(p Packet) error {

	if len(p.Payload) > MaxDataLen {
		return ErrPayloadTooLong
	}

	t.log.Info("wasp",
		zap.Uint8("dst", p.Dst),
		zap.Stringer("cmd", p.Opcode()),
		zap.Binary("args", p.Args()))

	return nil
}

// WriterTransport writes one frame per line to a serial device (or
// any writer): destination and payload as hex, e.g. "ff 03000000".
type WriterTransport struct {
	w io.Writer
}

func NewWriterTransport(w io.Writer) *WriterTransport {
	return &WriterTransport{w: w}
}

func (t *WriterTransport) Send(p Packet) error {

	if len(p.Payload) > MaxDataLen {
		return ErrPayloadTooLong
	}

	_, err := fmt.Fprintf(t.w, "%02x %s\n", p.Dst, hex.EncodeToString(p.Payload))
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}

// ParseFrame reverses WriterTransport's frame format
func ParseFrame(line string) (Packet, error) {

	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Packet{}, fmt.Errorf("malformed frame %q", line)
	}

	dst, err := hex.DecodeString(fields[0])
	if err != nil || len(dst) != 1 {
		return Packet{}, fmt.Errorf("malformed destination %q", fields[0])
	}

	payload, err := hex.DecodeString(fields[1])
	if err != nil || len(payload) == 0 {
		return Packet{}, fmt.Errorf("malformed payload %q", fields[1])
	}

	p := Packet{Dst: dst[0], Payload: payload}

	if p.Opcode() == CmdReset && !bytes.HasSuffix(payload[1:], []byte(resetMagic)) {
		return Packet{}, fmt.Errorf("reset payload %q lacks its magic", fields[1])
	}

	return p, nil
}

// DiscardTransport drops everything
type DiscardTransport struct{}

func (DiscardTransport) Send(Packet) error { return nil }
