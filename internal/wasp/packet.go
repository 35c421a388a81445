package wasp

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// MaxDataLen is the radio payload limit of the RFM69 driver
const MaxDataLen = 61

// Packet is one radio message.  The destination travels in the radio
// header; Payload is laid out as <cmd> <arg #1> ... <arg #n>.
type Packet struct {
	Dst     byte
	Payload []byte
}

func NewPacket(dst byte, op Opcode, args ...byte) Packet {

	payload := make([]byte, 0, 1+len(args)+len(resetMagic))
	payload = append(payload, byte(op))
	payload = append(payload, args...)

	if op == CmdReset {
		payload = append(payload, resetMagic...)
	}

	return Packet{Dst: dst, Payload: payload}
}

// Opcode returns the command carried by the packet
func (p Packet) Opcode() Opcode {

	if len(p.Payload) == 0 {
		return CmdNone
	}

	return Opcode(p.Payload[0])
}

// Args returns the command arguments, excluding any trailing magic
func (p Packet) Args() []byte {

	if len(p.Payload) < 2 {
		return nil
	}

	args := p.Payload[1:]
	if p.Opcode() == CmdReset && bytes.HasSuffix(args, []byte(resetMagic)) {
		args = args[:len(args)-len(resetMagic)]
	}

	return args
}

func (p Packet) String() string {
	return fmt.Sprintf("%d:%s:%s", p.Dst, p.Opcode(), hex.EncodeToString(p.Payload))
}
