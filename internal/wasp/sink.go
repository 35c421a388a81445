package wasp

import (
	"fmt"

	"go.uber.org/zap"
)

// Sink receives the side effects of WIPE function calls, one method
// per opcode.  Parameters arrive already narrowed to a byte.  Sink
// methods have no result the interpreter could act on; implementations
// report their own failures.
type Sink interface {
	Group(dst, group, left, right byte)
	State(dst, opts byte)
	Background(dst, r, g, b byte)
	Line(dst, r, g, b, start, length byte)
	Shift(dst byte, n int8)
	Swap(dst, rOld, gOld, bOld, r, g, b byte)
	Reset(dst byte)
	Speed(dst, delay byte)
	Rainbow(dst, offset byte)
	RainCycle(dst byte)
	Twinkle(dst, minDly, maxDly, burst, hold byte)

	// Pause is reported before the interpreter blocks
	Pause(minutes, seconds, hundredths byte)
}

// Transport delivers an encoded packet to the radio network
type Transport interface {
	Send(p Packet) error
}

// PacketSink encodes every command into a WASP packet and hands it to
// a Transport.  Delivery errors are logged and otherwise dropped, as
// the controller has no retry policy of its own.
type PacketSink struct {
	transport Transport
	log       *zap.Logger
	sent      int
	failed    int
}

func NewPacketSink(t Transport, log *zap.Logger) *PacketSink {

	if log == nil {
		log = zap.NewNop()
	}

	return &PacketSink{transport: t, log: log}
}

// Stats returns the number of packets delivered and dropped
func (s *PacketSink) Stats() (sent, failed int) {
	return s.sent, s.failed
}

func (s *PacketSink) send(dst byte, op Opcode, args ...byte) {

	p := NewPacket(dst, op, args...)

	if err := s.transport.Send(p); err != nil {
		s.failed++
		s.log.Warn("packet dropped",
			zap.Stringer("cmd", op),
			zap.Uint8("dst", dst),
			zap.Error(err))
		return
	}

	s.sent++
	s.log.Debug("packet sent", zap.Stringer("packet", p))
}

func (s *PacketSink) Group(dst, group, left, right byte) {
	s.send(dst, CmdGroup, group, left, right)
}

func (s *PacketSink) State(dst, opts byte) {
	s.send(dst, CmdState, opts)
}

func (s *PacketSink) Background(dst, r, g, b byte) {
	s.send(dst, CmdBkgrd, r, g, b)
}

func (s *PacketSink) Line(dst, r, g, b, start, length byte) {
	s.send(dst, CmdLine, r, g, b, start, length)
}

func (s *PacketSink) Shift(dst byte, n int8) {
	s.send(dst, CmdShift, byte(n))
}

func (s *PacketSink) Swap(dst, rOld, gOld, bOld, r, g, b byte) {
	s.send(dst, CmdSwap, rOld, gOld, bOld, r, g, b)
}

func (s *PacketSink) Reset(dst byte) {
	s.send(dst, CmdReset)
}

func (s *PacketSink) Speed(dst, delay byte) {
	s.send(dst, CmdSpeed, delay)
}

func (s *PacketSink) Rainbow(dst, offset byte) {
	s.send(dst, CmdRainbow, offset)
}

func (s *PacketSink) RainCycle(dst byte) {
	s.send(dst, CmdRainCycle)
}

func (s *PacketSink) Twinkle(dst, minDly, maxDly, burst, hold byte) {
	s.send(dst, CmdTwinkle, minDly, maxDly, burst, hold)
}

// Pause never reaches the radio
func (s *PacketSink) Pause(minutes, seconds, hundredths byte) {

	s.log.Debug("pause",
		zap.String("duration", fmt.Sprintf("%dm%ds%d0ms", minutes, seconds, hundredths)))
}
