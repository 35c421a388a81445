package wasp

import (
	"fmt"

	"github.com/edwingeng/deque"
)

// Command is one sink invocation as captured by a Recorder.  Misc is
// set for controller-local functions, in which case Func is valid
// instead of Op.
type Command struct {
	Op     Opcode
	Func   MiscFunc
	Misc   bool
	Params []byte
}

func (c Command) String() string {

	name := c.Op.String()
	if c.Misc {
		name = c.Func.String()
	}

	return fmt.Sprintf("%s%v", name, c.Params)
}

// Recorder is a Sink that queues every call in order.  Used for dry
// runs and by tests.
type Recorder struct {
	q deque.Deque
}

func NewRecorder() *Recorder {
	return &Recorder{q: deque.NewDeque()}
}

func (r *Recorder) Len() int {
	return r.q.Len()
}

// Next pops the oldest recorded command
func (r *Recorder) Next() (Command, bool) {

	if r.q.Empty() {
		return Command{}, false
	}

	return r.q.PopFront().(Command), true
}

// Drain pops everything recorded so far
func (r *Recorder) Drain() []Command {

	var cmds []Command

	for !r.q.Empty() {
		cmds = append(cmds, r.q.PopFront().(Command))
	}

	return cmds
}

func (r *Recorder) push(op Opcode, params ...byte) {
	r.q.PushBack(Command{Op: op, Params: params})
}

func (r *Recorder) Group(dst, group, left, right byte) {
	r.push(CmdGroup, dst, group, left, right)
}

func (r *Recorder) State(dst, opts byte) {
	r.push(CmdState, dst, opts)
}

func (r *Recorder) Background(dst, red, green, blue byte) {
	r.push(CmdBkgrd, dst, red, green, blue)
}

func (r *Recorder) Line(dst, red, green, blue, start, length byte) {
	r.push(CmdLine, dst, red, green, blue, start, length)
}

func (r *Recorder) Shift(dst byte, n int8) {
	r.push(CmdShift, dst, byte(n))
}

func (r *Recorder) Swap(dst, rOld, gOld, bOld, red, green, blue byte) {
	r.push(CmdSwap, dst, rOld, gOld, bOld, red, green, blue)
}

func (r *Recorder) Reset(dst byte) {
	r.push(CmdReset, dst)
}

func (r *Recorder) Speed(dst, delay byte) {
	r.push(CmdSpeed, dst, delay)
}

func (r *Recorder) Rainbow(dst, offset byte) {
	r.push(CmdRainbow, dst, offset)
}

func (r *Recorder) RainCycle(dst byte) {
	r.push(CmdRainCycle, dst)
}

func (r *Recorder) Twinkle(dst, minDly, maxDly, burst, hold byte) {
	r.push(CmdTwinkle, dst, minDly, maxDly, burst, hold)
}

func (r *Recorder) Pause(minutes, seconds, hundredths byte) {

	r.q.PushBack(Command{Func: MiscPause, Misc: true,
		Params: []byte{minutes, seconds, hundredths}})
}
