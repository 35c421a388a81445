// Package wasp holds the WASP (Wireless Addressable Strings of Pixels)
// command set as seen from the controller: opcodes, node addressing
// constants, the command sink consumed by the WIPE interpreter and the
// sinks and transports that turn commands into radio packets.
package wasp

//
// Node addressing
//

const (
	NodeUndefined = 0   // Undefined node ID
	ControllerID  = 1   // Designated node ID of the controller
	FirstSlave    = 2   // Node ID of the first slave node
	MaxSlaves     = 5   // Max number of slave nodes
	FirstGroup    = 128 // Node ID of the first group of slave nodes
	MaxGroups     = 5   // Max number of slave groups
	ProgGatewayID = 254 // Wireless programmer gateway node ID
	BroadcastID   = 255 // Node ID for broadcasts
	NetworkID     = 77  // The same for all nodes on the network
)

const MaxShiftSize = 20

// Opcode identifies a WASP protocol command.  The same value is used
// as the opcode byte of a compiled WIPE function call.
type Opcode byte

const (
	CmdNone Opcode = iota
	CmdGroup
	CmdState
	CmdBkgrd
	CmdLine
	CmdShift
	CmdSwap
	CmdReset
	CmdSpeed
	CmdRainbow
	CmdRainCycle
	CmdTwinkle
	CmdPing
	CmdCfgNode
	CmdCfgCtrl
	CmdCfgLED
	CmdCfgSave
)

const LastNonCfgCmd = CmdTwinkle

// MiscFunc identifies a controller-local function that is not a radio
// command
type MiscFunc byte

const (
	MiscNone MiscFunc = iota
	MiscPause
)

//
// State operation flags (STATE opts)
//

const (
	FlagSave    = 0x01
	FlagRestore = 0x02
	FlagResume  = 0x04
	FlagSuspend = 0x08
)

// resetMagic is appended to a RESET payload
const resetMagic = "DEAD"

var opcodeNames = map[Opcode]string{
	CmdNone:      "NONE",
	CmdGroup:     "GROUP",
	CmdState:     "STATE",
	CmdBkgrd:     "BKGRD",
	CmdLine:      "LINE",
	CmdShift:     "SHIFT",
	CmdSwap:      "SWAP",
	CmdReset:     "RESET",
	CmdSpeed:     "SPEED",
	CmdRainbow:   "RAINBOW",
	CmdRainCycle: "RAINCYCLE",
	CmdTwinkle:   "TWINKLE",
	CmdPing:      "PING",
	CmdCfgNode:   "CFG_NODE",
	CmdCfgCtrl:   "CFG_CTRL",
	CmdCfgLED:    "CFG_LED",
	CmdCfgSave:   "CFG_SAVE",
}

func (op Opcode) String() string {

	if name, ok := opcodeNames[op]; ok {
		return name
	}

	return "UNKNOWN"
}

func (f MiscFunc) String() string {

	switch f {
	case MiscPause:
		return "PAUSE"
	default:
		return "UNKNOWN"
	}
}

// IsGroup reports whether id addresses a group of slaves
func IsGroup(id byte) bool {

	return id >= FirstGroup && id < FirstGroup+MaxGroups
}
