package domain

// Channel identifies one of the six monitored/driven trailer signal
// circuits. The set is fixed by the RV 7-way connector standard (pin 1
// is the shared ground and carries no signal).
type Channel int

const (
	ChannelBrake Channel = iota
	ChannelTail
	ChannelLeftTurn
	ChannelRightTurn
	ChannelAux
	ChannelReverse
)

// Channels lists every channel in declaration order. Iteration over this
// slice is the canonical channel order everywhere in the system.
var Channels = []Channel{
	ChannelBrake,
	ChannelTail,
	ChannelLeftTurn,
	ChannelRightTurn,
	ChannelAux,
	ChannelReverse,
}

const ChannelCount = 6

// ChannelInfo carries the RV 7-way connector metadata for a channel,
// used in status records and suggested-fix texts.
type ChannelInfo struct {
	Name      string
	Pin       int
	WireColor string
}

var channelInfos = map[Channel]ChannelInfo{
	ChannelBrake:     {Name: "Brake", Pin: 2, WireColor: "blue"},
	ChannelTail:      {Name: "Tail/Running", Pin: 3, WireColor: "green"},
	ChannelLeftTurn:  {Name: "Left Turn", Pin: 4, WireColor: "red"},
	ChannelRightTurn: {Name: "Right Turn", Pin: 5, WireColor: "brown"},
	ChannelAux:       {Name: "Aux Power", Pin: 6, WireColor: "black"},
	ChannelReverse:   {Name: "Reverse", Pin: 7, WireColor: "yellow"},
}

// GroundPin is the shared ground reference of the connector (white wire).
// Referenced by ground-fault fix suggestions.
const GroundPin = 1

func (c Channel) Info() ChannelInfo {
	if info, ok := channelInfos[c]; ok {
		return info
	}
	return ChannelInfo{Name: "unknown", WireColor: "unknown"}
}

func (c Channel) String() string {
	switch c {
	case ChannelBrake:
		return "brake"
	case ChannelTail:
		return "tail"
	case ChannelLeftTurn:
		return "left"
	case ChannelRightTurn:
		return "right"
	case ChannelAux:
		return "aux"
	case ChannelReverse:
		return "reverse"
	}
	return "unknown"
}

// ChannelByName resolves the short channel name used in config files and
// sequence patterns. Returns false for unknown names.
func ChannelByName(name string) (Channel, bool) {
	for _, ch := range Channels {
		if ch.String() == name {
			return ch, true
		}
	}
	return 0, false
}
