package tcm

import "fmt"

// Frame is a tick count, measured from the start of the current segment.
type Frame = uint64

// PlayerButton is a game button.
type PlayerButton uint8

const (
	Jump  PlayerButton = 1
	Left  PlayerButton = 2
	Right PlayerButton = 3
)

// Valid reports whether b is one of the known buttons.
func (b PlayerButton) Valid() bool {
	return b >= Jump && b <= Right
}

func (b PlayerButton) String() string {
	switch b {
	case Jump:
		return "JUMP"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(b))
	}
}

// RestartType is the kind of level restart.
type RestartType uint8

const (
	Restart     RestartType = 0
	RestartFull RestartType = 1
	Death       RestartType = 2
)

// Valid reports whether t is one of the known restart kinds.
func (t RestartType) Valid() bool {
	return t <= Death
}

func (t RestartType) String() string {
	switch t {
	case Restart:
		return "RESTART"
	case RestartFull:
		return "RESTART_FULL"
	case Death:
		return "DEATH"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
	}
}

// Input is one of VanillaInput, RestartInput, TpsInput or BugpointInput.
type Input interface {
	isInput()
}

// VanillaInput is a button press or release.
type VanillaInput struct {
	Button  PlayerButton
	Push    bool
	Player2 bool
}

// RestartInput resets the frame counter. NewSeed, when set, reseeds the game
// RNG; only version 2 can store it.
type RestartInput struct {
	Type    RestartType
	NewSeed *uint64
}

// TpsInput changes the tick rate mid-replay. Version 2 only.
type TpsInput struct {
	TPS float32
}

// BugpointInput marks a point of interest. Version 2 only.
type BugpointInput struct{}

func (VanillaInput) isInput()  {}
func (RestartInput) isInput()  {}
func (TpsInput) isInput()      {}
func (BugpointInput) isInput() {}

func (in VanillaInput) String() string {
	action := "release"
	if in.Push {
		action = "push"
	}
	player := 1
	if in.Player2 {
		player = 2
	}
	return fmt.Sprintf("%s %s p%d", in.Button, action, player)
}

func (in RestartInput) String() string {
	if in.NewSeed != nil {
		return fmt.Sprintf("%s seed=%d", in.Type, *in.NewSeed)
	}
	return in.Type.String()
}

func (in TpsInput) String() string { return fmt.Sprintf("TPS %g", in.TPS) }

func (BugpointInput) String() string { return "BUGPOINT" }

// InputCommand is an input at a frame.
type InputCommand struct {
	Frame Frame
	Input Input
}

// AdjustedFrame is the frame the following input is measured from: 0 after a
// restart, since the frame counter resets at that point.
func (c InputCommand) AdjustedFrame() Frame {
	if _, ok := c.Input.(RestartInput); ok {
		return 0
	}
	return c.Frame
}

// IsVanilla reports whether the command is a button event.
func (c InputCommand) IsVanilla() bool {
	_, ok := c.Input.(VanillaInput)
	return ok
}

// IsCustom reports whether the command is anything other than a button event.
func (c InputCommand) IsCustom() bool {
	return !c.IsVanilla()
}

func (c InputCommand) String() string {
	return fmt.Sprintf("%d: %v", c.Frame, c.Input)
}

func cloneInputs(inputs []InputCommand) []InputCommand {
	out := make([]InputCommand, len(inputs))
	for i, c := range inputs {
		if r, ok := c.Input.(RestartInput); ok && r.NewSeed != nil {
			seed := *r.NewSeed
			r.NewSeed = &seed
			c.Input = r
		}
		out[i] = c
	}
	return out
}
