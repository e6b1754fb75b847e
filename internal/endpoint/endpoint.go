// ABOUTME: Audio endpoint model shared by the enumerator, the setter and the OS backends.
// ABOUTME: Values of Flow, Role and State match EDataFlow, ERole and DEVICE_STATE_*.

package endpoint

import (
	"errors"
	"fmt"
	"strings"
)

// Flow is the direction of an endpoint.
type Flow uint32

const (
	Render  Flow = 0 // playback
	Capture Flow = 1 // recording
)

func (f Flow) String() string {
	switch f {
	case Render:
		return "Render"
	case Capture:
		return "Capture"
	default:
		return fmt.Sprintf("Flow(%d)", uint32(f))
	}
}

// Role is the default-device intent a default endpoint is registered for.
type Role uint32

const (
	Console        Role = 0
	Multimedia     Role = 1
	Communications Role = 2
)

// Roles lists every role in the order they are assigned.
var Roles = []Role{Console, Multimedia, Communications}

func (r Role) String() string {
	switch r {
	case Console:
		return "console"
	case Multimedia:
		return "multimedia"
	case Communications:
		return "communications"
	default:
		return fmt.Sprintf("role(%d)", uint32(r))
	}
}

// RolesFor returns the roles the setter assigns for a flow.
// Playback endpoints get every role, capture endpoints only the console role.
func RolesFor(f Flow) []Role {
	if f == Capture {
		return []Role{Console}
	}
	return Roles
}

// State is a bit set of endpoint activity states.
type State uint32

const (
	StateActive     State = 0x1
	StateDisabled   State = 0x2
	StateNotPresent State = 0x4
	StateUnplugged  State = 0x8

	StateAll = StateActive | StateDisabled | StateNotPresent | StateUnplugged
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "Active"
	case StateDisabled:
		return "Disabled"
	case StateNotPresent:
		return "NotPresent"
	case StateUnplugged:
		return "Unplugged"
	case 0:
		return "Unknown"
	}

	var parts []string
	for _, bit := range []State{StateActive, StateDisabled, StateNotPresent, StateUnplugged} {
		if s&bit != 0 {
			parts = append(parts, bit.String())
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("State(%#x)", uint32(s))
	}
	return strings.Join(parts, "|")
}

// Endpoint is a point-in-time snapshot of an OS audio endpoint.
// IDs are only valid for the current session and device attachment state.
type Endpoint struct {
	Name  string
	ID    string
	State State
	Flow  Flow

	IsDefaultConsole        bool
	IsDefaultMultimedia     bool
	IsDefaultCommunications bool
}

// IsDefaultFor reports whether e is the default endpoint for role r.
func (e Endpoint) IsDefaultFor(r Role) bool {
	switch r {
	case Console:
		return e.IsDefaultConsole
	case Multimedia:
		return e.IsDefaultMultimedia
	case Communications:
		return e.IsDefaultCommunications
	}
	return false
}

// Marker returns the default annotation shown next to the endpoint name, or "".
func (e Endpoint) Marker() string {
	switch {
	case e.IsDefaultConsole && e.IsDefaultMultimedia:
		return "(Default)"
	case e.IsDefaultConsole:
		return "(Default Communication)"
	case e.IsDefaultMultimedia:
		return "(Default Multimedia)"
	case e.IsDefaultCommunications:
		return "(Default Communications Device)"
	}
	return ""
}

func (e Endpoint) String() string {
	if m := e.Marker(); m != "" {
		return fmt.Sprintf("%s %s [%s]", e.Name, m, e.State)
	}
	return fmt.Sprintf("%s [%s]", e.Name, e.State)
}

// Device is what an OS backend reports for one enumerated endpoint,
// before default markers are applied.
type Device struct {
	Name  string
	ID    string
	State State
}

var (
	// ErrNoDefault is returned by a System when no endpoint is registered as default for a role.
	ErrNoDefault = errors.New("no default endpoint for role")

	ErrEmptyID         = errors.New("device ID cannot be empty")
	ErrIndexOutOfRange = errors.New("device index out of range")
	ErrNoMatch         = errors.New("no device matches")
)

// System is the OS audio endpoint subsystem.
type System interface {
	// Devices enumerates endpoints of a flow whose state is in mask.
	Devices(flow Flow, mask State) ([]Device, error)

	// DefaultID returns the id of the default endpoint for flow and role,
	// or an error wrapping ErrNoDefault.
	DefaultID(flow Flow, role Role) (string, error)

	// SetDefault registers id as the default endpoint for role.
	SetDefault(id string, role Role) error
}
