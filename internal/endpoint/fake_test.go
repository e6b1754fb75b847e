package endpoint

import (
	"errors"
	"fmt"
)

// fakeSystem is an in-memory endpoint registry that behaves like the OS one:
// setting a default for a role moves that role's marker.
type fakeSystem struct {
	devices  map[Flow][]Device
	defaults map[Flow]map[Role]string

	enumErr    error
	defaultErr error
	failRoles  map[Role]error
	ignoreSets bool // calls succeed but change nothing

	setCalls []setCall
}

type setCall struct {
	id   string
	role Role
}

type hrError uintptr

func (e hrError) Error() string { return fmt.Sprintf("hresult %#x", uintptr(e)) }
func (e hrError) Code() uintptr { return uintptr(e) }

func newFakeSystem() *fakeSystem {
	return &fakeSystem{
		devices: map[Flow][]Device{
			Render: {
				{Name: "Speakers (Realtek High Definition Audio)", ID: "{0.0.0.00000000}.{spk}", State: StateActive},
				{Name: "LG ULTRAGEAR (NVIDIA High Definition Audio)", ID: "{0.0.0.00000000}.{hdmi}", State: StateActive},
				{Name: "Headphones (WH-1000XM4 Stereo)", ID: "{0.0.0.00000000}.{bt}", State: StateActive},
				{Name: "Digital Output (Realtek)", ID: "{0.0.0.00000000}.{spdif}", State: StateUnplugged},
			},
			Capture: {
				{Name: "Microphone Array (Intel Smart Sound)", ID: "{0.0.1.00000000}.{array}", State: StateActive},
				{Name: "Headset Microphone (WH-1000XM4 Hands-Free)", ID: "{0.0.1.00000000}.{bt}", State: StateActive},
				{Name: "Stereo Mix (Realtek)", ID: "{0.0.1.00000000}.{mix}", State: StateDisabled},
			},
		},
		defaults: map[Flow]map[Role]string{
			Render: {
				Console:        "{0.0.0.00000000}.{spk}",
				Multimedia:     "{0.0.0.00000000}.{spk}",
				Communications: "{0.0.0.00000000}.{bt}",
			},
			Capture: {
				Console:        "{0.0.1.00000000}.{array}",
				Multimedia:     "{0.0.1.00000000}.{array}",
				Communications: "{0.0.1.00000000}.{bt}",
			},
		},
		failRoles: map[Role]error{},
	}
}

func (f *fakeSystem) Devices(flow Flow, mask State) ([]Device, error) {
	var out []Device
	for _, d := range f.devices[flow] {
		if d.State&mask != 0 {
			out = append(out, d)
		}
	}
	return out, f.enumErr
}

func (f *fakeSystem) DefaultID(flow Flow, role Role) (string, error) {
	if f.defaultErr != nil {
		return "", f.defaultErr
	}
	id, ok := f.defaults[flow][role]
	if !ok {
		return "", fmt.Errorf("%s %s: %w", flow, role, ErrNoDefault)
	}
	return id, nil
}

func (f *fakeSystem) SetDefault(id string, role Role) error {
	f.setCalls = append(f.setCalls, setCall{id, role})
	if err := f.failRoles[role]; err != nil {
		return err
	}
	if f.ignoreSets {
		return nil
	}
	for flow, devices := range f.devices {
		for _, d := range devices {
			if d.ID == id {
				if f.defaults[flow] == nil {
					f.defaults[flow] = map[Role]string{}
				}
				f.defaults[flow][role] = id
				return nil
			}
		}
	}
	return errors.New("element not found")
}

func (f *fakeSystem) rolesSet() []Role {
	roles := make([]Role, 0, len(f.setCalls))
	for _, c := range f.setCalls {
		roles = append(roles, c.role)
	}
	return roles
}
