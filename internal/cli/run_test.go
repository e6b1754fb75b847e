package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/777genius/audiodevice/internal/endpoint"
)

// === Fakes ===

type fakeSystem struct {
	devices  map[endpoint.Flow][]endpoint.Device
	defaults map[endpoint.Flow]map[endpoint.Role]string
	failAll  bool
	sets     int
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{
		devices: map[endpoint.Flow][]endpoint.Device{
			endpoint.Render: {
				{Name: "Speakers (Realtek)", ID: "out-spk", State: endpoint.StateActive},
				{Name: "Headphones (USB Audio)", ID: "out-usb", State: endpoint.StateActive},
			},
			endpoint.Capture: {
				{Name: "Microphone Array (Realtek)", ID: "in-array", State: endpoint.StateActive},
				{Name: "Line In (USB Audio)", ID: "in-line", State: endpoint.StateActive},
			},
		},
		defaults: map[endpoint.Flow]map[endpoint.Role]string{
			endpoint.Render:  {endpoint.Console: "out-spk", endpoint.Multimedia: "out-spk", endpoint.Communications: "out-spk"},
			endpoint.Capture: {endpoint.Console: "in-array", endpoint.Multimedia: "in-array", endpoint.Communications: "in-array"},
		},
	}
}

func (f *fakeSystem) Devices(flow endpoint.Flow, mask endpoint.State) ([]endpoint.Device, error) {
	var out []endpoint.Device
	for _, d := range f.devices[flow] {
		if d.State&mask != 0 {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeSystem) DefaultID(flow endpoint.Flow, role endpoint.Role) (string, error) {
	id, ok := f.defaults[flow][role]
	if !ok {
		return "", endpoint.ErrNoDefault
	}
	return id, nil
}

func (f *fakeSystem) SetDefault(id string, role endpoint.Role) error {
	f.sets++
	if f.failAll {
		return errors.New("access denied")
	}
	for flow, devices := range f.devices {
		for _, d := range devices {
			if d.ID == id {
				f.defaults[flow][role] = id
			}
		}
	}
	return nil
}

type fakePlayer struct {
	chimes, closes int
	played         []string
	err            error
}

func (p *fakePlayer) Chime() error           { p.chimes++; return p.err }
func (p *fakePlayer) Play(path string) error { p.played = append(p.played, path); return p.err }
func (p *fakePlayer) Close() error           { p.closes++; return nil }

type fakeAnnouncer struct {
	results []*endpoint.Result
}

func (a *fakeAnnouncer) Changed(results ...*endpoint.Result) error {
	a.results = append(a.results, results...)
	return nil
}

func newRunner(sys *fakeSystem, confirm endpoint.Confirm) (*Runner, *bytes.Buffer) {
	var out bytes.Buffer
	return &Runner{
		Manager: endpoint.NewManager(sys, &out, confirm),
		Out:     &out,
		Program: "AudioDeviceManager",
	}, &out
}

// === Tests ===

func TestRunListing(t *testing.T) {
	sys := newFakeSystem()
	r, out := newRunner(sys, endpoint.ConfirmRoles)

	r.Run(Parse(nil))

	want := []string{
		"Playback (Output) devices",
		"0. Speakers (Realtek) (Default) [Active]",
		"1. Headphones (USB Audio) [Active]",
		"",
		"Input devices",
		"0. Microphone Array (Realtek) (Default) [Active]",
		"1. Line In (USB Audio) [Active]",
		"",
		"Format:  AudioDeviceManager /input:<index>",
	}
	assert.True(t, strings.HasPrefix(out.String(), strings.Join(want, "\n")), out.String())
	assert.Zero(t, sys.sets, "listing is read-only")
}

func TestRunListWithSetFlagsIsReadOnly(t *testing.T) {
	sys := newFakeSystem()
	r, out := newRunner(sys, endpoint.ConfirmRoles)

	r.Run(Parse([]string{"/l", "/output:1", "/input:1"}))

	assert.Zero(t, sys.sets)
	assert.NotContains(t, out.String(), "changed")
}

func TestRunSetOutputByIndex(t *testing.T) {
	sys := newFakeSystem()
	r, out := newRunner(sys, endpoint.ConfirmRoles)

	r.Run(Parse([]string{"/output:1"}))

	assert.Contains(t, out.String(), "Successfully set Headphones (USB Audio) as default.")
	assert.Contains(t, out.String(), "Playback Device changed")
	assert.Equal(t, 3, sys.sets)

	after := r.Manager.Playback()
	assert.True(t, after[1].IsDefaultConsole)
}

func TestRunSetInputByName(t *testing.T) {
	sys := newFakeSystem()
	r, out := newRunner(sys, endpoint.ConfirmRoles)

	r.Run(Parse([]string{"/input:LINE"}))

	assert.Contains(t, out.String(), "Input Device changed")
	assert.Equal(t, 1, sys.sets, "input sets the console role only")
	assert.Equal(t, "in-line", sys.defaults[endpoint.Capture][endpoint.Console])
}

func TestRunSetBoth(t *testing.T) {
	sys := newFakeSystem()
	r, out := newRunner(sys, endpoint.ConfirmRoles)
	ann := &fakeAnnouncer{}
	r.Announce = ann

	r.Run(Parse([]string{"/output:usb", "/input:1", "/notify"}))

	s := out.String()
	assert.Less(t, strings.Index(s, "Input Device changed"), strings.Index(s, "Playback Device changed"), "input is handled first")
	require.Len(t, ann.results, 2)
	assert.Equal(t, endpoint.Capture, ann.results[0].Flow)
	assert.Equal(t, "out-usb", ann.results[1].Endpoint.ID)
}

func TestRunNotChanged(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
		wantOut string
	}{
		{"index out of range", []string{"/input:5"}, "Error: no input device at index 5.", "Input Device not changed"},
		{"negative index", []string{"/output:-1"}, "Error: no playback device at index -1.", "Playback Device not changed"},
		{"no name match", []string{"/output:bluetooth"}, `Error: no playback device matches "bluetooth".`, "Playback Device not changed"},
		{"empty value", []string{"/input:"}, `Error: no input device matches "".`, "Input Device not changed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newFakeSystem()
			r, out := newRunner(sys, endpoint.ConfirmRoles)
			ann := &fakeAnnouncer{}
			r.Announce = ann

			r.Run(Parse(append(tt.args, "/notify")))

			assert.Contains(t, out.String(), tt.wantMsg)
			assert.Contains(t, out.String(), tt.wantOut)
			assert.Zero(t, sys.sets)
			assert.Empty(t, ann.results)
			assert.Equal(t, "out-spk", sys.defaults[endpoint.Render][endpoint.Console])
			assert.Equal(t, "in-array", sys.defaults[endpoint.Capture][endpoint.Console])
		})
	}
}

func TestRunRoleFailuresPolicy(t *testing.T) {
	sys := newFakeSystem()
	sys.failAll = true
	r, out := newRunner(sys, endpoint.ConfirmRoles)

	r.Run(Parse([]string{"/output:1"}))
	assert.Equal(t, 3, sys.sets, "every role is attempted")
	assert.Contains(t, out.String(), "Error setting default console device: access denied")
	assert.Contains(t, out.String(), "Playback Device not changed")

	sys = newFakeSystem()
	sys.failAll = true
	r, out = newRunner(sys, endpoint.ConfirmOptimistic)

	r.Run(Parse([]string{"/output:1"}))
	assert.Contains(t, out.String(), "Playback Device changed")
}

func TestRunTestSound(t *testing.T) {
	sys := newFakeSystem()
	r, out := newRunner(sys, endpoint.ConfirmRoles)
	p := &fakePlayer{}
	r.Player = func() (SoundPlayer, error) { return p, nil }

	r.Run(Parse([]string{"/output:0", "/test"}))
	assert.Equal(t, 1, p.chimes)
	assert.Equal(t, 1, p.closes)

	r.Run(Parse([]string{"/test:ding.wav"}))
	assert.Equal(t, []string{"ding.wav"}, p.played)
	assert.Equal(t, 2, p.closes)
	assert.NotContains(t, out.String(), "Warning")
}

func TestRunTestSoundUnavailable(t *testing.T) {
	r, out := newRunner(newFakeSystem(), endpoint.ConfirmRoles)

	r.Run(Parse([]string{"/test"}))
	assert.Contains(t, out.String(), "Warning: sound playback is not available.")

	out.Reset()
	r.Player = func() (SoundPlayer, error) { return nil, errors.New("no backend") }
	r.Run(Parse([]string{"/test"}))
	assert.Contains(t, out.String(), "no backend")

	out.Reset()
	r.Player = func() (SoundPlayer, error) { return &fakePlayer{err: errors.New("device busy")}, nil }
	r.Run(Parse([]string{"/test"}))
	assert.Contains(t, out.String(), "Warning: test sound failed: device busy")
}

func TestRunUnknownArgument(t *testing.T) {
	r, out := newRunner(newFakeSystem(), endpoint.ConfirmRoles)

	r.Run(Parse([]string{"/frobnicate"}))
	assert.True(t, strings.HasPrefix(out.String(), "Ignoring unknown argument: /frobnicate\n"))
	assert.Contains(t, out.String(), "Playback (Output) devices")
}
