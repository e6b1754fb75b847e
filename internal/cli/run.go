package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/777genius/audiodevice/internal/endpoint"
	"github.com/777genius/audiodevice/internal/logging"
)

// SoundPlayer plays the /test confirmation sound.
type SoundPlayer interface {
	Chime() error
	Play(path string) error
	Close() error
}

// Announcer reports changed endpoints to the desktop.
type Announcer interface {
	Changed(results ...*endpoint.Result) error
}

// Runner executes parsed Options against a Manager and prints plain-text status.
type Runner struct {
	Manager  *endpoint.Manager
	Out      io.Writer
	Program  string
	Announce Announcer                   // nil disables /notify
	Player   func() (SoundPlayer, error) // nil disables /test
}

// Run performs one invocation. Every outcome is printed; none is returned.
func (r *Runner) Run(o Options) {
	for _, arg := range o.Unknown {
		r.printf("Ignoring unknown argument: %s", arg)
		logging.Warn("Unknown argument %q", arg)
	}

	if o.List {
		r.list()
		r.Usage()
		return
	}

	var changed []*endpoint.Result
	if o.Input != nil {
		if res := r.set(endpoint.Capture, *o.Input); res != nil {
			changed = append(changed, res)
			r.printf("Input Device changed")
		} else {
			r.printf("Input Device not changed")
		}
	}
	if o.Output != nil {
		if res := r.set(endpoint.Render, *o.Output); res != nil {
			changed = append(changed, res)
			r.printf("Playback Device changed")
		} else {
			r.printf("Playback Device not changed")
		}
	}

	if o.Notify && len(changed) > 0 && r.Announce != nil {
		if err := r.Announce.Changed(changed...); err != nil {
			r.printf("Warning: desktop notification failed: %v", err)
		}
	}

	if o.Test {
		r.test(o.Sound)
	}
}

// set resolves t among the active endpoints of flow and makes it the default.
// It returns nil when nothing counts as changed.
func (r *Runner) set(flow endpoint.Flow, t Target) *endpoint.Result {
	var (
		res *endpoint.Result
		err error
	)
	if t.IsIndex {
		res, err = r.Manager.SetDefaultByIndex(flow, t.Index)
	} else {
		res, err = r.Manager.SetDefaultByName(flow, t.Raw)
	}

	switch {
	case errors.Is(err, endpoint.ErrIndexOutOfRange):
		r.printf("Error: no %s device at index %d.", noun(flow), t.Index)
	case errors.Is(err, endpoint.ErrNoMatch):
		r.printf("Error: no %s device matches %s.", noun(flow), t)
	case err != nil:
		r.printf("Error: %v", err)
	}
	if err != nil {
		logging.Info("Set %s %s failed: %v", flow, t, err)
		return nil
	}

	if !r.Manager.Changed(res) {
		logging.Warn("Set %s %s not confirmed (%d role calls failed)", flow, t, len(res.Failed()))
		return nil
	}

	r.printf("Successfully set %s as default.", res.Endpoint.Name)
	return res
}

func (r *Runner) list() {
	r.printf("Playback (Output) devices")
	for i, e := range r.Manager.Playback() {
		r.printf("%d. %s", i, e)
	}

	r.printf("")
	r.printf("Input devices")
	for i, e := range r.Manager.Capture() {
		r.printf("%d. %s", i, e)
	}
}

// Usage prints the command formats and options.
func (r *Runner) Usage() {
	p := r.Program
	if p == "" {
		p = "audiodevice"
	}

	r.printf("")
	r.printf("Format:  %s /input:<index> to set the default input device to the device indexed in the Input devices list shown above.", p)
	r.printf("Format:  %s /output:<index> to set the default playback device to the device indexed in the Playback (Output) devices list shown above.", p)
	r.printf("Format:  %s /input:<name> /output:<name> to select devices whose name contains <name> (case-insensitive).", p)
	r.printf("Format:  %s /input:<index> /output:<index>", p)
	r.printf("")
	r.printf("Options: /l list devices, /h help, /test[:<file>] play a sound on the default playback device,")
	r.printf("         /notify show a desktop notification after a change, /v verbose logging")
	r.printf("")
}

func (r *Runner) test(sound string) {
	if r.Player == nil {
		r.printf("Warning: sound playback is not available.")
		return
	}

	p, err := r.Player()
	if err != nil {
		r.printf("Warning: sound playback is not available: %v", err)
		return
	}
	defer p.Close()

	if sound != "" {
		err = p.Play(sound)
	} else {
		err = p.Chime()
	}
	if err != nil {
		r.printf("Warning: test sound failed: %v", err)
	}
}

func (r *Runner) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.Out, format+"\n", args...)
}

func noun(f endpoint.Flow) string {
	if f == endpoint.Capture {
		return "input"
	}
	return "playback"
}
