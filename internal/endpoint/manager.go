// ABOUTME: Enumerates audio endpoints with their per-role default markers and reassigns defaults.
// ABOUTME: Every call re-reads OS state; nothing is cached between calls.

package endpoint

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/777genius/audiodevice/internal/logging"
)

// Confirm decides when a set-default attempt counts as a change.
type Confirm int

const (
	// ConfirmRoles requires every role call to succeed.
	ConfirmRoles Confirm = iota
	// ConfirmOptimistic counts any completed attempt as a change, even if role calls failed.
	ConfirmOptimistic
	// ConfirmVerify requires every role call to succeed and the endpoint to be
	// reported as the console default afterwards.
	ConfirmVerify
)

// RoleResult is the outcome of one set-default call.
type RoleResult struct {
	Role Role
	Err  error
}

// Result describes a set-default attempt.
type Result struct {
	Flow     Flow
	Endpoint Endpoint
	Roles    []RoleResult
}

// Failed returns the role calls that returned an error.
func (r *Result) Failed() []RoleResult {
	var failed []RoleResult
	for _, rr := range r.Roles {
		if rr.Err != nil {
			failed = append(failed, rr)
		}
	}
	return failed
}

// Manager lists endpoints and changes defaults through a System.
// Warnings are written to out as plain text lines.
type Manager struct {
	sys     System
	out     io.Writer
	confirm Confirm
}

// NewManager creates a manager over sys that prints warnings to out.
func NewManager(sys System, out io.Writer, confirm Confirm) *Manager {
	if out == nil {
		out = io.Discard
	}
	return &Manager{sys: sys, out: out, confirm: confirm}
}

// Playback returns the active render endpoints.
func (m *Manager) Playback() []Endpoint {
	return m.List(Render, StateActive)
}

// Capture returns the active capture endpoints.
func (m *Manager) Capture() []Endpoint {
	return m.List(Capture, StateActive)
}

// List returns the endpoints of flow whose state is in mask, in OS order,
// annotated with per-role default markers. Errors are reported and the
// remaining information is still returned.
func (m *Manager) List(flow Flow, mask State) []Endpoint {
	defaults := make(map[Role]string, len(Roles))
	var missing []string
	for _, role := range Roles {
		id, err := m.sys.DefaultID(flow, role)
		switch {
		case errors.Is(err, ErrNoDefault):
			missing = append(missing, role.String())
		case err != nil:
			m.printf("Error getting default %s device: %v", role, err)
			logging.Error("Default %s lookup for %s failed: %v", role, flow, err)
		default:
			defaults[role] = id
		}
	}
	if len(missing) > 0 {
		m.printf("Warning: Could not find a default %s device for role(s): %s.", noun(flow), strings.Join(missing, ", "))
		logging.Warn("No default %s endpoint for roles %v", flow, missing)
	}

	devices, err := m.sys.Devices(flow, mask)
	if err != nil {
		m.printf("Error enumerating devices: %v", err)
		logging.Error("Enumerating %s endpoints failed: %v", flow, err)
	}

	endpoints := make([]Endpoint, 0, len(devices))
	for _, d := range devices {
		endpoints = append(endpoints, Endpoint{
			Name:                    d.Name,
			ID:                      d.ID,
			State:                   d.State,
			Flow:                    flow,
			IsDefaultConsole:        isDefault(defaults, Console, d.ID),
			IsDefaultMultimedia:     isDefault(defaults, Multimedia, d.ID),
			IsDefaultCommunications: isDefault(defaults, Communications, d.ID),
		})
	}

	logging.Debug("Listed %d %s endpoints (mask %s)", len(endpoints), flow, mask)
	return endpoints
}

// SetDefault makes the endpoint with id the default for every role of flow.
// Each role is attempted even if an earlier one failed.
func (m *Manager) SetDefault(flow Flow, id string) (*Result, error) {
	return m.setDefault(Endpoint{ID: id, Flow: flow}, flow)
}

// SetDefaultByIndex re-enumerates the active endpoints of flow and sets the
// index-th one (0-based) as default.
func (m *Manager) SetDefaultByIndex(flow Flow, index int) (*Result, error) {
	endpoints := m.List(flow, StateActive)
	if index < 0 || index >= len(endpoints) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(endpoints))
	}
	return m.setDefault(endpoints[index], flow)
}

// SetDefaultByName re-enumerates the active endpoints of flow and sets the
// first one whose friendly name contains name, ignoring case.
func (m *Manager) SetDefaultByName(flow Flow, name string) (*Result, error) {
	e, err := FindByName(m.List(flow, StateActive), name)
	if err != nil {
		return nil, err
	}
	return m.setDefault(e, flow)
}

// SetDefaultByID re-enumerates the active endpoints of flow and sets the one
// whose id equals id.
func (m *Manager) SetDefaultByID(flow Flow, id string) (*Result, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyID
	}
	for _, e := range m.List(flow, StateActive) {
		if e.ID == id {
			return m.setDefault(e, flow)
		}
	}
	return nil, fmt.Errorf("%w id %q", ErrNoMatch, id)
}

// FindByName returns the first endpoint whose name contains name, ignoring case.
func FindByName(endpoints []Endpoint, name string) (Endpoint, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Endpoint{}, fmt.Errorf("%w: empty name", ErrNoMatch)
	}
	for _, e := range endpoints {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			return e, nil
		}
	}
	return Endpoint{}, fmt.Errorf("%w name %q", ErrNoMatch, name)
}

// Changed reports whether res counts as a change under the manager's confirm policy.
func (m *Manager) Changed(res *Result) bool {
	if res == nil {
		return false
	}

	switch m.confirm {
	case ConfirmOptimistic:
		return true
	case ConfirmVerify:
		if len(res.Failed()) > 0 {
			return false
		}
		for _, e := range m.List(res.Flow, StateActive) {
			if e.ID == res.Endpoint.ID {
				return e.IsDefaultConsole
			}
		}
		logging.Warn("Endpoint %s vanished before it could be verified", res.Endpoint.ID)
		return false
	default:
		return len(res.Failed()) == 0
	}
}

func (m *Manager) setDefault(e Endpoint, flow Flow) (*Result, error) {
	if strings.TrimSpace(e.ID) == "" {
		m.printf("Error: Device ID cannot be empty.")
		return nil, ErrEmptyID
	}

	res := &Result{Flow: flow, Endpoint: e}
	for _, role := range RolesFor(flow) {
		err := m.sys.SetDefault(e.ID, role)
		if err != nil {
			m.printf("Error setting default %s device: %s", role, describe(err))
			logging.Error("SetDefaultEndpoint(%s, %s) failed: %v", e.ID, role, err)
		} else {
			logging.Debug("SetDefaultEndpoint(%s, %s) succeeded", e.ID, role)
		}
		res.Roles = append(res.Roles, RoleResult{Role: role, Err: err})
	}

	logging.Info("Attempted to set %s %q (%s) as default, %d of %d roles failed",
		noun(flow), e.Name, e.ID, len(res.Failed()), len(res.Roles))
	return res, nil
}

func (m *Manager) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format+"\n", args...)
}

func isDefault(defaults map[Role]string, role Role, id string) bool {
	d, ok := defaults[role]
	return ok && d != "" && d == id
}

// hresult is implemented by COM errors.
type hresult interface {
	Code() uintptr
}

func describe(err error) string {
	var hr hresult
	if errors.As(err, &hr) {
		return fmt.Sprintf("HRESULT=%X", uint32(hr.Code()))
	}
	return err.Error()
}

func noun(f Flow) string {
	if f == Capture {
		return "input"
	}
	return "playback"
}
