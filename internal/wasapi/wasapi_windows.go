//go:build windows

package wasapi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
	"golang.org/x/sys/windows"

	"github.com/777genius/audiodevice/internal/endpoint"
	"github.com/777genius/audiodevice/internal/logging"
)

const sFalse = 0x00000001

// HRESULT_FROM_WIN32(ERROR_NOT_FOUND), returned when a role has no default endpoint.
var eNotFound = uintptr(0x80070000 | uint32(windows.ERROR_NOT_FOUND))

// System talks to the Windows audio endpoint subsystem.
type System struct {
	mmde *wca.IMMDeviceEnumerator
}

// New initializes COM on the current thread and creates the device enumerator.
func New() (*System, error) {
	runtime.LockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil && !hasCode(err, sFalse) {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("failed to initialize COM: %w", err)
	}

	var mmde *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &mmde); err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("failed to create device enumerator: %w", err)
	}

	logging.Debug("COM device enumerator created")
	return &System{mmde: mmde}, nil
}

// Close releases the enumerator and uninitializes COM.
func (s *System) Close() error {
	if s == nil || s.mmde == nil {
		return nil
	}
	s.mmde.Release()
	s.mmde = nil
	ole.CoUninitialize()
	runtime.UnlockOSThread()
	return nil
}

// Devices enumerates endpoints of flow whose state is in mask. Endpoints whose
// id cannot be read are skipped; a missing name or state is logged and left empty.
func (s *System) Devices(flow endpoint.Flow, mask endpoint.State) ([]endpoint.Device, error) {
	var dc *wca.IMMDeviceCollection
	if err := s.mmde.EnumAudioEndpoints(uint32(flow), uint32(mask), &dc); err != nil {
		return nil, fmt.Errorf("failed to enumerate %s endpoints: %w", flow, err)
	}
	defer dc.Release()

	var count uint32
	if err := dc.GetCount(&count); err != nil {
		return nil, fmt.Errorf("failed to count %s endpoints: %w", flow, err)
	}

	devices := make([]endpoint.Device, 0, count)
	for i := uint32(0); i < count; i++ {
		d, err := readDevice(dc, i)
		if err != nil {
			logging.Warn("Skipping %s endpoint %d: %v", flow, i, err)
			continue
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// DefaultID returns the id of the default endpoint for flow and role.
func (s *System) DefaultID(flow endpoint.Flow, role endpoint.Role) (string, error) {
	var mmd *wca.IMMDevice
	if err := s.mmde.GetDefaultAudioEndpoint(uint32(flow), uint32(role), &mmd); err != nil {
		if hasCode(err, eNotFound) {
			return "", fmt.Errorf("%s %s: %w", flow, role, endpoint.ErrNoDefault)
		}
		return "", fmt.Errorf("failed to get default %s endpoint: %w", flow, err)
	}
	defer mmd.Release()

	var id string
	if err := mmd.GetId(&id); err != nil {
		return "", fmt.Errorf("failed to read default endpoint id: %w", err)
	}
	return id, nil
}

// SetDefault registers id as the default endpoint for role.
func (s *System) SetDefault(id string, role endpoint.Role) error {
	pc, err := newPolicyConfig()
	if err != nil {
		return fmt.Errorf("could not instantiate PolicyConfigClient: %w", err)
	}
	defer pc.Release()

	return pc.setDefaultEndpoint(id, role)
}

func readDevice(dc *wca.IMMDeviceCollection, i uint32) (endpoint.Device, error) {
	var d endpoint.Device

	var mmd *wca.IMMDevice
	if err := dc.Item(i, &mmd); err != nil {
		return d, err
	}
	defer mmd.Release()

	if err := mmd.GetId(&d.ID); err != nil {
		return d, fmt.Errorf("failed to read id: %w", err)
	}

	var state uint32
	if err := mmd.GetState(&state); err != nil {
		logging.Warn("Failed to read state of %s: %v", d.ID, err)
	} else {
		d.State = endpoint.State(state)
	}

	name, err := friendlyName(mmd)
	if err != nil {
		logging.Warn("Failed to read friendly name of %s: %v", d.ID, err)
	}
	d.Name = name

	return d, nil
}

func friendlyName(mmd *wca.IMMDevice) (string, error) {
	var ps *wca.IPropertyStore
	if err := mmd.OpenPropertyStore(wca.STGM_READ, &ps); err != nil {
		return "", err
	}
	defer ps.Release()

	var pv wca.PROPVARIANT
	if err := ps.GetValue(&wca.PKEY_Device_FriendlyName, &pv); err != nil {
		return "", err
	}
	return pv.String(), nil
}

func hasCode(err error, code uintptr) bool {
	var oleErr *ole.OleError
	return errors.As(err, &oleErr) && oleErr.Code() == code
}
