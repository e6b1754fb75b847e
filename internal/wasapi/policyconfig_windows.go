//go:build windows

package wasapi

import (
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"

	"github.com/777genius/audiodevice/internal/endpoint"
)

var (
	clsidPolicyConfigClient = ole.NewGUID("{870AF99C-171D-4F9E-AF0D-E63DF40C2BC9}")
	iidPolicyConfigVista    = ole.NewGUID("{F8679F50-850A-41CF-9C72-430F290290C8}")
)

// policyConfig is IPolicyConfigVista. Only SetDefaultEndpoint is called but
// the whole method table is declared so the slot offsets match.
type policyConfig struct {
	ole.IUnknown
}

type policyConfigVtbl struct {
	ole.IUnknownVtbl
	GetMixFormat          uintptr
	GetDeviceFormat       uintptr
	ResetDeviceFormat     uintptr
	SetDeviceFormat       uintptr
	GetProcessingPeriod   uintptr
	SetProcessingPeriod   uintptr
	GetShareMode          uintptr
	SetShareMode          uintptr
	GetPropertyValue      uintptr
	SetPropertyValue      uintptr
	SetDefaultEndpoint    uintptr
	SetEndpointVisibility uintptr
}

func newPolicyConfig() (*policyConfig, error) {
	unk, err := ole.CreateInstance(clsidPolicyConfigClient, iidPolicyConfigVista)
	if err != nil {
		return nil, err
	}
	return (*policyConfig)(unsafe.Pointer(unk)), nil
}

func (pc *policyConfig) vtbl() *policyConfigVtbl {
	return (*policyConfigVtbl)(unsafe.Pointer(pc.RawVTable))
}

func (pc *policyConfig) setDefaultEndpoint(id string, role endpoint.Role) error {
	p, err := windows.UTF16PtrFromString(id)
	if err != nil {
		return err
	}

	hr, _, _ := syscall.SyscallN(
		pc.vtbl().SetDefaultEndpoint,
		uintptr(unsafe.Pointer(pc)),
		uintptr(unsafe.Pointer(p)),
		uintptr(role),
	)
	if hr != 0 {
		return ole.NewError(hr)
	}
	return nil
}
