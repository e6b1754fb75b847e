// Package wasapi implements endpoint.System on top of the Windows Core Audio
// API (IMMDeviceEnumerator) and the undocumented IPolicyConfigVista interface.
//
// A System initializes COM on the calling OS thread and must be used and
// closed from the goroutine that created it.
package wasapi

import "errors"

// ErrUnsupported is returned on hosts without the Windows audio endpoint subsystem.
var ErrUnsupported = errors.New("audio endpoint subsystem is only available on Windows")
