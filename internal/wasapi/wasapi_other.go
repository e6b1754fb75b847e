//go:build !windows

package wasapi

import "github.com/777genius/audiodevice/internal/endpoint"

// System is unavailable outside Windows; every call returns ErrUnsupported.
type System struct{}

func New() (*System, error) {
	return nil, ErrUnsupported
}

func (s *System) Close() error {
	return nil
}

func (s *System) Devices(endpoint.Flow, endpoint.State) ([]endpoint.Device, error) {
	return nil, ErrUnsupported
}

func (s *System) DefaultID(endpoint.Flow, endpoint.Role) (string, error) {
	return "", ErrUnsupported
}

func (s *System) SetDefault(string, endpoint.Role) error {
	return ErrUnsupported
}
