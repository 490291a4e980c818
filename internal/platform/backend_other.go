//go:build !linux && !windows

package platform

// New opens the native backend for this platform.
func New() (Backend, error) {
	return nil, ErrUnsupported
}
