package accel

// nullMirror is used when no accelerator is configured: the host is always
// current and every request is a no-op.
type nullMirror struct{}

var null Mirror = nullMirror{}

// Null returns the mirror for containers without an accelerator.
func Null() Mirror {
	return null
}

func (nullMirror) HostCurrent() bool              { return true }
func (nullMirror) DeviceCurrent() bool            { return false }
func (nullMirror) Allocated() bool                { return false }
func (nullMirror) EnsureDeviceAllocated(int)      {}
func (nullMirror) EnsureDeviceCurrent([]byte)     {}
func (nullMirror) EnsureHostCurrent([]byte)       {}
func (nullMirror) EnsureHostAllocated()           {}
func (nullMirror) InvalidateHost()                {}
func (nullMirror) InvalidateDevice()              {}
func (nullMirror) Evict([]byte)                   {}
func (nullMirror) TransferTo(Mirror, []byte, int) {}
func (nullMirror) Release() error                 { return nil }
