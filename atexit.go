package bisect

import (
	"sync"
	"sync/atomic"
)

// RegisterAtExit and RunAtExit give probes a place to register toolchain
// cleanup (deregister + delete) that must run no matter which return path
// main() takes, including an error return that skips the rest of a
// function body. Each probe also releases its own install handle via
// defer; main calls RunAtExit on the way out, on both the success and the
// error path, as a backstop.

var atExit struct {
	sync.Mutex
	fns    []func() error
	closed uint32
}

func RegisterAtExit(fn func() error) {
	if atomic.LoadUint32(&atExit.closed) != 0 {
		panic("BUG: RegisterAtExit must not be called from an atExit func")
	}
	atExit.Lock()
	defer atExit.Unlock()
	atExit.fns = append(atExit.fns, fn)
}

func RunAtExit() error {
	atomic.StoreUint32(&atExit.closed, 1)
	for _, fn := range atExit.fns {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}
