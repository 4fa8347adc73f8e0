//go:build memverify

package wasmmemory

// leakVerify gates the fail-fast leak check at Destroy time. Under this tag a
// pool with outstanding blocks at Destroy terminates the process: a leaking
// pool means the runtime's bookkeeping can no longer be trusted.
const leakVerify = true
