//go:build !memverify

package wasmmemory

// leakVerify gates the fail-fast leak check at Destroy time. The default
// build reports leaks as an error and carries on; build with -tags memverify
// to make an unclean pool teardown fatal.
const leakVerify = false
