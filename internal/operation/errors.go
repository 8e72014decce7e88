package operation

import "errors"

// ErrDetached is returned by Invocation.Err when the machine was detached
// before the invocation could be started.
var ErrDetached = errors.New("operation machine is detached")
