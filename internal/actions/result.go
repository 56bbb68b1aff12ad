package actions

import (
	fcmmerrors "fcmm.dev/fcmm/internal/errors"
)

// Result is the outcome of one command. Code is 0 on success and the Kind's
// code otherwise.
type Result struct {
	Code    int
	Kind    fcmmerrors.Kind
	Message string
	Err     error
}

// OK reports whether the command succeeded.
func (r Result) OK() bool {
	return r.Code == 0
}

func success(message string) Result {
	return Result{Kind: fcmmerrors.KindNone, Message: message}
}

func failure(err error) Result {
	kind := fcmmerrors.KindOf(err)
	return Result{
		Code:    kind.Code(),
		Kind:    kind,
		Message: err.Error(),
		Err:     err,
	}
}
