package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	fcmmerrors "fcmm.dev/fcmm/internal/errors"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	t.Run("nil is success", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, fcmmerrors.KindNone, fcmmerrors.KindOf(nil))
		require.Equal(t, 0, fcmmerrors.KindOf(nil).Code())
	})

	t.Run("wrapped typed errors keep their kind", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("add-cfg: %w", fcmmerrors.NewStateError(fcmmerrors.ErrBranchExists, "branch lb-cfg-a exists"))
		require.Equal(t, fcmmerrors.KindState, fcmmerrors.KindOf(err))
		require.ErrorIs(t, err, fcmmerrors.ErrBranchExists)
	})

	t.Run("plain errors are execution errors", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, fcmmerrors.KindExecution, fcmmerrors.KindOf(stderrors.New("boom")))
	})

	t.Run("unknown command is a parameter error", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("%w: frobnicate", fcmmerrors.ErrUnknownCommand)
		require.Equal(t, fcmmerrors.KindParameter, fcmmerrors.KindOf(err))
	})

	t.Run("codes are distinct", func(t *testing.T) {
		t.Parallel()
		codes := map[int]bool{}
		for _, k := range []fcmmerrors.Kind{fcmmerrors.KindNone, fcmmerrors.KindParameter, fcmmerrors.KindState, fcmmerrors.KindExecution} {
			codes[k.Code()] = true
		}
		require.Len(t, codes, 4)
	})
}

func TestNotFoundErrors(t *testing.T) {
	t.Parallel()

	err := fcmmerrors.NewBranchNotFoundError("lb-pkg")
	require.ErrorIs(t, err, fcmmerrors.ErrBranchNotFound)
	require.Equal(t, "branch lb-pkg does not exist", err.Error())

	tagErr := fcmmerrors.NewTagNotFoundError("v1.0.0")
	require.ErrorIs(t, tagErr, fcmmerrors.ErrTagNotFound)
	require.Equal(t, fcmmerrors.KindState, fcmmerrors.KindOf(tagErr))
}

func TestGitCommandError(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("exit status 128")
	err := fcmmerrors.NewGitCommandError("git", []string{"checkout", "nope"}, "/tmp/x", "", "pathspec 'nope' did not match", cause)
	require.Contains(t, err.Error(), "checkout")
	require.Contains(t, err.Error(), "pathspec")
	require.ErrorIs(t, err, cause)
	require.Equal(t, fcmmerrors.KindExecution, fcmmerrors.KindOf(err))
}
