package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection reset")

	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("title is required"), KindValidation},
		{"wrapped not found", fmt.Errorf("lookup: %w", NotFound("idea not found")), KindNotFound},
		{"batch delete", BatchDeleteFailed("delete batch", "deleting batch ideas failed", cause), KindBatchDeleteFailed},
		{"plain error", cause, KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, KindOf(tc.err))
			require.True(t, Is(tc.err, tc.want) || tc.want == KindInternal)
		})
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := BatchDeleteFailed("delete batch", "removing upload record failed", cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "delete batch: disk full", err.Error())
	require.Equal(t, "delete batch: removing upload record failed", PublicMessage(err))
	require.NotContains(t, PublicMessage(err), "disk full")

	bare := Wrap(KindBatchDeleteFailed, "delete batch", errors.New("pq: deadlock detected"))
	require.Equal(t, "delete batch", PublicMessage(bare))
}

func TestPublicMessageHidesUnknownErrors(t *testing.T) {
	require.Equal(t, "internal server error", PublicMessage(errors.New("pq: relation does not exist")))
	require.Equal(t, "email already registered", PublicMessage(Conflict("email already registered")))
}
