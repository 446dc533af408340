package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIncludesInternal(t *testing.T) {
	err := ErrInternalServer.WithInternal(stdErrors.New("boom"))
	require.Equal(t, "Internal server error: boom", err.Error())
	require.Equal(t, "Permission denied", ErrForbidden.Error())
}

func TestCopiesLeaveSentinelUntouched(t *testing.T) {
	base := New("TEST", "test", http.StatusBadRequest)
	with := base.WithInternal(stdErrors.New("oops"))
	renamed := base.WithMessage("other")

	require.NotSame(t, base, with)
	require.Nil(t, base.Internal)
	require.NotNil(t, with.Internal)
	require.Equal(t, "test", base.Message)
	require.Equal(t, "other", renamed.Message)
}

func TestIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrNotFound.WithInternal(stdErrors.New("missing row")))
	require.ErrorIs(t, wrapped, ErrNotFound)
	require.NotErrorIs(t, wrapped, ErrForbidden)
}

func TestFromError(t *testing.T) {
	require.Same(t, ErrNotFound, FromError(ErrNotFound))

	out := FromError(stdErrors.New("raw"))
	require.Equal(t, ErrInternalServer.Code, out.Code)
	require.NotNil(t, out.Internal)

	require.Nil(t, FromError(nil))
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("invalid payload")
	require.ErrorIs(t, err, ErrBadRequest)
	require.Equal(t, "invalid payload", err.Message)
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
}
