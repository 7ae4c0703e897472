package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeStale, http.StatusConflict},
		{CodeTransportFailure, http.StatusBadGateway},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeDataIntegrity, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("wish %q not found", "amir-birthday-x1y2")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))
	assert.Equal(t, `wish "amir-birthday-x1y2" not found`, err.Error())

	wrapped := fmt.Errorf("lookup: %w", err)
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestError_CauseAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := TransportFailure(cause, "failed to load wish")

	assert.Equal(t, "failed to load wish: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrTransportFailure)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
}

func TestError_WithDetailsCopies(t *testing.T) {
	base := Validation("invalid customization")
	detailed := base.WithDetails(map[string]string{"font_family": "unknown"})

	assert.Nil(t, base.Details)
	assert.NotNil(t, detailed.Details)
	assert.Equal(t, base.Message, detailed.Message)

	caused := base.WithCause(context.Canceled)
	assert.ErrorIs(t, caused, context.Canceled)
	assert.NoError(t, base.Unwrap())
}

func TestFromCall(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, FromCall(nil, "generate"))
	})

	t.Run("deadline becomes timeout", func(t *testing.T) {
		err := FromCall(fmt.Errorf("call: %w", context.DeadlineExceeded), "generate greetings")
		require.Error(t, err)
		assert.Equal(t, CodeTimeout, CodeOf(err))
		assert.Contains(t, err.Error(), "timed out")
	})

	t.Run("domain error passes through", func(t *testing.T) {
		original := Stale("superseded")
		assert.Same(t, original, FromCall(original, "generate"))
	})

	t.Run("other errors are transport failures", func(t *testing.T) {
		err := FromCall(fmt.Errorf("dial tcp: refused"), "persist wish")
		assert.Equal(t, CodeTransportFailure, CodeOf(err))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeConflict, CodeOf(Conflict("already applied")))
	assert.Equal(t, CodeDataIntegrity, CodeOf(fmt.Errorf("view: %w", DataIntegrity("unknown occasion"))))
	assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("plain")))
}
