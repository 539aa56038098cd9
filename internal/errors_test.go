package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/internal"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	cause := errors.New("db down")
	tests := []struct {
		name       string
		err        *internal.HTTPError
		status     int
		text       string
		statusText string
	}{
		{"bad request", internal.ErrBadRequest("bad id"), http.StatusBadRequest, "bad id", "Bad Request"},
		{"unauthorized", internal.ErrUnauthorized("login"), http.StatusUnauthorized, "login", "Unauthorized"},
		{"not found", internal.ErrNotFound("item not found"), http.StatusNotFound, "item not found", "Not Found"},
		{"unprocessable", internal.ErrUnprocessable("bad title"), http.StatusUnprocessableEntity, "bad title", "Unprocessable Entity"},
		{"empty message", internal.NewHTTPError(http.StatusConflict, ""), http.StatusConflict, "Conflict", "Conflict"},
		{"titled", internal.ErrForbidden("nope", internal.WithTitle("Access Denied")), http.StatusForbidden, "nope", "Access Denied"},
		{"titled without message", internal.ErrInternal("", internal.WithTitle("Oops")), http.StatusInternalServerError, "Oops", "Oops"},
		{"with cause", internal.ErrServiceUnavailable("try later", internal.WithError(cause)), http.StatusServiceUnavailable, "try later", "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.status, tt.err.StatusCode())
			require.Equal(t, tt.text, tt.err.Error())
			require.Equal(t, tt.statusText, tt.err.StatusText())
		})
	}

	t.Run("options and unwrapping", func(t *testing.T) {
		t.Parallel()
		err := internal.ErrConflict("taken",
			internal.WithErrorCode("SLUG_TAKEN"),
			internal.WithDetail("slug already used"),
			internal.WithRequestID("rid-9"),
			internal.WithError(cause),
		)
		require.Equal(t, "SLUG_TAKEN", err.ErrorCode)
		require.Equal(t, "slug already used", err.Detail)
		require.Equal(t, "rid-9", err.RequestID)
		require.ErrorIs(t, err, cause)
		require.Same(t, err, internal.AsHTTPError(fmt.Errorf("save: %w", err)))
		require.Nil(t, internal.AsHTTPError(cause))
	})
}

func TestEmissionError(t *testing.T) {
	t.Parallel()

	notWritable := &internal.EmissionError{Reason: internal.ReasonNotWritable}
	alreadySent := &internal.EmissionError{Reason: internal.ReasonAlreadySent}

	require.Equal(t, 499, notWritable.StatusCode())
	require.Equal(t, http.StatusInternalServerError, alreadySent.StatusCode())
	require.True(t, internal.IsEmissionError(fmt.Errorf("wrap: %w", alreadySent), internal.ReasonAlreadySent))
	require.False(t, internal.IsEmissionError(alreadySent, internal.ReasonNotWritable))
	require.False(t, internal.IsEmissionError(errors.New("x"), internal.ReasonAlreadySent))
}

func TestMiddlewareContractViolationError(t *testing.T) {
	t.Parallel()

	err := &internal.MiddlewareContractViolationError{Layer: 1, Calls: 2}
	require.Equal(t, http.StatusInternalServerError, err.StatusCode())
	require.Equal(t, "middleware_contract_violation", err.Kind())
	require.Contains(t, err.Error(), "layer 1")
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusNotFound, "not found")
		got := internal.AsHTTPError(httpErr)
		require.NotNil(t, got)
		require.Equal(t, http.StatusNotFound, got.Code)
		require.Equal(t, "not found", got.Message)
	})

	t.Run("wrapped HTTPError preserves fields", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusForbidden, "forbidden")
		httpErr.Title = "Access Denied"
		httpErr.ErrorCode = "AUTH_001"
		err := fmt.Errorf("middleware: %w", httpErr)

		got := internal.AsHTTPError(err)
		require.NotNil(t, got)
		require.Equal(t, http.StatusForbidden, got.Code)
		require.Equal(t, "forbidden", got.Message)
		require.Equal(t, "Access Denied", got.Title)
		require.Equal(t, "AUTH_001", got.ErrorCode)
	})

	t.Run("unrelated error returns nil", func(t *testing.T) {
		t.Parallel()
		err := errors.New("plain error")
		require.Nil(t, internal.AsHTTPError(err))
	})

	t.Run("nil returns nil", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, internal.AsHTTPError(nil))
	})
}
