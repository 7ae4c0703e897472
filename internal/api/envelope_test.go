package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
	"github.com/wishcraft/wishcraft-server/internal/store"
)

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{name: "success response", status: "200", input: map[string]string{"key": "value"}},
		{name: "created response", status: "201", input: map[string]string{"slug": "amir-birthday-abcd"}},
		{name: "no content response", status: "204", input: nil},
		{name: "bad request error", status: "400", input: errors.New("invalid input")},
		{name: "not found error", status: "404", input: errors.New("wish not found")},
		{
			name:   "conflict error with details",
			status: "409",
			input: &APIError{
				Code:    "CONFLICT",
				Message: "Slug already taken",
				Details: map[string]string{"slug": "amir-birthday-abcd"},
			},
		},
		{name: "internal server error", status: "500", input: errors.New("internal error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			jsonBytes, err := json.Marshal(result)
			require.NoError(t, err)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(jsonBytes, &envelope))

			require.Contains(t, envelope, "v", "Envelope must contain version field 'v'")
			assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
		})
	}
}

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	data := map[string]string{"recipient_name": "Amir"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Error)
}

func TestEnvelopeTransformer_ErrorResponse(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "400", errors.New("validation failed"))
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.False(t, envelope.Success)
	assert.Nil(t, envelope.Data)
	assert.Equal(t, "validation failed", envelope.Error)
}

func TestEnvelopeTransformer_ErrorWithDetails(t *testing.T) {
	apiErr := &APIError{
		Code:    "VALIDATION",
		Message: "Invalid customization",
		Details: []string{"background_color", "font_family"},
	}

	result, err := EnvelopeTransformer(nil, "400", apiErr)
	require.NoError(t, err)

	envelope, ok := result.(APIErrorEnvelope)
	require.True(t, ok, "Expected APIErrorEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.Equal(t, "Invalid customization", envelope.Message)
	assert.Equal(t, []string{"background_color", "font_family"}, envelope.Details)
}

func TestEnvelopeTransformer_WrappedAPIError(t *testing.T) {
	apiErr := &APIError{Code: "STALE", Message: "greeting request superseded"}

	result, err := EnvelopeTransformer(nil, "409", fmt.Errorf("regenerate: %w", apiErr))
	require.NoError(t, err)

	envelope, ok := result.(APIErrorEnvelope)
	require.True(t, ok, "Expected APIErrorEnvelope type")
	assert.Equal(t, "STALE", envelope.Code)
}

func TestEnvelopeTransformer_AlreadyWrapped(t *testing.T) {
	wrapped := APIEnvelope{Version: EnvelopeVersion, Success: true, Data: "x"}

	result, err := EnvelopeTransformer(nil, "200", wrapped)
	require.NoError(t, err)
	assert.Equal(t, wrapped, result)
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domainerrors.NotFound("wizard session not found"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", domainerrors.Validation("recipient name is required"), http.StatusBadRequest, "VALIDATION"},
		{"stale", domainerrors.Stale("greeting request superseded"), http.StatusConflict, "STALE"},
		{"wrapped domain error", fmt.Errorf("apply: %w", domainerrors.Conflict("already applied")), http.StatusConflict, "CONFLICT"},
		{"store error", store.ErrNotFound.WithCause(errors.New("no rows")), http.StatusNotFound, "NOT_FOUND"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := toAPIError(tt.err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.GetStatus())
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}

	assert.NoError(t, toAPIError(nil))
}

func TestNewAPIError_ValidationDetails(t *testing.T) {
	err := newAPIError(http.StatusUnprocessableEntity, "validation failed", errors.New("body.occasion: unknown value"))

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, []string{"body.occasion: unknown value"}, apiErr.Details)

	err = newAPIError(http.StatusInternalServerError, "failed", errors.New("secret detail"))
	apiErr, ok = err.(*APIError)
	require.True(t, ok)
	assert.Nil(t, apiErr.Details)
}
