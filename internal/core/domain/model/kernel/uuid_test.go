package kernel_test

import (
	"encoding/json"
	"testing"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	id1 := kernel.NewUUID()
	id2 := kernel.NewUUID()

	require.NoError(t, id1.Validate())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", id1.String())
	assert.False(t, id1.IsEqual(id2))
	assert.True(t, id1.IsEqual(id1))
}

func TestUUIDFromString(t *testing.T) {
	validUUID := "550e8400-e29b-41d4-a716-446655440000"

	t.Run("should parse canonical and braced forms", func(t *testing.T) {
		for _, input := range []string{validUUID, "{" + validUUID + "}", "urn:uuid:" + validUUID} {
			id, err := kernel.UUIDFromString(input)

			require.NoError(t, err, input)
			assert.Equal(t, validUUID, id.String())
		}
	})

	t.Run("should reject malformed strings", func(t *testing.T) {
		for _, input := range []string{"", "not-a-uuid", "550e8400-e29b-41d4-a716"} {
			_, err := kernel.UUIDFromString(input)

			require.Error(t, err, input)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
			assert.Contains(t, err.Error(), "invalid UUID format")
		}
	})

	t.Run("should reject the nil UUID", func(t *testing.T) {
		_, err := kernel.UUIDFromString("00000000-0000-0000-0000-000000000000")

		require.Error(t, err)
		assert.Equal(t, kernel.ErrUUIDIsNotConstructed, err)
	})
}

func TestUUID_Validate(t *testing.T) {
	var zero kernel.UUID
	assert.Equal(t, kernel.ErrUUIDIsNotConstructed, zero.Validate())
}

func TestUUID_TextRoundTrip(t *testing.T) {
	type envelope struct {
		SessionID kernel.UUID `json:"sessionId"`
	}
	original := envelope{SessionID: kernel.NewUUID()}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded envelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.SessionID.IsEqual(decoded.SessionID))

	require.Error(t, json.Unmarshal([]byte(`{"sessionId":"bogus"}`), &decoded))
}
