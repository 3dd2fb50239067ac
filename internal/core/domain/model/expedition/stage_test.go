package expedition_test

import (
	"fmt"
	"testing"

	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_Constants(t *testing.T) {
	assert.Equal(t, 0, int(expedition.StageUnknown))
	assert.Equal(t, 1, int(expedition.StageSender))
	assert.Equal(t, 4, int(expedition.StageRoute))
	assert.Equal(t, 7, int(expedition.StageConfirmation))
	assert.Equal(t, "Package", expedition.StagePackage.String())
	assert.Equal(t, "Unknown", expedition.Stage(42).String())
}

func TestStage_Validate(t *testing.T) {
	for s := expedition.FirstStage; s <= expedition.LastStage; s++ {
		require.NoError(t, s.Validate(), s.String())
	}

	for _, s := range []expedition.Stage{expedition.StageUnknown, -1, 8} {
		t.Run(fmt.Sprintf("should reject %d", int(s)), func(t *testing.T) {
			err := s.Validate()
			require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		})
	}
}

func TestStage_Next(t *testing.T) {
	t.Run("should move one step from sender to payment", func(t *testing.T) {
		for s := expedition.StageSender; s < expedition.StagePayment; s++ {
			next, err := s.Next()
			require.NoError(t, err)
			assert.Equal(t, s+1, next)
		}
	})

	t.Run("should refuse to advance payment and confirmation", func(t *testing.T) {
		for _, s := range []expedition.Stage{expedition.StagePayment, expedition.StageConfirmation} {
			_, err := s.Next()
			require.ErrorIs(t, err, expedition.ErrStageTransition)
		}
	})
}

func TestStage_Previous(t *testing.T) {
	for s := expedition.StageRecipient; s <= expedition.StagePayment; s++ {
		prev, err := s.Previous()
		require.NoError(t, err)
		assert.Equal(t, s-1, prev)
	}

	_, err := expedition.StageSender.Previous()
	require.ErrorIs(t, err, expedition.ErrStageTransition)

	_, err = expedition.StageConfirmation.Previous()
	require.ErrorIs(t, err, expedition.ErrStageTransition)
}

func TestStage_Finalize(t *testing.T) {
	next, err := expedition.StagePayment.Finalize()
	require.NoError(t, err)
	assert.Equal(t, expedition.StageConfirmation, next)
	assert.True(t, next.IsTerminal())

	_, err = expedition.StageSignature.Finalize()
	require.ErrorIs(t, err, expedition.ErrStageTransition)
}
