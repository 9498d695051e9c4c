package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRejectsMissingPlayers(t *testing.T) {
	_, err := Parse([]byte(`{"champs": []}`))
	assert.ErrorIs(t, err, ErrMissingPlayers)

	_, err = Parse([]byte(`{"players": null}`))
	assert.ErrorIs(t, err, ErrMissingPlayers)
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"players": [`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingPlayers)
}

func TestParseDefaultsChamps(t *testing.T) {
	snap, err := Parse([]byte(`{"players": []}`))
	require.NoError(t, err)
	assert.NotNil(t, snap.Champs)
	assert.Empty(t, snap.Champs)
}

func TestEmbeddedSnapshotIsValid(t *testing.T) {
	snap, err := Embedded()
	require.NoError(t, err)
	require.NotEmpty(t, snap.Players)

	for _, p := range snap.Players {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Name)
	}
	for _, c := range snap.Champs {
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.SeasonKey)
		assert.NotEmpty(t, c.WinnerID)
	}
}
