package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/garden/internal/garden"
)

func TestSchema_AcceptsEncodedDefault(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)

	data, err := Encode(garden.DefaultSnapshot())
	require.NoError(t, err)
	assert.NoError(t, s.Check(data))
}

func TestSchema_RejectsBadPlantType(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)

	err = s.Check([]byte(`{"stats":{"sunlight":1,"totalKnowledgeLearned":0,"weather":"sunny",` +
		`"ownedPlants":[{"id":"a","type":"CACTUS","name":"n","growthPoints":0,"stage":"SEED"}]}}`))
	assert.Error(t, err)
}

func TestSchema_RejectsInvalidJSON(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)
	assert.Error(t, s.Check([]byte("{")))
}
