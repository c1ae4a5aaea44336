package garden

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type threeCap struct{}

func (threeCap) Cap() int { return 3 }

func TestHistory_PushNewestFirst(t *testing.T) {
	var h History[string, threeCap]

	h.Push("a")
	h.Push("b")

	assert.Equal(t, []string{"b", "a"}, h.Items())
	assert.Equal(t, 2, h.Len())
}

func TestHistory_EvictsOldest(t *testing.T) {
	var h History[string, threeCap]
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		h.Push(v)
	}

	assert.Equal(t, []string{"e", "d", "c"}, h.Items())
	assert.Equal(t, 3, h.Capacity())
}

func TestHistory_CapsNeverExceeded(t *testing.T) {
	var flowers History[FlowerLanguage, FlowerLanguageCap]
	var collection History[KnowledgeItem, CollectionCap]
	var checkIns History[CheckInRecord, CheckInCap]

	for i := 0; i < 250; i++ {
		flowers.Push(FlowerLanguage{ID: fmt.Sprint(i)})
		collection.Push(KnowledgeItem{ID: fmt.Sprint(i)})
		checkIns.Push(CheckInRecord{ID: fmt.Sprint(i)})
		assert.LessOrEqual(t, flowers.Len(), 50)
		assert.LessOrEqual(t, collection.Len(), 100)
		assert.LessOrEqual(t, checkIns.Len(), 10)
	}

	assert.Equal(t, 50, flowers.Len())
	assert.Equal(t, 100, collection.Len())
	assert.Equal(t, 10, checkIns.Len())

	newest, ok := checkIns.At(0)
	require.True(t, ok)
	assert.Equal(t, "249", newest.ID)
	oldest, ok := checkIns.At(9)
	require.True(t, ok)
	assert.Equal(t, "240", oldest.ID)
}

func TestHistory_ItemsIsACopy(t *testing.T) {
	h := NewHistory[string, threeCap]("x")

	items := h.Items()
	items[0] = "mutated"

	assert.Equal(t, []string{"x"}, h.Items())
}

func TestHistory_CloneIndependent(t *testing.T) {
	h := NewHistory[string, threeCap]("a")
	c := h.Clone()

	c.Push("b")

	assert.Equal(t, []string{"a"}, h.Items())
	assert.Equal(t, []string{"b", "a"}, c.Items())
}

func TestHistory_JSON(t *testing.T) {
	var empty History[string, threeCap]
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	var decoded History[string, threeCap]
	require.NoError(t, json.Unmarshal([]byte(`["e","d","c","b","a"]`), &decoded))
	assert.Equal(t, []string{"e", "d", "c"}, decoded.Items(), "decoding truncates to capacity")

	var fromNull History[string, threeCap]
	require.NoError(t, json.Unmarshal([]byte(`null`), &fromNull))
	assert.Equal(t, empty, fromNull)

	var fromEmpty History[string, threeCap]
	require.NoError(t, json.Unmarshal([]byte(`[]`), &fromEmpty))
	assert.Equal(t, empty, fromEmpty)
}

func TestHistory_At(t *testing.T) {
	h := NewHistory[string, threeCap]("b", "a")

	v, ok := h.At(1)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = h.At(2)
	assert.False(t, ok)
	_, ok = h.At(-1)
	assert.False(t, ok)
}
