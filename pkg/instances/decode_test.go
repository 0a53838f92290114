package instances

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OHIF/Viewers-sub030/pkg/errors"
)

func TestDecode(t *testing.T) {
	t.Run("json list", func(t *testing.T) {
		doc := `[{"SOPInstanceUID":"1","SeriesInstanceUID":"S","NumberOfFrames":3},{"SOPInstanceUID":"2","SeriesInstanceUID":"S"}]`
		groups, err := Decode([]byte(doc), false)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		require.Len(t, groups[0], 2)
		assert.Equal(t, "S", groups[0][1].SeriesInstanceUID())
		n, ok := groups[0][0].NumberOfFrames()
		assert.True(t, ok)
		assert.Equal(t, 3, n)
	})

	t.Run("yaml batch", func(t *testing.T) {
		doc := `
- - SOPInstanceUID: "1"
    SeriesInstanceUID: S1
- - SOPInstanceUID: "2"
    SeriesInstanceUID: S2
  - SOPInstanceUID: "3"
    SeriesInstanceUID: S2
`
		groups, err := Decode([]byte(doc), true)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Len(t, groups[1], 2)
	})

	t.Run("single mapping", func(t *testing.T) {
		groups, err := Decode([]byte(`{"SOPInstanceUID":"1"}`), false)
		require.NoError(t, err)
		assert.Len(t, groups[0], 1)
	})
}

func TestDecodeStructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		batch bool
	}{
		{"empty document", "   ", false},
		{"empty list", "[]", false},
		{"empty batch", "[]", true},
		{"batch of instances", `[{"SOPInstanceUID":"1"}]`, true},
		{"batch with empty first group", `[[], [{"SOPInstanceUID":"1"}]]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), tt.batch)
			require.Error(t, err)
			assert.True(t, errors.IsStructuralInput(err), "got %v", err)
		})
	}
}

func TestDecodeKeepsMalformedLaterGroups(t *testing.T) {
	doc := `[
 [{"SOPInstanceUID":"1","SeriesInstanceUID":"A"}],
 {"oops":1},
 42,
 [{"SOPInstanceUID":"3","SeriesInstanceUID":"C"}, "junk"]
]`
	groups, err := Decode([]byte(doc), true)
	require.NoError(t, err)
	require.Len(t, groups, 4)

	require.Len(t, groups[1], 1)
	assert.EqualValues(t, 1, groups[1][0]["oops"])
	assert.Equal(t, []Instance{{}}, groups[2])
	require.Len(t, groups[3], 2)
	assert.Equal(t, "C", groups[3][0].SeriesInstanceUID())
	assert.Empty(t, groups[3][1])
	assert.Error(t, groups[1][0].Validate())
}

func TestDecodeParseError(t *testing.T) {
	_, err := Decode([]byte("[{unterminated"), false)
	require.Error(t, err)
	var pe *errors.ParseError
	assert.ErrorAs(t, err, &pe)
}
