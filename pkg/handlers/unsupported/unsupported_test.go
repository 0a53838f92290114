package unsupported

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OHIF/Viewers-sub030/pkg/handlers"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
)

func TestBuild(t *testing.T) {
	b := New()
	inst := instances.Instance{
		"SOPInstanceUID":    "1",
		"SeriesInstanceUID": "S",
		"StudyInstanceUID":  "T",
		"SOPClassUID":       instances.RTPlanStorage,
		"Modality":          "RTPLAN",
	}

	sets, err := b.Build(context.Background(), []instances.Instance{inst})
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.True(t, sets[0].Unsupported)
	assert.True(t, sets[0].IsLoaded())
	assert.Equal(t, "S", sets[0].SeriesInstanceUID)
	assert.Equal(t, "RTPLAN", sets[0].Modality)

	_, err = b.Build(context.Background(), nil)
	assert.Error(t, err)
}

func TestClaimsNothing(t *testing.T) {
	b := New()
	assert.Equal(t, DefaultID, b.ID())
	assert.Empty(t, b.SOPClassUIDs())
	assert.False(t, handlers.Claims(b, instances.RTPlanStorage))
}
