package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/errors"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
)

func nopBuilder(id string, classes ...string) Handler {
	return Func(id, classes, func(_ context.Context, insts []instances.Instance) ([]*displayset.DisplaySet, error) {
		return []*displayset.DisplaySet{displayset.New(insts)}, nil
	})
}

func TestRegister(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	require.NoError(t, r.Register(nopBuilder("stack", instances.CTImageStorage)))
	assert.Equal(t, 1, r.Len())

	err = r.Register(nopBuilder("stack", instances.MRImageStorage))
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))
	assert.Equal(t, 1, r.Len())

	err = r.Register(nopBuilder(""))
	assert.True(t, errors.IsValidationError(err))

	err = r.Register(nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestNewRegistryDuplicate(t *testing.T) {
	_, err := NewRegistry(nopBuilder("a"), nopBuilder("a"))
	assert.True(t, errors.IsAlreadyExists(err))
}

func TestResolveUsesRegistrationOrder(t *testing.T) {
	r, err := NewRegistry(
		nopBuilder("sr", instances.BasicTextSR),
		nopBuilder("first", instances.CTImageStorage, instances.MRImageStorage),
		nopBuilder("second", instances.CTImageStorage),
	)
	require.NoError(t, err)

	h, ok := r.Resolve(instances.CTImageStorage)
	require.True(t, ok)
	assert.Equal(t, "first", h.ID())

	matching := r.Matching(instances.CTImageStorage)
	require.Len(t, matching, 2)
	assert.Equal(t, "first", matching[0].ID())
	assert.Equal(t, "second", matching[1].ID())

	_, ok = r.Resolve(instances.SegmentationStorage)
	assert.False(t, ok)
	assert.Empty(t, r.Matching(instances.SegmentationStorage))
}

func TestGetAndList(t *testing.T) {
	r, err := NewRegistry(nopBuilder("a"), nopBuilder("b"))
	require.NoError(t, err)

	h, ok := r.Get("b")
	require.True(t, ok)
	assert.Equal(t, "b", h.ID())

	_, ok = r.Get("missing")
	assert.False(t, ok)

	ids := []string{}
	for _, h := range r.List() {
		ids = append(ids, h.ID())
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestFunc(t *testing.T) {
	classes := []string{instances.CTImageStorage}
	h := Func("x", classes, nil)
	classes[0] = "mutated"

	assert.True(t, Claims(h, instances.CTImageStorage))
	sets, err := h.Build(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, sets)
}
