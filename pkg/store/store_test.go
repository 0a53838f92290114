package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
)

func newSet(series string, sops ...string) *displayset.DisplaySet {
	recs := make([]instances.Instance, 0, len(sops))
	for _, sop := range sops {
		recs = append(recs, instances.Instance{
			"SOPInstanceUID":    sop,
			"SeriesInstanceUID": series,
			"StudyInstanceUID":  "1.2",
			"SOPClassUID":       instances.CTImageStorage,
		})
	}
	return displayset.New(recs)
}

func TestInsertNoDuplicates(t *testing.T) {
	s := New()
	ds := newSet("S", "a")

	assert.True(t, s.Insert(ds))
	assert.False(t, s.Insert(ds))
	assert.False(t, s.Insert(nil))
	assert.Equal(t, 1, s.Len())

	got, ok := s.Get(ds.UID())
	require.True(t, ok)
	assert.Same(t, ds, got)
}

func TestForSeries(t *testing.T) {
	s := New()
	a, b, c := newSet("S1", "a"), newSet("S2", "b"), newSet("S1", "c")
	for _, ds := range []*displayset.DisplaySet{a, b, c} {
		s.Insert(ds)
	}

	assert.Equal(t, []*displayset.DisplaySet{a, c}, s.ForSeries("S1"))
	assert.Empty(t, s.ForSeries("none"))
	assert.Equal(t, []*displayset.DisplaySet{a, b, c}, s.All())
}

func TestActivate(t *testing.T) {
	s := New()
	a, b := newSet("S", "a"), newSet("S", "b")
	s.Insert(a)

	assert.True(t, s.Activate(a))
	assert.False(t, s.Activate(a), "re-activating is not a change")
	assert.False(t, s.Activate(b), "uncached sets are ignored")
	assert.True(t, s.IsActive(a.UID()))
	assert.False(t, s.IsActive(b.UID()))
	assert.Equal(t, []*displayset.DisplaySet{a}, s.Active())
}

func TestDelete(t *testing.T) {
	s := New()
	a, b := newSet("S", "a"), newSet("S", "b")
	s.Insert(a)
	s.Insert(b)
	s.Activate(a, b)

	assert.True(t, s.Delete(a.UID()))
	assert.False(t, s.Delete(a.UID()))
	assert.False(t, s.Delete("missing"))

	_, ok := s.Get(a.UID())
	assert.False(t, ok)
	assert.Equal(t, []*displayset.DisplaySet{b}, s.Active())
	assert.Equal(t, []*displayset.DisplaySet{b}, s.All())
}

func TestReset(t *testing.T) {
	s := New()
	a := newSet("S", "a")
	s.Insert(a)
	s.Activate(a)

	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Active())
	_, ok := s.MostRecent()
	assert.False(t, ok)

	assert.True(t, s.Insert(a), "store stays usable after reset")
}

func TestFindBySOPInstanceUID(t *testing.T) {
	s := New()
	cachedOnly, active := newSet("S", "x"), newSet("S", "x", "y")
	s.Insert(cachedOnly)
	s.Insert(active)
	s.Activate(active)

	got, ok := s.FindBySOPInstanceUID("x")
	require.True(t, ok)
	assert.Same(t, active, got, "active sets win")

	s.Delete(active.UID())
	got, ok = s.FindBySOPInstanceUID("x")
	require.True(t, ok)
	assert.Same(t, cachedOnly, got)

	_, ok = s.FindBySOPInstanceUID("y")
	assert.False(t, ok)
}

func TestSortActiveAndMostRecent(t *testing.T) {
	s := New()
	z, a := newSet("Z", "1"), newSet("A", "2")
	s.Insert(z)
	s.Insert(a)
	s.Activate(z, a)

	s.SortActive(func(x, y *displayset.DisplaySet) int {
		return strings.Compare(x.SeriesInstanceUID, y.SeriesInstanceUID)
	})
	assert.Equal(t, []*displayset.DisplaySet{a, z}, s.Active())

	last, ok := s.MostRecent()
	require.True(t, ok)
	assert.Same(t, a, last)
}
