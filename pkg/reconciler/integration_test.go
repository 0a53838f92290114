package reconciler

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/events"
	"github.com/OHIF/Viewers-sub030/pkg/handlers/stack"
	"github.com/OHIF/Viewers-sub030/pkg/handlers/unsupported"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
	"github.com/OHIF/Viewers-sub030/pkg/messages"
)

var ignoreVolatile = cmpopts.IgnoreFields(displayset.Snapshot{}, "DisplaySetInstanceUID", "CreatedAt")

func TestEndToEndSession(t *testing.T) {
	ctx := context.Background()
	h1 := &counting{Handler: wholeGroup("H1", instances.CTImageStorage)}
	h2 := synthesizing("H2", instances.EnhancedMRImageStorage)
	svc := newService(t, WithHandlers(h1, h2))
	rec := record(svc)

	series := ctSeries("S", 2)
	first, err := svc.MakeDisplaySets(ctx, series)
	require.NoError(t, err)
	require.Len(t, first.DisplaySets, 1)
	d1 := first.DisplaySets[0]

	want := displayset.Snapshot{
		StudyInstanceUID:  "1.2.840.1",
		SeriesInstanceUID: "S",
		Modality:          "CT",
		HandlerID:         "H1",
		NumInstances:      2,
		SOPInstanceUIDs:   []string{"S.1", "S.2"},
		Messages:          []messages.Message{},
		Settings:          map[string]any{},
	}
	if diff := cmp.Diff(want, d1.Snapshot(), ignoreVolatile, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("D1 snapshot mismatch (-want +got):\n%s", diff)
	}

	again, err := svc.MakeDisplaySets(ctx, series)
	require.NoError(t, err)
	require.Len(t, again.DisplaySets, 1)
	assert.Same(t, d1, again.DisplaySets[0])
	assert.Len(t, svc.DisplaySetsForSeries("S"), 1)
	assert.Equal(t, 1, h1.Calls())

	mf := image("S2", "S2.1", instances.EnhancedMRImageStorage)
	mf["Modality"] = "MR"
	mf["NumberOfFrames"] = 3
	mf["SharedFunctionalGroupsSequence"] = []any{map[string]any{
		"PixelMeasuresSequence": []any{map[string]any{"SliceThickness": 2.0}},
	}}
	second, err := svc.MakeDisplaySets(ctx, []instances.Instance{mf})
	require.NoError(t, err)
	require.Len(t, second.DisplaySets, 1)
	d2 := second.DisplaySets[0]

	frames := d2.Instances()
	require.Len(t, frames, 3)
	for i, f := range frames {
		n, _ := f.Int("frameNumber")
		assert.Equal(t, i+1, n)
		assert.False(t, f.Has("NumberOfFrames"))
		assert.False(t, f.Has("SharedFunctionalGroupsSequence"))
		assert.Equal(t, 2.0, f["SliceThickness"])
	}
	assert.Equal(t, []string{"S2.1"}, d2.SOPInstanceUIDs())

	active := displayset.UIDs(svc.ActiveDisplaySets())
	assert.Equal(t, []string{d1.UID(), d2.UID()}, active)
	assert.Equal(t, []events.Kind{
		events.DisplaySetsChanged, events.DisplaySetsAdded,
		events.DisplaySetsAdded,
		events.DisplaySetsChanged, events.DisplaySetsAdded,
	}, rec.kinds())

	require.True(t, svc.DeleteDisplaySet(d1.UID()))
	svc.OnModeExit()
	assert.Empty(t, svc.AllDisplaySets())

	res, err := svc.MakeDisplaySets(ctx, series)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
}

func TestBuiltInBuildersTogether(t *testing.T) {
	svc := newService(t,
		WithHandlers(stack.New()),
		WithUnsupportedHandler(unsupported.New()),
	)

	ct := ctSeries("CT", 3)
	for i, inst := range ct {
		inst["ImagePositionPatient"] = []any{0.0, 0.0, float64(i) * 2}
		inst["ImageOrientationPatient"] = []any{1.0, 0.0, 0.0, 0.0, 1.0, 0.0}
		inst["Rows"] = 512
		inst["Columns"] = 512
	}
	cr := image("CR", "cr.1", instances.ComputedRadiographyImageStorage)
	cr["Modality"] = "CR"
	sr := image("SR", "sr.1", instances.ComprehensiveSR)

	res, err := svc.MakeDisplaySetsBatch(context.Background(), [][]instances.Instance{ct, {cr}, {sr}})
	require.NoError(t, err)
	require.NoError(t, res.Err())
	require.Len(t, res.DisplaySets, 3)

	stackSet, crSet, srSet := res.DisplaySets[0], res.DisplaySets[1], res.DisplaySets[2]
	assert.Equal(t, 3, stackSet.Len())
	assert.Zero(t, stackSet.Messages.Size(), stackSet.Messages.Codes())
	assert.Equal(t, "stack", crSet.HandlerID)
	assert.False(t, crSet.Unsupported)
	assert.True(t, srSet.Unsupported)
	assert.True(t, srSet.IsLoaded())
	assert.Len(t, res.Groups[2].Unclaimed, 1)
}
