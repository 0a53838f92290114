package stack

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
	"github.com/OHIF/Viewers-sub030/pkg/messages"
)

func ctSlice(number int, z float64) instances.Instance {
	return instances.Instance{
		"SOPInstanceUID":          fmt.Sprintf("1.2.3.%d", number),
		"SeriesInstanceUID":       "1.2.3",
		"StudyInstanceUID":        "1.2",
		"SOPClassUID":             instances.CTImageStorage,
		"Modality":                "CT",
		"InstanceNumber":          number,
		"Rows":                    512,
		"Columns":                 512,
		"SamplesPerPixel":         1,
		"ImageOrientationPatient": []any{1.0, 0.0, 0.0, 0.0, 1.0, 0.0},
		"ImagePositionPatient":    []any{0.0, 0.0, z},
	}
}

func regularStack(n int) []instances.Instance {
	out := make([]instances.Instance, 0, n)
	for i := n; i >= 1; i-- {
		out = append(out, ctSlice(i, float64(i)*2.5))
	}
	return out
}

func enhanced(frames, perFrame int) instances.Instance {
	groups := make([]any, perFrame)
	for i := range groups {
		groups[i] = map[string]any{
			"PlanePositionSequence": []any{map[string]any{"ImagePositionPatient": []any{0.0, 0.0, float64(i)}}},
		}
	}
	return instances.Instance{
		"SOPInstanceUID":    "1.2.9.1",
		"SeriesInstanceUID": "1.2.9",
		"StudyInstanceUID":  "1.2",
		"SOPClassUID":       instances.EnhancedCTImageStorage,
		"Modality":          "CT",
		"NumberOfFrames":    frames,
		"Rows":              256,
		"Columns":           256,
		"SharedFunctionalGroupsSequence": map[string]any{
			"PixelMeasuresSequence":    map[string]any{"PixelSpacing": []any{0.7, 0.7}},
			"PlaneOrientationSequence": map[string]any{"ImageOrientationPatient": []any{1.0, 0.0, 0.0, 0.0, 1.0, 0.0}},
		},
		"PerFrameFunctionalGroupsSequence": groups,
	}
}

func TestBuildStackSortedByInstanceNumber(t *testing.T) {
	sets, err := New().Build(context.Background(), regularStack(4))
	require.NoError(t, err)
	require.Len(t, sets, 1)

	ds := sets[0]
	assert.Equal(t, []string{"1.2.3.1", "1.2.3.2", "1.2.3.3", "1.2.3.4"}, ds.SOPInstanceUIDs())
	assert.Equal(t, 0, ds.Messages.Size(), "regular stack has no diagnostics: %v", ds.Messages.List())
	assert.False(t, ds.Provisional())
}

func TestBuildMultiframe(t *testing.T) {
	sets, err := New().Build(context.Background(), []instances.Instance{enhanced(3, 3)})
	require.NoError(t, err)
	require.Len(t, sets, 1)

	ds := sets[0]
	require.Equal(t, 3, ds.Len())
	for i, f := range ds.Instances() {
		assert.Equal(t, i+1, f["frameNumber"])
	}
	assert.Equal(t, 0, ds.Messages.Size(), "%v", ds.Messages.List())
}

func TestBuildMultiframeMissingFrames(t *testing.T) {
	sets, err := New().Build(context.Background(), []instances.Instance{enhanced(5, 2)})
	require.NoError(t, err)
	ds := sets[0]

	assert.Equal(t, 5, ds.Len())
	assert.True(t, ds.Messages.IncludesCode(messages.MissingFrames))
	assert.True(t, ds.Provisional())
}

func TestBuildMultiframeWithoutGeometry(t *testing.T) {
	clip := instances.Instance{
		"SOPInstanceUID":    "1.2.8.1",
		"SeriesInstanceUID": "1.2.8",
		"StudyInstanceUID":  "1.2",
		"SOPClassUID":       instances.UltrasoundMultiFrameImageStorage,
		"Modality":          "US",
		"NumberOfFrames":    4,
	}
	sets, err := New().Build(context.Background(), []instances.Instance{clip})
	require.NoError(t, err)
	ds := sets[0]

	assert.Equal(t, 4, ds.Len())
	assert.True(t, ds.Messages.IncludesAll(
		messages.MultiframeNoPixelMeasurements,
		messages.MultiframeNoOrientation,
		messages.MultiframeNoPositionInformation,
	))
}

func TestBuildSplitsModalities(t *testing.T) {
	cr := func(uid string) instances.Instance {
		return instances.Instance{
			"SOPInstanceUID":    uid,
			"SeriesInstanceUID": "1.2.7",
			"StudyInstanceUID":  "1.2",
			"SOPClassUID":       instances.ComputedRadiographyImageStorage,
			"Modality":          "CR",
		}
	}
	notImage := instances.Instance{
		"SOPInstanceUID":    "sr",
		"SeriesInstanceUID": "1.2.7",
		"StudyInstanceUID":  "1.2",
		"SOPClassUID":       instances.BasicTextSR,
	}

	sets, err := New().Build(context.Background(), []instances.Instance{cr("a"), cr("b"), notImage})
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, []string{"a"}, sets[0].SOPInstanceUIDs())
	assert.Equal(t, []string{"b"}, sets[1].SOPInstanceUIDs())
}

func TestBuildEmpty(t *testing.T) {
	_, err := New().Build(context.Background(), nil)
	assert.Error(t, err)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Build(ctx, regularStack(2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQualityChecks(t *testing.T) {
	tests := []struct {
		name  string
		edit  func([]instances.Instance)
		codes []messages.Code
	}{
		{
			name:  "missing position",
			edit:  func(s []instances.Instance) { delete(s[1], "ImagePositionPatient") },
			codes: []messages.Code{messages.NoPositionInformation, messages.NotReconstructable},
		},
		{
			name:  "inconsistent dimensions",
			edit:  func(s []instances.Instance) { s[0]["Rows"] = 256 },
			codes: []messages.Code{messages.InconsistentDimensions, messages.NotReconstructable},
		},
		{
			name:  "inconsistent components",
			edit:  func(s []instances.Instance) { s[2]["SamplesPerPixel"] = 3 },
			codes: []messages.Code{messages.InconsistentComponents, messages.NotReconstructable},
		},
		{
			name: "inconsistent orientation",
			edit: func(s []instances.Instance) {
				s[0]["ImageOrientationPatient"] = []any{0.0, 1.0, 0.0, 0.0, 0.0, -1.0}
			},
			codes: []messages.Code{messages.InconsistentOrientations, messages.NotReconstructable},
		},
		{
			name:  "irregular spacing",
			edit:  func(s []instances.Instance) { s[0]["ImagePositionPatient"] = []any{0.0, 0.0, 40.0} },
			codes: []messages.Code{messages.IrregularSpacing, messages.NotReconstructable},
		},
		{
			name:  "duplicate position",
			edit:  func(s []instances.Instance) { s[0]["ImagePositionPatient"] = []any{0.0, 0.0, 7.5} },
			codes: []messages.Code{messages.InconsistentPositionInformation, messages.NotReconstructable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// slices arrive as 4,3,2,1 and are sorted ascending
			s := regularStack(4)
			tt.edit(s)
			sets, err := New().Build(context.Background(), s)
			require.NoError(t, err)
			require.Len(t, sets, 1)
			assert.ElementsMatch(t, tt.codes, sets[0].Messages.Codes())
		})
	}
}

func TestSingleSliceNotReconstructable(t *testing.T) {
	sets, err := New().Build(context.Background(), regularStack(1))
	require.NoError(t, err)
	assert.Equal(t, []messages.Code{messages.NotReconstructable}, sets[0].Messages.Codes())
}

func TestSeriesRelatedInstancesMarksProvisional(t *testing.T) {
	s := regularStack(2)
	for _, inst := range s {
		inst["NumberOfSeriesRelatedInstances"] = 3
	}
	sets, err := New().Build(context.Background(), s)
	require.NoError(t, err)
	ds := sets[0]
	assert.True(t, ds.Provisional())
	assert.True(t, ds.Messages.IncludesCode(messages.MissingFrames))
}

func TestAddInstances(t *testing.T) {
	b := New()
	sets, err := b.Build(context.Background(), regularStack(2))
	require.NoError(t, err)
	ds := sets[0]
	ds.HandlerID = b.ID()

	ok, err := b.AddInstances(context.Background(), ds, []instances.Instance{ctSlice(3, 7.5)})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"1.2.3.1", "1.2.3.2", "1.2.3.3"}, ds.SOPInstanceUIDs())
	assert.Equal(t, 0, ds.Messages.Size(), "%v", ds.Messages.List())

	t.Run("irregular slice adds a message once", func(t *testing.T) {
		ok, err := b.AddInstances(context.Background(), ds, []instances.Instance{ctSlice(4, 30)})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, ds.Messages.IncludesCode(messages.IrregularSpacing))

		before := ds.Messages.Size()
		_, err = b.AddInstances(context.Background(), ds, []instances.Instance{ctSlice(5, 60)})
		require.NoError(t, err)
		assert.Equal(t, before, ds.Messages.Size())
	})

	t.Run("foreign sets are not grown", func(t *testing.T) {
		other := displayset.New(regularStack(1))
		other.HandlerID = "someone-else"
		ok, err := b.AddInstances(context.Background(), other, []instances.Instance{ctSlice(9, 90)})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("multiframe sets are not grown", func(t *testing.T) {
		mf, err := b.Build(context.Background(), []instances.Instance{enhanced(2, 2)})
		require.NoError(t, err)
		mf[0].HandlerID = b.ID()
		ok, err := b.AddInstances(context.Background(), mf[0], []instances.Instance{ctSlice(9, 90)})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestOptions(t *testing.T) {
	b := New(WithID("mr-only"), WithSOPClassUIDs(instances.MRImageStorage))
	assert.Equal(t, "mr-only", b.ID())
	assert.Equal(t, []string{instances.MRImageStorage}, b.SOPClassUIDs())
	assert.Contains(t, New().SOPClassUIDs(), instances.CTImageStorage)
}
