package instances

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OHIF/Viewers-sub030/pkg/errors"
)

func TestAccessors(t *testing.T) {
	inst := Instance{
		"SOPInstanceUID":       "1.2.3.1",
		"InstanceNumber":       "7",
		"NumberOfFrames":       float64(5),
		"Rows":                 uint64(512),
		"SeriesNumber":         []any{int64(3)},
		"ImagePositionPatient": `0\-12.5\30`,
		"PixelSpacing":         []any{0.5, "0.5"},
	}

	assert.Equal(t, "1.2.3.1", inst.SOPInstanceUID())
	assert.Equal(t, 7, inst.InstanceNumber())

	n, ok := inst.NumberOfFrames()
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	rows, ok := inst.Int("Rows")
	assert.True(t, ok)
	assert.Equal(t, 512, rows)

	assert.Equal(t, "3", inst.String("SeriesNumber"))
	assert.Equal(t, []float64{0, -12.5, 30}, inst.Floats("ImagePositionPatient"))
	assert.Equal(t, []float64{0.5, 0.5}, inst.Floats("PixelSpacing"))
	assert.Nil(t, inst.Floats("Missing"))

	_, ok = inst.Int("Missing")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		inst    Instance
		missing string
	}{
		{
			name: "complete",
			inst: Instance{"SOPInstanceUID": "1", "SeriesInstanceUID": "2", "StudyInstanceUID": "3", "SOPClassUID": CTImageStorage},
		},
		{
			name:    "missing series",
			inst:    Instance{"SOPInstanceUID": "1", "StudyInstanceUID": "3", "SOPClassUID": CTImageStorage},
			missing: "SeriesInstanceUID",
		},
		{
			name:    "missing sop class",
			inst:    Instance{"SOPInstanceUID": "1", "SeriesInstanceUID": "2", "StudyInstanceUID": "3"},
			missing: "SOPClassUID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.inst.Validate()
			if tt.missing == "" {
				assert.NoError(t, err)
				return
			}
			var ve *errors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.missing, ve.Field)
		})
	}
}

func TestClone(t *testing.T) {
	orig := Instance{"SOPInstanceUID": "1"}
	c := orig.Clone()
	c["SOPInstanceUID"] = "2"
	assert.Equal(t, "1", orig.SOPInstanceUID())
	assert.Nil(t, Instance(nil).Clone())
}

type holder []Instance

func (h holder) Instances() []Instance { return h }

func TestFilterNotIn(t *testing.T) {
	a := Instance{"SOPInstanceUID": "a"}
	b := Instance{"SOPInstanceUID": "b"}
	c := Instance{"SOPInstanceUID": "c"}

	out := FilterNotIn([]Instance{a, b, c}, holder{b}, holder{c})
	assert.Equal(t, []Instance{a}, out)

	assert.Len(t, FilterNotIn([]Instance{a, b}), 2)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage(CTImageStorage))
	assert.True(t, IsImage(EnhancedMRImageStorage))
	assert.False(t, IsImage(SegmentationStorage))
	assert.False(t, IsImage(BasicTextSR))
	assert.False(t, IsImage(""))
	assert.Contains(t, ImageSOPClasses(), MRImageStorage)
}
