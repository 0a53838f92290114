package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OHIF/Viewers-sub030/internal/cmd/application"
	"github.com/OHIF/Viewers-sub030/pkg/constants"
)

const enhanced = `
- SOPInstanceUID: "5.1"
  SeriesInstanceUID: "5"
  StudyInstanceUID: "9"
  SOPClassUID: "1.2.840.10008.5.1.4.1.1.2.1"
  NumberOfFrames: 2
  SharedFunctionalGroupsSequence:
    - PixelMeasuresSequence:
        - PixelSpacing: [0.5, 0.5]
  PerFrameFunctionalGroupsSequence:
    - PlanePositionSequence:
        - ImagePositionPatient: [0, 0, 0]
    - PlanePositionSequence:
        - ImagePositionPatient: [0, 0, 1]
- SOPInstanceUID: "5.2"
  SeriesInstanceUID: "5"
  StudyInstanceUID: "9"
  SOPClassUID: "1.2.840.10008.5.1.4.1.1.2"
`

func TestSynth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enhanced.yaml")
	require.NoError(t, os.WriteFile(path, []byte(enhanced), constants.FilePermissions))

	var out bytes.Buffer
	cmd := NewCommand(&application.Mock{})
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var frames []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &frames))
	require.Len(t, frames, 3, "two frames plus the single-frame instance")
	assert.EqualValues(t, 1, frames[0]["frameNumber"])
	assert.EqualValues(t, 2, frames[1]["frameNumber"])
	assert.Equal(t, []any{0.0, 0.0, 1.0}, frames[1]["ImagePositionPatient"])
	assert.Equal(t, "5.2", frames[2]["SOPInstanceUID"])
}

func TestSynthRequiresFile(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "none.yaml")})
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
