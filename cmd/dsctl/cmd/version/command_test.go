package version

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OHIF/Viewers-sub030/internal/cmd/application"
)

func TestVersion(t *testing.T) {
	tests := []struct {
		name   string
		format string
		check  func(t *testing.T, out []byte)
	}{
		{"json", "json", func(t *testing.T, out []byte) {
			var info Info
			require.NoError(t, json.Unmarshal(out, &info))
			assert.Equal(t, "1.2.3", info.Version)
			assert.NotEmpty(t, info.GoVersion)
		}},
		{"table", "table", func(t *testing.T, out []byte) {
			assert.Contains(t, string(out), "dsctl 1.2.3 (commit test")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &application.Mock{
				VersionFunc:      func() string { return "1.2.3" },
				OutputFormatFunc: func() string { return tt.format },
			}
			var out bytes.Buffer
			cmd := NewCommand(app)
			cmd.SetOut(&out)
			cmd.SetArgs(nil)
			require.NoError(t, cmd.ExecuteContext(context.Background()))
			tt.check(t, out.Bytes())
		})
	}
}
