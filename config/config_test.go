package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "caffe", cfg.Engine)
	assert.Equal(t, "voc", cfg.Family)
	assert.Equal(t, InputConfig{Width: 300, Height: 300, Scale: 0.007843, Mean: 127.5}, cfg.Input)
	assert.Equal(t, "data", cfg.ONNX.Input)
	assert.Equal(t, "detection_out", cfg.ONNX.Output)
	assert.Equal(t, 100, cfg.ONNX.MaxDetections)
	assert.Equal(t, "cpu", cfg.ONNX.Provider)
	assert.True(t, cfg.Display.Window)
	assert.Equal(t, "Output", cfg.Display.Title)
	assert.Empty(t, cfg.Display.Output)
	assert.Equal(t, RenderConfig{Thickness: 2, FontScale: 0.5, LabelOffset: 15}, cfg.Render)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine: onnx
family: coco
input:
  width: 320
  height: 320
  swaprb: true
display:
  window: false
  output: out.png
log:
  level: debug
`), 0o600))

	t.Setenv("DETECT_INPUT_WIDTH", "512")
	t.Setenv("DETECT_ONNX_LIBRARY", "/opt/onnxruntime/libonnxruntime.so")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "onnx", cfg.Engine)
	assert.Equal(t, "coco", cfg.Family)
	assert.Equal(t, 512, cfg.Input.Width)
	assert.Equal(t, 320, cfg.Input.Height)
	assert.True(t, cfg.Input.SwapRB)
	assert.InDelta(t, 127.5, cfg.Input.Mean, 1e-9)
	assert.False(t, cfg.Display.Window)
	assert.Equal(t, "out.png", cfg.Display.Output)
	assert.Equal(t, "/opt/onnxruntime/libonnxruntime.so", cfg.ONNX.Library)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero width", "DETECT_INPUT_WIDTH", "0"},
		{"negative scale", "DETECT_INPUT_SCALE", "-1"},
		{"no detections", "DETECT_ONNX_MAXDETECTIONS", "0"},
		{"zero thickness", "DETECT_RENDER_THICKNESS", "0"},
		{"unknown family", "DETECT_FAMILY", "imagenet"},
		{"unknown level", "DETECT_LOG_LEVEL", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		in      string
		want    float32
		wantErr bool
	}{
		{in: "0.5", want: 0.5},
		{in: " 0.25 ", want: 0.25},
		{in: "1", want: 1},
		{in: "-0.1", want: -0.1},
		{in: "2", want: 2},
		{in: "1e-3", want: 0.001},
		{in: "", wantErr: true},
		{in: "high", wantErr: true},
		{in: "50%", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConfidence(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfidence))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConfidenceNaN(t *testing.T) {
	got, err := ParseConfidence("nan")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(got)))
}

func TestVerbose(t *testing.T) {
	assert.False(t, Verbose(""))
	assert.True(t, Verbose("1"))
	assert.True(t, Verbose("0"))
	assert.True(t, Verbose("false"))
}
