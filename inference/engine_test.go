package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseEngineType(t *testing.T) {
	tests := []struct {
		in      string
		want    EngineType
		wantErr bool
	}{
		{"caffe", EngineCaffe, false},
		{"ONNX", EngineONNX, false},
		{"  Caffe ", EngineCaffe, false},
		{"tensorflow", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEngineType(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedEngine))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestEngineBuilderErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.caffemodel")
	empty := writeFile(t, "empty.prototxt", nil)
	weights := writeFile(t, "model.caffemodel", []byte("weights"))

	tests := []struct {
		name    string
		builder *EngineBuilder
	}{
		{
			name:    "unsupported engine",
			builder: NewEngineBuilder().WithType("darknet").WithModel(empty, weights),
		},
		{
			name:    "missing weights",
			builder: NewEngineBuilder().WithModel(empty, ""),
		},
		{
			name:    "caffe without prototxt",
			builder: NewEngineBuilder().WithType(EngineCaffe).WithModel("", weights),
		},
		{
			name:    "invalid preprocess",
			builder: NewEngineBuilder().WithPreprocess(Preprocess{Width: 0, Height: 300}).WithModel(empty, weights),
		},
		{
			name:    "caffe missing weights file",
			builder: NewEngineBuilder().WithModel(weights, missing),
		},
		{
			name:    "caffe empty prototxt",
			builder: NewEngineBuilder().WithModel(empty, weights),
		},
		{
			name:    "onnx missing model file",
			builder: NewEngineBuilder().WithType(EngineONNX).WithModel("", missing),
		},
		{
			name: "onnx without detections",
			builder: NewEngineBuilder().
				WithType(EngineONNX).
				WithONNX(ONNXOptions{InputName: "data", OutputName: "detection_out"}).
				WithModel("", weights),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := tt.builder.WithLogger(zap.NewNop()).Build()
			assert.Error(t, err)
			assert.Nil(t, e)
		})
	}
}

func TestEngineBuilderKeepsFirstError(t *testing.T) {
	b := NewEngineBuilder().WithType("darknet").WithType(EngineONNX)
	require.True(t, b.HasError())

	_, err := b.Build()
	assert.True(t, errors.Is(err, ErrUnsupportedEngine))
	assert.Panics(t, func() { b.MustBuild() })
}

func TestDefaultONNXOptions(t *testing.T) {
	opts := DefaultONNXOptions()
	assert.Equal(t, "data", opts.InputName)
	assert.Equal(t, "detection_out", opts.OutputName)
	assert.Equal(t, 100, opts.MaxDetections)
	assert.NotEmpty(t, DefaultSharedLibPath())
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{"", ProviderCPU, false},
		{"cpu", ProviderCPU, false},
		{"CUDA", ProviderCUDA, false},
		{"coreml", ProviderCoreML, false},
		{"OpenVINO", ProviderOpenVINO, false},
		{"tensorrt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProvider(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestONNXEngineRejectsUnknownProvider(t *testing.T) {
	opts := DefaultONNXOptions()
	opts.Provider = "tensorrt"

	_, err := NewONNXEngine(writeFile(t, "model.onnx", []byte("onnx")), opts, DefaultPreprocess(), zap.NewNop())
	assert.ErrorContains(t, err, "unsupported execution provider")
}
