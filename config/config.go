// Package config - Loads detector settings from defaults, a YAML file and the environment.
package config

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap/zapcore"

	"github.com/nvr-ai/go-query-detect/models"
)

// EnvPrefix is the prefix of environment overrides: DETECT_INPUT_WIDTH sets input.width.
const EnvPrefix = "DETECT_"

// ErrInvalidConfidence is returned when the confidence argument is not a number.
var ErrInvalidConfidence = errors.New("invalid confidence")

// InputConfig is the network input preprocessing.
type InputConfig struct {
	Width  int     `koanf:"width"`
	Height int     `koanf:"height"`
	Scale  float64 `koanf:"scale"`
	Mean   float64 `koanf:"mean"`
	SwapRB bool    `koanf:"swaprb"`
}

// ONNXConfig is the onnxruntime engine configuration.
type ONNXConfig struct {
	Library       string `koanf:"library"`
	Input         string `koanf:"input"`
	Output        string `koanf:"output"`
	MaxDetections int    `koanf:"maxdetections"`
	Threads       int    `koanf:"threads"`
	// Provider is the execution provider: cpu, cuda, coreml or openvino.
	Provider string `koanf:"provider"`
	Device   int    `koanf:"device"`
}

// DisplayConfig selects where the annotated image goes.
type DisplayConfig struct {
	// Window shows the result in a window and waits for a key press.
	Window bool   `koanf:"window"`
	Title  string `koanf:"title"`
	// Output, when set, also writes the result to this image file.
	Output string `koanf:"output"`
}

// RenderConfig is the drawing style.
type RenderConfig struct {
	Thickness   int     `koanf:"thickness"`
	FontScale   float64 `koanf:"fontscale"`
	LabelOffset int     `koanf:"labeloffset"`
}

// LogConfig is the logger configuration.
type LogConfig struct {
	Level string `koanf:"level"`
}

// Config is the detector configuration.
type Config struct {
	// Engine is "caffe" or "onnx".
	Engine string `koanf:"engine"`
	// Family selects the label vocabulary, "voc" or "coco".
	Family  string        `koanf:"family"`
	Input   InputConfig   `koanf:"input"`
	ONNX    ONNXConfig    `koanf:"onnx"`
	Display DisplayConfig `koanf:"display"`
	Render  RenderConfig  `koanf:"render"`
	Log     LogConfig     `koanf:"log"`
}

// Defaults returns the MobileNet-SSD settings.
func Defaults() map[string]any {
	return map[string]any{
		"engine":             "caffe",
		"family":             string(models.FamilyVOC),
		"input.width":        300,
		"input.height":       300,
		"input.scale":        0.007843,
		"input.mean":         127.5,
		"input.swaprb":       false,
		"onnx.library":       "",
		"onnx.input":         "data",
		"onnx.output":        "detection_out",
		"onnx.maxdetections": 100,
		"onnx.threads":       0,
		"onnx.provider":      "cpu",
		"onnx.device":        0,
		"display.window":     true,
		"display.title":      "Output",
		"display.output":     "",
		"render.thickness":   2,
		"render.fontscale":   0.5,
		"render.labeloffset": 15,
		"log.level":          "warn",
	}
}

// Load builds the configuration from the defaults, then the YAML file at
// filePath when it is not empty, then DETECT_* environment variables.
//
// Arguments:
//   - filePath: Optional path to a YAML configuration file.
//
// Returns:
//   - *Config: The validated configuration.
//   - error: An error if a source cannot be read or the result is invalid.
//
// Example:
//
// ```go
//
//	cfg, err := config.Load("detect.yaml")
//	if err != nil {
//		return err
//	}
//
// ```
func Load(filePath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	if filePath != "" {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", filePath)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.Input.Width <= 0 || c.Input.Height <= 0 {
		return errors.Errorf("invalid input size %dx%d", c.Input.Width, c.Input.Height)
	}
	if c.Input.Scale <= 0 {
		return errors.Errorf("invalid input scale %v", c.Input.Scale)
	}
	if c.ONNX.MaxDetections <= 0 {
		return errors.Errorf("invalid onnx.maxdetections %d", c.ONNX.MaxDetections)
	}
	if c.Render.Thickness <= 0 {
		return errors.Errorf("invalid render.thickness %d", c.Render.Thickness)
	}
	if _, err := models.Lookup(models.Family(c.Family)); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, "invalid log.level %q", c.Log.Level)
	}
	return nil
}

// ParseConfidence converts the confidence argument to a threshold. The value is
// not range checked: any number is a valid threshold.
//
// Arguments:
//   - s: The argument, e.g. "0.5".
//
// Returns:
//   - float32: The threshold.
//   - error: ErrInvalidConfidence if s is not a number.
func ParseConfidence(s string) (float32, error) {
	v, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfidence, "%q is not a number", s)
	}
	return float32(v), nil
}

// Verbose reports whether the -v argument enables the detected-class summary:
// any non-empty value does.
func Verbose(v string) bool {
	return v != ""
}
