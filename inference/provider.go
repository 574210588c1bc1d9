package inference

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// Provider is an onnxruntime execution provider.
type Provider string

const (
	// ProviderCPU is the default provider; it needs no configuration.
	ProviderCPU Provider = "cpu"
	// ProviderCUDA runs on an NVIDIA GPU.
	ProviderCUDA Provider = "cuda"
	// ProviderCoreML runs on Apple's CoreML.
	ProviderCoreML Provider = "coreml"
	// ProviderOpenVINO runs on Intel's OpenVINO.
	ProviderOpenVINO Provider = "openvino"
)

// Providers is a list of all supported execution providers.
var Providers = []Provider{ProviderCPU, ProviderCUDA, ProviderCoreML, ProviderOpenVINO}

// ParseProvider resolves a provider name, case-insensitively. An empty name is ProviderCPU.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if p == "" {
		return ProviderCPU, nil
	}
	for _, known := range Providers {
		if known == p {
			return p, nil
		}
	}
	return "", errors.Errorf("unsupported execution provider %q (want one of %v)", name, Providers)
}

// applyProvider appends the provider to the session options. A provider the
// onnxruntime build lacks is logged and the session falls back to the CPU.
//
// Arguments:
//   - options: The session options.
//   - p: The execution provider.
//   - device: The device id for GPU providers.
//   - logger: The logger.
//
// Returns:
//   - error: An error if the provider name is unknown.
func applyProvider(options *ort.SessionOptions, p Provider, device int, logger *zap.Logger) error {
	var err error
	switch p {
	case ProviderCPU, "":
		return nil
	case ProviderCUDA:
		err = appendCUDA(options, device)
	case ProviderCoreML:
		err = options.AppendExecutionProviderCoreML(0)
	case ProviderOpenVINO:
		err = options.AppendExecutionProviderOpenVINO(map[string]string{})
	default:
		return errors.Errorf("unsupported execution provider %q", p)
	}

	if err != nil {
		logger.Warn("execution provider unavailable, using cpu",
			zap.String("provider", string(p)),
			zap.Error(err),
		)
	}
	return nil
}

func appendCUDA(options *ort.SessionOptions, device int) error {
	cuda, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return err
	}
	defer cuda.Destroy()

	if err := cuda.Update(map[string]string{"device_id": strconv.Itoa(device)}); err != nil {
		return err
	}
	return options.AppendExecutionProviderCUDA(cuda)
}
