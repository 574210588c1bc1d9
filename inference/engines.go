// Package inference - Inference engine interface and implementations
package inference

import (
	"strings"

	"github.com/pkg/errors"
)

// EngineType is the type of the engine
type EngineType string

const (
	// EngineCaffe runs a Caffe prototxt/caffemodel pair through OpenCV's DNN module.
	EngineCaffe EngineType = "caffe"
	// EngineONNX runs an ONNX export of the network through the onnxruntime library.
	EngineONNX EngineType = "onnx"
)

// Engines is a list of all supported engines
var Engines = []EngineType{EngineCaffe, EngineONNX}

// ErrUnsupportedEngine is returned for an engine name that is not in Engines.
var ErrUnsupportedEngine = errors.New("unsupported engine")

// ParseEngineType resolves an engine name, case-insensitively.
//
// Arguments:
//   - name: The engine name, e.g. "caffe".
//
// Returns:
//   - EngineType: The engine type.
//   - error: ErrUnsupportedEngine if the name is unknown.
func ParseEngineType(name string) (EngineType, error) {
	t := EngineType(strings.ToLower(strings.TrimSpace(name)))
	for _, e := range Engines {
		if e == t {
			return t, nil
		}
	}
	return "", errors.Wrapf(ErrUnsupportedEngine, "%q (want one of %v)", name, Engines)
}
