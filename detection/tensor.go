package detection

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// RowWidth is the number of values per detection: image id, class id,
// confidence, left, top, right, bottom.
const RowWidth = 7

// ErrMalformedOutput is returned when a detection tensor does not have the
// [1, 1, N, 7] layout of an SSD DetectionOutput layer.
var ErrMalformedOutput = errors.New("malformed detection output")

// RowsFromTensor decodes a detection output tensor into rows.
//
// The tensor must hold float32 values shaped [1, 1, N, 7] (as OpenCV DNN and
// Caffe emit) or [N, 7]. Rows whose image id is negative are padding written by
// the output layer when nothing was found and are skipped.
//
// Arguments:
//   - t: The output tensor.
//
// Returns:
//   - []Row: The decoded rows in tensor order.
//   - error: ErrMalformedOutput for an unexpected shape or dtype, ErrInvalidClassID for a
//     non-finite class id.
func RowsFromTensor(t tensor.Tensor) ([]Row, error) {
	if t.Dtype() != tensor.Float32 {
		return nil, errors.Wrapf(ErrMalformedOutput, "dtype %v, want float32", t.Dtype())
	}
	dense, ok := t.(*tensor.Dense)
	if !ok {
		return nil, errors.Wrapf(ErrMalformedOutput, "unsupported tensor type %T", t)
	}

	n, err := rowCount(dense.Shape())
	if err != nil {
		return nil, err
	}

	view := dense.ShallowClone()
	if err := view.Reshape(n, RowWidth); err != nil {
		return nil, errors.Wrapf(err, "failed to reshape detection output to %dx%d", n, RowWidth)
	}

	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		var v [RowWidth]float32
		for k := range v {
			x, err := view.At(i, k)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read detection %d", i)
			}
			v[k] = x.(float32)
		}

		if v[0] < 0 {
			continue
		}
		if math32.IsNaN(v[1]) || math32.IsInf(v[1], 0) {
			return nil, errors.Wrapf(ErrInvalidClassID, "row %d: class id %v", i, v[1])
		}

		rows = append(rows, Row{
			ClassID:    int(v[1]),
			Confidence: v[2],
			Box:        [4]float32{v[3], v[4], v[5], v[6]},
		})
	}

	return rows, nil
}

// RowsFromFloats decodes a flat [1, 1, N, 7] detection output.
//
// Arguments:
//   - data: The output values; its length must be a multiple of RowWidth.
//
// Returns:
//   - []Row: The decoded rows.
//   - error: ErrMalformedOutput if the length does not divide into rows.
func RowsFromFloats(data []float32) ([]Row, error) {
	if len(data)%RowWidth != 0 {
		return nil, errors.Wrapf(ErrMalformedOutput, "%d values is not a multiple of %d", len(data), RowWidth)
	}
	if len(data) == 0 {
		return nil, nil
	}

	t := tensor.New(
		tensor.WithShape(1, 1, len(data)/RowWidth, RowWidth),
		tensor.WithBacking(data),
	)
	return RowsFromTensor(t)
}

func rowCount(shape tensor.Shape) (int, error) {
	switch {
	case len(shape) == 4 && shape[0] == 1 && shape[1] == 1 && shape[3] == RowWidth:
		return shape[2], nil
	case len(shape) == 2 && shape[1] == RowWidth:
		return shape[0], nil
	default:
		return 0, errors.Wrapf(ErrMalformedOutput, "shape %v", shape)
	}
}
