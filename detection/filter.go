package detection

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-query-detect/models"
)

// ErrInvalidClassID is returned when a row's class id has no entry in the
// vocabulary. It means the network and vocabulary do not belong together.
var ErrInvalidClassID = errors.New("invalid class id")

// Filter turns raw detection rows into the detections matching a query label.
//
// Rows are visited in the given order and every qualifying row is kept. A row
// counts when its confidence is strictly greater than threshold; its class name is
// then recorded in the result's class set, and if the name equals query exactly
// (case-sensitive) the row is scaled to pixels and accepted with its confidence
// expressed as a percentage. Confidences are compared at float32 precision, the
// precision the network emits them in.
//
// Filter is pure: it has no side effects and equal inputs give equal outputs.
//
// Arguments:
//   - rows: The network output, possibly empty.
//   - vocab: The label vocabulary the network was trained with.
//   - threshold: Minimum (exclusive) confidence. Not validated.
//   - query: The class name to accept.
//   - width: The image width in pixels.
//   - height: The image height in pixels.
//
// Returns:
//   - Result: The accepted detections and the set of classes above threshold.
//   - error: ErrInvalidClassID if any row's class id is outside the vocabulary.
//
// Example:
//
// ```go
//
//	vocab := models.NewVocabulary(models.FamilyVOC, "background", "cat", "dog")
//	rows := []Row{{ClassID: 1, Confidence: 0.9, Box: [4]float32{0.1, 0.1, 0.5, 0.5}}}
//	res, _ := Filter(rows, vocab, 0.5, "cat", 200, 100)
//	// res.Accepted[0]: Label "cat", Confidence 90, Box {20 10 100 50}
//
// ```
func Filter(rows []Row, vocab models.Vocabulary, threshold float32, query string, width, height int) (Result, error) {
	res := Result{Classes: NewClassSet()}

	for i, row := range rows {
		name, err := vocab.Name(row.ClassID)
		if err != nil {
			return Result{}, errors.Wrapf(ErrInvalidClassID, "row %d: %v", i, err)
		}

		// NaN confidences never pass.
		if !(row.Confidence > threshold) {
			continue
		}
		res.Classes.Add(name)

		if name != query {
			continue
		}
		res.Accepted = append(res.Accepted, Accepted{
			ClassID:    row.ClassID,
			Label:      name,
			Confidence: row.Confidence * 100,
			Box:        row.Scale(width, height),
		})
	}

	return res, nil
}
