// Package models - Label vocabularies for pretrained detection networks.
package models

import "github.com/pkg/errors"

// Family identifies the dataset a pretrained network was trained on, which in turn
// fixes the label vocabulary its class ids index into.
type Family string

const (
	// FamilyVOC is the 20 Pascal VOC classes + background (Caffe MobileNet-SSD).
	FamilyVOC Family = "voc"
	// FamilyCOCO is the 80 COCO classes + background.
	FamilyCOCO Family = "coco"
)

// Families is a list of all supported vocabularies.
var Families = []Family{FamilyVOC, FamilyCOCO}

// Lookup returns the vocabulary registered for a family.
//
// Arguments:
//   - family: The dataset family of the network.
//
// Returns:
//   - Vocabulary: The label vocabulary.
//   - error: An error if the family is unknown.
func Lookup(family Family) (Vocabulary, error) {
	switch family {
	case FamilyVOC:
		return MobileNetSSD, nil
	case FamilyCOCO:
		return COCO, nil
	default:
		return Vocabulary{}, errors.Errorf("unsupported label family: %q (want one of %v)", family, Families)
	}
}
