package models

import (
	"github.com/pkg/errors"
)

// ErrClassOutOfRange is returned when a class id has no entry in a vocabulary.
var ErrClassOutOfRange = errors.New("class id out of range")

// Vocabulary is an ordered, immutable list of class names indexed by the integer
// class id a network emits.
type Vocabulary struct {
	family Family
	names  []string
	// nameToIdx for fast lookup by name
	nameToIdx map[string]int
}

// NewVocabulary builds a vocabulary from names in class id order.
//
// Arguments:
//   - family: The dataset family the names belong to.
//   - names: The class names, index 0 first.
//
// Returns:
//   - Vocabulary: The vocabulary. The names slice is copied.
func NewVocabulary(family Family, names ...string) Vocabulary {
	v := Vocabulary{
		family:    family,
		names:     append([]string(nil), names...),
		nameToIdx: make(map[string]int, len(names)),
	}
	for i, name := range v.names {
		if _, ok := v.nameToIdx[name]; !ok {
			v.nameToIdx[name] = i
		}
	}
	return v
}

// Family returns the dataset family of the vocabulary.
func (v Vocabulary) Family() Family {
	return v.family
}

// Len returns the number of classes, background included.
func (v Vocabulary) Len() int {
	return len(v.names)
}

// Name returns the class name for a class id.
//
// Arguments:
//   - id: The class id emitted by the network.
//
// Returns:
//   - string: The class name.
//   - error: ErrClassOutOfRange if the id has no entry.
func (v Vocabulary) Name(id int) (string, error) {
	if id < 0 || id >= len(v.names) {
		return "", errors.Wrapf(ErrClassOutOfRange, "index %d, %d classes in %q", id, len(v.names), v.family)
	}
	return v.names[id], nil
}

// Index returns the class id of the first entry named name.
func (v Vocabulary) Index(name string) (int, bool) {
	idx, ok := v.nameToIdx[name]
	return idx, ok
}

// Names returns a copy of the class names in id order.
func (v Vocabulary) Names() []string {
	return append([]string(nil), v.names...)
}

// MobileNetSSD is the label set the Caffe MobileNet-SSD network was trained on:
// the 20 Pascal VOC classes with "background" at index 0.
var MobileNetSSD = NewVocabulary(FamilyVOC,
	"background", "aeroplane", "bicycle", "bird", "boat",
	"bottle", "bus", "car", "cat", "chair", "cow", "diningtable",
	"dog", "horse", "motorbike", "person", "pottedplant", "sheep",
	"sofa", "train", "tvmonitor",
)

// COCO is the full 80 COCO classes plus "__background__" at index 0, for SSD
// exports trained on COCO.
var COCO = NewVocabulary(FamilyCOCO,
	"__background__", "person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat", "dog", "horse", "sheep",
	"cow", "elephant", "bear", "zebra", "giraffe", "backpack", "umbrella", "handbag", "tie", "suitcase",
	"frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple", "sandwich",
	"orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair", "couch", "potted plant",
	"bed", "dining table", "toilet", "tv", "laptop", "mouse", "remote", "keyboard", "cell phone", "microwave",
	"oven", "toaster", "sink", "refrigerator", "book", "clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
)
