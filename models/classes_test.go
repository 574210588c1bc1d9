package models

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMobileNetSSDVocabulary(t *testing.T) {
	assert.Equal(t, 21, MobileNetSSD.Len())
	assert.Equal(t, FamilyVOC, MobileNetSSD.Family())

	name, err := MobileNetSSD.Name(0)
	require.NoError(t, err)
	assert.Equal(t, "background", name)

	name, err = MobileNetSSD.Name(20)
	require.NoError(t, err)
	assert.Equal(t, "tvmonitor", name)

	idx, ok := MobileNetSSD.Index("person")
	assert.True(t, ok)
	assert.Equal(t, 15, idx)
}

func TestCOCOVocabulary(t *testing.T) {
	assert.Equal(t, 81, COCO.Len())
	name, err := COCO.Name(1)
	require.NoError(t, err)
	assert.Equal(t, "person", name)
}

func TestVocabularyNameOutOfRange(t *testing.T) {
	v := NewVocabulary(FamilyVOC, "background", "cat", "dog")

	for _, id := range []int{-1, 3, 100} {
		_, err := v.Name(id)
		assert.Truef(t, errors.Is(err, ErrClassOutOfRange), "id %d: got %v", id, err)
	}
}

func TestVocabularyIsImmutable(t *testing.T) {
	names := []string{"background", "cat", "dog"}
	v := NewVocabulary(FamilyVOC, names...)

	names[1] = "tiger"
	got := v.Names()
	got[2] = "wolf"

	assert.Equal(t, []string{"background", "cat", "dog"}, v.Names())
	_, ok := v.Index("cat")
	assert.True(t, ok)
	_, ok = v.Index("tiger")
	assert.False(t, ok)
}

func TestVocabularyDuplicateNamesKeepFirstIndex(t *testing.T) {
	v := NewVocabulary(FamilyVOC, "background", "cat", "cat")
	idx, ok := v.Index("cat")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		family  Family
		length  int
		wantErr bool
	}{
		{FamilyVOC, 21, false},
		{FamilyCOCO, 81, false},
		{Family("imagenet"), 0, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			v, err := Lookup(tt.family)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.length, v.Len())
		})
	}
}

func TestLookupEveryFamily(t *testing.T) {
	for _, family := range Families {
		v, err := Lookup(family)
		require.NoError(t, err)
		assert.Equal(t, family, v.Family())
	}

	_, err := Lookup("imagenet")
	assert.ErrorContains(t, err, "want one of [voc coco]")
}
