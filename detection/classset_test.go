package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassSet(t *testing.T) {
	s := NewClassSet("person", "dog")
	s.Add("dog")
	s.Add("cat")

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has("cat"))
	assert.False(t, s.Has("horse"))
	assert.Equal(t, []string{"cat", "dog", "person"}, s.Sorted())
}

func TestClassSetString(t *testing.T) {
	assert.Equal(t, "set()", NewClassSet().String())
	assert.Equal(t, "{'cat'}", NewClassSet("cat").String())
	assert.Equal(t, "{'bottle', 'person'}", NewClassSet("person", "bottle").String())
}
