package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetBasics(t *testing.T) {
	s := New("a", "b")
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))

	s.Add("c")
	assert.True(t, s.Has("c"))
}

func TestSortedStrings(t *testing.T) {
	s := New("chart.js", "leaflet.js", "d3.js")
	assert.Equal(t, []string{"chart.js", "d3.js", "leaflet.js"}, SortedStrings(s))
	assert.Empty(t, SortedStrings(New[string]()))
}
