package pathtpl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveNoGroupDuplication(t *testing.T) {
	// Pattern already names the group: resolve against the export root.
	got := Resolve("taxon/{id}.html", "taxon", "1")
	assert.Equal(t, "taxon/1.html", got)
	assert.Equal(t, 1, strings.Count(got, "taxon"))
}

func TestResolveGroupByToken(t *testing.T) {
	assert.Equal(t, "plot/42.html", Resolve("{group_by}/{id}.html", "plot", "42"))
	assert.Equal(t, "shape/7.json", Resolve("{group}/{id}.json", "shape", "7"))
}

func TestResolveBarePatternNestsUnderGroup(t *testing.T) {
	// No group mention: artifact lands in the group's own subdirectory.
	assert.Equal(t, "taxon/1.html", Resolve("{id}.html", "taxon", "1"))
	assert.Equal(t, "plot/pages/3.html", Resolve("pages/{id}.html", "plot", "3"))
}

func TestResolveSanitizesID(t *testing.T) {
	got := Resolve("{id}.html", "taxon", "a/b\\c")
	assert.Equal(t, "taxon/a_b_c.html", got)
}

func TestResolveIndex(t *testing.T) {
	assert.Equal(t, "taxon/index.html", ResolveIndex("", "taxon"))
	assert.Equal(t, "taxon/index.html", ResolveIndex("taxon/index.html", "taxon"))
	assert.Equal(t, "plot/all.json", ResolveIndex("all.json", "plot"))
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 0, Depth("index.html"))
	assert.Equal(t, 1, Depth("taxon/1.html"))
	assert.Equal(t, 2, Depth("taxon/pages/1.html"))
	assert.Equal(t, 0, Depth(""))
}
