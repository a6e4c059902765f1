package widget

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dummy struct {
	Base
	name string
}

func (d *dummy) Name() string { return d.name }
func (d *dummy) Render(Input) (template.HTML, error) {
	return "<span>dummy</span>", nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&dummy{name: "d1"}))

	w, err := reg.Get("d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", w.Name())
	assert.True(t, reg.Has("d1"))
	assert.False(t, reg.Has("d2"))
}

func TestRegistryNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestRegistryRejectsDuplicatesAndNil(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&dummy{name: "d1"}))
	assert.Error(t, reg.Register(&dummy{name: "d1"}))
	assert.Error(t, reg.Register(nil))
	assert.Error(t, reg.Register(&dummy{}))
}

func TestBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"bar_chart", "donut_chart", "gauge", "info_grid", "table", "raw_html", "hierarchical_nav"} {
		assert.True(t, DefaultRegistry().Has(name), name)
	}
}

func TestNavigationCapabilityFlag(t *testing.T) {
	nav, err := DefaultRegistry().Get("hierarchical_nav")
	require.NoError(t, err)
	assert.True(t, nav.SuppliesNavigationData())

	chart, err := DefaultRegistry().Get("bar_chart")
	require.NoError(t, err)
	assert.False(t, chart.SuppliesNavigationData())
}
