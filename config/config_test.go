package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-scroll/engine/choreo"
	"github.com/Carmen-Shannon/oxy-scroll/engine/light"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPage(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, float32(55), c.Camera.FOV)
	pos := c.Camera.Position.Array()
	assert.InDeltaSlice(t, []float32{2, 1.4, 5}, pos[:], 1e-6)
	rot := c.Scene.Rotation.Array()
	assert.InDeltaSlice(t, []float32{0, 1.88, 0}, rot[:], 1e-6)
	assert.Len(t, c.Sections, 4)
	assert.Len(t, c.Bindings, 4)
	assert.Equal(t, choreo.DefaultEaseName, c.Ease)
}

func TestDefaultPageBuilds(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	lights, err := c.BuildLights()
	require.NoError(t, err)
	require.Len(t, lights, 2)
	assert.Equal(t, light.LightTypeAmbient, lights[0].Type())
	assert.Equal(t, float32(3), lights[0].Intensity())
	assert.Equal(t, [3]float32{0, 4, 0}, lights[1].Position())

	fields, err := c.BuildFields()
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, 200, fields[0].Count())
	assert.InDelta(t, 0.03, fields[0].Size(), 1e-6)

	blocks, err := c.Blocks()
	require.NoError(t, err)
	assert.Equal(t, scroll.Block{ID: "section-two", Height: scroll.Vh(100)}, blocks[1])

	sections, err := c.SectionDefs()
	require.NoError(t, err)
	assert.Equal(t, scroll.Section{
		Name:    "slide-four-exit",
		Trigger: "section-four",
		Start:   scroll.MustParseAnchor("top top"),
		End:     scroll.MustParseAnchor("bottom top"),
	}, sections[3])
}

func TestBindingConversion(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	b, err := c.Bindings[2].ToBinding(scroll.SectionHandle(2))
	require.NoError(t, err)
	assert.Equal(t, "slide-four", b.Name)
	assert.False(t, b.Position.Has(0))
	assert.True(t, b.Position.Has(1))
	assert.True(t, b.Position.Has(2))
	assert.InDelta(t, 3.1, b.Position.Value[1], 1e-6)
	assert.Equal(t, float32(-5), b.Position.Value[2])
	assert.True(t, b.LookAt.Empty())
	assert.NotNil(t, b.OnProgress)
	assert.Nil(t, b.Ease)

	b, err = BindingConfig{Section: "x", Ease: "sine.in"}.ToBinding(0)
	require.NoError(t, err)
	assert.NotNil(t, b.Ease)
	assert.Nil(t, b.OnProgress)
}

func TestParseOverridesDefaults(t *testing.T) {
	src := `
window: {width: 800, height: 600}
particles:
  - variant: fireflies
    count: 0
`
	c, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 800, c.Window.Width)
	assert.Equal(t, "oxy-scroll", c.Window.Title)
	require.Len(t, c.Particles, 1)

	fields, err := c.BuildFields()
	require.NoError(t, err)
	assert.Equal(t, 0, fields[0].Count())
}

func TestWindowAndRenderSettings(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 480, c.Window.MinWidth)
	assert.Equal(t, 0, c.Window.MaxWidth)
	assert.Equal(t, 4, c.Render.MSAA)
	assert.True(t, c.Render.VSyncEnabled())

	c, err = Parse(strings.NewReader("window: {max_width: 1920, max_height: 1080}\nrender: {msaa: 1, vsync: false}\n"))
	require.NoError(t, err)
	assert.Equal(t, 1920, c.Window.MaxWidth)
	assert.Equal(t, 1, c.Render.MSAA)
	assert.False(t, c.Render.VSyncEnabled())

	assert.True(t, RenderConfig{}.VSyncEnabled())

	_, err = Parse(strings.NewReader("window: {min_width: 900, max_width: 800}\nrender: {msaa: 2}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size limits")
	assert.Contains(t, err.Error(), "msaa")
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("windw: {width: 1}\n"))
	assert.Error(t, err)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	src := `
ease: wobble
lights:
  - type: spot
page:
  - {id: a, height: tall}
sections:
  - {name: s, trigger: a, start: top, end: top top}
bindings:
  - {section: missing}
`
	_, err := Parse(strings.NewReader(src))
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"ease", "lights[0]", "page[0]", "sections[0]", "bindings[0]"} {
		assert.Contains(t, msg, want)
	}
	assert.ErrorIs(t, err, choreo.ErrUnknownEase)
	assert.ErrorIs(t, err, scroll.ErrInvalidAnchor)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render: {fps: 30}\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, c.Render.FPS)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
