package scroll

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLayout wraps a Document and counts element lookups.
type countingLayout struct {
	*Document
	lookups int
}

func (c *countingLayout) Element(id string) (Rect, bool) {
	c.lookups++
	return c.Document.Element(id)
}

func threeSections(vh float32) *Document {
	return NewDocument(1280, vh,
		Block{ID: "one", Height: Vh(100)},
		Block{ID: "two", Height: Vh(100)},
		Block{ID: "three", Height: Vh(100)},
	)
}

func TestRegistryResolvesAnchors(t *testing.T) {
	r := NewRegistry(threeSections(800))
	enter := r.Register(Section{Name: "enter", Trigger: "two", Start: MustParseAnchor("top bottom"), End: MustParseAnchor("top top")})
	leave := r.Register(Section{Name: "leave", Trigger: "two", Start: MustParseAnchor("top top"), End: MustParseAnchor("bottom top")})
	mid := r.Register(Section{Name: "mid", Trigger: "two", Start: MustParseAnchor("center center"), End: MustParseAnchor("center center")})

	rng, err := r.Resolve(enter)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 0, End: 800}, rng)

	rng, err = r.Resolve(leave)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 800, End: 1600}, rng)

	rng, err = r.Resolve(mid)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 800, End: 800}, rng)
	assert.Equal(t, float32(0), rng.Width())
}

func TestRegistryResolveIsIdempotentAndLazy(t *testing.T) {
	layout := &countingLayout{Document: threeSections(800)}
	r := NewRegistry(layout)
	h := r.Register(Section{Name: "s", Trigger: "three", Start: MustParseAnchor("top bottom"), End: MustParseAnchor("bottom bottom")})
	assert.Equal(t, 0, layout.lookups)

	first, err := r.Resolve(h)
	require.NoError(t, err)
	second, err := r.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, layout.lookups)

	r.Invalidate()
	third, err := r.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Equal(t, 2, layout.lookups)
}

func TestRegistryReresolvesAfterResize(t *testing.T) {
	doc := threeSections(800)
	r := NewRegistry(doc)
	h := r.Register(Section{Name: "s", Trigger: "two", Start: MustParseAnchor("top bottom"), End: MustParseAnchor("bottom top")})

	before, err := r.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 0, End: 1600}, before)

	doc.Resize(1280, 1000)
	after, err := r.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 0, End: 2000}, after)
}

func TestRegistryMissingElement(t *testing.T) {
	r := NewRegistry(threeSections(800))
	h := r.Register(Section{Name: "ghost", Trigger: "nope", Start: MustParseAnchor("top bottom"), End: MustParseAnchor("top top")})

	_, err := r.Resolve(h)
	assert.True(t, errors.Is(err, ErrElementNotFound))
	assert.Contains(t, err.Error(), "ghost")

	_, err = r.Resolve(SectionHandle(42))
	assert.True(t, errors.Is(err, ErrUnknownSection))
}

func TestRegistryClampsInvertedRange(t *testing.T) {
	r := NewRegistry(threeSections(800))
	h := r.Register(Section{Name: "inv", Trigger: "two", Start: MustParseAnchor("bottom top"), End: MustParseAnchor("top top")})

	rng, err := r.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 1600, End: 1600}, rng)
}
