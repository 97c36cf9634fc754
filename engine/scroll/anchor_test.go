package scroll

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		in   string
		want Anchor
	}{
		{"top bottom", Anchor{EdgeTop, EdgeBottom}},
		{"top top", Anchor{EdgeTop, EdgeTop}},
		{"  bottom   top ", Anchor{EdgeBottom, EdgeTop}},
		{"center center", Anchor{EdgeCenter, EdgeCenter}},
		{"Top Bottom", Anchor{EdgeTop, EdgeBottom}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAnchor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAnchorErrors(t *testing.T) {
	for _, in := range []string{"", "top", "top bottom left", "left top", "top 80%"} {
		_, err := ParseAnchor(in)
		assert.True(t, errors.Is(err, ErrInvalidAnchor), in)
	}
	assert.Panics(t, func() { MustParseAnchor("sideways") })
}

func TestAnchorString(t *testing.T) {
	assert.Equal(t, "bottom top", MustParseAnchor("bottom top").String())
}
