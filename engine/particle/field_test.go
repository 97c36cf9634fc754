package particle

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-scroll/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyField(t *testing.T) {
	for _, v := range []Variant{VariantStatic, VariantFirefly} {
		t.Run(v.String(), func(t *testing.T) {
			f, err := NewField(v, WithCount(0))
			require.NoError(t, err)

			assert.Equal(t, 0, f.Count())
			assert.Empty(t, f.Positions())
			assert.Empty(t, f.Scales())
			assert.Empty(t, f.Instances())
			assert.Empty(t, MarshalParticles(f.Instances()))

			var id [16]float32
			common.Identity(id[:])
			assert.NotPanics(t, func() {
				f.Update(3)
				_ = f.Globals(id)
			})
		})
	}
}

func TestStaticFieldDefaults(t *testing.T) {
	f, err := NewField(VariantStatic)
	require.NoError(t, err)

	assert.Equal(t, 200, f.Count())
	assert.Nil(t, f.Scales())
	assert.Equal(t, float32(0.03), f.Size())
	for _, p := range f.Positions() {
		assert.GreaterOrEqual(t, p[0], float32(-5))
		assert.Less(t, p[0], float32(5))
		assert.GreaterOrEqual(t, p[1], float32(0))
		assert.Less(t, p[1], float32(10))
		assert.GreaterOrEqual(t, p[2], float32(-5))
		assert.Less(t, p[2], float32(5))
	}
}

func TestStaticFieldRotatesWithElapsedTime(t *testing.T) {
	f, err := NewField(VariantStatic, WithCount(10))
	require.NoError(t, err)

	before := append([][3]float32(nil), f.Positions()...)
	f.Update(20)

	assert.InDelta(t, 1.0, f.Rotation()[0], 1e-6)
	assert.Equal(t, float32(0), f.Rotation()[1])
	assert.Equal(t, before, f.Positions())
}

func TestFireflyScalesAreImmutable(t *testing.T) {
	f, err := NewField(VariantFirefly, WithCount(500), WithScaleRange(0.5, 2))
	require.NoError(t, err)
	require.Len(t, f.Scales(), 500)

	scales := append([]float32(nil), f.Scales()...)
	for _, s := range scales {
		assert.GreaterOrEqual(t, s, float32(0.5))
		assert.Less(t, s, float32(2))
	}

	f.Update(1.5)
	f.Update(7.25)
	assert.Equal(t, float32(7.25), f.Time())
	assert.Equal(t, scales, f.Scales())
	assert.Equal(t, [3]float32{}, f.Rotation())

	inst := f.Instances()
	assert.Equal(t, scales[42], inst[42].Scale)
}

func TestGenerationIsDeterministicAcrossWorkerCounts(t *testing.T) {
	a, err := NewField(VariantFirefly, WithCount(10_000), WithSeed(7), WithChunkSize(512), WithWorkers(1))
	require.NoError(t, err)
	b, err := NewField(VariantFirefly, WithCount(10_000), WithSeed(7), WithChunkSize(512), WithWorkers(8))
	require.NoError(t, err)
	c, err := NewField(VariantFirefly, WithCount(10_000), WithSeed(8), WithChunkSize(512))
	require.NoError(t, err)

	assert.Equal(t, a.Positions(), b.Positions())
	assert.Equal(t, a.Scales(), b.Scales())
	assert.NotEqual(t, a.Positions(), c.Positions())
}

func TestNewFieldValidation(t *testing.T) {
	_, err := NewField(VariantStatic, WithCount(-1))
	assert.Error(t, err)

	_, err = NewField(VariantStatic, WithBounds([3]float32{1, 0, 0}, [3]float32{0, 1, 1}))
	assert.Error(t, err)

	_, err = NewField(Variant(9))
	assert.True(t, errors.Is(err, ErrUnknownVariant))
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("fireflies")
	require.NoError(t, err)
	assert.Equal(t, VariantFirefly, v)

	v, err = ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, VariantStatic, v)

	_, err = ParseVariant("smoke")
	assert.True(t, errors.Is(err, ErrUnknownVariant))
}

func TestGlobalsMarshal(t *testing.T) {
	f, err := NewField(VariantFirefly, WithCount(1))
	require.NoError(t, err)
	f.Update(2)

	var id [16]float32
	common.Identity(id[:])
	g := f.Globals(id)
	assert.Equal(t, float32(2), g.Time)
	assert.Equal(t, uint32(VariantFirefly), g.Variant)
	assert.Equal(t, 96, g.Size())
	assert.Len(t, g.Marshal(), 96)
}

func TestGlobalsMarshalLayout(t *testing.T) {
	f, err := NewField(VariantStatic, WithCount(1), WithSize(0.25), WithColor([3]float32{1, 0.5, 0}))
	require.NoError(t, err)
	f.Update(1.5)

	var id [16]float32
	common.Identity(id[:])
	g := f.Globals(id)
	require.Equal(t, float32(0.25), g.PointSize)

	buf := g.Marshal()
	word := func(off int) uint32 { return binary.LittleEndian.Uint32(buf[off:]) }
	assert.Equal(t, math.Float32bits(g.Model[0]), word(0))
	assert.Equal(t, math.Float32bits(1), word(64))
	assert.Equal(t, math.Float32bits(0.5), word(68))
	assert.Equal(t, math.Float32bits(0.25), word(76))
	assert.Equal(t, math.Float32bits(1.5), word(80))
	assert.Equal(t, uint32(VariantStatic), word(84))
}
