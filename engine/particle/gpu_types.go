package particle

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUParticleTypesSource is the canonical WGSL definition of the Particle and FieldGlobals structs.
//
//go:embed assets/particle_types.wgsl
var GPUParticleTypesSource string

// GPUParticle is one entry of a field's instance storage buffer.
// Size: 16 bytes.
type GPUParticle struct {
	Position [3]float32 // offset  0: model-space position
	Scale    float32    // offset 12: per-point scale (1 for static fields)
}

// GPUFieldGlobals is the per-field uniform shared by every point of a field.
// Size: 96 bytes.
type GPUFieldGlobals struct {
	Model     [16]float32 // offset  0: field transform (root rotation * field rotation)
	Color     [3]float32  // offset 64
	PointSize float32     // offset 76: world-space point size (WGSL: size)
	Time      float32     // offset 80: shared elapsed time in seconds
	Variant   uint32      // offset 84: 0 = static, 1 = firefly
	_pad      [2]float32  // offset 88
}

// Size returns the size of the GPUFieldGlobals struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUFieldGlobals) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFieldGlobals struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload
func (g *GPUFieldGlobals) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Color[i]))
	}
	binary.LittleEndian.PutUint32(buf[76:], math.Float32bits(g.PointSize))
	binary.LittleEndian.PutUint32(buf[80:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[84:], g.Variant)
	return buf
}

// MarshalParticles serializes an instance list into a byte buffer suitable for GPU upload.
//
// Parameters:
//   - particles: the instance list
//
// Returns:
//   - []byte: 16 bytes per particle
func MarshalParticles(particles []GPUParticle) []byte {
	buf := make([]byte, len(particles)*16)
	for i, p := range particles {
		o := i * 16
		for c := range 3 {
			binary.LittleEndian.PutUint32(buf[o+c*4:], math.Float32bits(p.Position[c]))
		}
		binary.LittleEndian.PutUint32(buf[o+12:], math.Float32bits(p.Scale))
	}
	return buf
}
