package light

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// MaxGPULights is the number of non-ambient lights the lit shader evaluates.
// Additional lights are ignored by PackLights.
const MaxGPULights = 8

// GPULightsSource is the canonical WGSL definition of the Light and Lights structs.
//
//go:embed assets/lights.wgsl
var GPULightsSource string

// GPULight is the GPU-aligned representation of a single light source.
// Size: 48 bytes.
type GPULight struct {
	Position   [3]float32 // offset  0
	LightType  uint32     // offset 12: 1 = directional, 2 = point
	Color      [3]float32 // offset 16
	Intensity  float32    // offset 28
	Direction  [3]float32 // offset 32
	LightRange float32    // offset 44
}

// GPULights is the uniform block consumed by the lit mesh shader.
// Size: 16 + MaxGPULights*48 bytes.
type GPULights struct {
	Ambient [3]float32 // offset 0: summed ambient colour * intensity
	Count   uint32     // offset 12: number of valid entries in Lights
	Lights  [MaxGPULights]GPULight
}

// GPULightsSize is the byte size of a marshaled GPULights block.
const GPULightsSize = 16 + MaxGPULights*48

// PackLights folds ambient lights into a single colour term and packs the remaining enabled
// lights into a GPULights block.
//
// Parameters:
//   - lights: the scene's lights
//
// Returns:
//   - GPULights: the packed uniform block
func PackLights(lights []Light) GPULights {
	var out GPULights
	for _, l := range lights {
		if !l.Enabled() {
			continue
		}
		c := l.Color()
		if l.Type() == LightTypeAmbient {
			for i := range 3 {
				out.Ambient[i] += c[i] * l.Intensity()
			}
			continue
		}
		if out.Count >= MaxGPULights {
			continue
		}
		out.Lights[out.Count] = GPULight{
			Position:   l.Position(),
			LightType:  uint32(l.Type()),
			Color:      c,
			Intensity:  l.Intensity(),
			Direction:  l.Direction(),
			LightRange: l.Range(),
		}
		out.Count++
	}
	return out
}

// Marshal serializes the GPULights block into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: GPULightsSize bytes ready for GPU upload
func (g *GPULights) Marshal() []byte {
	buf := make([]byte, GPULightsSize)
	putVec3(buf[0:], g.Ambient)
	binary.LittleEndian.PutUint32(buf[12:], g.Count)
	for i, l := range g.Lights {
		o := 16 + i*48
		putVec3(buf[o:], l.Position)
		binary.LittleEndian.PutUint32(buf[o+12:], l.LightType)
		putVec3(buf[o+16:], l.Color)
		binary.LittleEndian.PutUint32(buf[o+28:], math.Float32bits(l.Intensity))
		putVec3(buf[o+32:], l.Direction)
		binary.LittleEndian.PutUint32(buf[o+44:], math.Float32bits(l.LightRange))
	}
	return buf
}

func putVec3(buf []byte, v [3]float32) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v[i]))
	}
}
