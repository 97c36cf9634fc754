package pipeline

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-scroll/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// BindGroupLayoutDescriptors merges the vertex and fragment shaders' bind group layouts into the
// layouts the pipeline is created with. A binding declared by both stages gets both visibility
// bits. Bind groups for this pipeline must be created against these descriptors.
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: merged descriptors keyed by group index
func (p *pipeline) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	var vertex, fragment map[int]wgpu.BindGroupLayoutDescriptor
	if p.vertexShader != nil {
		vertex = p.vertexShader.BindGroupLayoutDescriptors()
	}
	if p.fragmentShader != nil {
		fragment = p.fragmentShader.BindGroupLayoutDescriptors()
	}
	return mergeBindGroupLayouts(vertex, fragment)
}

// BindGroupLayoutDescriptor returns the merged descriptor for one group.
//
// Parameters:
//   - group: the group index
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the merged descriptor
//   - bool: false if neither stage declares the group
func (p *pipeline) BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool) {
	desc, ok := p.BindGroupLayoutDescriptors()[group]
	return desc, ok
}

// GroupCount returns one more than the highest group index either stage declares.
func (p *pipeline) GroupCount() int {
	n := 0
	for g := range p.BindGroupLayoutDescriptors() {
		n = max(n, g+1)
	}
	return n
}

// Declarations returns the @oxy group and provider annotations of both stages, vertex first.
//
// Returns:
//   - []shader.Annotation: the declarations
func (p *pipeline) Declarations() []shader.Annotation {
	var out []shader.Annotation
	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		if s != nil {
			out = append(out, s.Declarations()...)
		}
	}
	return out
}

func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	entries := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	add := func(layouts map[int]wgpu.BindGroupLayoutDescriptor) {
		for g, desc := range layouts {
			if entries[g] == nil {
				entries[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := entries[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					e = existing
				}
				entries[g][e.Binding] = e
			}
		}
	}
	add(vertexLayouts)
	add(fragmentLayouts)

	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for g, byBinding := range entries {
		list := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
		for _, e := range byBinding {
			list = append(list, e)
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].Binding < list[j].Binding
		})
		merged[g] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return merged
}
