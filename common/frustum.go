package common

import (
	"github.com/chewxy/math32"
)

// Plane is the plane Normal·p + Distance = 0. Points with a positive value are on the inside.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum holds the six inward-facing planes of a camera's view volume, used to skip drawing
// objects that cannot be on screen.
type Frustum struct {
	Planes [6]Plane // left, right, bottom, top, near, far
}

// FrustumFromMatrix extracts the frustum planes of a column-major view-projection matrix with
// the Gribb/Hartmann method, using WebGPU's [0, 1] clip depth for the near plane.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - vp: the view-projection matrix
//
// Returns:
//   - Frustum: the normalized planes
func FrustumFromMatrix(vp [16]float32) Frustum {
	// row(i) of a column-major matrix is (m[i], m[4+i], m[8+i], m[12+i])
	row := func(i int) [4]float32 {
		return [4]float32{vp[i], vp[4+i], vp[8+i], vp[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	combos := [6][4]float32{}
	for c := range 4 {
		combos[0][c] = r3[c] + r0[c]
		combos[1][c] = r3[c] - r0[c]
		combos[2][c] = r3[c] + r1[c]
		combos[3][c] = r3[c] - r1[c]
		combos[4][c] = r2[c]
		combos[5][c] = r3[c] - r2[c]
	}

	var f Frustum
	for i, c := range combos {
		p := Plane{Normal: [3]float32{c[0], c[1], c[2]}, Distance: c[3]}
		if l := math32.Sqrt(Dot3(p.Normal, p.Normal)); l > 0 {
			p.Normal = [3]float32{p.Normal[0] / l, p.Normal[1] / l, p.Normal[2] / l}
			p.Distance /= l
		}
		f.Planes[i] = p
	}
	return f
}

// IntersectsBox reports whether an axis-aligned box is at least partly inside the frustum.
// It is conservative: boxes near a frustum corner may be reported visible.
//
// Parameters:
//   - bmin: the box's minimum corner
//   - bmax: the box's maximum corner
//
// Returns:
//   - bool: false only if the box is entirely outside one plane
func (f *Frustum) IntersectsBox(bmin, bmax [3]float32) bool {
	for _, p := range f.Planes {
		// the corner furthest along the plane normal
		var v [3]float32
		for a := range 3 {
			if p.Normal[a] >= 0 {
				v[a] = bmax[a]
			} else {
				v[a] = bmin[a]
			}
		}
		if Dot3(p.Normal, v)+p.Distance < 0 {
			return false
		}
	}
	return true
}

// TransformBox returns the axis-aligned box enclosing a local box after an affine transform.
//
// Parameters:
//   - m: column-major transform
//   - bmin: local minimum corner
//   - bmax: local maximum corner
//
// Returns:
//   - [3]float32: transformed minimum corner
//   - [3]float32: transformed maximum corner
func TransformBox(m []float32, bmin, bmax [3]float32) ([3]float32, [3]float32) {
	var outMin, outMax [3]float32
	for i := range 8 {
		corner := bmin
		if i&1 != 0 {
			corner[0] = bmax[0]
		}
		if i&2 != 0 {
			corner[1] = bmax[1]
		}
		if i&4 != 0 {
			corner[2] = bmax[2]
		}
		p := TransformPoint(m, corner)
		if i == 0 {
			outMin, outMax = p, p
			continue
		}
		for a := range 3 {
			outMin[a] = min(outMin[a], p[a])
			outMax[a] = max(outMax[a], p[a])
		}
	}
	return outMin, outMax
}
