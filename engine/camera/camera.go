package camera

import (
	"github.com/Carmen-Shannon/oxy-scroll/common"
	"github.com/chewxy/math32"
)

type cameraImpl struct {
	up        [3]float32
	position  [3]float32
	direction [3]float32
	target    [3]float32
	hasTarget bool

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32
}

// Camera is a perspective camera described by a position and a facing direction.
//
// Moving the camera keeps its facing direction; only LookAt re-orients it. The camera is
// plain data owned by the scene and is not safe for concurrent use.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - [3]float32: the camera position
	Position() [3]float32

	// SetPosition moves the camera without changing the direction it faces.
	//
	// Parameters:
	//   - p: the new world-space position
	SetPosition(p [3]float32)

	// Direction returns the unit vector the camera is facing.
	//
	// Returns:
	//   - [3]float32: the facing direction
	Direction() [3]float32

	// LookAt orients the camera toward a world-space point from its current position and
	// records that point as the look-at target.
	//
	// Parameters:
	//   - target: the point to face
	LookAt(target [3]float32)

	// Target returns the last point passed to LookAt.
	//
	// Returns:
	//   - [3]float32: the look-at point
	//   - bool: false if LookAt has never been called
	Target() ([3]float32, bool)

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - [3]float32: up vector
	Up() [3]float32

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// SetFov sets the vertical field of view in radians and recomputes the projection.
	SetFov(fov float32)

	// SetAspect sets the aspect ratio and recomputes the projection.
	// Non-positive values are ignored (a minimised window reports a zero height).
	SetAspect(aspect float32)

	// ViewMatrix returns the current 4x4 view matrix (column-major).
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix (column-major).
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the combined view-projection matrix (column-major).
	ViewProjectionMatrix() [16]float32

	// Uniform returns the GPU representation of the camera for the current frame.
	//
	// Returns:
	//   - GPUCameraUniform: view-projection, view matrix and position
	Uniform() GPUCameraUniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera. Defaults match a three.js PerspectiveCamera: fov 50 degrees,
// near 0.1, far 2000, positioned at the origin looking down -Z.
//
// Parameters:
//   - options: variadic list of CameraBuilderOption functions to configure the camera
//
// Returns:
//   - Camera: the newly created camera instance
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		up:        [3]float32{0, 1, 0},
		direction: [3]float32{0, 0, -1},
		fov:       50 * math32.Pi / 180,
		aspect:    16.0 / 9.0,
		near:      0.1,
		far:       2000,
	}

	for _, opt := range options {
		opt(c)
	}

	if c.hasTarget {
		c.direction = [3]float32{0, 0, -1}
		if dir := common.Normalize3(common.Sub3(c.target, c.position)); dir != ([3]float32{}) {
			c.direction = dir
		}
	}

	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() [3]float32 {
	return c.position
}

func (c *cameraImpl) SetPosition(p [3]float32) {
	c.position = p
	c.updateView()
}

func (c *cameraImpl) Direction() [3]float32 {
	return c.direction
}

func (c *cameraImpl) LookAt(target [3]float32) {
	c.target = target
	c.hasTarget = true
	dir := common.Normalize3(common.Sub3(target, c.position))
	if dir != ([3]float32{}) {
		c.direction = dir
	}
	c.updateView()
}

func (c *cameraImpl) Target() ([3]float32, bool) {
	return c.target, c.hasTarget
}

func (c *cameraImpl) Up() [3]float32 {
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	return c.near
}

func (c *cameraImpl) Far() float32 {
	return c.far
}

func (c *cameraImpl) SetFov(fov float32) {
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 || math32.IsInf(aspect, 0) || math32.IsNaN(aspect) {
		return
	}
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	return GPUCameraUniform{
		ViewProj:       c.viewProjectionMatrix,
		View:           c.viewMatrix,
		CameraPosition: c.position,
	}
}

// updateMatrices recomputes the projection and then the view-dependent matrices.
func (c *cameraImpl) updateMatrices() {
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	c.updateView()
}

// updateView recomputes the view and view-projection matrices from position and direction.
func (c *cameraImpl) updateView() {
	center := common.Add3(c.position, c.direction)
	common.LookAt(c.viewMatrix[:], c.position, center, c.up)
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
