package renderer

import (
	"errors"
	"fmt"
)

// ErrUnsupportedSampleCount is returned for an MSAA sample count the renderer cannot configure.
var ErrUnsupportedSampleCount = errors.New("unsupported MSAA sample count")

// RendererBackendType selects the GPU API behind a Renderer. WebGPU is the only one.
type RendererBackendType int

const (
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how finished frames reach the display.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank. No tearing; frame rate capped at the refresh rate.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately and may tear.
	PresentModeUncapped
)

// PresentModeFor maps a vsync setting to a PresentMode.
func PresentModeFor(vsync bool) PresentMode {
	if vsync {
		return PresentModeVSync
	}
	return PresentModeUncapped
}

// MSAASampleCount is the number of samples per pixel of the main colour and depth targets.
// WebGPU guarantees 1 and 4; 8 and 16 depend on the adapter.
type MSAASampleCount uint32

const (
	MSAAOff MSAASampleCount = 1
	MSAA4x  MSAASampleCount = 4 // default
	MSAA8x  MSAASampleCount = 8
	MSAA16x MSAASampleCount = 16
)

// SampleCountFor converts a configured sample count. Zero selects the default (MSAA4x).
//
// Parameters:
//   - n: 0, 1, 4, 8 or 16
//
// Returns:
//   - MSAASampleCount: the sample count
//   - error: ErrUnsupportedSampleCount for any other value
func SampleCountFor(n int) (MSAASampleCount, error) {
	switch n {
	case 0:
		return MSAA4x, nil
	case 1:
		return MSAAOff, nil
	case 4:
		return MSAA4x, nil
	case 8:
		return MSAA8x, nil
	case 16:
		return MSAA16x, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedSampleCount, n)
}

// RendererBackend is the API-specific half of a Renderer.
type RendererBackend interface {
	wgpuRendererBackend
}
