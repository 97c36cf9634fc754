package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scroll/common"
	"github.com/Carmen-Shannon/oxy-scroll/engine/camera"
	"github.com/Carmen-Shannon/oxy-scroll/engine/particle"
	"github.com/Carmen-Shannon/oxy-scroll/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scene"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scroll"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	frames  int
	cameraX []float32
	times   []float32
	err     error
	width   int
	height  int
}

func (r *fakeRenderer) RenderFrame(s scene.Scene) error {
	if r.err != nil {
		return r.err
	}
	r.frames++
	r.cameraX = append(r.cameraX, s.Camera().Position()[0])
	if fields := s.Fields(); len(fields) > 0 {
		r.times = append(r.times, fields[0].Time())
	}
	return nil
}

func (r *fakeRenderer) Resize(width, height int) {
	r.width, r.height = width, height
}

// fakeWindow reports a fixed framebuffer size and blocks in ProcessMessages until closed.
type fakeWindow struct {
	width, height int
	closed        chan struct{}
	once          sync.Once
}

func newFakeWindow(width, height int) *fakeWindow {
	return &fakeWindow{width: width, height: height, closed: make(chan struct{})}
}

func (w *fakeWindow) SetResizeCallback(func(width, height int))  {}
func (w *fakeWindow) SetScrollCallback(func(delta float32))      {}
func (w *fakeWindow) SetKeyDownCallback(func(keyCode uint32))    {}
func (w *fakeWindow) SetKeyUpCallback(func(keyCode uint32))      {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) Close() error                               { return nil }
func (w *fakeWindow) Width() int                                 { return w.width }
func (w *fakeWindow) Height() int                                { return w.height }
func (w *fakeWindow) ProcessMessages()                           { <-w.closed }

func (w *fakeWindow) IsRunning() bool {
	select {
	case <-w.closed:
		return false
	default:
		return true
	}
}

func (w *fakeWindow) RequestClose() {
	w.once.Do(func() { close(w.closed) })
}

func quietProfiler() *profiler.Profiler {
	return profiler.NewProfiler(profiler.WithoutProcessStats(), profiler.WithLogf(func(string, ...any) {}))
}

func newTestEngine(t *testing.T, opts ...EngineBuilderOption) (*engine, *fakeRenderer) {
	t.Helper()
	r := &fakeRenderer{}
	opts = append([]EngineBuilderOption{WithRenderer(r), WithProfiler(quietProfiler())}, opts...)
	return NewEngine(opts...).(*engine), r
}

func TestFrameAdvancesFieldsBeforeRendering(t *testing.T) {
	field, err := particle.NewField(particle.VariantFirefly, particle.WithCount(3))
	require.NoError(t, err)
	s := scene.NewScene(scene.WithFields(field))

	var hookTime float32
	e, r := newTestEngine(t, WithScene(s), WithFrameHooks(FrameHookFunc(func(el float32) { hookTime = el })))

	require.NoError(t, e.frame(2*time.Second, time.Second/60))
	assert.Equal(t, float32(2), field.Time())
	assert.Equal(t, float32(2), hookTime)
	assert.Equal(t, []float32{2}, r.times)
	assert.Equal(t, uint64(1), e.Frames())
}

func TestFramePanicIsRecoveredAndSkipped(t *testing.T) {
	panics := 1
	hook := FrameHookFunc(func(float32) {
		if panics > 0 {
			panics--
			panic("look-at exploded")
		}
	})
	e, r := newTestEngine(t, WithFrameHooks(hook))

	err := e.frame(time.Second, time.Second/60)
	assert.ErrorIs(t, err, ErrFramePanic)
	assert.Equal(t, 0, r.frames)
	assert.Equal(t, uint64(1), e.SkippedFrames())

	require.NoError(t, e.frame(2*time.Second, time.Second/60))
	assert.Equal(t, 1, r.frames)
	assert.Equal(t, uint64(1), e.Frames())
}

func TestRenderErrorSkipsFrame(t *testing.T) {
	e, r := newTestEngine(t)
	r.err = errors.New("surface lost")

	err := e.frame(time.Second, time.Second/60)
	assert.ErrorContains(t, err, "surface lost")
	assert.Equal(t, uint64(0), e.Frames())
	assert.Equal(t, uint64(1), e.SkippedFrames())
}

func TestScrollIsAppliedBeforeRender(t *testing.T) {
	doc := scroll.NewDocument(1280, 800, scroll.Block{ID: "a", Height: scroll.Vh(300)})
	scroller := scroll.NewScroller(doc, scroll.WithoutSmoothing(), scroll.WithLineStep(100))
	e, r := newTestEngine(t, WithScroller(scroller))

	scroller.Subscribe(func(offset float32) {
		e.scene.Camera().SetPosition([3]float32{offset, 0, 0})
	})

	e.scroll(-3)
	require.NoError(t, e.frame(time.Second, time.Second/60))
	assert.Equal(t, []float32{300}, r.cameraX)
}

func TestKeysMoveScroller(t *testing.T) {
	doc := scroll.NewDocument(1280, 800, scroll.Block{ID: "a", Height: scroll.Vh(500)})
	scroller := scroll.NewScroller(doc, scroll.WithoutSmoothing(), scroll.WithLineStep(40))
	e, _ := newTestEngine(t, WithScroller(scroller))

	e.keyDown(common.KeyPageDown)
	assert.Equal(t, float32(800), scroller.Target())
	e.keyDown(common.KeySpace)
	assert.Equal(t, float32(1600), scroller.Target())

	e.keyDown(common.KeyLeftShift)
	e.keyDown(common.KeySpace)
	assert.Equal(t, float32(800), scroller.Target())
	e.keyUp(common.KeyLeftShift)

	e.keyDown(common.KeyDown)
	assert.Equal(t, float32(840), scroller.Target())
	e.keyDown(common.KeyUp)
	e.keyDown(common.KeyPageUp)
	assert.Equal(t, float32(0), scroller.Target())

	e.keyDown(common.KeyEnd)
	assert.Equal(t, scroller.Max(), scroller.Target())
	e.keyDown(common.KeyHome)
	assert.Equal(t, float32(0), scroller.Target())
}

func TestResizeUpdatesCameraRendererAndHandlers(t *testing.T) {
	cam := camera.NewCamera()
	e, r := newTestEngine(t, WithScene(scene.NewScene(scene.WithCamera(cam))))

	var got [2]int
	e.AddResizeHandler(func(w, h int) { got = [2]int{w, h} })

	e.resize(1000, 500)
	assert.Equal(t, float32(2), cam.Aspect())
	assert.Equal(t, 1000, r.width)
	assert.Equal(t, [2]int{1000, 500}, got)

	e.resize(0, 0)
	assert.Equal(t, float32(2), cam.Aspect())
	assert.Equal(t, [2]int{1000, 500}, got)
}

func TestRunAppliesFramebufferSizeBeforeFirstFrame(t *testing.T) {
	cam := camera.NewCamera(camera.WithAspect(16.0 / 9.0))
	win := newFakeWindow(2560, 1200)
	e, r := newTestEngine(t, WithWindow(win), WithScene(scene.NewScene(scene.WithCamera(cam))), WithFrameRate(1000))

	type sized struct {
		width, height int
		frames        uint64
	}
	got := make(chan sized, 1)
	e.AddResizeHandler(func(w, h int) { got <- sized{w, h, e.Frames()} })

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case s := <-got:
		assert.Equal(t, sized{2560, 1200, 0}, s)
	case <-time.After(5 * time.Second):
		t.Fatal("initial resize was not dispatched")
	}

	e.Quit()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.Equal(t, 2560, r.width)
	assert.Equal(t, 1200, r.height)
	assert.InDelta(t, 2560.0/1200.0, cam.Aspect(), 1e-6)
}

func TestRunDispatchesEventsInOrder(t *testing.T) {
	e, _ := newTestEngine(t, WithFrameRate(1000))

	var order []int
	shutdown := make(chan []int, 1)
	e.AddShutdownHook(func() { shutdown <- order })

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	for i := range 50 {
		require.True(t, e.Post(func() { order = append(order, i) }))
	}
	require.True(t, e.Post(func() { panic("bad event") }))
	marker := make(chan struct{})
	require.True(t, e.Post(func() { close(marker) }))

	select {
	case <-marker:
	case <-time.After(5 * time.Second):
		t.Fatal("events were not dispatched")
	}

	e.Quit()
	e.Quit()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}

	got := <-shutdown
	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
	assert.False(t, e.Post(func() {}))
}

func TestRunTicksFrames(t *testing.T) {
	e, _ := newTestEngine(t, WithFrameRate(500))
	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	assert.Eventually(t, func() bool { return e.Frames() >= 3 }, 5*time.Second, 5*time.Millisecond)
	e.SetFrameRate(250)
	e.Quit()
	<-done
}
