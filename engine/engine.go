package engine

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-scroll/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scene"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scroll"
	"github.com/Carmen-Shannon/oxy-scroll/engine/window"
)

// ErrFramePanic wraps a panic recovered from inside a frame.
var ErrFramePanic = errors.New("frame panicked")

// FrameHook is advanced once per frame with the seconds elapsed since Run started.
// particle.Field satisfies it.
type FrameHook interface {
	Update(elapsed float32)
}

// FrameHookFunc adapts a function to FrameHook.
type FrameHookFunc func(elapsed float32)

// Update calls f(elapsed).
func (f FrameHookFunc) Update(elapsed float32) { f(elapsed) }

// FrameRenderer draws the scene. It is only ever called from the dispatch goroutine.
type FrameRenderer interface {
	// RenderFrame draws one frame of s.
	//
	// Parameters:
	//   - s: the scene to draw
	//
	// Returns:
	//   - error: error if the frame could not be drawn; the frame is skipped
	RenderFrame(s scene.Scene) error

	// Resize reconfigures the render target.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	Resize(width, height int)
}

// engine implements the Engine interface.
// Owns the dispatch goroutine that serialises input, resize, load completions and frames.
type engine struct {
	frameRateChannel chan time.Duration

	running atomic.Bool
	wg      sync.WaitGroup

	events      chan func()
	quitChannel chan struct{}
	quitOnce    sync.Once

	window   window.Window
	scene    scene.Scene
	renderer FrameRenderer
	scroller *scroll.Scroller

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	frameInterval time.Duration
	now           func() time.Time

	hooks          []FrameHook
	resizeHandlers []func(width, height int)
	shutdownHooks  []func()

	shiftDown bool
	frames    atomic.Uint64
	skipped   atomic.Uint64
}

// Engine is the main entry point for a scroll-driven scene.
//
// One dispatch goroutine owns the scene. Window input, resizes and loader completions are posted
// to it as closures and run in FIFO order, interleaved with frames; nothing they touch is locked.
// Each frame advances the scroller (which drives the choreographer), the frame hooks and the
// renderer. A frame that panics or fails is logged and skipped; the loop keeps running.
type Engine interface {
	// Window returns the underlying window, or nil for a headless engine.
	Window() window.Window

	// Scene returns the scene the engine renders.
	Scene() scene.Scene

	// Scroller returns the scroller advanced each frame, or nil.
	Scroller() *scroll.Scroller

	// Post queues fn to run on the dispatch goroutine. Blocks while the queue is full.
	//
	// Parameters:
	//   - fn: the closure to run
	//
	// Returns:
	//   - bool: false if the engine has quit and fn will never run
	Post(fn func()) bool

	// AddFrameHook registers a hook advanced every frame after the scene's particle fields.
	// Must be called before Run or from the dispatch goroutine.
	//
	// Parameters:
	//   - h: the hook
	AddFrameHook(h FrameHook)

	// AddResizeHandler registers a function run on the dispatch goroutine after the renderer and
	// camera have been resized. Must be called before Run or from the dispatch goroutine.
	//
	// Parameters:
	//   - fn: the handler receiving the new size in pixels
	AddResizeHandler(fn func(width, height int))

	// AddShutdownHook registers a function run on the dispatch goroutine when the loop stops.
	AddShutdownHook(fn func())

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameRate sets the frame rate. Takes effect immediately if the engine is running.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetFrameRate(fps float64)

	// Frames returns the number of frames rendered so far.
	Frames() uint64

	// SkippedFrames returns the number of frames abandoned after a failure.
	SkippedFrames() uint64

	// Run starts the dispatch goroutine and blocks until the window closes or Quit is called.
	// With a window, its framebuffer size is applied as a resize before the first frame.
	Run()

	// Quit stops the engine. Safe to call multiple times and from any goroutine.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		frameRateChannel: make(chan time.Duration, 1),
		events:           make(chan func(), 256),
		quitChannel:      make(chan struct{}),
		profiler:         profiler.NewProfiler(),
		frameInterval:    time.Second / 60,
		now:              time.Now,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.scene == nil {
		e.scene = scene.NewScene()
	}

	if e.window != nil {
		e.bindWindow()
	}

	return e
}

// bindWindow forwards window callbacks, which arrive on the window thread, to the dispatch goroutine.
func (e *engine) bindWindow() {
	e.window.SetResizeCallback(func(width, height int) {
		e.Post(func() { e.resize(width, height) })
	})
	e.window.SetScrollCallback(func(delta float32) {
		e.Post(func() { e.scroll(delta) })
	})
	e.window.SetKeyDownCallback(func(key uint32) {
		e.Post(func() { e.keyDown(key) })
	})
	e.window.SetKeyUpCallback(func(key uint32) {
		e.Post(func() { e.keyUp(key) })
	})
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Scroller() *scroll.Scroller {
	return e.scroller
}

func (e *engine) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-e.quitChannel:
		return false
	default:
	}
	select {
	case e.events <- fn:
		return true
	case <-e.quitChannel:
		return false
	}
}

func (e *engine) AddFrameHook(h FrameHook) {
	if h != nil {
		e.hooks = append(e.hooks, h)
	}
}

func (e *engine) AddResizeHandler(fn func(width, height int)) {
	if fn != nil {
		e.resizeHandlers = append(e.resizeHandlers, fn)
	}
}

func (e *engine) AddShutdownHook(fn func()) {
	if fn != nil {
		e.shutdownHooks = append(e.shutdownHooks, fn)
	}
}

func (e *engine) Frames() uint64 {
	return e.frames.Load()
}

func (e *engine) SkippedFrames() uint64 {
	return e.skipped.Load()
}

func (e *engine) Run() {
	e.running.Store(true)
	if e.window != nil {
		// the framebuffer may not match the configured size; apply it before the first frame
		width, height := e.window.Width(), e.window.Height()
		e.Post(func() { e.resize(width, height) })
	}
	e.wg.Add(1)
	go e.handleDispatch()

	if e.window != nil {
		e.window.ProcessMessages()
		e.Quit()
	} else {
		<-e.quitChannel
	}
	e.wg.Wait()
	e.running.Store(false)
}

// Quit signals the dispatch goroutine to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// handleDispatch runs posted events and frames until quit, then the shutdown hooks.
func (e *engine) handleDispatch() {
	defer e.wg.Done()
	defer e.shutdown()

	// events posted before Run go ahead of the first frame
	for pending := true; pending; {
		select {
		case fn := <-e.events:
			e.runEvent(fn)
		default:
			pending = false
		}
	}

	ticker := time.NewTicker(e.frameInterval)
	defer ticker.Stop()

	start := e.now()
	last := start

	for {
		select {
		case <-e.quitChannel:
			return
		case fn := <-e.events:
			e.runEvent(fn)
		case <-ticker.C:
			now := e.now()
			_ = e.frame(now.Sub(start), now.Sub(last))
			last = now
		case rate := <-e.frameRateChannel:
			ticker.Reset(rate)
			e.frameInterval = rate
		}
	}
}

// runEvent runs a posted closure, recovering a panic so one bad event cannot stop the loop.
func (e *engine) runEvent(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] event recovered from panic: %v", r)
		}
	}()
	fn()
}

// frame runs one frame: scroll smoothing (which drives the choreographer), particle fields and
// frame hooks, then the renderer. A panic or error skips the rest of the frame.
//
// Parameters:
//   - elapsed: monotonic time since the loop started
//   - dt: time since the previous frame
//
// Returns:
//   - error: the failure that caused the frame to be skipped, or nil
func (e *engine) frame(elapsed, dt time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFramePanic, r)
		}
		if err != nil {
			e.skipped.Add(1)
			e.profiler.RecordSkipped()
			log.Printf("[Engine] frame skipped: %v", err)
		}
	}()

	if e.scroller != nil {
		e.scroller.Advance(dt)
	}

	t := float32(elapsed.Seconds())
	for _, f := range e.scene.Fields() {
		f.Update(t)
	}
	for _, h := range e.hooks {
		h.Update(t)
	}

	if e.renderer != nil {
		if err := e.renderer.RenderFrame(e.scene); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}

	e.frames.Add(1)
	if e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	return nil
}

// resize propagates a new framebuffer size: renderer, camera projection, then handlers
// (page layout, section anchors, scroll position).
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
	e.scene.Camera().SetAspect(float32(width) / float32(height))
	for _, h := range e.resizeHandlers {
		h(width, height)
	}
}

// shutdown runs the shutdown hooks, recovering panics so every hook gets a chance to run.
func (e *engine) shutdown() {
	for _, fn := range e.shutdownHooks {
		e.runEvent(fn)
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetFrameRate sets the frame rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetFrameRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	rate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.frameInterval = rate
		return
	}
	// Non-blocking send; replace a pending value if one is queued.
	select {
	case e.frameRateChannel <- rate:
	default:
		select {
		case <-e.frameRateChannel:
		default:
		}
		e.frameRateChannel <- rate
	}
}
