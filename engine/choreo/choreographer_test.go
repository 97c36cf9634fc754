package choreo

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-scroll/engine/camera"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scene"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rig struct {
	scene  scene.Scene
	doc    *scroll.Document
	reg    *scroll.Registry
	choreo *Choreographer
	logs   []string
}

func newRig(t *testing.T, doc *scroll.Document, opts ...ChoreographerBuilderOption) *rig {
	t.Helper()
	r := &rig{
		scene: scene.NewScene(scene.WithCamera(camera.NewCamera(camera.WithPosition([3]float32{2, 1.4, 5})))),
		doc:   doc,
		reg:   scroll.NewRegistry(doc),
	}
	opts = append([]ChoreographerBuilderOption{WithLogf(func(format string, args ...any) {
		r.logs = append(r.logs, fmt.Sprintf(format, args...))
	})}, opts...)
	r.choreo = NewChoreographer(r.scene, r.reg, opts...)
	return r
}

func (r *rig) section(t *testing.T, trigger, start, end string) scroll.SectionHandle {
	t.Helper()
	return r.reg.Register(scroll.Section{
		Name:    trigger + ":" + start + ":" + end,
		Trigger: trigger,
		Start:   scroll.MustParseAnchor(start),
		End:     scroll.MustParseAnchor(end),
	})
}

func (r *rig) bind(t *testing.T, b Binding) *Handle {
	t.Helper()
	h, err := r.choreo.Register(b)
	require.NoError(t, err)
	return h
}

func (r *rig) camX() float32 {
	return r.scene.Camera().Position()[0]
}

// windowDoc puts element "s" at [1000, 1400] so "top top" to "bottom top" spans that range.
func windowDoc() *scroll.Document {
	return scroll.NewDocument(1280, 800,
		scroll.Block{Height: scroll.Px(1000)},
		scroll.Block{ID: "s", Height: scroll.Px(400)},
		scroll.Block{Height: scroll.Px(2000)},
	)
}

func pageDoc(vh float32) *scroll.Document {
	return scroll.NewDocument(1280, vh,
		scroll.Block{ID: "one", Height: scroll.Vh(100)},
		scroll.Block{ID: "two", Height: scroll.Vh(100)},
		scroll.Block{ID: "three", Height: scroll.Vh(100)},
		scroll.Block{ID: "four", Height: scroll.Vh(100)},
	)
}

func TestEndToEndSingleSection(t *testing.T) {
	for _, ease := range []EaseFunc{Linear, DefaultEase()} {
		r := newRig(t, windowDoc())
		s := r.section(t, "s", "top top", "bottom top")
		r.bind(t, Binding{Name: "x", Section: s, Position: Partial3{}.Set(0, 0), Ease: ease})

		r.choreo.Update(1000)
		assert.Equal(t, float32(2), r.camX())

		r.choreo.Update(1200)
		assert.InDelta(t, 1, r.camX(), 1e-5)

		r.choreo.Update(1400)
		assert.Equal(t, float32(0), r.camX())

		r.choreo.Update(1500)
		assert.Equal(t, float32(0), r.camX())
		assert.Equal(t, StateAfter, r.choreo.Bindings()[0].State())
	}
}

func TestProgressIsClampedOutsideRange(t *testing.T) {
	rng := scroll.Range{Start: 1000, End: 1400}
	for o := float32(-500); o <= 3000; o += 37 {
		p := Progress(o, rng)
		assert.GreaterOrEqual(t, p, float32(0))
		assert.LessOrEqual(t, p, float32(1))
		switch {
		case o < rng.Start:
			assert.Equal(t, float32(0), p)
			assert.Equal(t, StateBefore, StateAt(o, rng))
		case o > rng.End:
			assert.Equal(t, float32(1), p)
			assert.Equal(t, StateAfter, StateAt(o, rng))
		default:
			assert.Equal(t, StateActive, StateAt(o, rng))
		}
	}

	r := newRig(t, windowDoc())
	h := r.bind(t, Binding{Section: r.section(t, "s", "top top", "bottom top"), Position: Partial3{}.Set(0, 0)})
	r.choreo.Update(50)
	assert.Equal(t, float32(0), h.Progress())
	r.choreo.Update(9000)
	assert.Equal(t, float32(1), h.Progress())
}

func TestZeroWidthRangeIsAStep(t *testing.T) {
	rng := scroll.Range{Start: 800, End: 800}
	assert.Equal(t, float32(0), Progress(799, rng))
	assert.Equal(t, float32(1), Progress(800, rng))
	assert.Equal(t, float32(1), Progress(801, rng))
	assert.Equal(t, StateBefore, StateAt(799, rng))
	assert.Equal(t, StateActive, StateAt(800, rng))
	assert.Equal(t, StateAfter, StateAt(801, rng))

	r := newRig(t, pageDoc(800))
	h := r.bind(t, Binding{Section: r.section(t, "two", "top top", "top top"), Position: Partial3{}.Set(0, 7), Ease: Linear})
	r.choreo.Update(799)
	assert.Equal(t, float32(2), r.camX())
	r.choreo.Update(800)
	assert.Equal(t, StateActive, h.State())
	assert.Equal(t, float32(7), r.camX())
	r.choreo.Update(0)
	assert.Equal(t, float32(2), r.camX())
}

func TestUpdateIsIdempotent(t *testing.T) {
	r := newRig(t, windowDoc())
	r.bind(t, Binding{Section: r.section(t, "s", "top top", "bottom top"), Position: Vec(0, 3, 4)})

	r.choreo.Update(1130)
	first := r.scene.Camera().Position()
	r.choreo.Update(1130)
	assert.Equal(t, first, r.scene.Camera().Position())
}

func TestScrollingBackRestoresCamera(t *testing.T) {
	r := newRig(t, windowDoc())
	s := r.section(t, "s", "top top", "bottom top")
	r.bind(t, Binding{Section: s, Position: Vec(0, 3.1, -5), OnProgress: LookAt([3]float32{0, 1.4, 0})})

	r.choreo.Update(900)
	top := r.scene.Camera().Position()

	r.choreo.Update(1100)
	atA := r.scene.Camera().Position()
	dirA := r.scene.Camera().Direction()

	for _, o := range []float32{1250, 1399, 1600, 1300} {
		r.choreo.Update(o)
	}
	r.choreo.Update(1100)
	assert.Equal(t, atA, r.scene.Camera().Position())
	assert.Equal(t, dirA, r.scene.Camera().Direction())

	r.choreo.Update(0)
	assert.Equal(t, top, r.scene.Camera().Position())
}

func TestLastRegisteredBindingWins(t *testing.T) {
	for _, order := range [][2]float32{{0, 5}, {5, 0}} {
		r := newRig(t, windowDoc())
		s := r.section(t, "s", "top top", "bottom top")
		r.bind(t, Binding{Name: "first", Section: s, Position: Partial3{}.Set(0, order[0]), Ease: Linear})
		r.bind(t, Binding{Name: "second", Section: s, Position: Partial3{}.Set(0, order[1]), Ease: Linear})

		r.choreo.Update(1400)
		assert.Equal(t, order[1], r.camX())
	}
}

func TestLastRegisteredBindingWinsWhileBothActive(t *testing.T) {
	r := newRig(t, windowDoc())
	early := r.section(t, "s", "top top", "bottom top")
	wide := r.section(t, "s", "top bottom", "bottom top")
	r.bind(t, Binding{Section: early, Position: Partial3{}.Set(0, 0), Ease: Linear})
	wideHandle := r.bind(t, Binding{Section: wide, Position: Partial3{}.Set(0, 10), Ease: Linear})

	r.choreo.Update(700)
	r.choreo.Update(1200)
	assert.Equal(t, StateActive, wideHandle.State())
	// wide captured x=2 at 700 and is the last writer.
	assert.InDelta(t, 2+8*wideHandle.Progress(), r.camX(), 1e-5)
}

func TestResizeKeepsRelativeProgress(t *testing.T) {
	doc := pageDoc(800)
	r := newRig(t, doc)
	h := r.bind(t, Binding{Section: r.section(t, "two", "top bottom", "bottom top"), Position: Partial3{}.Set(0, 0)})

	scroller := scroll.NewScroller(doc, scroll.WithoutSmoothing())
	scroller.Subscribe(r.choreo.Update)
	scroller.Jump(600)

	before := h.Progress()
	rngBefore := h.Range()
	x := r.camX()

	doc.Resize(1280, 1000)
	r.choreo.Resize()
	scroller.Resize()

	assert.NotEqual(t, rngBefore, h.Range())
	assert.InDelta(t, before, h.Progress(), 1e-6)
	assert.InDelta(t, x, r.camX(), 1e-5)
}

func TestRegisterFiresNothing(t *testing.T) {
	r := newRig(t, windowDoc(), WithInitialOffset(1200))
	calls := 0
	h := r.bind(t, Binding{
		Section:    r.section(t, "s", "top top", "bottom top"),
		Position:   Partial3{}.Set(0, 0),
		OnProgress: func(float32, scene.Scene) error { calls++; return nil },
	})

	assert.Equal(t, StateActive, h.State())
	assert.InDelta(t, 0.5, h.Progress(), 1e-6)
	assert.Equal(t, float32(2), r.camX())
	assert.Equal(t, 0, calls)
}

func TestMissingElementSuspendsBinding(t *testing.T) {
	r := newRig(t, windowDoc())
	calls := 0
	h := r.bind(t, Binding{
		Name:       "ghost",
		Section:    r.section(t, "nope", "top top", "bottom top"),
		Position:   Partial3{}.Set(0, 0),
		OnProgress: func(float32, scene.Scene) error { calls++; return nil },
	})

	for _, o := range []float32{0, 1000, 1200, 5000, 1200} {
		assert.NotPanics(t, func() { r.choreo.Update(o) })
	}
	r.choreo.Resize()

	assert.True(t, h.Suspended())
	assert.Equal(t, StateBefore, h.State())
	assert.Equal(t, float32(0), h.Progress())
	assert.Equal(t, float32(2), r.camX())
	assert.Equal(t, 0, calls)
	require.Len(t, r.logs, 1)
	assert.Contains(t, r.logs[0], "ghost")
}

func TestOnProgressRunsAfterWriteWhenProgressChanges(t *testing.T) {
	r := newRig(t, windowDoc())
	var seen []float32
	var xs []float32
	r.bind(t, Binding{
		Section:  r.section(t, "s", "top top", "bottom top"),
		Position: Partial3{}.Set(0, 0),
		Ease:     Linear,
		OnProgress: func(p float32, s scene.Scene) error {
			seen = append(seen, p)
			xs = append(xs, s.Camera().Position()[0])
			return nil
		},
	})

	r.choreo.Update(500)
	r.choreo.Update(1100)
	r.choreo.Update(1100)
	r.choreo.Update(1300)
	r.choreo.Update(2000)
	r.choreo.Update(2100)

	assert.Equal(t, []float32{0.25, 0.75, 1}, seen)
	assert.InDeltaSlice(t, []float32{1.5, 0.5, 0}, xs, 1e-5)
}

func TestOnProgressErrorIsLogged(t *testing.T) {
	r := newRig(t, windowDoc())
	r.bind(t, Binding{
		Name:       "bad",
		Section:    r.section(t, "s", "top top", "bottom top"),
		OnProgress: func(float32, scene.Scene) error { return fmt.Errorf("boom") },
	})

	r.choreo.Update(1200)
	require.Len(t, r.logs, 1)
	assert.Contains(t, r.logs[0], "boom")
}

func TestPanickingHookDoesNotStrandLaterBindings(t *testing.T) {
	r := newRig(t, pageDoc(800))
	calls := 0
	first := r.bind(t, Binding{
		Name:     "first",
		Section:  r.section(t, "two", "top bottom", "top top"),
		Position: Partial3{}.Set(1, 1),
		Ease:     Linear,
		OnProgress: func(p float32, _ scene.Scene) error {
			calls++
			if p == 1 && calls == 2 {
				panic("hook failed")
			}
			return nil
		},
	})
	second := r.bind(t, Binding{Name: "second", Section: r.section(t, "three", "top bottom", "top top"), Position: Partial3{}.Set(0, 7), Ease: Linear})

	r.choreo.Update(0)
	require.Equal(t, StateActive, first.State())

	// first exits and its hook panics before second's boundary write runs
	assert.Panics(t, func() { r.choreo.Update(2000) })
	assert.Equal(t, float32(2), r.camX())
	assert.Equal(t, StateActive, first.State())
	assert.Equal(t, StateBefore, second.State())

	r.choreo.Update(2000)
	assert.Equal(t, float32(7), r.camX())
	assert.Equal(t, float32(1), r.scene.Camera().Position()[1])
	assert.Equal(t, StateAfter, first.State())
	assert.Equal(t, StateAfter, second.State())
	assert.Equal(t, 3, calls)

	r.choreo.Update(2100)
	assert.Equal(t, float32(7), r.camX())
	assert.Equal(t, 3, calls)
}

func TestLookAtHookOrientsCamera(t *testing.T) {
	r := newRig(t, windowDoc())
	origin := [3]float32{0, 0, 0}
	r.bind(t, Binding{
		Section:    r.section(t, "s", "top top", "bottom top"),
		Position:   Vec(3, 0, 4),
		Ease:       Linear,
		OnProgress: LookAt(origin),
	})

	r.choreo.Update(1400)
	cam := r.scene.Camera()
	assert.Equal(t, [3]float32{3, 0, 4}, cam.Position())
	dir := cam.Direction()
	assert.InDelta(t, -0.6, dir[0], 1e-5)
	assert.InDelta(t, -0.8, dir[2], 1e-5)
	target, ok := cam.Target()
	assert.True(t, ok)
	assert.Equal(t, origin, target)
}

func TestLookAtTargetIsInterpolated(t *testing.T) {
	r := newRig(t, windowDoc())
	r.scene.Camera().LookAt([3]float32{0, 0, 0})
	r.bind(t, Binding{
		Section: r.section(t, "s", "top top", "bottom top"),
		LookAt:  Partial3{}.Set(1, 2),
		Ease:    Linear,
	})

	r.choreo.Update(1200)
	target, ok := r.scene.Camera().Target()
	require.True(t, ok)
	assert.InDeltaSlice(t, []float32{0, 1, 0}, target[:], 1e-5)
}

func TestChainedBindingsShareBoundary(t *testing.T) {
	r := newRig(t, pageDoc(800))
	enter := r.bind(t, Binding{Name: "enter", Section: r.section(t, "four", "top bottom", "top top"), Position: Partial3{}.Set(0, 0), Ease: Linear})
	leave := r.bind(t, Binding{Name: "leave", Section: r.section(t, "four", "top top", "bottom top"), Position: Partial3{}.Set(0, 3), Ease: Linear})

	r.choreo.Update(2000)
	assert.InDelta(t, 1, r.camX(), 1e-5)

	r.choreo.Update(2400)
	assert.Equal(t, StateActive, enter.State())
	assert.Equal(t, StateActive, leave.State())
	assert.Equal(t, float32(0), r.camX())

	r.choreo.Update(2800)
	assert.InDelta(t, 1.5, r.camX(), 1e-5)
}

func TestJumpingOverChainedBindingsUnwinds(t *testing.T) {
	r := newRig(t, pageDoc(800))
	r.bind(t, Binding{Section: r.section(t, "four", "top bottom", "top top"), Position: Partial3{}.Set(0, 0), Ease: Linear})
	r.bind(t, Binding{Section: r.section(t, "four", "top top", "bottom top"), Position: Partial3{}.Set(0, 3), Ease: Linear})

	r.choreo.Update(4000)
	assert.Equal(t, float32(3), r.camX())

	r.choreo.Update(0)
	assert.Equal(t, float32(2), r.camX())

	r.choreo.Update(2000)
	assert.InDelta(t, 1, r.camX(), 1e-5)
}

func TestSeekMatchesForwardScroll(t *testing.T) {
	build := func(opts ...ChoreographerBuilderOption) *rig {
		r := newRig(t, pageDoc(800), opts...)
		r.bind(t, Binding{Section: r.section(t, "two", "top bottom", "top top"), Position: Partial3{}.Set(0, 0)})
		r.bind(t, Binding{Section: r.section(t, "three", "top bottom", "top top"), Position: Partial3{}.Set(0, 3).Set(2, 4), OnProgress: LookAt([3]float32{})})
		r.bind(t, Binding{Section: r.section(t, "four", "top bottom", "top top"), Position: Partial3{}.Set(2, -5).Set(1, 3.1), OnProgress: LookAt([3]float32{})})
		return r
	}

	scrolled := build()
	for o := float32(0); o <= 2000; o += 100 {
		scrolled.choreo.Update(o)
	}

	restored := build(WithInitialOffset(2000))
	assert.Equal(t, [3]float32{2, 1.4, 5}, restored.scene.Camera().Position())

	restored.choreo.Seek(2000)
	want := scrolled.scene.Camera().Position()
	got := restored.scene.Camera().Position()
	assert.InDeltaSlice(t, want[:], got[:], 1e-4)
}

func TestRegisterUnknownSection(t *testing.T) {
	r := newRig(t, windowDoc())
	_, err := r.choreo.Register(Binding{Section: scroll.SectionHandle(3)})
	assert.ErrorIs(t, err, scroll.ErrUnknownSection)
}
