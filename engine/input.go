package engine

import "github.com/Carmen-Shannon/oxy-scroll/common"

// scroll handles a wheel event. GLFW reports positive deltas for wheel-up, which scrolls the
// page toward the top.
func (e *engine) scroll(delta float32) {
	if e.scroller != nil {
		e.scroller.ScrollLines(-delta)
	}
}

// keyDown maps paging keys to scroller moves.
func (e *engine) keyDown(key uint32) {
	switch key {
	case common.KeyLeftShift, common.KeyRightShift:
		e.shiftDown = true
		return
	case common.KeyEsc:
		e.Quit()
		return
	}

	s := e.scroller
	if s == nil {
		return
	}
	switch key {
	case common.KeySpace:
		if e.shiftDown {
			s.Page(-1)
		} else {
			s.Page(1)
		}
	case common.KeyPageDown:
		s.Page(1)
	case common.KeyPageUp:
		s.Page(-1)
	case common.KeyDown:
		s.ScrollLines(1)
	case common.KeyUp:
		s.ScrollLines(-1)
	case common.KeyHome:
		s.Home()
	case common.KeyEnd:
		s.End()
	}
}

func (e *engine) keyUp(key uint32) {
	switch key {
	case common.KeyLeftShift, common.KeyRightShift:
		e.shiftDown = false
	}
}
