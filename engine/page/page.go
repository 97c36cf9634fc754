// Package page assembles a scroll-driven scene from a config.Config: the scene itself, the page
// layout it scrolls over, the section registry, the scroller and the choreographer that moves the
// camera. It attaches that assembly to an event loop for model loading, resizes and session
// persistence.
package page

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-scroll/common"
	"github.com/Carmen-Shannon/oxy-scroll/config"
	"github.com/Carmen-Shannon/oxy-scroll/engine/camera"
	"github.com/Carmen-Shannon/oxy-scroll/engine/choreo"
	"github.com/Carmen-Shannon/oxy-scroll/engine/loader"
	"github.com/Carmen-Shannon/oxy-scroll/engine/model"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scene"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scroll"
	"github.com/Carmen-Shannon/oxy-scroll/engine/session"
)

// Host is the event loop a Page attaches to. engine.Engine satisfies it.
type Host interface {
	Post(fn func()) bool
	AddResizeHandler(fn func(width, height int))
	AddShutdownHook(fn func())
}

// Page is a scene wired to its scroll story.
//
// Everything except the model loader's worker runs on the host's dispatch goroutine once the
// page is attached; before that the caller's goroutine owns it.
type Page struct {
	cfg  *config.Config
	name string

	scene    scene.Scene
	doc      *scroll.Document
	registry *scroll.Registry
	scroller *scroll.Scroller
	choreo   *choreo.Choreographer

	sections map[string]scroll.SectionHandle
	bindings []*choreo.Handle

	assetDir string
	loader   loader.Loader
	store    *session.Store
	noStore  bool
	logf     func(format string, args ...any)

	pending int
}

// Build creates a page from cfg. Sections and bindings are registered at offset 0 and nothing is
// written to the camera until the scroll offset changes or Restore is called.
//
// Parameters:
//   - cfg: a validated or unvalidated page description
//   - options: a variadic list of PageBuilderOption functions
//
// Returns:
//   - *Page: the assembled page
//   - error: error if cfg is invalid
func Build(cfg *config.Config, options ...PageBuilderOption) (*Page, error) {
	if cfg == nil {
		return nil, fmt.Errorf("page: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid page config: %w", err)
	}

	p := &Page{
		cfg:      cfg,
		name:     common.Coalesce(cfg.Window.Title, "page"),
		sections: make(map[string]scroll.SectionHandle, len(cfg.Sections)),
		assetDir: ".",
		logf:     log.Printf,
	}
	for _, opt := range options {
		opt(p)
	}

	lights, err := cfg.BuildLights()
	if err != nil {
		return nil, err
	}
	fields, err := cfg.BuildFields()
	if err != nil {
		return nil, err
	}
	p.scene = scene.NewScene(
		scene.WithName(p.name),
		scene.WithCamera(camera.NewCamera(cfg.CameraOptions()...)),
		scene.WithLights(lights...),
		scene.WithFields(fields...),
		scene.WithRootRotation(cfg.Scene.Rotation.Array()),
		scene.WithBackground(cfg.BackgroundColor()),
	)

	blocks, err := cfg.Blocks()
	if err != nil {
		return nil, err
	}
	p.doc = scroll.NewDocument(float32(cfg.Window.Width), float32(cfg.Window.Height), blocks...)
	p.registry = scroll.NewRegistry(p.doc)

	defs, err := cfg.SectionDefs()
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		p.sections[def.Name] = p.registry.Register(def)
	}

	ease, err := choreo.EaseByName(cfg.Ease)
	if err != nil {
		return nil, err
	}
	p.choreo = choreo.NewChoreographer(p.scene, p.registry, choreo.WithDefaultEase(ease), choreo.WithLogf(p.logf))
	for i, bc := range cfg.Bindings {
		b, err := bc.ToBinding(p.sections[bc.Section])
		if err != nil {
			return nil, fmt.Errorf("bindings[%d]: %w", i, err)
		}
		h, err := p.choreo.Register(b)
		if err != nil {
			return nil, fmt.Errorf("bindings[%d]: %w", i, err)
		}
		p.bindings = append(p.bindings, h)
	}

	p.scroller = scroll.NewScroller(p.doc, cfg.ScrollerOptions()...)
	p.scroller.Subscribe(p.choreo.Update)

	return p, nil
}

// Name returns the page name used as the session key.
func (p *Page) Name() string { return p.name }

// Scene returns the page's scene.
func (p *Page) Scene() scene.Scene { return p.scene }

// Document returns the page layout.
func (p *Page) Document() *scroll.Document { return p.doc }

// Registry returns the section registry.
func (p *Page) Registry() *scroll.Registry { return p.registry }

// Scroller returns the scroller whose offset drives the choreographer.
func (p *Page) Scroller() *scroll.Scroller { return p.scroller }

// Choreographer returns the choreographer.
func (p *Page) Choreographer() *choreo.Choreographer { return p.choreo }

// Bindings returns the registered bindings in file order.
func (p *Page) Bindings() []*choreo.Handle { return p.bindings }

// Section returns the registry handle of a named section.
//
// Parameters:
//   - name: the section name from the config
//
// Returns:
//   - scroll.SectionHandle: the handle
//   - bool: false if no section has that name
func (p *Page) Section(name string) (scroll.SectionHandle, bool) {
	h, ok := p.sections[name]
	return h, ok
}

// PendingModels returns how many model loads have not completed yet.
func (p *Page) PendingModels() int { return p.pending }

// Attach wires the page to an event loop: it restores the saved scroll position, starts every
// configured model load, and registers the resize handler and the session save on shutdown.
// Call it before the host starts running.
//
// Parameters:
//   - host: the event loop, usually an engine.Engine
func (p *Page) Attach(host Host) {
	if _, err := p.Restore(); err != nil {
		p.logf("[Page] session not restored: %v", err)
	}

	host.AddResizeHandler(func(width, height int) {
		p.Resize(float32(width), float32(height))
	})
	host.AddShutdownHook(func() {
		if err := p.Save(); err != nil {
			p.logf("[Page] %v", err)
		}
	})

	p.LoadModels(func(fn func()) {
		if !host.Post(fn) {
			p.logf("[Page] model load finished after shutdown, dropped")
		}
	})
}

// LoadModels starts one asynchronous load per configured model. Each completion runs through
// dispatch: a loaded model is placed and added to the scene; a failed one is logged and the page
// carries on without it.
//
// Parameters:
//   - dispatch: runs completions on the goroutine that owns the scene
func (p *Page) LoadModels(dispatch func(func())) {
	if len(p.cfg.Models) == 0 {
		return
	}
	if p.loader == nil {
		p.loader = loader.NewLoader(loader.BackendTypeGLTF, loader.WithDispatcher(dispatch))
	}
	for _, mc := range p.cfg.Models {
		path := mc.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(p.assetDir, path)
		}
		p.pending++
		p.loader.LoadAsync(path, func(m model.Model, err error) {
			p.pending--
			if err != nil {
				p.logf("[Page] model %s unavailable, continuing without it: %v", mc.Path, err)
				return
			}
			mc.Place(m)
			p.scene.AddObject(m)
		})
	}
}

// Resize re-lays the page out for a new viewport. The offset is rescaled first so the reader
// keeps their relative place on the page, then every binding is re-evaluated against the new
// section ranges at that offset. Bindings never see the old offset against the new layout.
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
func (p *Page) Resize(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	p.doc.Resize(width, height)
	p.scroller.Resize()
	p.choreo.Resize()
}

// Restore moves the page to the saved scroll position, replaying every binding the reader had
// already scrolled through.
//
// Returns:
//   - bool: true if a saved position was applied
//   - error: error if the session store could not be read
func (p *Page) Restore() (bool, error) {
	store := p.sessionStore()
	if store == nil {
		return false, nil
	}
	st, ok, err := store.Load(p.name)
	if err != nil || !ok {
		return false, err
	}

	offset := min(max(st.Fraction, 0), 1) * p.doc.ScrollHeight()
	p.choreo.Seek(offset)
	p.scroller.Jump(offset)
	p.logf("[Page] restored scroll position %.0fpx", offset)
	return true, nil
}

// Save persists the current scroll position.
//
// Returns:
//   - error: error if the session store could not be written
func (p *Page) Save() error {
	store := p.sessionStore()
	if store == nil {
		return nil
	}
	offset := p.scroller.Offset()
	var frac float32
	if h := p.doc.ScrollHeight(); h > 0 {
		frac = offset / h
	}
	return store.Save(session.State{Page: p.name, Offset: offset, Fraction: frac})
}

// sessionStore opens the configured store on first use. A store that cannot be opened falls
// back to memory so the page still runs.
func (p *Page) sessionStore() *session.Store {
	if p.noStore || !p.cfg.Session.Enabled {
		return nil
	}
	if p.store == nil {
		s, err := session.Open(common.Coalesce(p.cfg.Session.AppName, p.name))
		if err != nil {
			p.logf("[Page] %v; scroll position will not persist", err)
			s = session.NewStore(nil)
		}
		p.store = s
	}
	return p.store
}
