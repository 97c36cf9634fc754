package page

import (
	"github.com/Carmen-Shannon/oxy-scroll/engine/loader"
	"github.com/Carmen-Shannon/oxy-scroll/engine/session"
)

// PageBuilderOption is a functional option for configuring a Page via Build.
type PageBuilderOption func(*Page)

// WithName overrides the page name, which keys the saved session. Defaults to the window title.
func WithName(name string) PageBuilderOption {
	return func(p *Page) {
		if name != "" {
			p.name = name
		}
	}
}

// WithAssetDir sets the directory relative model paths are resolved against.
//
// Parameters:
//   - dir: the asset root (default ".")
//
// Returns:
//   - PageBuilderOption: option function to apply
func WithAssetDir(dir string) PageBuilderOption {
	return func(p *Page) {
		if dir != "" {
			p.assetDir = dir
		}
	}
}

// WithLoader sets the model loader. Its dispatcher must hand completions to the loop that owns
// the scene.
func WithLoader(l loader.Loader) PageBuilderOption {
	return func(p *Page) {
		p.loader = l
	}
}

// WithSessionStore sets the store used to save and restore the scroll position. It is only used
// when the config enables sessions.
func WithSessionStore(s *session.Store) PageBuilderOption {
	return func(p *Page) {
		p.store = s
	}
}

// WithoutSession disables scroll position persistence regardless of the config.
func WithoutSession() PageBuilderOption {
	return func(p *Page) {
		p.noStore = true
	}
}

// WithLogf replaces log.Printf for page, choreographer and model load messages.
func WithLogf(logf func(format string, args ...any)) PageBuilderOption {
	return func(p *Page) {
		if logf != nil {
			p.logf = logf
		}
	}
}
