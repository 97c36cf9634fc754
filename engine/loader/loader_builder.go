package loader

import "github.com/Carmen-Shannon/oxy-scroll/engine/model"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets how many loads may run concurrently on the worker pool.
//
// Parameters:
//   - n: the worker count (values below 1 are ignored)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithDispatcher sets the function used to run LoadAsync callbacks, typically an event loop's
// Post method so completions are serialised with everything else that touches the scene.
//
// Parameters:
//   - dispatch: receives the completion closure
//
// Returns:
//   - LoaderBuilderOption: a function that applies the dispatcher option to a loader
func WithDispatcher(dispatch func(func())) LoaderBuilderOption {
	return func(l *loader) {
		if dispatch != nil {
			l.dispatch = dispatch
		}
	}
}

// WithModelOptions sets ModelBuilderOptions applied to every loaded model, e.g. a transform.
//
// Parameters:
//   - options: the model options
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model options to a loader
func WithModelOptions(options ...model.ModelBuilderOption) LoaderBuilderOption {
	return func(l *loader) {
		l.options = append(l.options, options...)
	}
}
