package loader

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-scroll/engine/model"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// ErrUnsupportedFormat is returned for file extensions no backend handles.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// LoadCallback receives the outcome of an asynchronous load. Exactly one of m and err is non-nil.
type LoadCallback func(m model.Model, err error)

// loadResult is the outcome of a single load attempt, kept so the attempt is never repeated.
type loadResult struct {
	model model.Model
	err   error
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.Mutex

	backend  loaderBackend
	pool     worker.DynamicWorkerPool
	workers  int
	dispatch func(func())
	options  []model.ModelBuilderOption

	results map[string]loadResult
	taskID  int
}

// Loader imports 3D models and caches the outcome of each attempt.
//
// Every path is attempted at most once: a failed load is cached and reported again on later
// requests rather than retried. LoadAsync runs the import on a worker pool and hands the result
// to the configured dispatcher so completion can be serialised onto the caller's event loop.
type Loader interface {
	// Load imports a model file synchronously.
	//
	// Parameters:
	//   - path: the file path to the model file (.gltf or .glb)
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if this or an earlier attempt at path failed
	Load(path string) (model.Model, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (model.Model, error)

	// LoadAsync imports a model file on the worker pool and reports the outcome through done,
	// invoked via the dispatcher. It never blocks the caller.
	//
	// Parameters:
	//   - path: the file path to the model file
	//   - done: the completion callback
	LoadAsync(path string, done LoadCallback)

	// Get retrieves a successfully loaded model by cache key. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Models returns every successfully loaded model keyed by cache key.
	//
	// Returns:
	//   - map[string]model.Model: a copy of the cache
	Models() map[string]model.Model
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader instance
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		workers:  1,
		dispatch: func(f func()) { f() },
		results:  make(map[string]loadResult),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	default:
		panic(fmt.Sprintf("loader: unknown backend type %d", backendType))
	}

	for _, option := range options {
		option(l)
	}

	l.pool = worker.NewDynamicWorkerPool(l.workers, 16, 1*time.Second)
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	l.mu.Lock()
	if res, ok := l.results[path]; ok {
		l.mu.Unlock()
		return res.model, res.err
	}
	l.mu.Unlock()

	m, err := l.load(path)

	l.mu.Lock()
	defer l.mu.Unlock()
	if res, ok := l.results[path]; ok {
		return res.model, res.err
	}
	l.results[path] = loadResult{model: m, err: err}
	return m, err
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (model.Model, error) {
	l.mu.Lock()
	if res, ok := l.results[name]; ok {
		l.mu.Unlock()
		return res.model, res.err
	}
	l.mu.Unlock()

	var m model.Model
	imported, err := l.backend.LoadReader(name, r, isGLB)
	if err != nil {
		err = fmt.Errorf("failed to load from reader %q: %w", name, err)
	} else {
		m = model.FromImported(imported, l.options...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.results[name] = loadResult{model: m, err: err}
	return m, err
}

func (l *loader) LoadAsync(path string, done LoadCallback) {
	l.mu.Lock()
	id := l.taskID
	l.taskID++
	l.mu.Unlock()

	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			start := time.Now()
			m, err := l.Load(path)
			if err != nil {
				log.Printf("[Loader] %s: %v", path, err)
			} else {
				log.Printf("[Loader] %s: %d vertices, %d indices in %s", path, len(m.Vertices()), len(m.Indices()), time.Since(start).Round(time.Millisecond))
			}
			if done != nil {
				l.dispatch(func() { done(m, err) })
			}
			return m, err
		},
	})
}

func (l *loader) Get(name string) model.Model {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.results[name].model
}

func (l *loader) Models() map[string]model.Model {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make(map[string]model.Model, len(l.results))
	for k, v := range l.results {
		if v.err == nil {
			result[k] = v.model
		}
	}
	return result
}

// load resolves the backend for path and converts the import into a Model.
func (l *loader) load(path string) (model.Model, error) {
	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	imported, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return model.FromImported(imported, l.options...), nil
}

// resolveBackend selects an appropriate loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
