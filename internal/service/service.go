package service

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/yemot-router/internal/config"
	"github.com/xiaot623/gogo/yemot-router/internal/domain"
	"github.com/xiaot623/gogo/yemot-router/internal/encoder"
	"github.com/xiaot623/gogo/yemot-router/internal/metrics"
	"github.com/xiaot623/gogo/yemot-router/internal/policy"
	"github.com/xiaot623/gogo/yemot-router/internal/registry"
	store "github.com/xiaot623/gogo/yemot-router/internal/repository"
)

// HandlerFunc is the sequential conversation of one call. It runs in its own
// goroutine and is suspended inside Call.Read until the switch answers.
type HandlerFunc func(ctx context.Context, call *Call) error

// ErrorHandler receives handler faults: returned errors that are not
// termination signals, and panics. It may end the call with a terminal
// operation on call.
type ErrorHandler func(ctx context.Context, call *Call, err error)

// Route is a registered webhook path.
type Route struct {
	Method string
	Path   string
}

const anyMethod = "*"

type Service struct {
	defaults     config.Defaults
	encoder      *encoder.Encoder
	registry     *registry.Registry
	supervisor   *registry.Supervisor
	store        store.Store
	policyEngine *policy.Engine
	metrics      *metrics.Metrics
	logger       *zap.Logger
	notifier     *Notifier
	errorHandler ErrorHandler

	routesMu sync.RWMutex
	routes   map[Route]HandlerFunc

	activeMu sync.Mutex
	active   map[*registry.Session]*Call

	// storeMu orders snapshot writes against the delete made on eviction.
	storeMu sync.Mutex
}

// New creates the continuation engine. store, policyEngine and m may be nil.
func New(defaults config.Defaults, st store.Store, policyEngine *policy.Engine, m *metrics.Metrics, logger *zap.Logger) *Service {
	defaults = defaults.WithDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	supervisor := registry.NewSupervisor(defaults.Timeout)
	s := &Service{
		defaults:     defaults,
		encoder:      encoder.New(encoder.DefaultGrammar(), defaults.RemoveInvalidChars),
		registry:     registry.New(supervisor),
		supervisor:   supervisor,
		store:        st,
		policyEngine: policyEngine,
		metrics:      m,
		logger:       logger,
		notifier:     NewNotifier(logger),
		routes:       make(map[Route]HandlerFunc),
		active:       make(map[*registry.Session]*Call),
	}
	supervisor.OnExpire(s.expire)
	s.registry.OnEvict(s.evicted)
	return s
}

// OnError sets the handler for handler faults. It must be set before the
// first request.
func (s *Service) OnError(fn ErrorHandler) {
	s.errorHandler = fn
}

// Get binds h to GET requests on path.
func (s *Service) Get(path string, h HandlerFunc) {
	s.handle("GET", path, h)
}

// Post binds h to POST requests on path.
func (s *Service) Post(path string, h HandlerFunc) {
	s.handle("POST", path, h)
}

// All binds h to every method on path.
func (s *Service) All(path string, h HandlerFunc) {
	s.handle(anyMethod, path, h)
}

func (s *Service) handle(method, path string, h HandlerFunc) {
	s.routesMu.Lock()
	defer s.routesMu.Unlock()
	s.routes[Route{Method: method, Path: path}] = h
}

func (s *Service) handler(method, path string) (HandlerFunc, bool) {
	s.routesMu.RLock()
	defer s.routesMu.RUnlock()
	if h, ok := s.routes[Route{Method: method, Path: path}]; ok {
		return h, true
	}
	h, ok := s.routes[Route{Method: anyMethod, Path: path}]
	return h, ok
}

// Paths returns every path with at least one bound handler.
func (s *Service) Paths() []string {
	s.routesMu.RLock()
	defer s.routesMu.RUnlock()
	seen := make(map[string]bool)
	paths := []string{}
	for r := range s.routes {
		if !seen[r.Path] {
			seen[r.Path] = true
			paths = append(paths, r.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Subscribe registers fn for lifecycle events. No types means every type.
func (s *Service) Subscribe(fn func(domain.Event), types ...domain.EventType) (unsubscribe func()) {
	return s.notifier.Subscribe(fn, types...)
}

// Encoder returns the instruction encoder of the engine.
func (s *Service) Encoder() *encoder.Encoder {
	return s.encoder
}
