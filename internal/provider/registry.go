package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry is a thread-safe registry of sources.
// It maps source names to Source instances and maintains an index
// of which sources support which capabilities.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source       // name → source
	capIdx  map[Capability][]string // capability → source names (registration order)
}

// NewRegistry creates a new empty source registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
		capIdx:  make(map[Capability][]string),
	}
}

// Register adds a source to the registry.
// Duplicate registrations overwrite the previous entry.
func (r *Registry) Register(s Source) error {
	info := s.Info()
	if info.Name == "" {
		return fmt.Errorf("source name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sources[info.Name] = s

	for _, c := range info.Capabilities {
		existing := r.capIdx[c]
		found := false
		for _, name := range existing {
			if name == info.Name {
				found = true
				break
			}
		}
		if !found {
			r.capIdx[c] = append(existing, info.Name)
		}
	}
	return nil
}

// Get returns a source by name, or an error if not found.
func (r *Registry) Get(name string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sources[name]
	if !ok {
		return nil, &ErrSourceNotFound{Name: name}
	}
	return s, nil
}

// List returns info about all registered sources, sorted by name.
func (r *Registry) List() []SourceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]SourceInfo, 0, len(r.sources))
	for _, s := range r.sources {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// SourcesFor returns the names of sources that support c, in registration order.
func (r *Registry) SourcesFor(c Capability) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.capIdx[c]
	result := make([]string, len(names))
	copy(result, names)
	return result
}

// Series returns the named source as a SeriesSource.
func (r *Registry) Series(name string) (SeriesSource, error) {
	s, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	ss, ok := s.(SeriesSource)
	if !ok {
		return nil, &ErrNotSupported{Source: name, Capability: CapSeries}
	}
	return ss, nil
}

// Searcher returns the named source as a TextSearcher.
func (r *Registry) Searcher(name string) (TextSearcher, error) {
	s, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	ts, ok := s.(TextSearcher)
	if !ok {
		return nil, &ErrNotSupported{Source: name, Capability: CapSearch}
	}
	return ts, nil
}

// News returns the named source as a NewsSource.
func (r *Registry) News(name string) (NewsSource, error) {
	s, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	ns, ok := s.(NewsSource)
	if !ok {
		return nil, &ErrNotSupported{Source: name, Capability: CapNews}
	}
	return ns, nil
}

// PingResult is the outcome of pinging one source.
type PingResult struct {
	Source  string        `json:"source"`
	OK      bool          `json:"ok"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// PingAll pings every registered source, one after another, in name order.
func (r *Registry) PingAll(ctx context.Context) []PingResult {
	var results []PingResult
	for _, info := range r.List() {
		s, err := r.Get(info.Name)
		if err != nil {
			continue
		}
		start := time.Now()
		err = s.Ping(ctx)
		res := PingResult{Source: info.Name, OK: err == nil, Latency: time.Since(start)}
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}
