package docconv

import (
	"fmt"
	"sort"
	"strings"
)

// Route binds one engine to one (source, target) format pair. The same
// engine may appear in several routes.
type Route struct {
	From   string
	To     string
	Engine EngineDescriptor
}

// formatPair is a normalized routing key.
type formatPair struct {
	from string
	to   string
}

// ConversionRouter maps format pairs to ordered engine candidate lists.
// It is built once from configuration and never mutates afterwards; Resolve
// is a pure lookup with no I/O.
type ConversionRouter struct {
	routes map[formatPair][]EngineDescriptor
}

// NewConversionRouter builds a router from routes. Candidates for each pair
// are ordered by descending engine priority; ties break on engine name so
// ordering is deterministic regardless of input order.
func NewConversionRouter(routes []Route) (*ConversionRouter, error) {
	if len(routes) == 0 {
		return nil, ErrNoRoutes
	}

	table := make(map[formatPair][]EngineDescriptor)
	for i, route := range routes {
		from := normalizeFormat(route.From)
		to := normalizeFormat(route.To)
		if from == "" || to == "" {
			return nil, fmt.Errorf("%w: route %d", ErrEmptyRouteFormat, i)
		}
		if err := route.Engine.Validate(); err != nil {
			return nil, fmt.Errorf("route %d (%s -> %s): %w", i, from, to, err)
		}
		pair := formatPair{from: from, to: to}
		table[pair] = append(table[pair], route.Engine)
	}

	for pair, candidates := range table {
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].Priority != candidates[j].Priority {
				return candidates[i].Priority > candidates[j].Priority
			}
			return candidates[i].Name < candidates[j].Name
		})
		table[pair] = candidates
	}

	return &ConversionRouter{routes: table}, nil
}

// Resolve returns the ordered engine candidates for a format pair, or
// ErrUnsupportedConversion when no route exists. The returned slice is a
// copy; callers cannot disturb the router's ordering.
func (r *ConversionRouter) Resolve(sourceFormat, targetFormat string) ([]EngineDescriptor, error) {
	pair := formatPair{from: normalizeFormat(sourceFormat), to: normalizeFormat(targetFormat)}
	candidates, ok := r.routes[pair]
	if !ok || len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnsupportedConversion, pair.from, pair.to)
	}

	out := make([]EngineDescriptor, len(candidates))
	copy(out, candidates)
	return out, nil
}

// Supports reports whether a route exists for the format pair.
func (r *ConversionRouter) Supports(sourceFormat, targetFormat string) bool {
	_, err := r.Resolve(sourceFormat, targetFormat)
	return err == nil
}

// Pairs returns all supported format pairs as "from -> to" strings, sorted.
func (r *ConversionRouter) Pairs() []string {
	pairs := make([]string, 0, len(r.routes))
	for pair := range r.routes {
		pairs = append(pairs, pair.from+" -> "+pair.to)
	}
	sort.Strings(pairs)
	return pairs
}

// normalizeFormat lowercases a format token and strips a leading dot, so
// "PDF", "pdf", and ".pdf" all route identically.
func normalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}
