package events

import (
	"fmt"
	"sort"

	"github.com/swapstream/processor-go/decode"
)

// Registration binds an event name to its handler within an era.
type Registration struct {
	Name    string
	Handler Handler
}

// Era is a contiguous range of spec versions sharing one set of handlers.
// An era's registrations are active from MinVersion until a later era
// re-registers the same event name.
type Era struct {
	MinVersion    decode.Semver
	Registrations []Registration
}

// Registry resolves (event name, spec version) pairs to handlers.
type Registry struct {
	eras []era
}

type era struct {
	minVersion decode.Semver
	handlers   map[string]Handler
}

// NewRegistry validates and builds a registry from the era table. Eras must
// be strictly ascending by minimum version, and an event name may appear at
// most once per era.
func NewRegistry(eras []Era) (*Registry, error) {
	if len(eras) == 0 {
		return nil, fmt.Errorf("no eras registered")
	}
	if !sort.SliceIsSorted(eras, func(i, j int) bool {
		return eras[i].MinVersion.Before(eras[j].MinVersion)
	}) {
		return nil, fmt.Errorf("eras must be strictly ascending by minimum version")
	}
	for i := 1; i < len(eras); i++ {
		if eras[i].MinVersion.Compare(eras[i-1].MinVersion) == 0 {
			return nil, fmt.Errorf("duplicate era %s", eras[i].MinVersion)
		}
	}

	r := &Registry{eras: make([]era, 0, len(eras))}
	for _, e := range eras {
		handlers := make(map[string]Handler, len(e.Registrations))
		for _, reg := range e.Registrations {
			if reg.Handler == nil {
				return nil, fmt.Errorf("nil handler for %q in era %s", reg.Name, e.MinVersion)
			}
			if _, dup := handlers[reg.Name]; dup {
				return nil, fmt.Errorf("duplicate registration of %q in era %s", reg.Name, e.MinVersion)
			}
			handlers[reg.Name] = reg.Handler
		}
		r.eras = append(r.eras, era{minVersion: e.MinVersion, handlers: handlers})
	}
	return r, nil
}

// MustNewRegistry builds the registry and panics on a table error. Used for
// the static handler table, where a bad table is a programming error.
func MustNewRegistry(eras []Era) *Registry {
	r, err := NewRegistry(eras)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the active handler for the event name at the given spec
// version. The boolean is false when no era at or below the version
// registers the name; such events are skipped by the caller.
func (r *Registry) Lookup(name string, version decode.Semver) (Handler, bool) {
	for i := len(r.eras) - 1; i >= 0; i-- {
		e := r.eras[i]
		if version.AtLeast(e.minVersion) {
			if h, ok := e.handlers[name]; ok {
				return h, true
			}
		}
	}
	return nil, false
}

// Names returns the distinct event names registered in any era, sorted.
// The fetch layer uses this as the upstream event-name filter.
func (r *Registry) Names() []string {
	seen := make(map[string]struct{})
	for _, e := range r.eras {
		for name := range e.handlers {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
