package push

import (
	"slices"
	"strings"
	"sync"
)

// Registry holds the browser subscriptions known to this process. Like
// sessions they live in memory; clients re-register on every page load.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]Subscription
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]Subscription)}
}

// Add registers sub, replacing any earlier registration of the same endpoint.
func (r *Registry) Add(sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.Endpoint] = sub
}

// Remove reports whether endpoint was registered.
func (r *Registry) Remove(endpoint string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[endpoint]
	delete(r.subs, endpoint)
	return ok
}

// ForMembers returns the subscriptions of the named members, ordered by endpoint.
func (r *Registry) ForMembers(names ...string) []Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Subscription
	for _, sub := range r.subs {
		if slices.Contains(names, sub.Member) {
			out = append(out, sub)
		}
	}
	slices.SortFunc(out, func(a, b Subscription) int { return strings.Compare(a.Endpoint, b.Endpoint) })
	return out
}

// RenameMember moves every subscription of oldName to newName.
func (r *Registry) RenameMember(oldName, newName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for endpoint, sub := range r.subs {
		if sub.Member == oldName {
			sub.Member = newName
			r.subs[endpoint] = sub
		}
	}
}

// RemoveMember drops every subscription of name.
func (r *Registry) RemoveMember(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for endpoint, sub := range r.subs {
		if sub.Member == name {
			delete(r.subs, endpoint)
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
