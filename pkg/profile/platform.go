// Platform registration and interface definitions.

package profile

import (
	"slices"
	"sync"
)

// Platform describes a social network whose profile URLs can be recognized
// in search results. Each platform package registers itself via Register()
// in an init() function.
type Platform interface {
	// Name returns the display label (e.g., "LinkedIn", "Twitter/X").
	Name() string

	// Priority breaks identity score ties; lower ranks first.
	Priority() int

	// Match returns true if the URL is on this platform's domain.
	Match(url string) bool

	// IsProfile returns true if the URL is a profile root, not a post,
	// photo, search or group page.
	IsProfile(url string) bool

	// Username returns the handle encoded in a profile URL.
	Username(url string) string
}

// Annotator is implemented by platforms that can pull extra fields out of a
// search result's title and snippet.
type Annotator interface {
	Annotate(acct *SocialAccount, title, snippet string)
}

// Canonicalizer is implemented by platforms whose profile identity is
// carried in the query string, which the default canonical form drops.
type Canonicalizer interface {
	CanonicalURL(url string) string
}

var (
	registryMu sync.RWMutex
	registry   []Platform
	byName     = make(map[string]Platform)
)

// Register adds a platform to the global registry.
func Register(p Platform) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := p.Name()
	if _, exists := byName[name]; exists {
		panic("platform already registered: " + name)
	}
	registry = append(registry, p)
	byName[name] = p
	slices.SortStableFunc(registry, func(a, b Platform) int { return a.Priority() - b.Priority() })
}

// Platforms returns all registered platforms ordered by priority.
func Platforms() []Platform {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Clone(registry)
}

// LookupPlatform returns the platform with the given name, or nil if not found.
func LookupPlatform(name string) Platform {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return byName[name]
}

// MatchURL returns the highest-priority platform whose domain matches url,
// or nil if none match.
func MatchURL(url string) Platform {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, p := range registry {
		if p.Match(url) {
			return p
		}
	}
	return nil
}
