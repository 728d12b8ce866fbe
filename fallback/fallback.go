// Package fallback resolves missing or broken image references to a
// deterministic default background.
package fallback

import "github.com/veligo/galleria/gallery"

// DefaultBackground is the process-wide default background reference. It is a
// constant, so it is safe to use from any goroutine without synchronization.
const DefaultBackground gallery.Locator = "/images/default-background.jpg"

// A Resolver substitutes [DefaultBackground] for absent or broken image
// references. The zero-value Resolver has the fallback disabled; use [New]
// for the default-enabled policy.
type Resolver struct {
	// ShowDefaultBackground enables the substitution.
	ShowDefaultBackground bool
}

// New returns a [Resolver] with the default background enabled.
func New() Resolver {
	return Resolver{ShowDefaultBackground: true}
}

// Resolve returns the renderable source for the given locator. An empty
// locator resolves to [DefaultBackground] if the policy is enabled; any other
// locator is returned unchanged.
func (r Resolver) Resolve(l gallery.Locator) gallery.Locator {
	if l == "" && r.ShowDefaultBackground {
		return DefaultBackground
	}
	return l
}

// OnError returns the substitute source after a render-time load failure of a
// previously resolved locator. If the policy is disabled, the result is empty
// and the caller renders nothing.
func (r Resolver) OnError(gallery.Locator) gallery.Locator {
	if r.ShowDefaultBackground {
		return DefaultBackground
	}
	return ""
}
