// Package cleaner defines the interface shared by HTML cleaners. The mockup
// package provides the normalizing implementation; NoopCleaner passes
// captured markup through untouched.
package cleaner

// Cleaner transforms HTML content.
type Cleaner interface {
	// Clean transforms the input HTML. Implementations degrade gracefully
	// on malformed markup instead of failing.
	Clean(html string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
