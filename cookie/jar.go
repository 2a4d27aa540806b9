package cookie

import "net/http"

// Jar abstracts the cookie read/write boundary so the store can be
// exercised without an HTTP layer.
type Jar interface {
	// Get returns the raw value of the named cookie and whether it exists.
	Get(name string) (string, bool)
	// Set writes the cookie to the response side of the boundary.
	Set(c *http.Cookie)
}

// HTTPJar binds a Jar to one request/response pair. Writes are mirrored into
// an overlay so that a store operation later in the same request observes the
// value written earlier, not the stale inbound header.
//
// HTTPJar instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HTTPJar struct {
	r       *http.Request
	w       http.ResponseWriter
	overlay map[string]string
}

// NewHTTPJar returns a jar reading from r and writing to w.
func NewHTTPJar(w http.ResponseWriter, r *http.Request) *HTTPJar {
	return &HTTPJar{r: r, w: w, overlay: map[string]string{}}
}

// Get returns the cookie value, preferring a value written earlier in the
// same request over the inbound header.
func (j *HTTPJar) Get(name string) (string, bool) {
	if v, ok := j.overlay[name]; ok {
		return v, true
	}
	c, err := j.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

// Set writes the cookie to the response and records it in the overlay.
func (j *HTTPJar) Set(c *http.Cookie) {
	j.overlay[c.Name] = c.Value
	http.SetCookie(j.w, c)
}

// MemJar is an in-memory Jar used by tests and by callers that round-trip
// cookie values outside an HTTP handler.
type MemJar struct {
	values map[string]string
}

// NewMemJar returns an empty in-memory jar.
func NewMemJar() *MemJar {
	return &MemJar{values: map[string]string{}}
}

// Get returns the stored value for name.
func (j *MemJar) Get(name string) (string, bool) {
	v, ok := j.values[name]
	return v, ok
}

// Set stores the cookie value. A max-age below zero deletes the entry,
// matching browser behavior for expired cookies.
func (j *MemJar) Set(c *http.Cookie) {
	if c.MaxAge < 0 {
		delete(j.values, c.Name)
		return
	}
	j.values[c.Name] = c.Value
}
