package revalidate

import (
	"context"
	"net/http"
	"strings"
	"sync"
)

// Header lists the stale paths of a mutating response, comma separated.
const Header = "X-Revalidate-Paths"

type trackerKey struct{}

type tracker struct {
	mu    sync.Mutex
	paths []string
}

func (t *tracker) add(paths []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths = normalize(append(t.paths, paths...))
}

func (t *tracker) header() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.paths, ",")
}

func track(ctx context.Context, paths []string) {
	if t, ok := ctx.Value(trackerKey{}).(*tracker); ok {
		t.add(paths)
	}
}

// Middleware echoes every path revalidated while serving the request in the
// response header. Paths must be recorded before the first write.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := &tracker{}
		ctx := context.WithValue(r.Context(), trackerKey{}, t)
		next.ServeHTTP(&headerWriter{ResponseWriter: w, tracker: t}, r.WithContext(ctx))
	})
}

type headerWriter struct {
	http.ResponseWriter
	tracker *tracker
	wrote   bool
}

func (w *headerWriter) WriteHeader(code int) {
	if !w.wrote {
		w.wrote = true
		if h := w.tracker.header(); h != "" {
			w.Header().Set(Header, h)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *headerWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
