package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

const (
	maxLoggedBody = 64 << 10
	redacted      = "[FILTERED]"
)

// redactKeys are matched as substrings of lower-cased header and JSON keys.
var redactKeys = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"key",
	"session",
	"credential",
	"auth",
	"cookie",
	"code_verifier",
}

func isRedacted(name string) bool {
	name = strings.ToLower(name)
	for _, k := range redactKeys {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// LoggingMiddleware writes one line per request once the handler returns.
// JSON bodies are logged with secrets replaced; page and file bodies are not
// logged at all.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			in := peekBody(r)

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			attrs := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", rec.size,
				"remote_addr", r.RemoteAddr,
				"headers", headerSummary(r.Header),
			}
			if in != "" {
				attrs = append(attrs, "request_body", in)
			}
			if isJSON(rec.Header().Get("Content-Type")) && rec.body.Len() > 0 {
				attrs = append(attrs, "response_body", redactJSON(rec.body.Bytes()))
			}
			logger.Log(r.Context(), level, "http request", attrs...)
		})
	}
}

type recorder struct {
	http.ResponseWriter
	status int
	size   int
	body   bytes.Buffer
}

func (rw *recorder) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	if rw.body.Len() < maxLoggedBody {
		rw.body.Write(b)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, "application/json")
}

// peekBody reads a small JSON request body and puts it back for the handler.
func peekBody(r *http.Request) string {
	if r.Body == nil || r.ContentLength < 0 || r.ContentLength > maxLoggedBody || !isJSON(r.Header.Get("Content-Type")) {
		return ""
	}
	raw, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	return redactJSON(raw)
}

// headerSummary keeps cookie names but never their values.
func headerSummary(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if strings.EqualFold(name, "Cookie") {
			var names []string
			for _, c := range (&http.Request{Header: http.Header{"Cookie": values}}).Cookies() {
				names = append(names, c.Name)
			}
			out[name] = strings.Join(names, ", ")
			continue
		}
		if isRedacted(name) {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func redactJSON(body []byte) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "[unparsable body]"
	}
	b, err := json.Marshal(redactValue(v))
	if err != nil {
		return "[unparsable body]"
	}
	return string(b)
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isRedacted(k) {
				out[k] = redacted
			} else {
				out[k] = redactValue(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = redactValue(val)
		}
		return out
	}
	return v
}
