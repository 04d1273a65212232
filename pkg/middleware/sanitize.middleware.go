package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Sanitize strips document-store operator keys ("$"-prefixed or dotted) from
// JSON bodies and query parameters before validation or business logic sees
// them. It runs ahead of every handler; malformed JSON is left untouched for
// the handler's decoder to reject.
func Sanitize() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sanitizeQuery(r)

			if hasJSONBody(r) {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
				_ = r.Body.Close()
				if err != nil {
					http.Error(w, "unreadable body", http.StatusBadRequest)
					return
				}

				var doc any
				if json.Unmarshal(body, &doc) == nil {
					cleaned, err := json.Marshal(CleanDocument(doc))
					if err == nil {
						body = cleaned
					}
				}

				r.Body = io.NopCloser(bytes.NewReader(body))
				r.ContentLength = int64(len(body))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasJSONBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return false
	}
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(strings.TrimSpace(strings.ToLower(ct)), "application/json")
}

func sanitizeQuery(r *http.Request) {
	q := r.URL.Query()
	changed := false
	for key := range q {
		if isOperatorKey(key) {
			q.Del(key)
			changed = true
		}
	}
	if changed {
		r.URL.RawQuery = q.Encode()
	}
}

// CleanDocument removes operator keys recursively from a decoded JSON value.
func CleanDocument(doc any) any {
	switch v := doc.(type) {
	case map[string]any:
		for key, val := range v {
			if isOperatorKey(key) {
				delete(v, key)
				continue
			}
			v[key] = CleanDocument(val)
		}
		return v
	case []any:
		for i, val := range v {
			v[i] = CleanDocument(val)
		}
		return v
	default:
		return doc
	}
}

func isOperatorKey(key string) bool {
	return strings.HasPrefix(key, "$") || strings.Contains(key, ".")
}
