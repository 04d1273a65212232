package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestCleanDocument(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{
			name: "operator key removed",
			in:   map[string]any{"email": map[string]any{"$ne": nil}},
			want: map[string]any{"email": map[string]any{}},
		},
		{
			name: "dotted key removed",
			in:   map[string]any{"external.subject": "x", "name": "ok"},
			want: map[string]any{"name": "ok"},
		},
		{
			name: "nested arrays cleaned",
			in:   []any{map[string]any{"$where": "1"}, "plain"},
			want: []any{map[string]any{}, "plain"},
		},
		{
			name: "scalars untouched",
			in:   "hello",
			want: "hello",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanDocument(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CleanDocument = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSanitizeStripsOperatorBody(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = string(body)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":{"$ne":null},"password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	Sanitize()(next).ServeHTTP(rec, req)

	if strings.Contains(seen, "$ne") {
		t.Errorf("operator key survived sanitization: %s", seen)
	}
	if !strings.Contains(seen, `"password":"x"`) {
		t.Errorf("benign field dropped: %s", seen)
	}
}

func TestSanitizeStripsOperatorQuery(t *testing.T) {
	var gotQuery string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me?$where=1&page=2", nil)
	rec := httptest.NewRecorder()

	Sanitize()(next).ServeHTTP(rec, req)

	if strings.Contains(gotQuery, "%24where") || strings.Contains(gotQuery, "$where") {
		t.Errorf("operator param survived: %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "page=2") {
		t.Errorf("benign param dropped: %s", gotQuery)
	}
}

func TestSanitizeLeavesMalformedJSON(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = string(body)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	Sanitize()(next).ServeHTTP(rec, req)

	if seen != `{"email":` {
		t.Errorf("malformed body rewritten: %s", seen)
	}
}
