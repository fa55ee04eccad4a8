package servicenow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc, opts ...Option) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		handler := handler
		// Go 1.21's ServeMux has no method-qualified patterns; split the
		// "METHOD /path" key and enforce the method in the handler.
		method, path, _ := strings.Cut(pattern, " ")
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.NotFound(w, r)
				return
			}
			handler(w, r)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(srv.URL, opts...)
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/now/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "1.2.0"})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("got status %q, want ok", resp.Status)
	}
	if resp.Version != "1.2.0" {
		t.Errorf("got version %q, want 1.2.0", resp.Version)
	}
}

func TestQueryParams(t *testing.T) {
	var gotQuery, gotFields, gotDisplay, gotLimit string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/now/table/cmdb_ci": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			gotQuery = q.Get("sysparm_query")
			gotFields = q.Get("sysparm_fields")
			gotDisplay = q.Get("sysparm_display_value")
			gotLimit = q.Get("sysparm_limit")
			jsonResponse(w, 200, map[string]any{"result": []Record{}})
		},
	})

	_, err := c.Table.Query(context.Background(), "cmdb_ci", QueryOptions{
		Query:   "name=web-01",
		Fields:  []string{"sys_id", "name", "sys_class_name"},
		Display: DisplayAll,
		Limit:   5,
	})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if gotQuery != "name=web-01" {
		t.Errorf("sysparm_query = %q", gotQuery)
	}
	if gotFields != "sys_id,name,sys_class_name" {
		t.Errorf("sysparm_fields = %q", gotFields)
	}
	if gotDisplay != "all" {
		t.Errorf("sysparm_display_value = %q", gotDisplay)
	}
	if gotLimit != "5" {
		t.Errorf("sysparm_limit = %q", gotLimit)
	}
}

func TestQueryOmitsDefaultParams(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/now/table/cmdb_ci": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			for _, p := range []string{"sysparm_query", "sysparm_fields", "sysparm_display_value", "sysparm_limit"} {
				if q.Has(p) {
					t.Errorf("unexpected param %s=%q", p, q.Get(p))
				}
			}
			jsonResponse(w, 200, map[string]any{"result": []Record{}})
		},
	})
	if _, err := c.Table.Query(context.Background(), "cmdb_ci", QueryOptions{}); err != nil {
		t.Fatalf("Query error: %v", err)
	}
}

func TestDualValueDecoding(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/now/table/cmdb_rel_ci": func(w http.ResponseWriter, _ *http.Request) {
			// Mixed shapes: plain strings and dual-value objects.
			jsonResponse(w, 200, map[string]any{"result": []map[string]any{{
				"sys_id": "0a1b",
				"parent": map[string]string{"value": "p1", "display_value": "web-01"},
				"child":  map[string]string{"value": "c1", "display_value": "db-01"},
				"type":   map[string]string{"value": "t1", "display_value": "Depends on::Used by"},
			}}})
		},
	})

	recs, err := c.Table.Query(context.Background(), "cmdb_rel_ci", QueryOptions{Display: DisplayAll})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	r := recs[0]
	if r.Value("sys_id") != "0a1b" {
		t.Errorf("sys_id = %q", r.Value("sys_id"))
	}
	if r.Display("sys_id") != "0a1b" {
		t.Errorf("sys_id display fallback = %q", r.Display("sys_id"))
	}
	if r.Value("parent") != "p1" || r.Display("parent") != "web-01" {
		t.Errorf("parent = %q / %q", r.Value("parent"), r.Display("parent"))
	}
	if r.Display("type") != "Depends on::Used by" {
		t.Errorf("type display = %q", r.Display("type"))
	}
	if r.Value("missing") != "" || r.Display("missing") != "" {
		t.Errorf("missing field should be empty")
	}
}

func TestBearerAuth(t *testing.T) {
	var gotAuth string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/now/table/cmdb_ci": func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			jsonResponse(w, 200, map[string]any{"result": []Record{}})
		},
	}, WithToken("tok-123"))
	if _, err := c.Table.Query(context.Background(), "cmdb_ci", QueryOptions{}); err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/now/table/cmdb_ci": func(w http.ResponseWriter, r *http.Request) {
			gotUser, gotPass, gotOK = r.BasicAuth()
			jsonResponse(w, 200, map[string]any{"result": []Record{}})
		},
	}, WithBasicAuth("admin", "secret"))
	if _, err := c.Table.Query(context.Background(), "cmdb_ci", QueryOptions{}); err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if !gotOK || gotUser != "admin" || gotPass != "secret" {
		t.Errorf("basic auth = %q/%q ok=%v", gotUser, gotPass, gotOK)
	}
}

func TestAPIError(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/now/table/cmdb_ci": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]any{
				"error":  map[string]string{"message": "No Record found", "detail": "Record does not exist"},
				"status": "failure",
			})
		},
	})
	_, err := c.Table.Query(context.Background(), "cmdb_ci", QueryOptions{Query: "sys_id=nope"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound = false for %v", err)
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type %T", err)
	}
	if apiErr.Message != "No Record found" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestAPIErrorNonJSONBody(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/now/table/cmdb_ci": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(401)
			w.Write([]byte("unauthorized")) //nolint:errcheck
		},
	})
	_, err := c.Table.Query(context.Background(), "cmdb_ci", QueryOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsAuthFailed(err) {
		t.Errorf("IsAuthFailed = false for %v", err)
	}
	if IsNotFound(err) {
		t.Errorf("IsNotFound = true for %v", err)
	}
}

func TestCreate(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/now/table/cmdb_ci": func(w http.ResponseWriter, r *http.Request) {
			var req map[string]string
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			jsonResponse(w, 201, map[string]any{"result": map[string]any{
				"sys_id": "new1",
				"name":   req["name"],
			}})
		},
	})
	rec, err := c.Table.Create(context.Background(), "cmdb_ci", map[string]string{"name": "db-02"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Value("sys_id") != "new1" || rec.Value("name") != "db-02" {
		t.Errorf("record = %v", rec)
	}
}
