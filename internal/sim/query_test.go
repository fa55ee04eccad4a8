package sim

import (
	"testing"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    Query
		wantErr bool
	}{
		{
			name:    "empty",
			encoded: "",
			want:    nil,
		},
		{
			name:    "single equality",
			encoded: "name=web-01",
			want:    Query{{Field: "name", Op: "=", Value: "web-01"}},
		},
		{
			name:    "or pair",
			encoded: "parent=abc^ORchild=abc",
			want: Query{
				{Field: "parent", Op: "=", Value: "abc"},
				{Field: "child", Op: "=", Value: "abc", Or: true},
			},
		},
		{
			name:    "and chain with like",
			encoded: "sys_class_name=cmdb_ci_appl^nameLIKEweb",
			want: Query{
				{Field: "sys_class_name", Op: "=", Value: "cmdb_ci_appl"},
				{Field: "name", Op: "LIKE", Value: "web"},
			},
		},
		{
			name:    "empty field",
			encoded: "=value",
			wantErr: true,
		},
		{
			name:    "no operator",
			encoded: "name",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseQuery(tc.encoded)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d conditions, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("condition %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestQueryMatch(t *testing.T) {
	raw := map[string]string{
		"sys_id": "abc",
		"parent": "p1",
		"child":  "c1",
		"name":   "Web-Server-01",
	}

	tests := []struct {
		name    string
		encoded string
		want    bool
	}{
		{"equality hit", "parent=p1", true},
		{"equality miss", "parent=p2", false},
		{"or first arm", "parent=p1^ORchild=zzz", true},
		{"or second arm", "parent=zzz^ORchild=c1", true},
		{"or both miss", "parent=zzz^ORchild=zzz", false},
		{"and both hit", "parent=p1^child=c1", true},
		{"and one miss", "parent=p1^child=zzz", false},
		{"like is case-insensitive", "nameLIKEweb-server", true},
		{"like miss", "nameLIKEdatabase", false},
		{"unknown field", "missing=x", false},
		{"empty matches all", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := ParseQuery(tc.encoded)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			if got := q.Match(raw); got != tc.want {
				t.Errorf("Match = %v, want %v", got, tc.want)
			}
		})
	}
}
