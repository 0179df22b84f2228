package quota

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/keymeter/internal/domain"
)

func TestParse_Valid(t *testing.T) {
	q, err := Parse([]byte(`{"limit": 1000, "used": 250}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if q.Limit != 1000 {
		t.Errorf("expected limit 1000, got %v", q.Limit)
	}
	if q.Used != 250 {
		t.Errorf("expected used 250, got %v", q.Used)
	}
}

func TestParse_FractionalValues(t *testing.T) {
	q, err := Parse([]byte(`{"limit": 12.5, "used": 0.25}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if q.Limit != 12.5 || q.Used != 0.25 {
		t.Errorf("unexpected quota: %+v", q)
	}
}

func TestParse_ZeroUsedIsValid(t *testing.T) {
	q, err := Parse([]byte(`{"limit": 100, "used": 0}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if q.Used != 0 {
		t.Errorf("expected used 0, got %v", q.Used)
	}
}

func TestParse_ExtraFieldsIgnored(t *testing.T) {
	if _, err := Parse([]byte(`{"limit": 10, "used": 1, "plan": "pro"}`)); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
}

func TestParse_MalformedShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<!doctype html><html>`},
		{"missing limit", `{"used": 250}`},
		{"missing used", `{"limit": 1000}`},
		{"string limit", `{"limit": "1000", "used": 250}`},
		{"null fields", `{"limit": null, "used": null}`},
		{"empty object", `{}`},
		{"array", `[1000, 250]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.body))
			if !errors.Is(err, domain.ErrUpstreamProtocolError) {
				t.Errorf("expected ErrUpstreamProtocolError, got %v", err)
			}
		})
	}
}
