package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dd0wney/chainagg/pkg/chain"
	"github.com/dd0wney/chainagg/pkg/stat"
)

func fixed(status Status) CheckFunc {
	return func() Check { return Check{Status: status} }
}

func TestCheckStatusAggregation(t *testing.T) {
	tests := []struct {
		name   string
		checks []Status
		want   Status
	}{
		{"none", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			for i, s := range tt.checks {
				hc.RegisterCheck(string(rune('a'+i)), fixed(s))
			}
			resp := hc.Check()
			if resp.Status != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, resp.Status)
			}
			if len(resp.Checks) != len(tt.checks) {
				t.Errorf("Expected %d checks, got %d", len(tt.checks), len(resp.Checks))
			}
		})
	}
}

func TestCheckNamesAndTimestamps(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck("structure", fixed(StatusHealthy))

	check := hc.Check().Checks["structure"]
	if check.Name != "structure" {
		t.Errorf("Expected name to be filled in, got %q", check.Name)
	}
	if check.LastChecked.IsZero() {
		t.Error("LastChecked should be set")
	}
}

func TestStructureCheck(t *testing.T) {
	g := chain.New()
	g.AddNode("A", stat.NewSum())
	sg := chain.NewSynchronized(g)

	if c := StructureCheck(sg.Validate)(); c.Status != StatusHealthy {
		t.Errorf("Expected healthy, got %+v", c)
	}

	broken := StructureCheck(func() error { return errors.New("asymmetric adjacency") })()
	if broken.Status != StatusUnhealthy || broken.Message != "asymmetric adjacency" {
		t.Errorf("Expected unhealthy with message, got %+v", broken)
	}
}

func TestBacklogCheck(t *testing.T) {
	g := chain.New(chain.WithStrategy(chain.Lazy))
	g.AddNode("A", stat.NewSum())
	g.AddNode("B", stat.NewSum())
	g.Connect("A", "B")
	g.UpdateSeq("A", stat.Of(1, 2, 3))

	backlog := func() (int, int) { return len(g.Dirty()), g.Pending() }

	c := BacklogCheck(backlog, 4)()
	if c.Status != StatusDegraded {
		t.Errorf("Expected degraded for 2 dirty + 3 pending, got %+v", c)
	}
	if c.Details["pending_deliveries"] != 3 {
		t.Errorf("Expected 3 pending, got %v", c.Details["pending_deliveries"])
	}

	if c := BacklogCheck(backlog, 0)(); c.Status != StatusHealthy {
		t.Errorf("Limit 0 should never degrade, got %+v", c)
	}

	g.Recompute()
	if c := BacklogCheck(backlog, 4)(); c.Status != StatusHealthy {
		t.Errorf("Expected healthy after recompute, got %+v", c)
	}
}

func TestHTTPHandler(t *testing.T) {
	tests := []struct {
		status Status
		code   int
	}{
		{StatusHealthy, http.StatusOK},
		{StatusDegraded, http.StatusOK},
		{StatusUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			hc := NewHealthChecker()
			hc.RegisterCheck("graph", fixed(tt.status))

			rec := httptest.NewRecorder()
			hc.HTTPHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected JSON content type, got %q", ct)
			}
			var resp Response
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != tt.status {
				t.Errorf("Expected %s, got %s", tt.status, resp.Status)
			}
		})
	}
}

func TestReadinessHandler(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterReadinessCheck("backlog", fixed(StatusDegraded))

	rec := httptest.NewRecorder()
	hc.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Degraded should not be ready, got %d", rec.Code)
	}
}
