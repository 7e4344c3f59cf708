package health

import (
	"strings"
	"testing"
)

func TestHealthCheckerReport(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterComponent("objects")
	hc.RegisterComponent("refs")

	if got := hc.GetOverallHealth(); got != Healthy {
		t.Errorf("GetOverallHealth() = %v, want healthy", got)
	}

	hc.Report("catalog", Degraded, "catalog holds %d commits, store holds %d", 1, 2)
	if got := hc.GetOverallHealth(); got != Degraded {
		t.Errorf("GetOverallHealth() = %v, want degraded", got)
	}

	hc.Report("refs", Unhealthy, "branch %s points at missing commit", "feature")
	hc.Report("refs", Degraded, "minor")

	report := hc.GenerateReport()
	if report.OverallStatus != Unhealthy {
		t.Errorf("OverallStatus = %v, want unhealthy", report.OverallStatus)
	}
	if len(report.Components) != 3 || report.Components[0].Name != "catalog" {
		t.Fatalf("Components = %+v", report.Components)
	}
	refs := report.Components[2]
	if refs.Status != Unhealthy || len(refs.Problems) != 2 {
		t.Errorf("refs = %+v, want unhealthy with 2 problems", refs)
	}
	if !strings.HasPrefix(report.Summary, "Repository unhealthy: 1 unhealthy, 1 degraded, 1 healthy") {
		t.Errorf("Summary = %q", report.Summary)
	}
	if !strings.Contains(report.String(), "[unhealthy] refs: branch feature points at missing commit") {
		t.Errorf("String() = %q", report.String())
	}
}

func TestHealthyReport(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterComponent("objects")
	report := hc.GenerateReport()
	if report.OverallStatus != Healthy || report.Summary != "Repository healthy: 1 components checked" {
		t.Errorf("report = %+v", report)
	}
}
