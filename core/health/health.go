package health

import (
	"fmt"
	"sort"
	"strings"
)

// HealthStatus is the state of one checked part of a repository.
type HealthStatus int

const (
	Healthy HealthStatus = iota
	Degraded
	Unhealthy
)

func (h HealthStatus) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Unhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// ComponentHealth collects the problems found in one part of a repository,
// such as the object store or the refs.
type ComponentHealth struct {
	Name     string
	Status   HealthStatus
	Problems []string
}

// HealthChecker accumulates findings per component. Unhealthy findings
// are corruption; degraded ones are repairable (a stale catalog, say).
type HealthChecker struct {
	components map[string]*ComponentHealth
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{components: make(map[string]*ComponentHealth)}
}

// RegisterComponent adds a component that starts out healthy.
func (hc *HealthChecker) RegisterComponent(name string) {
	if _, ok := hc.components[name]; !ok {
		hc.components[name] = &ComponentHealth{Name: name, Status: Healthy}
	}
}

// Report records a problem. A component's status only gets worse.
func (hc *HealthChecker) Report(name string, status HealthStatus, format string, args ...interface{}) {
	hc.RegisterComponent(name)
	c := hc.components[name]
	if status > c.Status {
		c.Status = status
	}
	c.Problems = append(c.Problems, fmt.Sprintf(format, args...))
}

// GetOverallHealth is the worst status of any component.
func (hc *HealthChecker) GetOverallHealth() HealthStatus {
	overall := Healthy
	for _, c := range hc.components {
		if c.Status > overall {
			overall = c.Status
		}
	}
	return overall
}

// HealthReport is the outcome of a repository check.
type HealthReport struct {
	OverallStatus HealthStatus
	Components    []ComponentHealth
	Summary       string
}

func (hc *HealthChecker) GenerateReport() *HealthReport {
	names := make([]string, 0, len(hc.components))
	for name := range hc.components {
		names = append(names, name)
	}
	sort.Strings(names)

	var healthy, degraded, unhealthy int
	components := make([]ComponentHealth, 0, len(names))
	for _, name := range names {
		c := *hc.components[name]
		c.Problems = append([]string(nil), c.Problems...)
		components = append(components, c)

		switch c.Status {
		case Healthy:
			healthy++
		case Degraded:
			degraded++
		case Unhealthy:
			unhealthy++
		}
	}

	var summary string
	switch {
	case unhealthy > 0:
		summary = fmt.Sprintf("Repository unhealthy: %d unhealthy, %d degraded, %d healthy", unhealthy, degraded, healthy)
	case degraded > 0:
		summary = fmt.Sprintf("Repository degraded: %d degraded, %d healthy", degraded, healthy)
	default:
		summary = fmt.Sprintf("Repository healthy: %d components checked", healthy)
	}

	return &HealthReport{
		OverallStatus: hc.GetOverallHealth(),
		Components:    components,
		Summary:       summary,
	}
}

// String renders the report one line per problem.
func (r *HealthReport) String() string {
	var b strings.Builder
	b.WriteString(r.Summary)
	b.WriteByte('\n')
	for _, c := range r.Components {
		for _, p := range c.Problems {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", c.Status, c.Name, p)
		}
	}
	return b.String()
}
