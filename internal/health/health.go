package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusSkipped   Status = "skipped"
)

// Check probes one external dependency. A nil error means it is usable; the
// detail string, typically a version or address, is shown alongside.
type Check func(ctx context.Context) (string, error)

type ComponentHealth struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Latency int64  `json:"latency_ms"`
	Error   string `json:"error,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type HealthResponse struct {
	Status     Status            `json:"status"`
	Components []ComponentHealth `json:"components,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Healthy reports whether no checked component failed.
func (r HealthResponse) Healthy() bool {
	return r.Status != StatusUnhealthy
}

type component struct {
	name     string
	check    Check
	skipNote string
}

type Checker struct {
	components []component
	timeout    time.Duration
}

func NewChecker() *Checker {
	return &Checker{timeout: 5 * time.Second}
}

// WithTimeout bounds the whole CheckAll call.
func (c *Checker) WithTimeout(d time.Duration) *Checker {
	if d > 0 {
		c.timeout = d
	}
	return c
}

func (c *Checker) Add(name string, check Check) *Checker {
	c.components = append(c.components, component{name: name, check: check})
	return c
}

// Skip lists a component that is not configured, with a note shown to the user.
func (c *Checker) Skip(name, note string) *Checker {
	c.components = append(c.components, component{name: name, skipNote: note})
	return c
}

func (c *Checker) CheckAll(ctx context.Context) HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var wg sync.WaitGroup
	components := make([]ComponentHealth, 0, len(c.components))
	mu := sync.Mutex{}

	for _, comp := range c.components {
		if comp.check == nil {
			components = append(components, ComponentHealth{
				Name:   comp.name,
				Status: StatusSkipped,
				Detail: comp.skipNote,
			})
			continue
		}

		wg.Add(1)
		go func(comp component) {
			defer wg.Done()
			res := run(ctx, comp.name, comp.check)
			mu.Lock()
			components = append(components, res)
			mu.Unlock()
		}(comp)
	}

	wg.Wait()

	sort.Slice(components, func(i, j int) bool {
		return components[i].Name < components[j].Name
	})

	status := StatusHealthy
	for _, comp := range components {
		if comp.Status == StatusUnhealthy {
			status = StatusUnhealthy
			break
		}
	}

	return HealthResponse{
		Status:     status,
		Components: components,
		Timestamp:  time.Now(),
	}
}

func run(ctx context.Context, name string, check Check) ComponentHealth {
	start := time.Now()
	detail, err := check(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{
			Name:    name,
			Status:  StatusUnhealthy,
			Latency: latency,
			Error:   err.Error(),
			Detail:  detail,
		}
	}
	return ComponentHealth{
		Name:    name,
		Status:  StatusHealthy,
		Latency: latency,
		Detail:  detail,
	}
}
