package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

const defaultCheckTimeout = 2 * time.Second

// Check probes one dependency.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Service runs dependency checks for the health endpoint.
type Service struct {
	checks  []Check
	Timeout time.Duration
}

// NewService constructs a health service. Checks with a nil Ping are skipped.
func NewService(checks ...Check) *Service {
	s := &Service{Timeout: defaultCheckTimeout}
	for _, c := range checks {
		if c.Ping != nil && c.Name != "" {
			s.checks = append(s.checks, c)
		}
	}
	sort.Slice(s.checks, func(i, j int) bool { return s.checks[i].Name < s.checks[j].Name })
	return s
}

// Report is the health payload.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}

// Status runs every check concurrently. Each check gets its own timeout.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true, Checks: make(map[string]string, len(s.checks))}
	if len(s.checks) == 0 {
		return report
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, c := range s.checks {
		wg.Add(1)
		go func(c Check) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout())
			defer cancel()
			result := "ok"
			if err := c.Ping(cctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			report.Checks[c.Name] = result
			if result != "ok" {
				report.OK = false
			}
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return report
}

func (s *Service) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return defaultCheckTimeout
}
