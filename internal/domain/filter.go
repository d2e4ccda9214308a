package domain

import "strings"

// FilterConfig holds the enabled platforms and statuses.
// A contest is visible only when both its platform and its status are enabled.
type FilterConfig struct {
	Platforms map[Platform]bool `json:"platforms"`
	Status    map[Status]bool   `json:"status"`
}

// DefaultFilterConfig enables every platform and every status.
func DefaultFilterConfig() FilterConfig {
	cfg := FilterConfig{
		Platforms: make(map[Platform]bool, 3),
		Status:    make(map[Status]bool, 3),
	}
	for _, p := range Platforms() {
		cfg.Platforms[p] = true
	}
	for _, s := range Statuses() {
		cfg.Status[s] = true
	}
	return cfg
}

// TogglePlatform returns a copy of cfg with p flipped.
func (cfg FilterConfig) TogglePlatform(p Platform) FilterConfig {
	out := cfg.clone()
	out.Platforms[p] = !out.Platforms[p]
	return out
}

// ToggleStatus returns a copy of cfg with s flipped.
func (cfg FilterConfig) ToggleStatus(s Status) FilterConfig {
	out := cfg.clone()
	out.Status[s] = !out.Status[s]
	return out
}

// ApplyToggles flips each listed platform and status label in turn, the way
// chip clicks do on top of the current selection. Unknown labels are ignored.
func (cfg FilterConfig) ApplyToggles(platforms, statuses []string) FilterConfig {
	for _, raw := range platforms {
		if p, ok := ParsePlatform(raw); ok {
			cfg = cfg.TogglePlatform(p)
		}
	}
	for _, raw := range statuses {
		if s, ok := ParseStatus(strings.ToLower(strings.TrimSpace(raw))); ok {
			cfg = cfg.ToggleStatus(s)
		}
	}
	return cfg
}

func (cfg FilterConfig) clone() FilterConfig {
	out := FilterConfig{
		Platforms: make(map[Platform]bool, len(cfg.Platforms)),
		Status:    make(map[Status]bool, len(cfg.Status)),
	}
	for k, v := range cfg.Platforms {
		out.Platforms[k] = v
	}
	for k, v := range cfg.Status {
		out.Status[k] = v
	}
	return out
}

// ParseFilterConfig builds a FilterConfig from comma-separated lists.
// A nil list enables the whole dimension; a non-nil empty list disables it.
// Unknown labels are ignored.
func ParseFilterConfig(platforms, statuses *string) FilterConfig {
	cfg := DefaultFilterConfig()

	if platforms != nil {
		cfg.Platforms = make(map[Platform]bool, 3)
		for _, raw := range strings.Split(*platforms, ",") {
			if p, ok := ParsePlatform(raw); ok {
				cfg.Platforms[p] = true
			}
		}
	}

	if statuses != nil {
		cfg.Status = make(map[Status]bool, 3)
		for _, raw := range strings.Split(*statuses, ",") {
			if s, ok := ParseStatus(strings.ToLower(strings.TrimSpace(raw))); ok {
				cfg.Status[s] = true
			}
		}
	}

	return cfg
}

// NormalizeQuery trims and lower-cases a free-text query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Matches reports whether c passes every predicate of cfg and the
// normalized query. Predicates short-circuit in order platform, status, search.
func Matches(c Contest, cfg FilterConfig, normalizedQuery string) bool {
	if !cfg.Platforms[c.Platform] {
		return false
	}
	if !cfg.Status[c.Status] {
		return false
	}
	if normalizedQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), normalizedQuery) ||
		strings.Contains(strings.ToLower(string(c.Platform)), normalizedQuery)
}

// Filter returns the visible subset of contests, preserving input order.
func Filter(contests []Contest, cfg FilterConfig, query string) []Contest {
	q := NormalizeQuery(query)
	out := make([]Contest, 0, len(contests))
	for _, c := range contests {
		if Matches(c, cfg, q) {
			out = append(out, c)
		}
	}
	return out
}

// WithStatus keeps only contests in status s, preserving order.
func WithStatus(contests []Contest, s Status) []Contest {
	out := make([]Contest, 0, len(contests))
	for _, c := range contests {
		if c.Status == s {
			out = append(out, c)
		}
	}
	return out
}

// WithIDs keeps only contests whose ID is in ids, preserving order.
func WithIDs(contests []Contest, ids map[string]bool) []Contest {
	out := make([]Contest, 0, len(ids))
	for _, c := range contests {
		if ids[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
