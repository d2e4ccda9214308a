package seed

// ContestEntry is one contest in the seed YAML.
//
// A schedule is either absolute (start + end, RFC3339) or relative to load
// time (start_in + duration, Go durations such as "24h" or "-168h").
type ContestEntry struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Platform string `yaml:"platform"`
	URL      string `yaml:"url"`

	Start string `yaml:"start"`
	End   string `yaml:"end"`

	StartIn  string `yaml:"start_in"`
	Duration string `yaml:"duration"`

	// DurationMinutes is accepted for compatibility and recomputed on map.
	DurationMinutes int `yaml:"duration_minutes"`

	Solution string `yaml:"solution"`
}

// Config is the root structure of the seed file.
type Config struct {
	Contests []ContestEntry `yaml:"contests"`
}
