package seed

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

// FileSource loads contests from a seed YAML file on every call.
// Relative schedules are anchored on the time the source was created, so
// statuses advance with the clock between reloads instead of sliding.
type FileSource struct {
	loader *Loader
	mapper *Mapper
	logger logger.Logger
	anchor time.Time
}

// NewFileSource creates a source backed by path.
func NewFileSource(path string, log logger.Logger, anchor time.Time) *FileSource {
	return &FileSource{
		loader: NewLoader(path),
		mapper: NewMapper(),
		logger: log,
		anchor: anchor,
	}
}

func (s *FileSource) Name() string { return "seed-file" }

// Load reads, parses and maps the seed file.
func (s *FileSource) Load(ctx context.Context) ([]domain.Contest, error) {
	config, err := s.loader.Load()
	if err != nil {
		return nil, err
	}
	return mapAndReport(s.mapper, config, s.anchor, s.logger)
}

// BuiltinSource serves the demo batch used when no seed file is configured.
type BuiltinSource struct {
	mapper *Mapper
	logger logger.Logger
	anchor time.Time
}

// NewBuiltinSource anchors the demo schedule on anchor.
func NewBuiltinSource(log logger.Logger, anchor time.Time) *BuiltinSource {
	return &BuiltinSource{mapper: NewMapper(), logger: log, anchor: anchor}
}

func (s *BuiltinSource) Name() string { return "builtin" }

// Load maps the demo batch.
func (s *BuiltinSource) Load(ctx context.Context) ([]domain.Contest, error) {
	return mapAndReport(s.mapper, Builtin(), s.anchor, s.logger)
}

func mapAndReport(m *Mapper, config Config, anchor time.Time, log logger.Logger) ([]domain.Contest, error) {
	contests, skipped, err := m.MapContests(config, anchor)
	for _, e := range multierr.Errors(skipped) {
		log.Warn("skipping invalid seed entry", logger.Error(e))
	}
	if err != nil {
		return nil, err
	}
	return contests, nil
}

// Builtin returns the demo batch: upcoming, ongoing and completed contests on
// every platform.
func Builtin() Config {
	return Config{Contests: []ContestEntry{
		{
			ID:       "cf-1",
			Name:     "Codeforces Round #924 (Div. 2)",
			Platform: "codeforces",
			URL:      "https://codeforces.com/contests",
			StartIn:  "24h",
			Duration: "2h",
		},
		{
			ID:       "cc-1",
			Name:     "CodeChef Starters 100",
			Platform: "codechef",
			URL:      "https://www.codechef.com/contests",
			StartIn:  "48h",
			Duration: "3h",
		},
		{
			ID:       "lc-1",
			Name:     "LeetCode Weekly Contest 356",
			Platform: "leetcode",
			URL:      "https://leetcode.com/contest/",
			StartIn:  "120h",
			Duration: "1h30m",
		},
		{
			ID:       "cf-2",
			Name:     "Codeforces Round #923 (Div. 3)",
			Platform: "codeforces",
			URL:      "https://codeforces.com/contests",
			StartIn:  "-168h",
			Duration: "2h",
			Solution: "https://www.youtube.com/watch?v=example1",
		},
		{
			ID:       "cc-2",
			Name:     "CodeChef Starters 99",
			Platform: "codechef",
			URL:      "https://www.codechef.com/contests",
			StartIn:  "-336h",
			Duration: "3h",
			Solution: "https://www.youtube.com/watch?v=example2",
		},
		{
			ID:       "lc-2",
			Name:     "LeetCode Weekly Contest 355",
			Platform: "leetcode",
			URL:      "https://leetcode.com/contest/",
			StartIn:  "-72h",
			Duration: "1h30m",
		},
		{
			ID:       "cf-3",
			Name:     "Codeforces Round #922 (Div. 1)",
			Platform: "codeforces",
			URL:      "https://codeforces.com/contests",
			StartIn:  "0s",
			Duration: "1h",
		},
	}}
}
