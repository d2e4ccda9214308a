package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
)

// Mapper converts seed entries to domain contests
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapContests converts config to contests in file order, resolving relative
// schedules against now. Invalid entries are skipped; their errors are
// combined into skipped. err is set only when no entry survived.
func (m *Mapper) MapContests(config Config, now time.Time) (contests []domain.Contest, skipped error, err error) {
	contests = make([]domain.Contest, 0, len(config.Contests))

	for i, entry := range config.Contests {
		c, mapErr := m.mapEntry(entry, now)
		if mapErr != nil {
			skipped = multierr.Append(skipped, fmt.Errorf("entry %d: %w", i, mapErr))
			continue
		}
		contests = append(contests, c)
	}

	if len(contests) == 0 {
		return nil, skipped, fmt.Errorf("no valid contests found in seed config")
	}

	return contests, skipped, nil
}

func (m *Mapper) mapEntry(entry ContestEntry, now time.Time) (domain.Contest, error) {
	platform, ok := domain.ParsePlatform(entry.Platform)
	if !ok {
		return domain.Contest{}, fmt.Errorf("%w: unknown platform %q", domain.ErrInvalidContest, entry.Platform)
	}

	start, end, err := schedule(entry, now)
	if err != nil {
		return domain.Contest{}, err
	}

	id := strings.TrimSpace(entry.ID)
	if id == "" {
		id = generateContestID(platform, entry.Name, entry.URL)
	}

	c := domain.Contest{
		ID:              id,
		Name:            strings.TrimSpace(entry.Name),
		Platform:        platform,
		URL:             strings.TrimSpace(entry.URL),
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: domain.DurationMinutesBetween(start, end),
		SolutionURL:     strings.TrimSpace(entry.Solution),
	}

	if err := c.Validate(); err != nil {
		return domain.Contest{}, err
	}

	return c, nil
}

// schedule resolves the absolute or relative form of an entry.
func schedule(entry ContestEntry, now time.Time) (time.Time, time.Time, error) {
	if entry.Start != "" || entry.End != "" {
		start, err := time.Parse(time.RFC3339, entry.Start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start: %v", domain.ErrInvalidContest, err)
		}
		end, err := time.Parse(time.RFC3339, entry.End)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end: %v", domain.ErrInvalidContest, err)
		}
		return start, end, nil
	}

	offset := time.Duration(0)
	if entry.StartIn != "" {
		d, err := time.ParseDuration(entry.StartIn)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_in: %v", domain.ErrInvalidContest, err)
		}
		offset = d
	}

	length, err := time.ParseDuration(entry.Duration)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: duration: %v", domain.ErrInvalidContest, err)
	}

	start := now.Add(offset)
	return start, start.Add(length), nil
}

// generateContestID derives a stable ID so an entry keeps its bookmarks
// across reloads even without an explicit id.
func generateContestID(platform domain.Platform, name, url string) string {
	key := string(platform) + "|" + strings.TrimSpace(name) + "|" + strings.TrimSpace(url)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}
