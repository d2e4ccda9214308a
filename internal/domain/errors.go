package domain

import "errors"

var (
	// ErrFetchFailed means the contest batch could not be retrieved.
	// Callers keep going with last-known or empty data.
	ErrFetchFailed = errors.New("contest fetch failed")

	// ErrNotFound means the referenced contest is not in the current batch.
	ErrNotFound = errors.New("contest not found")

	// ErrPersistenceCorrupt means the bookmark blob could not be decoded.
	// It is recovered locally as an empty set.
	ErrPersistenceCorrupt = errors.New("bookmark store corrupt")

	// ErrInvalidContest is returned for records breaking the data model.
	ErrInvalidContest = errors.New("invalid contest")

	// ErrInvalidSolution is returned for malformed solution links.
	ErrInvalidSolution = errors.New("invalid solution url")

	// ErrNotCompleted is returned when a solution is attached too early.
	ErrNotCompleted = errors.New("contest not completed")
)
