// Package storage persists the mutable state consulted by the scheduler: the
// history of exercise trials and the blacklist of units to skip.
package storage

import "mastery-scheduler/internal/models"

// TrialStore stores the ordered history of trials per exercise. It must be
// safe for concurrent use: the scheduler reads from it during scheduling and
// writes to it on score submission without serializing those calls itself.
type TrialStore interface {
	// Scores returns up to numScores of the most recent trials for the given
	// exercise, ordered by timestamp descending.
	Scores(exerciseID string, numScores int) ([]models.ExerciseTrial, error)

	// Record appends a trial for the given exercise. Only exercises should
	// have trials recorded; enforcement is left to the caller.
	Record(exerciseID string, score models.MasteryScore, timestamp int64) error

	// Close releases the underlying resources.
	Close() error
}

// Blacklist stores the units to skip during scheduling. A blacklisted unit is
// never scheduled and the search continues past its dependents as if the unit
// was already mastered.
type Blacklist interface {
	// Add puts the given unit on the blacklist.
	Add(unitID string) error

	// Remove takes the given unit off the blacklist. Removing a unit that is
	// not on the list does nothing.
	Remove(unitID string) error

	// Blacklisted reports whether the given unit should be skipped.
	Blacklisted(unitID string) (bool, error)

	// Entries returns all the units currently on the blacklist.
	Entries() ([]string, error)

	// Close releases the underlying resources.
	Close() error
}
