package scheduler

import (
	"fmt"
	"math/rand"
	"time"

	"mastery-scheduler/internal/models"
	"mastery-scheduler/internal/scorer"
)

// Scheduler binds the score cache, the graph search, and the candidate
// filter into the public scheduling API. All methods except SetScorer are
// safe for concurrent use; SetScorer replaces the cache without locking.
type Scheduler struct {
	data  *Data
	cache *ScoreCache
	rng   *lockedRand
}

// New constructs a scheduler over the given data with the default scorer and
// a time-seeded random source.
func New(data *Data) (*Scheduler, error) {
	return NewWithRand(data, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand constructs a scheduler using the given random source for the
// search shuffles and the weighted sampler. Tests pass a seeded source to
// make scheduling reproducible.
func NewWithRand(data *Data, rng *rand.Rand) (*Scheduler, error) {
	if err := data.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scheduler options: %w", err)
	}
	return &Scheduler{
		data:  data,
		cache: newScoreCache(data, &scorer.DecayScorer{}),
		rng:   newLockedRand(rng),
	}, nil
}

// SetScorer replaces the exercise scorer. It is meant to be called before
// the first batch request, so alternative scoring models can be swapped in
// without touching the cache or the search.
func (s *Scheduler) SetScorer(exerciseScorer scorer.ExerciseScorer) {
	s.cache = newScoreCache(s.data, exerciseScorer)
}

// GetExerciseBatch returns a new batch of exercises scheduled for a trial,
// optionally restricted by the given unit filter.
func (s *Scheduler) GetExerciseBatch(filter *models.UnitFilter) ([]BatchItem, error) {
	searcher := &search{data: s.data, cache: s.cache, rng: s.rng}

	var candidates []candidate
	switch {
	case filter == nil:
		candidates = searcher.candidatesFromGraph(nil)
	case len(filter.CourseIDs) > 0:
		candidates = searcher.candidatesFromCourses(filter.CourseIDs)
	case len(filter.LessonIDs) > 0:
		candidates = searcher.candidatesFromLessons(filter.LessonIDs)
	case filter.Metadata != nil:
		candidates = searcher.candidatesFromGraph(filter.Metadata)
	default:
		candidates = searcher.candidatesFromGraph(nil)
	}

	f := &candidateFilter{data: s.data, rng: s.rng}
	return f.filterCandidates(candidates)
}

// ScoreExercise records the score of a trial of the given exercise and
// invalidates its cached score, which transitively invalidates the entries
// of its lesson and course. A storage failure surfaces to the caller and
// leaves the cache untouched.
func (s *Scheduler) ScoreExercise(exerciseID string, score models.MasteryScore, timestamp int64) error {
	if !score.Valid() {
		return fmt.Errorf("invalid mastery score %d for exercise %s", score, exerciseID)
	}
	if err := s.data.Trials.Record(exerciseID, score, timestamp); err != nil {
		return fmt.Errorf("failed to record trial for exercise %s: %w", exerciseID, err)
	}
	s.cache.Invalidate(exerciseID)
	return nil
}

// InvalidateCachedScore removes any cached score for the given unit. Callers
// mutating the blacklist or the trial history out-of-band use it to keep the
// cache coherent.
func (s *Scheduler) InvalidateCachedScore(unitID string) {
	s.cache.Invalidate(unitID)
}

// InvalidateCachedScoresWithPrefix removes any cached score for units whose
// id starts with the given prefix.
func (s *Scheduler) InvalidateCachedScoresWithPrefix(prefix string) {
	s.cache.InvalidatePrefix(prefix)
}

// NumTrials returns the number of trials considered for the given exercise's
// current score.
func (s *Scheduler) NumTrials(exerciseID string) int {
	return s.cache.NumTrials(exerciseID)
}

// UnitScore returns the current score of the given unit, or nil when the
// unit has no valid score. The boolean reports whether the unit exists.
func (s *Scheduler) UnitScore(unitID string) (*float64, bool) {
	return s.cache.UnitScore(unitID)
}
