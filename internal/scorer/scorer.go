// Package scorer computes the mastery score of an exercise from the results
// of its previous trials.
package scorer

import (
	"time"

	"mastery-scheduler/internal/models"
)

const (
	// The weight of a trial diminishes by the number of days since the trial
	// multiplied by this factor.
	weightFactor = 0.05

	// The maximum weight of a trial, equal to the maximum score.
	maxWeight = 5.0

	// The weight assigned to a trial whose timestamp lies in the future, so a
	// misconfigured clock cannot produce unbounded negative decay.
	minWeight = 1.0

	// The effective score of a trial diminishes by the number of days since
	// the trial multiplied by this factor.
	scoreFactor = 0.1
)

const secondsPerDay = 60 * 60 * 24

// ExerciseScorer computes a score in [0, 5] for an exercise based on the
// results of previous trials. Implementations must be deterministic for a
// fixed trial list and reference time so the score cache stays coherent.
type ExerciseScorer interface {
	Score(trials []models.ExerciseTrial) float64
}

// DecayScorer scores an exercise with a weighted average of its previous
// trials. Newer trials weigh more than older ones, and both the weight and
// the effective score of a trial decay with its age, but never below half of
// the trial's raw score.
type DecayScorer struct {
	// Now returns the reference time used to compute trial ages. Tests
	// override it; a nil value means time.Now.
	Now func() time.Time
}

// Score implements ExerciseScorer. An empty trial list yields 0.
func (s *DecayScorer) Score(trials []models.ExerciseTrial) float64 {
	if len(trials) == 0 {
		return 0
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	nowSecs := now().Unix()

	var crossProduct, totalWeight float64
	for _, trial := range trials {
		days := float64((nowSecs - trial.Timestamp) / secondsPerDay)

		weight := minWeight
		score := trial.Score
		if days >= 0 {
			weight = maxWeight - weightFactor*days
			if floor := trial.Score / 2; weight < floor {
				weight = floor
			}
			score = trial.Score - scoreFactor*days
			if floor := trial.Score / 2; score < floor {
				score = floor
			}
		}

		crossProduct += score * weight
		totalWeight += weight
	}
	return crossProduct / totalWeight
}
