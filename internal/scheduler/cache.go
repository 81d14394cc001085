package scheduler

import (
	"log"
	"strings"
	"sync"

	"mastery-scheduler/internal/models"
	"mastery-scheduler/internal/scorer"
)

// cachedExerciseScore holds a computed exercise score along with the number
// of trials that produced it.
type cachedExerciseScore struct {
	score     float64
	numTrials int
}

// ScoreCache memoizes exercise, lesson, and course scores. Scoring the same
// units over and over dominates the cost of a batch computation, so the cache
// is what makes repeated scheduling cheap. A nil lesson or course entry means
// the unit has no valid score, such as when it is blacklisted or has no
// scorable content; such units count as satisfied dependencies.
type ScoreCache struct {
	mu sync.RWMutex

	// The three maps are disjoint because unit ids carry exactly one kind.
	exercises map[string]cachedExerciseScore
	lessons   map[string]*float64
	courses   map[string]*float64

	data   *Data
	scorer scorer.ExerciseScorer
}

// newScoreCache constructs an empty cache over the given scheduler data.
func newScoreCache(data *Data, exerciseScorer scorer.ExerciseScorer) *ScoreCache {
	if exerciseScorer == nil {
		exerciseScorer = &scorer.DecayScorer{}
	}
	return &ScoreCache{
		exercises: make(map[string]cachedExerciseScore),
		lessons:   make(map[string]*float64),
		courses:   make(map[string]*float64),
		data:      data,
		scorer:    exerciseScorer,
	}
}

// ExerciseScore returns the score of the given exercise, computing and
// caching it on a miss. A trial read failure is treated as an empty history.
func (c *ScoreCache) ExerciseScore(exerciseID string) float64 {
	c.mu.RLock()
	cached, ok := c.exercises[exerciseID]
	c.mu.RUnlock()
	if ok {
		return cached.score
	}

	trials, err := c.data.Trials.Scores(exerciseID, c.data.Options.NumScores)
	if err != nil {
		log.Printf("Failed to read trials for exercise %s, scoring as new: %v", exerciseID, err)
		trials = nil
	}
	score := c.scorer.Score(trials)

	c.mu.Lock()
	c.exercises[exerciseID] = cachedExerciseScore{score: score, numTrials: len(trials)}
	c.mu.Unlock()
	return score
}

// NumTrials returns the number of trials considered when scoring the given
// exercise.
func (c *ScoreCache) NumTrials(exerciseID string) int {
	c.mu.RLock()
	cached, ok := c.exercises[exerciseID]
	c.mu.RUnlock()
	if ok {
		return cached.numTrials
	}

	// Computing the score populates the cache.
	c.ExerciseScore(exerciseID)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.exercises[exerciseID].numTrials
}

// LessonScore returns the mean score of the lesson's non-blacklisted
// exercises, or nil when the lesson has no valid score.
func (c *ScoreCache) LessonScore(lessonID string) *float64 {
	// A blacklisted lesson has no score.
	if c.data.blacklisted(lessonID) {
		c.storeLessonScore(lessonID, nil)
		return nil
	}

	c.mu.RLock()
	cached, ok := c.lessons[lessonID]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	var valid []string
	for _, exerciseID := range c.data.Graph.LessonExercises(lessonID) {
		if !c.data.blacklisted(exerciseID) {
			valid = append(valid, exerciseID)
		}
	}
	if len(valid) == 0 {
		// A lesson with no exercises left to schedule has no valid score.
		c.storeLessonScore(lessonID, nil)
		return nil
	}

	var sum float64
	for _, exerciseID := range valid {
		sum += c.ExerciseScore(exerciseID)
	}
	avg := sum / float64(len(valid))
	c.storeLessonScore(lessonID, &avg)
	return &avg
}

func (c *ScoreCache) storeLessonScore(lessonID string, score *float64) {
	c.mu.Lock()
	c.lessons[lessonID] = score
	c.mu.Unlock()
}

// CourseScore returns the mean of the valid lesson scores of the course, or
// nil when no lesson has a valid score.
func (c *ScoreCache) CourseScore(courseID string) *float64 {
	// A blacklisted course has no score.
	if c.data.blacklisted(courseID) {
		c.storeCourseScore(courseID, nil)
		return nil
	}

	c.mu.RLock()
	cached, ok := c.courses[courseID]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	var sum float64
	var valid int
	for _, lessonID := range c.data.Graph.CourseLessons(courseID) {
		if score := c.LessonScore(lessonID); score != nil {
			sum += *score
			valid++
		}
	}
	if valid == 0 {
		// All the lessons in the course are blacklisted or empty.
		c.storeCourseScore(courseID, nil)
		return nil
	}
	avg := sum / float64(valid)
	c.storeCourseScore(courseID, &avg)
	return &avg
}

func (c *ScoreCache) storeCourseScore(courseID string, score *float64) {
	c.mu.Lock()
	c.courses[courseID] = score
	c.mu.Unlock()
}

// UnitScore dispatches on the unit's kind. The boolean reports whether the
// unit was found in the graph at all.
func (c *ScoreCache) UnitScore(unitID string) (*float64, bool) {
	switch c.data.Graph.UnitType(unitID) {
	case models.UnitTypeCourse:
		return c.CourseScore(unitID), true
	case models.UnitTypeLesson:
		return c.LessonScore(unitID), true
	case models.UnitTypeExercise:
		score := c.ExerciseScore(unitID)
		return &score, true
	}
	return nil, false
}

// Invalidate removes the cached score of the given unit. If the unit is an
// exercise, the entries of its lesson and that lesson's course are removed as
// well; if it is a lesson, its course's entry is removed.
func (c *ScoreCache) Invalidate(unitID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.exercises, unitID)
	delete(c.lessons, unitID)
	delete(c.courses, unitID)

	if lessonID, ok := c.data.Graph.ExerciseLesson(unitID); ok {
		delete(c.lessons, lessonID)
		if courseID, ok := c.data.Graph.LessonCourse(lessonID); ok {
			delete(c.courses, courseID)
		}
	} else if courseID, ok := c.data.Graph.LessonCourse(unitID); ok {
		delete(c.courses, courseID)
	}
}

// InvalidatePrefix removes every cached entry whose unit id starts with the
// given prefix. It supports bulk blacklist updates that match ids by prefix.
func (c *ScoreCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for unitID := range c.exercises {
		if strings.HasPrefix(unitID, prefix) {
			delete(c.exercises, unitID)
		}
	}
	for unitID := range c.lessons {
		if strings.HasPrefix(unitID, prefix) {
			delete(c.lessons, unitID)
		}
	}
	for unitID := range c.courses {
		if strings.HasPrefix(unitID, prefix) {
			delete(c.courses, unitID)
		}
	}
}
