package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mastery-scheduler/internal/library"
	"mastery-scheduler/internal/models"
	"mastery-scheduler/internal/scorer"
	"mastery-scheduler/internal/storage"
)

// newCacheFixture builds a cache over a library with one course of two
// lessons ("a::0" and "a::1", the latter depending on the former), each with
// two exercises, plus in-memory storage.
func newCacheFixture(t *testing.T) (*ScoreCache, *Data) {
	t.Helper()

	var lessons []library.Lesson
	for i := 0; i < 2; i++ {
		lessonID := fmt.Sprintf("a::%d", i)
		lesson := library.Lesson{
			Manifest: models.LessonManifest{
				ID:       lessonID,
				CourseID: "a",
				Name:     "Lesson " + lessonID,
			},
		}
		if i == 1 {
			lesson.Manifest.Dependencies = []string{"a::0"}
		}
		for j := 0; j < 2; j++ {
			exerciseID := fmt.Sprintf("%s::%d", lessonID, j)
			lesson.Exercises = append(lesson.Exercises, models.ExerciseManifest{
				ID:           exerciseID,
				LessonID:     lessonID,
				CourseID:     "a",
				Name:         "Exercise " + exerciseID,
				ExerciseType: models.ExerciseTypeDeclarative,
			})
		}
		lessons = append(lessons, lesson)
	}

	lib, err := library.New([]library.Course{{
		Manifest: models.CourseManifest{ID: "a", Name: "Course a"},
		Lessons:  lessons,
	}})
	require.NoError(t, err)

	data := &Data{
		Library:   lib,
		Graph:     lib.Graph(),
		Trials:    storage.NewMemoryTrialStore(),
		Blacklist: storage.NewMemoryBlacklist(),
		Options:   models.DefaultSchedulerOptions(),
	}
	return newScoreCache(data, &scorer.DecayScorer{}), data
}

// now returns a recent timestamp so trial ages round down to zero days.
func now() int64 {
	return time.Now().Unix() - 60
}

func TestExerciseScoreCaching(t *testing.T) {
	cache, data := newCacheFixture(t)

	assert.Equal(t, 0.0, cache.ExerciseScore("a::0::0"),
		"an exercise with no trials should score 0")
	assert.Equal(t, 0, cache.NumTrials("a::0::0"))

	require.NoError(t, data.Trials.Record("a::0::0", models.MasteryFour, now()))
	assert.Equal(t, 0.0, cache.ExerciseScore("a::0::0"),
		"the cached score should not see the new trial until invalidated")

	cache.Invalidate("a::0::0")
	assert.InDelta(t, 4.0, cache.ExerciseScore("a::0::0"), 1e-9)
	assert.Equal(t, 1, cache.NumTrials("a::0::0"))
}

func TestLessonAndCourseScores(t *testing.T) {
	cache, data := newCacheFixture(t)

	require.NoError(t, data.Trials.Record("a::0::0", models.MasteryFive, now()))
	require.NoError(t, data.Trials.Record("a::0::1", models.MasteryThree, now()))

	lessonScore := cache.LessonScore("a::0")
	require.NotNil(t, lessonScore)
	assert.InDelta(t, 4.0, *lessonScore, 1e-9)

	courseScore := cache.CourseScore("a")
	require.NotNil(t, courseScore)
	assert.InDelta(t, 2.0, *courseScore, 1e-9,
		"the course should average the scored and the unscored lesson")
}

func TestBlacklistedUnitsHaveNoScore(t *testing.T) {
	cache, data := newCacheFixture(t)

	t.Run("Blacklisted course", func(t *testing.T) {
		require.NoError(t, data.Blacklist.Add("a"))
		assert.Nil(t, cache.CourseScore("a"))
		require.NoError(t, data.Blacklist.Remove("a"))
		cache.Invalidate("a")
	})

	t.Run("Blacklisted lesson", func(t *testing.T) {
		require.NoError(t, data.Blacklist.Add("a::0"))
		assert.Nil(t, cache.LessonScore("a::0"))
		require.NoError(t, data.Blacklist.Remove("a::0"))
		cache.Invalidate("a::0")
	})

	t.Run("Lesson with all exercises blacklisted", func(t *testing.T) {
		require.NoError(t, data.Blacklist.Add("a::0::0"))
		require.NoError(t, data.Blacklist.Add("a::0::1"))
		assert.Nil(t, cache.LessonScore("a::0"))

		courseScore := cache.CourseScore("a")
		require.NotNil(t, courseScore,
			"the course should still be scored from its other lesson")
		assert.Equal(t, 0.0, *courseScore)
	})
}

func TestInvalidatePropagates(t *testing.T) {
	cache, data := newCacheFixture(t)

	// Warm the caches.
	cache.ExerciseScore("a::0::0")
	cache.LessonScore("a::0")
	cache.CourseScore("a")

	require.NoError(t, data.Trials.Record("a::0::0", models.MasteryFive, now()))
	cache.Invalidate("a::0::0")

	assert.InDelta(t, 5.0, cache.ExerciseScore("a::0::0"), 1e-9)
	lessonScore := cache.LessonScore("a::0")
	require.NotNil(t, lessonScore)
	assert.InDelta(t, 2.5, *lessonScore, 1e-9,
		"invalidating an exercise should reach its lesson")
	courseScore := cache.CourseScore("a")
	require.NotNil(t, courseScore)
	assert.InDelta(t, 1.25, *courseScore, 1e-9,
		"invalidating an exercise should reach its course")

	// Invalidating twice is the same as invalidating once.
	cache.Invalidate("a::0::0")
	cache.Invalidate("a::0::0")
	assert.InDelta(t, 5.0, cache.ExerciseScore("a::0::0"), 1e-9)
}

func TestInvalidatePrefix(t *testing.T) {
	cache, data := newCacheFixture(t)

	cache.ExerciseScore("a::0::0")
	cache.ExerciseScore("a::1::0")
	cache.LessonScore("a::0")
	cache.LessonScore("a::1")

	require.NoError(t, data.Trials.Record("a::0::0", models.MasteryFive, now()))
	require.NoError(t, data.Trials.Record("a::1::0", models.MasteryFive, now()))
	cache.InvalidatePrefix("a::0")

	assert.InDelta(t, 5.0, cache.ExerciseScore("a::0::0"), 1e-9,
		"entries under the prefix should recompute")
	assert.Equal(t, 0.0, cache.ExerciseScore("a::1::0"),
		"entries outside the prefix should keep their cached value")
}

func TestUnitScoreDispatch(t *testing.T) {
	cache, _ := newCacheFixture(t)

	for _, unitID := range []string{"a", "a::0", "a::0::0"} {
		score, ok := cache.UnitScore(unitID)
		require.True(t, ok, "unit %s should be known", unitID)
		require.NotNil(t, score)
		assert.Equal(t, 0.0, *score)
	}

	score, ok := cache.UnitScore("missing")
	assert.False(t, ok)
	assert.Nil(t, score)
}
