package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mastery-scheduler/internal/models"
)

// buildSmallGraph builds a course with two lessons of one exercise each, the
// second lesson depending on the first.
func buildSmallGraph(t *testing.T) *UnitGraph {
	t.Helper()
	g := New()
	require.NoError(t, g.AddCourse("course_0"))
	require.NoError(t, g.AddLesson("course_0::lesson_0", "course_0"))
	require.NoError(t, g.AddLesson("course_0::lesson_1", "course_0"))
	require.NoError(t, g.AddExercise("course_0::lesson_0::ex_0", "course_0::lesson_0"))
	require.NoError(t, g.AddExercise("course_0::lesson_1::ex_0", "course_0::lesson_1"))
	require.NoError(t, g.AddDependencies("course_0", models.UnitTypeCourse, nil))
	require.NoError(t, g.AddDependencies(
		"course_0::lesson_1", models.UnitTypeLesson, []string{"course_0::lesson_0"}))
	g.UpdateStartingLessons()
	return g
}

func TestAddUnits(t *testing.T) {
	g := buildSmallGraph(t)

	t.Run("Unit types are recorded", func(t *testing.T) {
		assert.Equal(t, models.UnitTypeCourse, g.UnitType("course_0"))
		assert.Equal(t, models.UnitTypeLesson, g.UnitType("course_0::lesson_0"))
		assert.Equal(t, models.UnitTypeExercise, g.UnitType("course_0::lesson_0::ex_0"))
		assert.Equal(t, models.UnitTypeUnknown, g.UnitType("missing"))
		assert.False(t, g.Exists("missing"))
	})

	t.Run("Ownership relations are recorded", func(t *testing.T) {
		assert.Equal(t, []string{"course_0::lesson_0", "course_0::lesson_1"},
			g.CourseLessons("course_0"))
		assert.Equal(t, 2, g.NumCourseLessons("course_0"))

		courseID, ok := g.LessonCourse("course_0::lesson_0")
		require.True(t, ok)
		assert.Equal(t, "course_0", courseID)

		assert.Equal(t, []string{"course_0::lesson_0::ex_0"},
			g.LessonExercises("course_0::lesson_0"))
		lessonID, ok := g.ExerciseLesson("course_0::lesson_0::ex_0")
		require.True(t, ok)
		assert.Equal(t, "course_0::lesson_0", lessonID)
	})

	t.Run("Duplicate ids are rejected", func(t *testing.T) {
		assert.ErrorIs(t, g.AddCourse("course_0"), ErrDuplicateUnit)
		assert.ErrorIs(t, g.AddLesson("course_0::lesson_0", "course_0"), ErrDuplicateUnit)
		assert.ErrorIs(t, g.AddExercise("course_0::lesson_0::ex_0", "course_0::lesson_0"),
			ErrDuplicateUnit)
	})

	t.Run("Kind conflicts are rejected", func(t *testing.T) {
		// course_0::lesson_0 already has the lesson type and course_0 the
		// course type, so using either as the owner of a unit of the other
		// kind must fail.
		assert.ErrorIs(t, g.AddLesson("lesson_x", "course_0::lesson_0"), ErrKindConflict)
		assert.ErrorIs(t, g.AddExercise("ex_x", "course_0"), ErrKindConflict)
	})
}

func TestAddDependencies(t *testing.T) {
	t.Run("Exercises cannot have dependencies", func(t *testing.T) {
		g := buildSmallGraph(t)
		err := g.AddDependencies("course_0::lesson_0::ex_0", models.UnitTypeExercise,
			[]string{"course_0"})
		assert.ErrorIs(t, err, ErrExerciseDependencies)
	})

	t.Run("Self dependencies are rejected", func(t *testing.T) {
		g := buildSmallGraph(t)
		err := g.AddDependencies("course_0", models.UnitTypeCourse, []string{"course_0"})
		assert.ErrorIs(t, err, ErrSelfDependency)
	})

	t.Run("Undeclared units are rejected", func(t *testing.T) {
		g := buildSmallGraph(t)
		err := g.AddDependencies("course_9", models.UnitTypeCourse, []string{"course_0"})
		assert.ErrorIs(t, err, ErrUnknownUnit)
	})

	t.Run("Forward and reverse edges stay consistent", func(t *testing.T) {
		g := buildSmallGraph(t)
		assert.Equal(t, []string{"course_0::lesson_0"}, g.Dependencies("course_0::lesson_1"))
		assert.Equal(t, []string{"course_0::lesson_1"}, g.Dependents("course_0::lesson_0"))
	})

	t.Run("Adding the same dependencies twice is idempotent", func(t *testing.T) {
		g := buildSmallGraph(t)
		require.NoError(t, g.AddDependencies(
			"course_0::lesson_1", models.UnitTypeLesson, []string{"course_0::lesson_0"}))
		assert.Equal(t, []string{"course_0::lesson_0"}, g.Dependencies("course_0::lesson_1"))
		assert.Equal(t, []string{"course_0::lesson_1"}, g.Dependents("course_0::lesson_0"))
	})

	t.Run("Missing dependencies become sinks", func(t *testing.T) {
		g := buildSmallGraph(t)
		require.NoError(t, g.AddCourse("course_1"))
		require.NoError(t, g.AddDependencies("course_1", models.UnitTypeCourse,
			[]string{"course_missing"}))
		assert.Contains(t, g.DependencySinks(), "course_missing",
			"a referenced but undeclared unit should count as a sink")
		assert.NotContains(t, g.DependencySinks(), "course_1")
	})
}

func TestStartingLessons(t *testing.T) {
	g := buildSmallGraph(t)

	t.Run("Lessons without in-course dependencies start the course", func(t *testing.T) {
		assert.Equal(t, []string{"course_0::lesson_0"}, g.CourseStartingLessons("course_0"))
	})

	t.Run("Cross-course dependencies do not disqualify a lesson", func(t *testing.T) {
		require.NoError(t, g.AddCourse("course_1"))
		require.NoError(t, g.AddLesson("course_1::lesson_0", "course_1"))
		require.NoError(t, g.AddDependencies("course_1::lesson_0", models.UnitTypeLesson,
			[]string{"course_0::lesson_0"}))
		g.UpdateStartingLessons()
		assert.Equal(t, []string{"course_1::lesson_0"}, g.CourseStartingLessons("course_1"))
	})
}

func TestCheckCycles(t *testing.T) {
	t.Run("Acyclic graph passes", func(t *testing.T) {
		g := buildSmallGraph(t)
		assert.NoError(t, g.CheckCycles())
	})

	t.Run("Cycle is detected", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddCourse("course_0"))
		require.NoError(t, g.AddCourse("course_1"))
		require.NoError(t, g.AddDependencies("course_0", models.UnitTypeCourse,
			[]string{"course_1"}))
		require.NoError(t, g.AddDependencies("course_1", models.UnitTypeCourse,
			[]string{"course_0"}))
		assert.ErrorIs(t, g.CheckCycles(), ErrCycle)
	})

	t.Run("Broken reverse edge is detected", func(t *testing.T) {
		g := buildSmallGraph(t)
		// Corrupt the reverse graph directly to simulate an internal
		// invariant violation.
		delete(g.dependents["course_0::lesson_0"], "course_0::lesson_1")
		assert.ErrorIs(t, g.CheckCycles(), ErrBrokenReverseEdge)
	})
}

func TestDotDump(t *testing.T) {
	g := buildSmallGraph(t)
	dump := g.DotDump()

	assert.Contains(t, dump, "digraph dependent_graph {")
	assert.Contains(t, dump, `"course_0" -> "course_0::lesson_0"`,
		"starting lessons should be attached as dependents of the course")
	assert.Contains(t, dump, `"course_0::lesson_0" -> "course_0::lesson_1"`)
	assert.NotContains(t, dump, "ex_0", "exercises should not appear in the dump")
}
