// Package testutil builds small course libraries and drives simulated study
// sessions for the scheduler tests.
package testutil

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mastery-scheduler/internal/library"
	"mastery-scheduler/internal/models"
	"mastery-scheduler/internal/scheduler"
	"mastery-scheduler/internal/storage"
)

// TestCourse describes a course to generate for a test library.
type TestCourse struct {
	ID           string
	Dependencies []string
	Metadata     map[string][]string
	Lessons      []TestLesson
}

// TestLesson describes a lesson to generate for a test library.
type TestLesson struct {
	ID           string
	Dependencies []string
	Metadata     map[string][]string
	NumExercises int
}

// BuildLibrary turns the test courses into a loaded course library.
func BuildLibrary(t *testing.T, courses []TestCourse) *library.Library {
	t.Helper()

	var libraryCourses []library.Course
	for _, course := range courses {
		libraryCourse := library.Course{
			Manifest: models.CourseManifest{
				ID:           course.ID,
				Name:         "Course " + course.ID,
				Dependencies: course.Dependencies,
				Metadata:     course.Metadata,
			},
		}
		for _, lesson := range course.Lessons {
			libraryLesson := library.Lesson{
				Manifest: models.LessonManifest{
					ID:           lesson.ID,
					CourseID:     course.ID,
					Dependencies: lesson.Dependencies,
					Name:         "Lesson " + lesson.ID,
					Metadata:     lesson.Metadata,
				},
			}
			for i := 0; i < lesson.NumExercises; i++ {
				exerciseID := fmt.Sprintf("%s::%d", lesson.ID, i)
				libraryLesson.Exercises = append(libraryLesson.Exercises,
					models.ExerciseManifest{
						ID:           exerciseID,
						LessonID:     lesson.ID,
						CourseID:     course.ID,
						Name:         "Exercise " + exerciseID,
						ExerciseType: models.ExerciseTypeDeclarative,
						ExerciseAsset: models.ExerciseAsset{
							Inlined: "Exercise " + exerciseID,
						},
					})
			}
			libraryCourse.Lessons = append(libraryCourse.Lessons, libraryLesson)
		}
		libraryCourses = append(libraryCourses, libraryCourse)
	}

	lib, err := library.New(libraryCourses)
	require.NoError(t, err, "test library should load")
	return lib
}

// Harness wires a scheduler over in-memory storage for a test library.
type Harness struct {
	Library   *library.Library
	Trials    *storage.MemoryTrialStore
	Blacklist *storage.MemoryBlacklist
	Scheduler *scheduler.Scheduler

	// The timestamp assigned to the next simulated trial. Timestamps advance
	// one second per answer so trial history keeps a stable order.
	NextTimestamp int64
}

// NewHarness builds a harness with a deterministically seeded scheduler.
func NewHarness(t *testing.T, courses []TestCourse, seed int64) *Harness {
	t.Helper()

	lib := BuildLibrary(t, courses)
	trials := storage.NewMemoryTrialStore()
	blacklist := storage.NewMemoryBlacklist()
	sched, err := scheduler.NewWithRand(&scheduler.Data{
		Library:   lib,
		Graph:     lib.Graph(),
		Trials:    trials,
		Blacklist: blacklist,
		Options:   models.DefaultSchedulerOptions(),
	}, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)

	return &Harness{
		Library:       lib,
		Trials:        trials,
		Blacklist:     blacklist,
		Scheduler:     sched,
		NextTimestamp: time.Now().Unix() - 10_000,
	}
}

// Simulate requests batches and answers every presented exercise with the
// given score until numTrials exercises have been presented. It returns the
// set of exercise ids that were presented at least once.
func (h *Harness) Simulate(t *testing.T, numTrials int, filter *models.UnitFilter, score models.MasteryScore) map[string]int {
	t.Helper()

	answered := make(map[string]int)
	presented := 0
	for presented < numTrials {
		batch, err := h.Scheduler.GetExerciseBatch(filter)
		require.NoError(t, err, "batch request should not fail")
		if len(batch) == 0 {
			break
		}
		for _, item := range batch {
			if presented >= numTrials {
				break
			}
			require.NoError(t,
				h.Scheduler.ScoreExercise(item.ExerciseID, score, h.NextTimestamp))
			h.NextTimestamp++
			answered[item.ExerciseID]++
			presented++
		}
	}
	return answered
}
