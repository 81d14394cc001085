package scheduler

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mastery-scheduler/internal/library"
	"mastery-scheduler/internal/models"
	"mastery-scheduler/internal/storage"
)

// newFilterFixture builds a candidate filter over a library with a single
// lesson holding numExercises exercises, so every candidate has a manifest.
func newFilterFixture(t *testing.T, numExercises int) (*candidateFilter, []string) {
	t.Helper()

	lesson := library.Lesson{
		Manifest: models.LessonManifest{ID: "c::0", CourseID: "c", Name: "Lesson c::0"},
	}
	var ids []string
	for i := 0; i < numExercises; i++ {
		exerciseID := fmt.Sprintf("c::0::%d", i)
		ids = append(ids, exerciseID)
		lesson.Exercises = append(lesson.Exercises, models.ExerciseManifest{
			ID:           exerciseID,
			LessonID:     "c::0",
			CourseID:     "c",
			Name:         "Exercise " + exerciseID,
			ExerciseType: models.ExerciseTypeProcedural,
		})
	}
	lib, err := library.New([]library.Course{{
		Manifest: models.CourseManifest{ID: "c", Name: "Course c"},
		Lessons:  []library.Lesson{lesson},
	}})
	require.NoError(t, err)

	data := &Data{
		Library:   lib,
		Graph:     lib.Graph(),
		Trials:    storage.NewMemoryTrialStore(),
		Blacklist: storage.NewMemoryBlacklist(),
		Options:   models.DefaultSchedulerOptions(),
	}
	return &candidateFilter{data: data, rng: newLockedRand(rand.New(rand.NewSource(11)))}, ids
}

func TestCandidatesInWindow(t *testing.T) {
	candidates := []candidate{
		{exerciseID: "low", score: 0.0},
		{exerciseID: "edge_lo", score: 2.5},
		{exerciseID: "mid", score: 3.0},
		{exerciseID: "edge_hi", score: 3.9},
		{exerciseID: "high", score: 4.5},
	}

	in := candidatesInWindow(candidates, 2.5, 3.9)
	require.Len(t, in, 2)
	assert.Equal(t, "edge_lo", in[0].exerciseID, "the lower bound is inclusive")
	assert.Equal(t, "mid", in[1].exerciseID)
}

func TestSelectCandidates(t *testing.T) {
	f, _ := newFilterFixture(t, 1)

	var candidates []candidate
	for i := 0; i < 20; i++ {
		candidates = append(candidates, candidate{
			exerciseID: fmt.Sprintf("ex_%d", i),
			numHops:    i % 5,
			score:      float64(i % 6),
		})
	}

	t.Run("Fewer candidates than requested returns all", func(t *testing.T) {
		selected, remainder := f.selectCandidates(candidates[:3], 10)
		assert.Len(t, selected, 3)
		assert.Empty(t, remainder)
	})

	t.Run("Selection and remainder partition the candidates", func(t *testing.T) {
		selected, remainder := f.selectCandidates(candidates, 8)
		assert.Len(t, selected, 8)
		assert.Len(t, remainder, 12)

		seen := make(map[string]int)
		for _, c := range selected {
			seen[c.exerciseID]++
		}
		for _, c := range remainder {
			seen[c.exerciseID]++
		}
		assert.Len(t, seen, 20, "no candidate should be selected twice")
		for exerciseID, count := range seen {
			assert.Equal(t, 1, count, "candidate %s appeared %d times", exerciseID, count)
		}
	})

	t.Run("Zero selection returns everything as remainder", func(t *testing.T) {
		selected, remainder := f.selectCandidates(candidates, 0)
		assert.Empty(t, selected)
		assert.Len(t, remainder, 20)
	})
}

func TestFilterCandidatesRespectsBatchSize(t *testing.T) {
	f, ids := newFilterFixture(t, 10)

	// Spread the candidates across all three windows.
	var candidates []candidate
	for i, exerciseID := range ids {
		candidates = append(candidates, candidate{
			exerciseID: exerciseID,
			numHops:    1,
			score:      float64(i) * 0.5,
		})
	}
	f.data.Options.BatchSize = 4

	batch, err := f.filterCandidates(candidates)
	require.NoError(t, err)
	assert.Len(t, batch, 4)

	seen := make(map[string]struct{})
	for _, item := range batch {
		assert.Equal(t, item.ExerciseID, item.Manifest.ID)
		_, dup := seen[item.ExerciseID]
		assert.False(t, dup, "exercise %s scheduled twice in one batch", item.ExerciseID)
		seen[item.ExerciseID] = struct{}{}
	}
}

func TestFilterCandidatesTopsUpFromRemainders(t *testing.T) {
	f, ids := newFilterFixture(t, 10)

	// All candidates sit in the easy window, so the target and current
	// windows under-produce and the batch must be topped up from the easy
	// remainder.
	var candidates []candidate
	for _, exerciseID := range ids {
		candidates = append(candidates, candidate{exerciseID: exerciseID, score: 4.0})
	}
	f.data.Options.BatchSize = 8

	batch, err := f.filterCandidates(candidates)
	require.NoError(t, err)
	assert.Len(t, batch, 8,
		"the batch should be filled from the easy remainder despite empty windows")
}

func TestFilterCandidatesMissingManifest(t *testing.T) {
	f, _ := newFilterFixture(t, 1)

	_, err := f.filterCandidates([]candidate{{exerciseID: "not_in_library", score: 1.0}})
	assert.ErrorIs(t, err, ErrManifestMissing)
}
