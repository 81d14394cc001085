package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mastery-scheduler/internal/models"
)

// trialStores returns one store of each implementation that can run without
// external services.
func trialStores(t *testing.T) map[string]TrialStore {
	t.Helper()
	sqlite, err := OpenSQLiteTrialStore(filepath.Join(t.TempDir(), "trials.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]TrialStore{
		"sqlite": sqlite,
		"memory": NewMemoryTrialStore(),
	}
}

func TestTrialStoreRoundTrip(t *testing.T) {
	for name, store := range trialStores(t) {
		t.Run(name, func(t *testing.T) {
			exerciseID := "course_0::lesson_0::ex_0"

			trials, err := store.Scores(exerciseID, 10)
			require.NoError(t, err)
			assert.Empty(t, trials, "a fresh store should have no trials")

			require.NoError(t, store.Record(exerciseID, models.MasteryThree, 100))
			require.NoError(t, store.Record(exerciseID, models.MasteryFive, 300))
			require.NoError(t, store.Record(exerciseID, models.MasteryFour, 200))

			trials, err = store.Scores(exerciseID, 10)
			require.NoError(t, err)
			require.Len(t, trials, 3)
			assert.Equal(t, models.ExerciseTrial{Score: 5.0, Timestamp: 300}, trials[0],
				"trials should be returned newest first")
			assert.Equal(t, models.ExerciseTrial{Score: 4.0, Timestamp: 200}, trials[1])
			assert.Equal(t, models.ExerciseTrial{Score: 3.0, Timestamp: 100}, trials[2])

			trials, err = store.Scores(exerciseID, 2)
			require.NoError(t, err)
			assert.Len(t, trials, 2, "the limit should cap the number of trials")

			trials, err = store.Scores("other_exercise", 10)
			require.NoError(t, err)
			assert.Empty(t, trials, "trials should not leak across exercises")
		})
	}
}

func TestTrialStoreRejectsInvalidScore(t *testing.T) {
	for name, store := range trialStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, store.Record("ex", models.MasteryScore(0), 1))
			assert.Error(t, store.Record("ex", models.MasteryScore(6), 1))
		})
	}
}

func TestBlacklist(t *testing.T) {
	sqlite, err := OpenSQLiteBlacklist(filepath.Join(t.TempDir(), "blacklist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	blacklists := map[string]Blacklist{
		"sqlite": sqlite,
		"memory": NewMemoryBlacklist(),
	}
	for name, blacklist := range blacklists {
		t.Run(name, func(t *testing.T) {
			blacklisted, err := blacklist.Blacklisted("course_0")
			require.NoError(t, err)
			assert.False(t, blacklisted)

			require.NoError(t, blacklist.Add("course_0"))
			require.NoError(t, blacklist.Add("course_1"))
			require.NoError(t, blacklist.Add("course_0"), "adding twice should be a no-op")

			blacklisted, err = blacklist.Blacklisted("course_0")
			require.NoError(t, err)
			assert.True(t, blacklisted)

			entries, err := blacklist.Entries()
			require.NoError(t, err)
			assert.Equal(t, []string{"course_0", "course_1"}, entries)

			require.NoError(t, blacklist.Remove("course_0"))
			blacklisted, err = blacklist.Blacklisted("course_0")
			require.NoError(t, err)
			assert.False(t, blacklisted)
		})
	}
}

func TestSQLiteBlacklistWarmsCacheOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.db")

	first, err := OpenSQLiteBlacklist(path)
	require.NoError(t, err)
	require.NoError(t, first.Add("course_0"))
	require.NoError(t, first.Close())

	second, err := OpenSQLiteBlacklist(path)
	require.NoError(t, err)
	defer second.Close()

	blacklisted, err := second.Blacklisted("course_0")
	require.NoError(t, err)
	assert.True(t, blacklisted, "entries should survive a reopen")
}
