// Package scheduler selects batches of exercises for the student to practice
// based on the mastery demonstrated in previous trials. The core of the
// library's logic is in this package.
package scheduler

import (
	"errors"
	"math/rand"
	"sync"

	"mastery-scheduler/internal/graph"
	"mastery-scheduler/internal/library"
	"mastery-scheduler/internal/models"
	"mastery-scheduler/internal/storage"
)

// ErrManifestMissing is returned when a scheduled exercise has no manifest in
// the course library. It is fatal to the batch call, as it indicates the
// library and the graph disagree.
var ErrManifestMissing = errors.New("exercise manifest not found")

// Data bundles the shared state the scheduler consults. The graph and the
// manifest store are immutable after load; the trial store and the blacklist
// are the only mutable collaborators.
type Data struct {
	// The manifest store of the course library.
	Library library.ManifestStore

	// The dependency graph of courses, lessons, and exercises.
	Graph *graph.UnitGraph

	// The history of previous exercise trials.
	Trials storage.TrialStore

	// The units to skip during scheduling.
	Blacklist storage.Blacklist

	// The options controlling exercise selection.
	Options models.SchedulerOptions
}

// unitExists reports whether the unit was loaded into the graph.
func (d *Data) unitExists(unitID string) bool {
	return d.Graph.Exists(unitID)
}

// blacklisted reports whether the unit is on the blacklist. Lookup errors are
// treated as "not blacklisted" so scheduling can proceed.
func (d *Data) blacklisted(unitID string) bool {
	blacklisted, err := d.Blacklist.Blacklisted(unitID)
	if err != nil {
		return false
	}
	return blacklisted
}

// lessonCourseID returns the course owning the given lesson, or the empty
// string if the unit is not a lesson.
func (d *Data) lessonCourseID(lessonID string) string {
	courseID, _ := d.Graph.LessonCourse(lessonID)
	return courseID
}

// unitPassesFilter evaluates the metadata filter against the given unit. A
// nil filter passes everything. The boolean result is only meaningful when
// the error is nil; callers pick the failure default appropriate to their
// context.
func (d *Data) unitPassesFilter(unitID string, filter *models.MetadataFilter) (bool, error) {
	if filter == nil {
		return true, nil
	}

	switch d.Graph.UnitType(unitID) {
	case models.UnitTypeCourse:
		manifest, ok := d.Library.CourseManifest(unitID)
		if !ok {
			return false, errors.New("missing course manifest for " + unitID)
		}
		return filter.ApplyCourse(manifest.Metadata), nil
	case models.UnitTypeLesson:
		lessonManifest, ok := d.Library.LessonManifest(unitID)
		if !ok {
			return false, errors.New("missing lesson manifest for " + unitID)
		}
		courseManifest, ok := d.Library.CourseManifest(lessonManifest.CourseID)
		if !ok {
			return false, errors.New("missing course manifest for " + lessonManifest.CourseID)
		}
		return filter.ApplyLesson(lessonManifest.Metadata, courseManifest.Metadata), nil
	case models.UnitTypeExercise:
		// Exercises inherit their lesson's filtering; the search never asks
		// about them directly.
		return true, nil
	}
	return false, errors.New("unknown unit " + unitID)
}

// lockedRand serializes access to a rand.Rand so concurrent batch requests do
// not race on the shared source. Tests inject a seeded source to make
// scheduling deterministic.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(rng *rand.Rand) *lockedRand {
	return &lockedRand{rng: rng}
}

func (r *lockedRand) shuffleStrings(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

func (r *lockedRand) shuffleBatch(batch []BatchItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(len(batch), func(i, j int) { batch[i], batch[j] = batch[j], batch[i] })
}

func (r *lockedRand) float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}
