package models

import (
	"encoding/json"
	"fmt"
)

// UnitType identifies the kind of a unit in the dependency graph. The kind of
// a unit is fixed when it is first declared.
type UnitType int

const (
	UnitTypeUnknown UnitType = iota

	// A set of related lessons around one or more similar topics.
	UnitTypeCourse

	// A set of related exercises. There are no dependencies between the
	// exercises of a single lesson, so students can see them in any order.
	UnitTypeLesson

	// A single task the student is meant to perform and assess.
	UnitTypeExercise
)

func (t UnitType) String() string {
	switch t {
	case UnitTypeCourse:
		return "course"
	case UnitTypeLesson:
		return "lesson"
	case UnitTypeExercise:
		return "exercise"
	}
	return "unknown"
}

// MasteryScore is the discrete self-rating a student reports after a trial.
type MasteryScore int

const (
	MasteryOne   MasteryScore = 1
	MasteryTwo   MasteryScore = 2
	MasteryThree MasteryScore = 3
	MasteryFour  MasteryScore = 4
	MasteryFive  MasteryScore = 5
)

// Float returns the real-valued projection of the score used for storage and
// scoring.
func (s MasteryScore) Float() float64 {
	return float64(s)
}

// Valid reports whether the score is one of the five allowed values.
func (s MasteryScore) Valid() bool {
	return s >= MasteryOne && s <= MasteryFive
}

// ExerciseTrial is the result of a single exercise trial.
type ExerciseTrial struct {
	// The score assigned to the exercise after the trial.
	Score float64 `json:"score"`

	// The unix timestamp in seconds at which the trial happened.
	Timestamp int64 `json:"timestamp"`
}

// ExerciseType categorizes an exercise by the type of knowledge it tests.
type ExerciseType string

const (
	// An exercise testing factual knowledge.
	ExerciseTypeDeclarative ExerciseType = "declarative"

	// An exercise requiring more complex actions to be performed.
	ExerciseTypeProcedural ExerciseType = "procedural"
)

// ExerciseAsset holds the material of an exercise. The scheduler never
// interprets its contents; exactly one of the fields is expected to be set.
type ExerciseAsset struct {
	// Paths to the front (question) and back (answer) of a flashcard.
	FrontPath string `json:"front_path,omitempty"`
	BackPath  string `json:"back_path,omitempty"`

	// An external link to the exercise material.
	Link string `json:"link,omitempty"`

	// Inlined exercise content.
	Inlined string `json:"inlined,omitempty"`
}

// CourseManifest describes the contents of a course.
type CourseManifest struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Dependencies []string            `json:"dependencies"`
	Description  string              `json:"description,omitempty"`
	Metadata     map[string][]string `json:"metadata,omitempty"`
	Instructions string              `json:"instructions,omitempty"`
	Material     string              `json:"material,omitempty"`

	// Opaque configuration for externally-run course generators.
	GeneratorConfig json.RawMessage `json:"generator_config,omitempty"`
}

// LessonManifest describes the contents of a lesson.
type LessonManifest struct {
	ID           string              `json:"id"`
	CourseID     string              `json:"course_id"`
	Dependencies []string            `json:"dependencies"`
	Name         string              `json:"name"`
	Description  string              `json:"description,omitempty"`
	Metadata     map[string][]string `json:"metadata,omitempty"`
	Instructions string              `json:"instructions,omitempty"`
	Material     string              `json:"material,omitempty"`
}

// ExerciseManifest describes a single exercise.
type ExerciseManifest struct {
	ID            string        `json:"id"`
	LessonID      string        `json:"lesson_id"`
	CourseID      string        `json:"course_id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	ExerciseType  ExerciseType  `json:"exercise_type"`
	ExerciseAsset ExerciseAsset `json:"exercise_asset"`
}

// MasteryWindowOpts configures one of the mastery windows used to shape the
// final exercise batch.
type MasteryWindowOpts struct {
	// The fraction of the batch taken from this window.
	Percentage float64

	// Scores in the range [Lo, Hi) fall within this window.
	Lo float64
	Hi float64
}

// InWindow reports whether the given score falls within the window.
func (w MasteryWindowOpts) InWindow(score float64) bool {
	return w.Lo <= score && score < w.Hi
}

// SchedulerOptions controls how the scheduler selects exercises.
type SchedulerOptions struct {
	// The maximum number of exercises returned in a batch.
	BatchSize int

	// The window of exercises with the lowest scores, which get the highest
	// priority for practice.
	TargetWindow MasteryWindowOpts

	// The window of exercises the student is currently working through.
	CurrentWindow MasteryWindowOpts

	// The window of exercises the student has nearly mastered, kept around
	// for light review.
	EasyWindow MasteryWindowOpts

	// The minimum score of a unit required to unlock its dependents.
	PassingScore float64

	// The number of most recent trials considered when scoring an exercise.
	NumScores int
}

// DefaultSchedulerOptions returns scheduler options with sensible defaults.
func DefaultSchedulerOptions() SchedulerOptions {
	return SchedulerOptions{
		BatchSize:     50,
		TargetWindow:  MasteryWindowOpts{Percentage: 0.25, Lo: 0.0, Hi: 2.5},
		CurrentWindow: MasteryWindowOpts{Percentage: 0.5, Lo: 2.5, Hi: 3.9},
		EasyWindow:    MasteryWindowOpts{Percentage: 0.25, Lo: 3.9, Hi: 5.0},
		PassingScore:  3.9,
		NumScores:     25,
	}
}

// Validate checks that the options are internally consistent.
func (o SchedulerOptions) Validate() error {
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	if o.NumScores <= 0 {
		return fmt.Errorf("num scores must be positive, got %d", o.NumScores)
	}
	if o.PassingScore < 0 || o.PassingScore > 5 {
		return fmt.Errorf("passing score must be in [0, 5], got %f", o.PassingScore)
	}
	for _, w := range []MasteryWindowOpts{o.TargetWindow, o.CurrentWindow, o.EasyWindow} {
		if w.Lo >= w.Hi {
			return fmt.Errorf("window range [%f, %f) is empty", w.Lo, w.Hi)
		}
		if w.Percentage < 0 || w.Percentage > 1 {
			return fmt.Errorf("window percentage must be in [0, 1], got %f", w.Percentage)
		}
	}
	return nil
}
