// Package library holds the course library: the manifests describing every
// course, lesson, and exercise, and the dependency graph built from them.
package library

import (
	"fmt"

	"mastery-scheduler/internal/graph"
	"mastery-scheduler/internal/models"
)

// ManifestStore answers manifest lookups for the scheduler. A false return
// means the unit is not part of the loaded library.
type ManifestStore interface {
	CourseManifest(courseID string) (models.CourseManifest, bool)
	LessonManifest(lessonID string) (models.LessonManifest, bool)
	ExerciseManifest(exerciseID string) (models.ExerciseManifest, bool)
}

// Course bundles a course manifest with its lessons for loading.
type Course struct {
	Manifest models.CourseManifest
	Lessons  []Lesson
}

// Lesson bundles a lesson manifest with its exercises for loading.
type Lesson struct {
	Manifest  models.LessonManifest
	Exercises []models.ExerciseManifest
}

// Library is the in-memory course library. After New returns, the library and
// its graph are immutable and safe to share across goroutines.
type Library struct {
	courses   map[string]models.CourseManifest
	lessons   map[string]models.LessonManifest
	exercises map[string]models.ExerciseManifest
	graph     *graph.UnitGraph
}

// New builds a library from the given courses. Units are inserted into the
// graph in topological order (course, its lessons, their exercises, then
// dependency edges); after the load the cycle check and the starting-lesson
// computation run once. Dependencies on units that are not part of the
// library are allowed and left for the scheduler to step past.
func New(courses []Course) (*Library, error) {
	lib := &Library{
		courses:   make(map[string]models.CourseManifest),
		lessons:   make(map[string]models.LessonManifest),
		exercises: make(map[string]models.ExerciseManifest),
		graph:     graph.New(),
	}

	for _, course := range courses {
		if err := lib.addCourse(course); err != nil {
			return nil, err
		}
	}

	if err := lib.graph.CheckCycles(); err != nil {
		return nil, fmt.Errorf("course library failed the cycle check: %w", err)
	}
	lib.graph.UpdateStartingLessons()
	return lib, nil
}

func (l *Library) addCourse(course Course) error {
	courseID := course.Manifest.ID
	if courseID == "" {
		return fmt.Errorf("course manifest is missing an id")
	}
	if err := l.graph.AddCourse(courseID); err != nil {
		return err
	}
	if err := l.graph.AddDependencies(
		courseID, models.UnitTypeCourse, course.Manifest.Dependencies); err != nil {
		return err
	}
	l.courses[courseID] = course.Manifest

	for _, lesson := range course.Lessons {
		if err := l.addLesson(courseID, lesson); err != nil {
			return err
		}
	}
	return l.addImplicitDependencies(courseID)
}

// addImplicitDependencies makes the first lessons of the course (those which
// do not depend on other lessons in the same course) depend on the course
// itself. The edge lets a walk of the graph flow from a course into its
// lessons; it is excluded when checking whether a lesson's dependencies are
// satisfied, as requiring the course to be mastered before its own lessons
// would be circular.
func (l *Library) addImplicitDependencies(courseID string) error {
	lessons := make(map[string]struct{})
	for _, lessonID := range l.graph.CourseLessons(courseID) {
		lessons[lessonID] = struct{}{}
	}

	for lessonID := range lessons {
		first := true
		for _, dep := range l.graph.Dependencies(lessonID) {
			if _, ok := lessons[dep]; ok {
				first = false
				break
			}
		}
		if !first {
			continue
		}
		if err := l.graph.AddDependencies(
			lessonID, models.UnitTypeLesson, []string{courseID}); err != nil {
			return err
		}
	}
	return nil
}

func (l *Library) addLesson(courseID string, lesson Lesson) error {
	manifest := lesson.Manifest
	lessonID := manifest.ID
	if lessonID == "" {
		return fmt.Errorf("lesson manifest in course %s is missing an id", courseID)
	}
	if manifest.CourseID == "" {
		manifest.CourseID = courseID
	} else if manifest.CourseID != courseID {
		return fmt.Errorf("lesson %s names course %s but was loaded under course %s",
			lessonID, manifest.CourseID, courseID)
	}

	if err := l.graph.AddLesson(lessonID, courseID); err != nil {
		return err
	}
	if err := l.graph.AddDependencies(
		lessonID, models.UnitTypeLesson, manifest.Dependencies); err != nil {
		return err
	}
	l.lessons[lessonID] = manifest

	for _, exercise := range lesson.Exercises {
		if err := l.addExercise(courseID, lessonID, exercise); err != nil {
			return err
		}
	}
	return nil
}

func (l *Library) addExercise(courseID, lessonID string, manifest models.ExerciseManifest) error {
	if manifest.ID == "" {
		return fmt.Errorf("exercise manifest in lesson %s is missing an id", lessonID)
	}
	if manifest.LessonID == "" {
		manifest.LessonID = lessonID
	} else if manifest.LessonID != lessonID {
		return fmt.Errorf("exercise %s names lesson %s but was loaded under lesson %s",
			manifest.ID, manifest.LessonID, lessonID)
	}
	if manifest.CourseID == "" {
		manifest.CourseID = courseID
	}

	if err := l.graph.AddExercise(manifest.ID, lessonID); err != nil {
		return err
	}
	l.exercises[manifest.ID] = manifest
	return nil
}

// CourseManifest returns the manifest of the given course.
func (l *Library) CourseManifest(courseID string) (models.CourseManifest, bool) {
	manifest, ok := l.courses[courseID]
	return manifest, ok
}

// LessonManifest returns the manifest of the given lesson.
func (l *Library) LessonManifest(lessonID string) (models.LessonManifest, bool) {
	manifest, ok := l.lessons[lessonID]
	return manifest, ok
}

// ExerciseManifest returns the manifest of the given exercise.
func (l *Library) ExerciseManifest(exerciseID string) (models.ExerciseManifest, bool) {
	manifest, ok := l.exercises[exerciseID]
	return manifest, ok
}

// Graph returns the dependency graph built from the library.
func (l *Library) Graph() *graph.UnitGraph {
	return l.graph
}

// NumCourses returns the number of courses in the library.
func (l *Library) NumCourses() int {
	return len(l.courses)
}

// NumExercises returns the number of exercises in the library.
func (l *Library) NumExercises() int {
	return len(l.exercises)
}
