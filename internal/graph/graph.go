// Package graph stores the dependency relationships between courses, lessons,
// and exercises. It only provides basic functions to build the graph and query
// the outgoing or incoming edges of a unit.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"mastery-scheduler/internal/models"
)

type unitSet map[string]struct{}

func (s unitSet) insert(id string) { s[id] = struct{}{} }

func (s unitSet) contains(id string) bool {
	_, ok := s[id]
	return ok
}

func (s unitSet) sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UnitGraph is the in-memory dependency graph of the course library. Units are
// inserted in topological order (course, its lessons, their exercises, then
// dependency edges); after the bulk load the graph is immutable for the
// lifetime of the scheduler, so reads need no synchronization.
type UnitGraph struct {
	// The mapping of a unit to its type.
	unitTypes map[string]models.UnitType

	// The mapping of a course to its lessons.
	courseLessons map[string]unitSet

	// The mapping of a course to the lessons in it which do not depend on
	// any other lesson in the course.
	startingLessons map[string]unitSet

	// The mapping of a lesson to its course.
	lessonCourse map[string]string

	// The mapping of a lesson to its exercises.
	lessonExercises map[string]unitSet

	// The mapping of an exercise to its lesson.
	exerciseLesson map[string]string

	// The mapping of a unit to its dependencies.
	dependencies map[string]unitSet

	// The mapping of a unit to all the units which depend on it.
	dependents map[string]unitSet

	// The units with no dependencies, that is, the sinks of the dependency
	// graph.
	dependencySinks unitSet
}

// New returns an empty unit graph.
func New() *UnitGraph {
	return &UnitGraph{
		unitTypes:       make(map[string]models.UnitType),
		courseLessons:   make(map[string]unitSet),
		startingLessons: make(map[string]unitSet),
		lessonCourse:    make(map[string]string),
		lessonExercises: make(map[string]unitSet),
		exerciseLesson:  make(map[string]string),
		dependencies:    make(map[string]unitSet),
		dependents:      make(map[string]unitSet),
		dependencySinks: make(unitSet),
	}
}

// updateUnitType records the type of the given unit. Reassigning a unit to a
// different type is an error.
func (g *UnitGraph) updateUnitType(unitID string, unitType models.UnitType) error {
	existing, ok := g.unitTypes[unitID]
	if !ok {
		g.unitTypes[unitID] = unitType
		return nil
	}
	if existing != unitType {
		return fmt.Errorf("unit %s: %w", unitID, ErrKindConflict)
	}
	return nil
}

// updateDependencySinks maintains the set of units with no dependencies.
func (g *UnitGraph) updateDependencySinks(unitID string, dependencies []string) {
	if len(g.dependencies[unitID]) == 0 && len(dependencies) == 0 {
		g.dependencySinks.insert(unitID)
	} else {
		delete(g.dependencySinks, unitID)
	}
}

// AddCourse adds a new course to the graph. It should be called before the
// course's dependencies and lessons are added so the course id is checked for
// uniqueness.
func (g *UnitGraph) AddCourse(courseID string) error {
	if _, ok := g.unitTypes[courseID]; ok {
		return fmt.Errorf("course %s: %w", courseID, ErrDuplicateUnit)
	}
	return g.updateUnitType(courseID, models.UnitTypeCourse)
}

// AddLesson adds a new lesson belonging to the given course.
func (g *UnitGraph) AddLesson(lessonID, courseID string) error {
	if _, ok := g.unitTypes[lessonID]; ok {
		return fmt.Errorf("lesson %s: %w", lessonID, ErrDuplicateUnit)
	}
	if err := g.updateUnitType(lessonID, models.UnitTypeLesson); err != nil {
		return err
	}
	if err := g.updateUnitType(courseID, models.UnitTypeCourse); err != nil {
		return err
	}

	g.lessonCourse[lessonID] = courseID
	if g.courseLessons[courseID] == nil {
		g.courseLessons[courseID] = make(unitSet)
	}
	g.courseLessons[courseID].insert(lessonID)
	return nil
}

// AddExercise adds a new exercise belonging to the given lesson.
func (g *UnitGraph) AddExercise(exerciseID, lessonID string) error {
	if _, ok := g.unitTypes[exerciseID]; ok {
		return fmt.Errorf("exercise %s: %w", exerciseID, ErrDuplicateUnit)
	}
	if err := g.updateUnitType(exerciseID, models.UnitTypeExercise); err != nil {
		return err
	}
	if err := g.updateUnitType(lessonID, models.UnitTypeLesson); err != nil {
		return err
	}

	if g.lessonExercises[lessonID] == nil {
		g.lessonExercises[lessonID] = make(unitSet)
	}
	g.lessonExercises[lessonID].insert(exerciseID)
	g.exerciseLesson[exerciseID] = lessonID
	return nil
}

// AddDependencies records the dependencies of the given unit, updating both
// the forward and reverse edges and the dependency sinks. Only courses and
// lessons are allowed to have dependencies; exercises inherit the
// dependencies of their lesson.
func (g *UnitGraph) AddDependencies(unitID string, unitType models.UnitType, dependencies []string) error {
	if unitType == models.UnitTypeExercise {
		return fmt.Errorf("unit %s: %w", unitID, ErrExerciseDependencies)
	}
	for _, dep := range dependencies {
		if dep == unitID {
			return fmt.Errorf("unit %s: %w", unitID, ErrSelfDependency)
		}
	}
	if _, ok := g.unitTypes[unitID]; !ok {
		return fmt.Errorf("unit %s of type %s: %w", unitID, unitType, ErrUnknownUnit)
	}

	g.updateDependencySinks(unitID, dependencies)
	for _, dep := range dependencies {
		// Update the sinks for the dependencies as well so the scheduler can
		// start a walk even when some of them are missing from the library.
		g.updateDependencySinks(dep, nil)
	}

	if g.dependencies[unitID] == nil {
		g.dependencies[unitID] = make(unitSet)
	}
	for _, dep := range dependencies {
		g.dependencies[unitID].insert(dep)
		if g.dependents[dep] == nil {
			g.dependents[dep] = make(unitSet)
		}
		g.dependents[dep].insert(unitID)
	}
	return nil
}

// UnitType returns the type of the given unit, or UnitTypeUnknown if the unit
// has not been declared.
func (g *UnitGraph) UnitType(unitID string) models.UnitType {
	return g.unitTypes[unitID]
}

// Exists reports whether the unit has been declared in the graph.
func (g *UnitGraph) Exists(unitID string) bool {
	_, ok := g.unitTypes[unitID]
	return ok
}

// CourseLessons returns the lessons belonging to the given course.
func (g *UnitGraph) CourseLessons(courseID string) []string {
	return g.courseLessons[courseID].sorted()
}

// NumCourseLessons returns the number of lessons in the given course.
func (g *UnitGraph) NumCourseLessons(courseID string) int {
	return len(g.courseLessons[courseID])
}

// CourseStartingLessons returns the lessons in the given course that do not
// depend on any other lesson in the course.
func (g *UnitGraph) CourseStartingLessons(courseID string) []string {
	return g.startingLessons[courseID].sorted()
}

// UpdateStartingLessons recomputes the starting lessons for every course. It
// is meant to run once after all units and edges have been added.
func (g *UnitGraph) UpdateStartingLessons() {
	for courseID, lessons := range g.courseLessons {
		starting := make(unitSet)
		for lessonID := range lessons {
			inCourseDep := false
			for dep := range g.dependencies[lessonID] {
				if lessons.contains(dep) {
					inCourseDep = true
					break
				}
			}
			if !inCourseDep {
				starting.insert(lessonID)
			}
		}
		g.startingLessons[courseID] = starting
	}
}

// LessonCourse returns the course to which the given lesson belongs.
func (g *UnitGraph) LessonCourse(lessonID string) (string, bool) {
	courseID, ok := g.lessonCourse[lessonID]
	return courseID, ok
}

// LessonExercises returns the exercises belonging to the given lesson.
func (g *UnitGraph) LessonExercises(lessonID string) []string {
	return g.lessonExercises[lessonID].sorted()
}

// ExerciseLesson returns the lesson to which the given exercise belongs.
func (g *UnitGraph) ExerciseLesson(exerciseID string) (string, bool) {
	lessonID, ok := g.exerciseLesson[exerciseID]
	return lessonID, ok
}

// Dependencies returns the dependencies of the given unit.
func (g *UnitGraph) Dependencies(unitID string) []string {
	return g.dependencies[unitID].sorted()
}

// Dependents returns all the units which depend on the given unit.
func (g *UnitGraph) Dependents(unitID string) []string {
	return g.dependents[unitID].sorted()
}

// DependencySinks returns the units with no outgoing dependencies, that is,
// the units from which a walk of the graph can be safely started.
func (g *UnitGraph) DependencySinks() []string {
	return g.dependencySinks.sorted()
}

// CheckCycles verifies that the dependency relation is acyclic. The traversal
// is an iterative depth-first search with an explicit path stack; a unit
// reappearing in the current path signals a cycle. While traversing it also
// asserts that every dependency records the inverse relationship.
func (g *UnitGraph) CheckCycles() error {
	visited := make(unitSet)
	for unitID := range g.dependencies {
		if visited.contains(unitID) {
			continue
		}

		stack := [][]string{{unitID}}
		for len(stack) > 0 {
			path := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			currentID := path[len(path)-1]
			if visited.contains(currentID) {
				continue
			}
			visited.insert(currentID)

			for dep := range g.dependencies[currentID] {
				if dependents, ok := g.dependents[dep]; ok {
					if !dependents.contains(currentID) {
						return fmt.Errorf("unit %s lists unit %s as a dependency: %w",
							currentID, dep, ErrBrokenReverseEdge)
					}
				}

				for _, onPath := range path {
					if onPath == dep {
						return ErrCycle
					}
				}
				next := make([]string, len(path), len(path)+1)
				copy(next, path)
				stack = append(stack, append(next, dep))
			}
		}
	}
	return nil
}

// DotDump generates a DOT representation of the dependent graph. The
// dependent graph is emitted instead of the dependency graph so the output
// reads in the order the material is learned. A course's lessons are attached
// by listing the starting lessons as dependents of the course.
func (g *UnitGraph) DotDump() string {
	var b strings.Builder
	b.WriteString("digraph dependent_graph {\n")

	courses := make([]string, 0, len(g.courseLessons))
	for courseID := range g.courseLessons {
		courses = append(courses, courseID)
	}
	sort.Strings(courses)

	for _, courseID := range courses {
		dependents := g.Dependents(courseID)
		dependents = append(dependents, g.CourseStartingLessons(courseID)...)
		sort.Strings(dependents)
		for _, dependent := range dependents {
			fmt.Fprintf(&b, "    %q -> %q\n", courseID, dependent)
		}

		for _, lessonID := range g.CourseLessons(courseID) {
			for _, dependent := range g.Dependents(lessonID) {
				fmt.Fprintf(&b, "    %q -> %q\n", lessonID, dependent)
			}
		}
	}
	b.WriteString("}\n")
	return b.String()
}
