package scheduler

import (
	"mastery-scheduler/internal/models"
)

// The batch size is multiplied by this factor to widen the range of the
// search and avoid always returning the same exercises. A search concludes
// early when it hits a dead end and already has at least as many candidates
// as the product.
const maxCandidateFactor = 10

// stackItem is an element of the stack used during the graph search.
type stackItem struct {
	// The id of the unit contained in the item.
	unitID string

	// The number of hops the search needed to reach this item.
	numHops int
}

// candidate is an exercise selected during the search.
type candidate struct {
	// The id of the exercise.
	exerciseID string

	// The number of hops the graph search needed to reach this exercise.
	numHops int

	// The exercise score.
	score float64
}

// search runs the depth-first walk over the unit graph that produces the raw
// candidate list.
type search struct {
	data  *Data
	cache *ScoreCache
	rng   *lockedRand
}

// shuffleToStack shuffles the given units and pushes them onto the stack one
// hop deeper than the current item.
func (s *search) shuffleToStack(current stackItem, units []string, stack *[]stackItem) {
	s.rng.shuffleStrings(units)
	for _, unitID := range units {
		*stack = append(*stack, stackItem{unitID: unitID, numHops: current.numHops + 1})
	}
}

// allStartingCourses returns the courses from which a whole-graph walk can
// start. Missing dependency sinks are replaced by their dependents until the
// set stabilizes; courses with dependencies that exist in the library are
// then dropped.
func (s *search) allStartingCourses() []string {
	starting := make(map[string]struct{})
	for _, unitID := range s.data.Graph.DependencySinks() {
		starting[unitID] = struct{}{}
	}

	for {
		next := make(map[string]struct{})
		for unitID := range starting {
			if s.data.unitExists(unitID) {
				next[unitID] = struct{}{}
				continue
			}
			for _, dependent := range s.data.Graph.Dependents(unitID) {
				next[dependent] = struct{}{}
			}
		}
		if len(next) == len(starting) {
			break
		}
		starting = next
	}

	var courses []string
	for unitID := range starting {
		allMissing := true
		for _, dep := range s.data.Graph.Dependencies(unitID) {
			if s.data.unitExists(dep) {
				allMissing = false
				break
			}
		}
		if allMissing {
			courses = append(courses, unitID)
		}
	}
	return courses
}

// courseStartingLessons returns the starting lessons of the course whose
// dependencies are satisfied.
func (s *search) courseStartingLessons(courseID string, filter *models.MetadataFilter) []string {
	var lessons []string
	for _, lessonID := range s.data.Graph.CourseStartingLessons(courseID) {
		if s.allSatisfiedDependencies(lessonID, filter) {
			lessons = append(lessons, lessonID)
		}
	}
	return lessons
}

// allStartingLessons seeds a whole-graph walk with the starting lessons of
// every starting course, shuffled.
func (s *search) allStartingLessons(filter *models.MetadataFilter) []stackItem {
	var lessonIDs []string
	for _, courseID := range s.allStartingCourses() {
		lessonIDs = append(lessonIDs, s.courseStartingLessons(courseID, filter)...)
	}
	s.rng.shuffleStrings(lessonIDs)

	items := make([]stackItem, 0, len(lessonIDs))
	for _, lessonID := range lessonIDs {
		items = append(items, stackItem{unitID: lessonID, numHops: 0})
	}
	return items
}

// satisfiedDependency reports whether the given dependency can be considered
// satisfied, which lets the search continue past it.
func (s *search) satisfiedDependency(dependencyID string, filter *models.MetadataFilter) bool {
	// Dependencies which do not pass the filter are considered satisfied.
	passes, err := s.data.unitPassesFilter(dependencyID, filter)
	if err != nil || !passes {
		return true
	}

	// Dependencies on the blacklist are considered satisfied.
	if s.data.blacklisted(dependencyID) {
		return true
	}

	// Dependencies which are a lesson of a blacklisted course are considered
	// satisfied.
	if courseID := s.data.lessonCourseID(dependencyID); courseID != "" &&
		s.data.blacklisted(courseID) {
		return true
	}

	// Finally, dependencies scoring at or above the passing score are
	// considered satisfied. A unit with no valid score cannot gate anything.
	score, ok := s.cache.UnitScore(dependencyID)
	if !ok || score == nil {
		return true
	}
	return *score >= s.data.Options.PassingScore
}

// allSatisfiedDependencies reports whether every dependency of the unit is
// satisfied, ignoring the implicit edge between a lesson and its course.
// Missing units are transparent: they are treated as satisfied so partial
// library loads do not stop the search.
func (s *search) allSatisfiedDependencies(unitID string, filter *models.MetadataFilter) bool {
	if !s.data.unitExists(unitID) {
		return true
	}

	courseID := s.data.lessonCourseID(unitID)
	for _, dependencyID := range s.data.Graph.Dependencies(unitID) {
		if courseID != "" && dependencyID == courseID {
			continue
		}
		if !s.satisfiedDependency(dependencyID, filter) {
			return false
		}
	}
	return true
}

// validDependents returns the dependents of the unit whose full dependencies
// are satisfied and which can therefore be visited next.
func (s *search) validDependents(unitID string, filter *models.MetadataFilter) []string {
	var valid []string
	for _, dependent := range s.data.Graph.Dependents(unitID) {
		if s.allSatisfiedDependencies(dependent, filter) {
			valid = append(valid, dependent)
		}
	}
	return valid
}

// candidatesFromLesson builds candidates from the lesson's non-blacklisted
// exercises and returns them along with the average score over all of the
// lesson's exercises.
func (s *search) candidatesFromLesson(item stackItem) ([]candidate, float64) {
	// A blacklisted lesson, or a lesson of a blacklisted course, yields
	// nothing.
	if s.data.blacklisted(item.unitID) {
		return nil, 0
	}
	if courseID := s.data.lessonCourseID(item.unitID); courseID != "" &&
		s.data.blacklisted(courseID) {
		return nil, 0
	}

	exercises := s.data.Graph.LessonExercises(item.unitID)
	var candidates []candidate
	var sum float64
	for _, exerciseID := range exercises {
		score := s.cache.ExerciseScore(exerciseID)
		sum += score
		if s.data.blacklisted(exerciseID) {
			continue
		}
		candidates = append(candidates, candidate{
			exerciseID: exerciseID,
			numHops:    item.numHops + 1,
			score:      score,
		})
	}

	if len(exercises) == 0 {
		return candidates, 0
	}
	return candidates, sum / float64(len(exercises))
}

// candidatesFromGraph searches for candidates across the entire graph,
// optionally restricted by a metadata filter.
func (s *search) candidatesFromGraph(filter *models.MetadataFilter) []candidate {
	stack := s.allStartingLessons(filter)
	maxCandidates := s.data.Options.BatchSize * maxCandidateFactor

	var allCandidates []candidate
	visited := make(map[string]struct{})

	// The number of lessons not yet visited per course. The search only
	// moves onto a course's dependents once all of its lessons have been
	// visited.
	pendingLessons := make(map[string]int)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[current.unitID]; ok {
			continue
		}

		if !s.data.unitExists(current.unitID) {
			// Push the valid dependents of any unit which cannot be found so
			// missing sections of the graph do not stop the search.
			visited[current.unitID] = struct{}{}
			s.shuffleToStack(current, s.validDependents(current.unitID, filter), &stack)
			continue
		}

		switch s.data.Graph.UnitType(current.unitID) {
		case models.UnitTypeExercise:
			// The search only considers lessons and courses.
			continue

		case models.UnitTypeCourse:
			s.shuffleToStack(current, s.courseStartingLessons(current.unitID, filter), &stack)

			pending, ok := pendingLessons[current.unitID]
			if !ok {
				pending = s.data.Graph.NumCourseLessons(current.unitID)
				pendingLessons[current.unitID] = pending
			}

			passes, err := s.data.unitPassesFilter(current.unitID, filter)
			if err != nil {
				passes = true
			}
			if pending <= 0 || !passes || s.data.blacklisted(current.unitID) {
				// Nothing in the course left to schedule. Move on to its
				// dependents.
				visited[current.unitID] = struct{}{}
				s.shuffleToStack(current, s.validDependents(current.unitID, filter), &stack)
			}
			// Otherwise leave the course unvisited; its final lesson pushes
			// it back onto the stack.
			continue
		}

		// The unit must be a lesson.
		visited[current.unitID] = struct{}{}

		courseID := s.data.lessonCourseID(current.unitID)
		if _, ok := pendingLessons[courseID]; !ok {
			pendingLessons[courseID] = s.data.Graph.NumCourseLessons(courseID)
		}
		pendingLessons[courseID]--
		if pendingLessons[courseID] <= 0 {
			// All of the course's lessons have been visited; re-add the
			// course so the search can explore its dependents.
			stack = append(stack, stackItem{unitID: courseID, numHops: current.numHops + 1})
		}

		validDeps := s.validDependents(current.unitID, filter)
		passes, err := s.data.unitPassesFilter(current.unitID, filter)
		if err != nil {
			passes = true
		}
		if !passes {
			s.shuffleToStack(current, validDeps, &stack)
			continue
		}

		candidates, avgScore := s.candidatesFromLesson(current)
		allCandidates = append(allCandidates, candidates...)

		if len(candidates) > 0 && avgScore < s.data.Options.PassingScore {
			// The branch is a dead end: the lesson must be mastered before
			// the search descends past it.
			if len(allCandidates) >= maxCandidates {
				break
			}
			continue
		}

		s.shuffleToStack(current, validDeps, &stack)
	}

	return allCandidates
}

// candidatesFromCourses searches for candidates restricted to the given
// courses.
func (s *search) candidatesFromCourses(courseIDs []string) []candidate {
	requested := make(map[string]struct{}, len(courseIDs))
	visited := make(map[string]struct{}, len(courseIDs))
	var stack []stackItem
	for _, courseID := range courseIDs {
		requested[courseID] = struct{}{}
		visited[courseID] = struct{}{}
		for _, lessonID := range s.courseStartingLessons(courseID, nil) {
			stack = append(stack, stackItem{unitID: lessonID, numHops: 0})
		}
	}

	maxCandidates := s.data.Options.BatchSize * maxCandidateFactor
	var allCandidates []candidate

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[current.unitID]; ok {
			continue
		}
		visited[current.unitID] = struct{}{}

		if !s.data.unitExists(current.unitID) {
			s.shuffleToStack(current, s.validDependents(current.unitID, nil), &stack)
			continue
		}

		switch s.data.Graph.UnitType(current.unitID) {
		case models.UnitTypeCourse, models.UnitTypeExercise:
			// Only lessons from the requested courses are considered.
			continue
		}

		if _, ok := requested[s.data.lessonCourseID(current.unitID)]; !ok {
			// Ignore lessons from other courses.
			continue
		}

		candidates, avgScore := s.candidatesFromLesson(current)
		allCandidates = append(allCandidates, candidates...)

		if len(candidates) > 0 && avgScore < s.data.Options.PassingScore {
			if len(allCandidates) >= maxCandidates {
				break
			}
			continue
		}

		s.shuffleToStack(current, s.validDependents(current.unitID, nil), &stack)
	}

	return allCandidates
}

// candidatesFromLessons returns the candidates of the given lessons directly,
// with no graph walk.
func (s *search) candidatesFromLessons(lessonIDs []string) []candidate {
	var allCandidates []candidate
	for _, lessonID := range lessonIDs {
		candidates, _ := s.candidatesFromLesson(stackItem{unitID: lessonID, numHops: 0})
		allCandidates = append(allCandidates, candidates...)
	}
	return allCandidates
}
