package graph

import "errors"

// Errors surfaced while building or checking the unit graph. All of them are
// fatal to the load; the library does not open if any of them is returned.
var (
	// A unit id was declared more than once.
	ErrDuplicateUnit = errors.New("unit already exists")

	// A unit id was reused with a different unit type.
	ErrKindConflict = errors.New("cannot update unit type to a different value")

	// A unit listed itself among its dependencies.
	ErrSelfDependency = errors.New("unit cannot depend on itself")

	// Dependencies were added to an exercise. Exercises inherit the
	// dependencies of their lesson.
	ErrExerciseDependencies = errors.New("exercises cannot have dependencies")

	// Dependencies were added to a unit that was never declared.
	ErrUnknownUnit = errors.New("unit must be added before adding dependencies")

	// The dependency relation contains a cycle.
	ErrCycle = errors.New("cycle in dependency graph detected")

	// A forward edge exists without its reverse counterpart.
	ErrBrokenReverseEdge = errors.New("dependency is missing the reverse relationship")
)
