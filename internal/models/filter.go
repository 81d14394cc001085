package models

// FilterOp is the logical operation used to combine multiple filters.
type FilterOp string

const (
	// The combined filter passes if all of its filters pass.
	FilterOpAll FilterOp = "all"

	// The combined filter passes if at least one of its filters passes.
	FilterOpAny FilterOp = "any"
)

// FilterType states how a key-value filter treats the units that match it.
type FilterType string

const (
	FilterTypeInclude FilterType = "include"
	FilterTypeExclude FilterType = "exclude"
)

// KeyValueFilter is a filter on the metadata of a course or lesson. Either a
// basic key-value match or a combination of other filters is set.
type KeyValueFilter struct {
	// The key and value to match, for a basic filter.
	Key        string     `json:"key,omitempty" yaml:"key,omitempty"`
	Value      string     `json:"value,omitempty" yaml:"value,omitempty"`
	FilterType FilterType `json:"filter_type,omitempty" yaml:"filter_type,omitempty"`

	// The operation and sub-filters, for a combined filter.
	Op      FilterOp          `json:"op,omitempty" yaml:"op,omitempty"`
	Filters []*KeyValueFilter `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// Apply evaluates the filter against the given metadata. A basic inclusion
// with a missing key does not pass; a basic exclusion with a missing key does.
func (f *KeyValueFilter) Apply(metadata map[string][]string) bool {
	if len(f.Filters) > 0 {
		if f.Op == FilterOpAny {
			for _, sub := range f.Filters {
				if sub.Apply(metadata) {
					return true
				}
			}
			return false
		}
		for _, sub := range f.Filters {
			if !sub.Apply(metadata) {
				return false
			}
		}
		return true
	}

	contains := false
	for _, v := range metadata[f.Key] {
		if v == f.Value {
			contains = true
			break
		}
	}
	if f.FilterType == FilterTypeExclude {
		return !contains
	}
	return contains
}

// MetadataFilter is a filter on course and/or lesson metadata.
type MetadataFilter struct {
	// The filter applied to the course metadata.
	CourseFilter *KeyValueFilter `json:"course_filter,omitempty" yaml:"course_filter,omitempty"`

	// The filter applied to the lesson metadata.
	LessonFilter *KeyValueFilter `json:"lesson_filter,omitempty" yaml:"lesson_filter,omitempty"`

	// The logical operation used to combine the course and lesson filters.
	Op FilterOp `json:"op" yaml:"op"`
}

// ApplyCourse evaluates the course sub-filter against a course's metadata.
// A missing course filter passes everything.
func (f *MetadataFilter) ApplyCourse(metadata map[string][]string) bool {
	if f.CourseFilter == nil {
		return true
	}
	return f.CourseFilter.Apply(metadata)
}

// ApplyLesson evaluates the filter against a lesson and its owning course.
func (f *MetadataFilter) ApplyLesson(lessonMetadata, courseMetadata map[string][]string) bool {
	switch {
	case f.CourseFilter == nil && f.LessonFilter == nil:
		return true
	case f.LessonFilter == nil:
		return f.CourseFilter.Apply(courseMetadata)
	case f.CourseFilter == nil:
		return f.LessonFilter.Apply(lessonMetadata)
	}
	if f.Op == FilterOpAny {
		return f.CourseFilter.Apply(courseMetadata) || f.LessonFilter.Apply(lessonMetadata)
	}
	return f.CourseFilter.Apply(courseMetadata) && f.LessonFilter.Apply(lessonMetadata)
}

// UnitFilter restricts a scheduling call to a subset of the unit graph.
// Exactly one of the fields is expected to be set; an empty filter behaves
// like no filter at all.
type UnitFilter struct {
	// Only schedule exercises belonging to these courses.
	CourseIDs []string `json:"course_ids,omitempty" yaml:"course_ids,omitempty"`

	// Only schedule exercises belonging to these lessons.
	LessonIDs []string `json:"lesson_ids,omitempty" yaml:"lesson_ids,omitempty"`

	// Only schedule exercises whose lesson or course matches the metadata
	// filter.
	Metadata *MetadataFilter `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NamedFilter is a saved unit filter the student can reference by id.
type NamedFilter struct {
	ID          string     `json:"id" yaml:"id"`
	Description string     `json:"description" yaml:"description"`
	Filter      UnitFilter `json:"filter" yaml:"filter"`
}
