package testutil

// BasicLibrary returns a small set of courses exercising the interesting
// shapes of the dependency graph: linear lessons, parallel courses, chained
// lessons, dependencies on courses missing from the library (course 3), and
// lessons with cross-course dependencies (course 7).
func BasicLibrary() []TestCourse {
	return []TestCourse{
		{
			ID: "0",
			Metadata: map[string][]string{
				"course_key_1": {"course_key_1:value_1"},
				"course_key_2": {"course_key_2:value_1"},
			},
			Lessons: []TestLesson{
				{
					ID: "0::0",
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_1"},
						"lesson_key_2": {"lesson_key_2:value_1"},
					},
					NumExercises: 10,
				},
				{
					ID:           "0::1",
					Dependencies: []string{"0::0"},
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_2"},
						"lesson_key_2": {"lesson_key_2:value_2"},
					},
					NumExercises: 10,
				},
			},
		},
		{
			ID:           "1",
			Dependencies: []string{"0"},
			Metadata: map[string][]string{
				"course_key_1": {"course_key_1:value_1"},
				"course_key_2": {"course_key_2:value_1"},
			},
			Lessons: []TestLesson{
				{
					ID: "1::0",
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_3"},
						"lesson_key_2": {"lesson_key_2:value_3"},
					},
					NumExercises: 10,
				},
				{
					ID:           "1::1",
					Dependencies: []string{"1::0"},
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_3"},
						"lesson_key_2": {"lesson_key_2:value_3"},
					},
					NumExercises: 10,
				},
			},
		},
		{
			ID:           "2",
			Dependencies: []string{"0"},
			Metadata: map[string][]string{
				"course_key_1": {"course_key_1:value_2"},
				"course_key_2": {"course_key_2:value_2"},
			},
			Lessons: []TestLesson{
				{
					ID: "2::0",
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_3"},
						"lesson_key_2": {"lesson_key_2:value_3"},
					},
					NumExercises: 10,
				},
				{
					ID:           "2::1",
					Dependencies: []string{"2::0"},
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_4"},
						"lesson_key_2": {"lesson_key_2:value_4"},
					},
					NumExercises: 10,
				},
				{
					ID:           "2::2",
					Dependencies: []string{"2::1"},
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_4"},
						"lesson_key_2": {"lesson_key_2:value_4"},
					},
					NumExercises: 10,
				},
			},
		},
		{
			ID: "4",
			Metadata: map[string][]string{
				"course_key_1": {"course_key_1:value_3"},
				"course_key_2": {"course_key_2:value_3"},
			},
			Lessons: []TestLesson{
				{
					ID: "4::0",
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_5"},
						"lesson_key_2": {"lesson_key_2:value_5"},
					},
					NumExercises: 10,
				},
				{
					ID:           "4::1",
					Dependencies: []string{"4::0"},
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_6"},
						"lesson_key_2": {"lesson_key_2:value_6"},
					},
					NumExercises: 10,
				},
				{
					ID:           "4::2",
					Dependencies: []string{"4::0"},
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_5"},
						"lesson_key_2": {"lesson_key_2:value_5"},
					},
					NumExercises: 10,
				},
				{
					ID:           "4::3",
					Dependencies: []string{"4::2"},
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_5"},
						"lesson_key_2": {"lesson_key_2:value_5"},
					},
					NumExercises: 10,
				},
			},
		},
		{
			// Course 3 is deliberately absent from the library.
			ID:           "5",
			Dependencies: []string{"3", "4"},
			Metadata: map[string][]string{
				"course_key_1": {"course_key_1:value_2"},
				"course_key_2": {"course_key_2:value_2"},
			},
			Lessons: []TestLesson{
				{
					ID: "5::0",
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_4"},
						"lesson_key_2": {"lesson_key_2:value_4"},
					},
					NumExercises: 10,
				},
				{
					ID:           "5::1",
					Dependencies: []string{"5::0"},
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_5"},
						"lesson_key_2": {"lesson_key_2:value_5"},
					},
					NumExercises: 10,
				},
			},
		},
		{
			ID:           "6",
			Dependencies: []string{"3"},
			Metadata: map[string][]string{
				"course_key_1": {"course_key_1:value_6"},
				"course_key_2": {"course_key_2:value_6"},
			},
			Lessons: []TestLesson{
				{
					ID: "6::0",
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_6"},
						"lesson_key_2": {"lesson_key_2:value_6"},
					},
					NumExercises: 10,
				},
				{
					ID:           "6::1",
					Dependencies: []string{"6::0"},
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_7"},
						"lesson_key_2": {"lesson_key_2:value_7"},
					},
					NumExercises: 10,
				},
			},
		},
		{
			ID: "7",
			Metadata: map[string][]string{
				"course_key_1": {"course_key_1:value_1"},
				"course_key_2": {"course_key_2:value_1"},
			},
			Lessons: []TestLesson{
				{
					ID:           "7::0",
					Dependencies: []string{"0"},
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_1"},
						"lesson_key_2": {"lesson_key_2:value_1"},
					},
					NumExercises: 10,
				},
				{
					ID:           "7::1",
					Dependencies: []string{"0::0"},
					Metadata: map[string][]string{
						"lesson_key_1": {"lesson_key_1:value_2"},
						"lesson_key_2": {"lesson_key_2:value_2"},
					},
					NumExercises: 10,
				},
			},
		},
	}
}
