package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mastery-scheduler/internal/models"
)

const (
	courseManifestFile = "course.json"
	lessonManifestFile = "lesson.json"
	exercisePrefix     = "exercise"
)

// LoadFromDir walks a directory tree of JSON manifests and builds a library
// from it. Each directory containing a course.json file is a course root;
// each direct subdirectory containing a lesson.json file is a lesson of that
// course, and files named exercise*.json next to the lesson manifest are its
// exercises.
func LoadFromDir(root string) (*Library, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open course library at %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("course library root %s is not a directory", root)
	}

	var courseRoots []string
	err = filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && entry.Name() == courseManifestFile {
			courseRoots = append(courseRoots, filepath.Dir(path))
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan course library at %s: %w", root, err)
	}
	sort.Strings(courseRoots)

	var courses []Course
	for _, courseRoot := range courseRoots {
		course, err := loadCourse(courseRoot)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return New(courses)
}

func loadCourse(courseRoot string) (Course, error) {
	var course Course
	if err := readManifest(
		filepath.Join(courseRoot, courseManifestFile), &course.Manifest); err != nil {
		return course, err
	}

	entries, err := os.ReadDir(courseRoot)
	if err != nil {
		return course, fmt.Errorf("failed to read course directory %s: %w", courseRoot, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		lessonRoot := filepath.Join(courseRoot, entry.Name())
		manifestPath := filepath.Join(lessonRoot, lessonManifestFile)
		if _, err := os.Stat(manifestPath); err != nil {
			continue
		}
		lesson, err := loadLesson(lessonRoot)
		if err != nil {
			return course, err
		}
		course.Lessons = append(course.Lessons, lesson)
	}
	return course, nil
}

func loadLesson(lessonRoot string) (Lesson, error) {
	var lesson Lesson
	if err := readManifest(
		filepath.Join(lessonRoot, lessonManifestFile), &lesson.Manifest); err != nil {
		return lesson, err
	}

	entries, err := os.ReadDir(lessonRoot)
	if err != nil {
		return lesson, fmt.Errorf("failed to read lesson directory %s: %w", lessonRoot, err)
	}
	var exerciseFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, exercisePrefix) ||
			!strings.HasSuffix(name, ".json") {
			continue
		}
		exerciseFiles = append(exerciseFiles, filepath.Join(lessonRoot, name))
	}
	sort.Strings(exerciseFiles)

	for _, path := range exerciseFiles {
		var manifest models.ExerciseManifest
		if err := readManifest(path, &manifest); err != nil {
			return lesson, err
		}
		lesson.Exercises = append(lesson.Exercises, manifest)
	}
	return lesson, nil
}

func readManifest(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return nil
}
