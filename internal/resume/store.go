// Package resume persists and restores per-provider download checkpoints.
package resume

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"coursarr/internal/domain/consts"
	"coursarr/internal/models"
	"coursarr/internal/utils/fs"
	"coursarr/internal/utils/logging"
)

// Store owns the checkpoint files under one base directory. A checkpoint is
// exclusively owned by a single run for its lifetime; the mutex serializes
// writers inside that run.
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// NewStore returns a checkpoint store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// path derives the checkpoint file name from a sanitized platform name.
func (s *Store) path(platform string) string {
	safe := fs.SanitizePathComponent(platform)
	if safe == "" {
		safe = "platform"
	}
	return filepath.Join(s.baseDir, safe+".json")
}

// Load returns the stored state for a platform, or nil when no checkpoint
// exists or it is unreadable. A corrupt file is treated as absent.
func (s *Store) Load(platform string) *models.ResumeState {
	path := s.path(platform)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.W("Failed to read checkpoint at %q: %v", path, err)
		}
		return nil
	}

	var state models.ResumeState
	if err := json.Unmarshal(data, &state); err != nil {
		logging.W("Failed to parse checkpoint at %q, treating as absent: %v", path, err)
		return nil
	}
	return &state
}

// Save durably persists the state with write-then-replace semantics.
func (s *Store) Save(platform string, state *models.ResumeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(platform, state)
}

func (s *Store) save(platform string, state *models.ResumeState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint for %q: %w", platform, err)
	}
	return fs.WriteFileAtomic(s.path(platform), data, 0644)
}

// Initialize creates a fresh state with empty progress and persists it
// immediately.
func (s *Store) Initialize(platform string, selection models.Selection, selectedCourses []map[string]any, request *models.RequestContext) (*models.ResumeState, error) {
	if selectedCourses == nil {
		selectedCourses = []map[string]any{}
	}
	if request == nil {
		request = &models.RequestContext{
			Headers: map[string]string{},
			Cookies: map[string]string{},
		}
	}

	state := &models.ResumeState{
		Platform:        platform,
		Selection:       selection,
		SelectedCourses: selectedCourses,
		Progress:        make(map[string]*models.CourseProgress),
		Completed:       false,
		Request:         request,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(platform, state); err != nil {
		return nil, err
	}
	return state, nil
}

// EnsureLessonEntry idempotently creates the nested maps for a lesson the
// first time it is visited. Description and auxiliary flags default to true
// when the fetched content has none (nothing to do); every video and
// attachment id is seeded to false.
func (s *Store) EnsureLessonEntry(state *models.ResumeState, platform, courseID, moduleKey, lessonKey string, content *models.LessonContent) (*models.LessonEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := ensureEntry(state, courseID, moduleKey, lessonKey,
		content.Description == nil, len(content.AuxiliaryURLs) == 0)

	// A lesson entry can predate this fetch (earlier failed run). With no
	// description or links in the content the flags are vacuously done.
	if content.Description == nil {
		entry.Description = true
	}
	if len(content.AuxiliaryURLs) == 0 {
		entry.AuxiliaryURLs = true
	}

	for i, v := range content.Videos {
		key := v.Key(i + 1)
		if _, ok := entry.Videos[key]; !ok {
			entry.Videos[key] = false
		}
	}
	for i, a := range content.Attachments {
		key := a.Key(i + 1)
		if _, ok := entry.Attachments[key]; !ok {
			entry.Attachments[key] = false
		}
	}

	if err := s.save(platform, state); err != nil {
		return nil, err
	}
	return entry, nil
}

// MarkStatus updates exactly one leaf flag, recomputes the global completed
// boolean, and persists.
func (s *Store) MarkStatus(state *models.ResumeState, platform, courseID, moduleKey, lessonKey, category, itemKey string, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := ensureEntry(state, courseID, moduleKey, lessonKey, false, false)

	switch category {
	case consts.CategoryDescription:
		entry.Description = success
	case consts.CategoryAuxiliaryURLs:
		entry.AuxiliaryURLs = success
	case consts.CategoryVideos:
		if itemKey != "" {
			entry.Videos[itemKey] = success
		}
	case consts.CategoryAttachments:
		if itemKey != "" {
			entry.Attachments[itemKey] = success
		}
	default:
		return fmt.Errorf("unknown checkpoint category %q", category)
	}

	state.Completed = isComplete(state)
	return s.save(platform, state)
}

// IsComplete reports whether every selected lesson in the selection snapshot
// stored inside the state has a done entry.
func (s *Store) IsComplete(state *models.ResumeState) bool {
	return isComplete(state)
}

// ensureEntry walks or creates the nested progress maps for one lesson.
func ensureEntry(state *models.ResumeState, courseID, moduleKey, lessonKey string, descriptionDone, auxiliaryDone bool) *models.LessonEntry {
	if state.Progress == nil {
		state.Progress = make(map[string]*models.CourseProgress)
	}

	course, ok := state.Progress[courseID]
	if !ok {
		course = &models.CourseProgress{Modules: make(map[string]*models.ModuleProgress)}
		state.Progress[courseID] = course
	}
	if course.Modules == nil {
		course.Modules = make(map[string]*models.ModuleProgress)
	}

	module, ok := course.Modules[moduleKey]
	if !ok {
		module = &models.ModuleProgress{Lessons: make(map[string]*models.LessonEntry)}
		course.Modules[moduleKey] = module
	}
	if module.Lessons == nil {
		module.Lessons = make(map[string]*models.LessonEntry)
	}

	entry, ok := module.Lessons[lessonKey]
	if !ok {
		entry = &models.LessonEntry{
			Description:   descriptionDone,
			AuxiliaryURLs: auxiliaryDone,
			Videos:        make(map[string]bool),
			Attachments:   make(map[string]bool),
		}
		module.Lessons[lessonKey] = entry
	}
	if entry.Videos == nil {
		entry.Videos = make(map[string]bool)
	}
	if entry.Attachments == nil {
		entry.Attachments = make(map[string]bool)
	}
	return entry
}

// isComplete evaluates completion against the stored selection snapshot.
func isComplete(state *models.ResumeState) bool {
	for courseID, course := range state.Selection {
		for mi, module := range course.Modules {
			if !module.Wanted() {
				continue
			}
			moduleKey := module.Key(mi + 1)

			for li, lesson := range module.Lessons {
				if !lesson.Wanted() {
					continue
				}
				lessonKey := lesson.Key(li + 1)

				entry := state.LessonEntryFor(courseID, moduleKey, lessonKey)
				if !entry.Done() {
					return false
				}
			}
		}
	}
	return true
}
