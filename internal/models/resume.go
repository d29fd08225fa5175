package models

// ResumeState is the durable per-provider checkpoint.
//
// JSON tags match the on-disk checkpoint schema, do not alter.
type ResumeState struct {
	Platform        string                     `json:"platform"`
	Selection       Selection                  `json:"selection"`
	SelectedCourses []map[string]any           `json:"selected_courses"`
	Progress        map[string]*CourseProgress `json:"progress"`
	Completed       bool                       `json:"completed"`
	Request         *RequestContext            `json:"request"`
}

// RequestContext snapshots the authenticated channel for a later resumed run.
type RequestContext struct {
	Headers map[string]string `json:"headers"`
	Cookies map[string]string `json:"cookies"`
}

// CourseProgress nests module progress under the "modules" JSON key.
type CourseProgress struct {
	Modules map[string]*ModuleProgress `json:"modules"`
}

// ModuleProgress nests lesson entries under the "lessons" JSON key.
type ModuleProgress struct {
	Lessons map[string]*LessonEntry `json:"lessons"`
}

// LessonEntry tracks the done/not-done flag of every leaf item in a lesson.
type LessonEntry struct {
	Description   bool            `json:"description"`
	AuxiliaryURLs bool            `json:"auxiliary_urls"`
	Videos        map[string]bool `json:"videos"`
	Attachments   map[string]bool `json:"attachments"`
}

// Done reports whether every leaf item of the lesson has succeeded.
func (e *LessonEntry) Done() bool {
	if e == nil {
		return false
	}
	if !e.Description || !e.AuxiliaryURLs {
		return false
	}
	for _, ok := range e.Videos {
		if !ok {
			return false
		}
	}
	for _, ok := range e.Attachments {
		if !ok {
			return false
		}
	}
	return true
}

// LessonEntryFor returns the lesson entry at the given keys, or nil when
// any level of the progress map is absent.
func (s *ResumeState) LessonEntryFor(courseID, moduleKey, lessonKey string) *LessonEntry {
	if s == nil || s.Progress == nil {
		return nil
	}
	course, ok := s.Progress[courseID]
	if !ok || course.Modules == nil {
		return nil
	}
	module, ok := course.Modules[moduleKey]
	if !ok || module.Lessons == nil {
		return nil
	}
	return module.Lessons[lessonKey]
}
