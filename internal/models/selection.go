package models

import (
	"strconv"

	"coursarr/internal/domain/consts"
)

// Selection is the course→module→lesson tree the user picked for download,
// keyed by provider-issued course ID.
//
// JSON tags match the checkpoint file shape, do not alter.
type Selection map[string]*CourseSelection

// CourseSelection holds one selected course and its module tree.
type CourseSelection struct {
	Name    string             `json:"name"`
	Slug    string             `json:"slug,omitempty"`
	Modules []*ModuleSelection `json:"modules"`
}

// ModuleSelection holds per-module selection flags and the lesson list.
type ModuleSelection struct {
	ID       string             `json:"id,omitempty"`
	Title    string             `json:"title"`
	Order    int                `json:"order,omitempty"`
	Download bool               `json:"download"`
	Locked   bool               `json:"locked,omitempty"`
	Lessons  []*LessonSelection `json:"lessons"`
}

// LessonSelection holds per-lesson selection flags.
type LessonSelection struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Order    int    `json:"order,omitempty"`
	Download bool   `json:"download"`
	Locked   bool   `json:"locked,omitempty"`
}

// Wanted reports whether the module is selected and accessible.
func (m *ModuleSelection) Wanted() bool {
	return m.Download && !m.Locked
}

// Wanted reports whether the lesson is selected and accessible.
func (l *LessonSelection) Wanted() bool {
	return l.Download && !l.Locked
}

// Key derives the stable checkpoint key for a module: provider id first,
// then declared order, then the 1-based position, then title.
func (m *ModuleSelection) Key(defaultIndex int) string {
	switch {
	case m.ID != "":
		return m.ID
	case m.Order != 0:
		return strconv.Itoa(m.Order)
	case defaultIndex != 0:
		return strconv.Itoa(defaultIndex)
	case m.Title != "":
		return m.Title
	default:
		return consts.UnknownModuleKey
	}
}

// Key derives the stable checkpoint key for a lesson, same fallback chain
// as ModuleSelection.Key.
func (l *LessonSelection) Key(defaultIndex int) string {
	switch {
	case l.ID != "":
		return l.ID
	case l.Order != 0:
		return strconv.Itoa(l.Order)
	case defaultIndex != 0:
		return strconv.Itoa(defaultIndex)
	case l.Title != "":
		return l.Title
	default:
		return consts.UnknownLessonKey
	}
}
