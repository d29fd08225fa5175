// Package planner flattens a selection tree into the ordered work list the
// orchestrator executes.
package planner

import (
	"sort"

	"coursarr/internal/models"
)

// Item is one lesson visit. Skipped items stay in the plan so the progress
// denominator matches the full selection.
type Item struct {
	CourseID string
	Course   *models.CourseSelection

	Module      *models.ModuleSelection
	ModuleKey   string
	ModuleIndex int

	Lesson      *models.LessonSelection
	LessonKey   string
	LessonIndex int

	Skip       bool
	SkipReason string
}

// Plan is the flattened, ordered lesson work list.
type Plan struct {
	Items []*Item
}

// Total returns the number of planned lessons, skipped ones included.
func (p *Plan) Total() int {
	return len(p.Items)
}

// Build flattens the selection into lesson items. Courses iterate in sorted
// ID order so runs over the same selection produce the same sequence;
// modules and lessons keep their declared order.
func Build(selection models.Selection) *Plan {
	courseIDs := make([]string, 0, len(selection))
	for id := range selection {
		courseIDs = append(courseIDs, id)
	}
	sort.Strings(courseIDs)

	plan := &Plan{}
	for _, courseID := range courseIDs {
		course := selection[courseID]

		for mi, module := range course.Modules {
			moduleIndex := mi + 1
			moduleKey := module.Key(moduleIndex)

			moduleSkip := ""
			switch {
			case module.Locked:
				moduleSkip = "module locked"
			case !module.Download:
				moduleSkip = "module not selected"
			}

			for li, lesson := range module.Lessons {
				lessonIndex := li + 1
				item := &Item{
					CourseID:    courseID,
					Course:      course,
					Module:      module,
					ModuleKey:   moduleKey,
					ModuleIndex: moduleIndex,
					Lesson:      lesson,
					LessonKey:   lesson.Key(lessonIndex),
					LessonIndex: lessonIndex,
				}

				switch {
				case moduleSkip != "":
					item.Skip = true
					item.SkipReason = moduleSkip
				case lesson.Locked:
					item.Skip = true
					item.SkipReason = "lesson locked"
				case !lesson.Download:
					item.Skip = true
					item.SkipReason = "lesson not selected"
				}

				plan.Items = append(plan.Items, item)
			}
		}
	}
	return plan
}
