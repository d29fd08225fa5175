package models

import "testing"

func TestModuleKeyFallbackChain(t *testing.T) {
	tests := []struct {
		name   string
		module ModuleSelection
		index  int
		want   string
	}{
		{"provider id wins", ModuleSelection{ID: "m-9", Order: 3, Title: "Intro"}, 1, "m-9"},
		{"order next", ModuleSelection{Order: 3, Title: "Intro"}, 1, "3"},
		{"position next", ModuleSelection{Title: "Intro"}, 2, "2"},
		{"title next", ModuleSelection{Title: "Intro"}, 0, "Intro"},
		{"nothing left", ModuleSelection{}, 0, "unknown-module"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.module.Key(tt.index); got != tt.want {
				t.Fatalf("Key(%d) = %q, want %q", tt.index, got, tt.want)
			}
		})
	}
}

func TestLessonKeyFallbackChain(t *testing.T) {
	l := LessonSelection{Order: 7}
	if got := l.Key(1); got != "7" {
		t.Fatalf("expected order key, got %q", got)
	}

	empty := LessonSelection{}
	if got := empty.Key(0); got != "unknown-lesson" {
		t.Fatalf("expected fallback key, got %q", got)
	}
}

func TestWantedExcludesLockedAndUnselected(t *testing.T) {
	if (&ModuleSelection{Download: true, Locked: true}).Wanted() {
		t.Fatal("locked module reported wanted")
	}
	if (&LessonSelection{Download: false}).Wanted() {
		t.Fatal("unselected lesson reported wanted")
	}
	if !(&LessonSelection{Download: true}).Wanted() {
		t.Fatal("selected lesson not wanted")
	}
}

func TestLessonEntryDone(t *testing.T) {
	var nilEntry *LessonEntry
	if nilEntry.Done() {
		t.Fatal("nil entry reported done")
	}

	entry := &LessonEntry{
		Description:   true,
		AuxiliaryURLs: true,
		Videos:        map[string]bool{"v1": true},
		Attachments:   map[string]bool{"a1": true},
	}
	if !entry.Done() {
		t.Fatalf("complete entry not done: %+v", entry)
	}

	entry.Videos["v2"] = false
	if entry.Done() {
		t.Fatal("entry with pending video reported done")
	}
}

func TestLessonEntryForMissingLevels(t *testing.T) {
	var nilState *ResumeState
	if nilState.LessonEntryFor("c", "m", "l") != nil {
		t.Fatal("nil state returned an entry")
	}

	state := &ResumeState{
		Progress: map[string]*CourseProgress{
			"c1": {Modules: map[string]*ModuleProgress{
				"m1": {Lessons: map[string]*LessonEntry{
					"l1": {Description: true},
				}},
			}},
		},
	}

	if state.LessonEntryFor("c1", "m1", "l1") == nil {
		t.Fatal("existing entry not found")
	}
	if state.LessonEntryFor("c1", "m1", "l2") != nil {
		t.Fatal("missing lesson returned an entry")
	}
	if state.LessonEntryFor("c2", "m1", "l1") != nil {
		t.Fatal("missing course returned an entry")
	}
}
