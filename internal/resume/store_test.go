package resume_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"coursarr/internal/domain/consts"
	"coursarr/internal/models"
	"coursarr/internal/resume"
)

func testSelection() models.Selection {
	return models.Selection{
		"c1": {
			Name: "Course One",
			Modules: []*models.ModuleSelection{
				{
					ID: "m1", Title: "Module One", Download: true,
					Lessons: []*models.LessonSelection{
						{ID: "l1", Title: "Lesson One", Download: true},
						{ID: "l2", Title: "Lesson Two", Download: true, Locked: true},
					},
				},
			},
		},
	}
}

// TestLoadMissingAndCorrupt checks that absent and unparseable checkpoints
// both load as nil.
func TestLoadMissingAndCorrupt(t *testing.T) {
	store := resume.NewStore(t.TempDir())

	if state := store.Load("nothing-here"); state != nil {
		t.Fatalf("expected nil for missing checkpoint, got %+v", state)
	}

	dir := t.TempDir()
	store = resume.NewStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if state := store.Load("broken"); state != nil {
		t.Fatalf("expected nil for corrupt checkpoint, got %+v", state)
	}
}

// TestInitializeAndReload checks the full persist/reload round trip and the
// on-disk field names.
func TestInitializeAndReload(t *testing.T) {
	dir := t.TempDir()
	store := resume.NewStore(dir)

	state, err := store.Initialize("testplat", testSelection(), nil, nil)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if state.Completed {
		t.Fatalf("fresh state must not be completed")
	}

	// The file name derives from the sanitized platform name.
	raw, err := os.ReadFile(filepath.Join(dir, "testplat.json"))
	if err != nil {
		t.Fatalf("checkpoint file missing: %v", err)
	}

	var onDisk map[string]any
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("checkpoint is not valid JSON: %v", err)
	}
	for _, field := range []string{"platform", "selection", "selected_courses", "progress", "completed", "request"} {
		if _, ok := onDisk[field]; !ok {
			t.Fatalf("checkpoint missing field %q", field)
		}
	}

	reloaded := store.Load("testplat")
	if reloaded == nil || reloaded.Platform != "testplat" {
		t.Fatalf("reload mismatch: %+v", reloaded)
	}
}

// TestEnsureLessonEntryDefaults checks leaf seeding: absent description and
// links default to done, items seed to false, and repeats never reset flags.
func TestEnsureLessonEntryDefaults(t *testing.T) {
	store := resume.NewStore(t.TempDir())
	state, err := store.Initialize("p", testSelection(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	content := &models.LessonContent{
		Videos:      []*models.VideoItem{{ID: "v1"}},
		Attachments: []*models.Attachment{{ID: "a1"}},
	}

	entry, err := store.EnsureLessonEntry(state, "p", "c1", "m1", "l1", content)
	if err != nil {
		t.Fatal(err)
	}

	// No description or links in the content, nothing to do there.
	if !entry.Description || !entry.AuxiliaryURLs {
		t.Fatalf("expected description/auxiliary to default done, got %+v", entry)
	}
	if entry.Videos["v1"] || entry.Attachments["a1"] {
		t.Fatalf("expected items seeded false, got %+v", entry)
	}

	// Mark one leaf, then re-ensure: the true flag must survive.
	if err := store.MarkStatus(state, "p", "c1", "m1", "l1", consts.CategoryVideos, "v1", true); err != nil {
		t.Fatal(err)
	}
	entry, err = store.EnsureLessonEntry(state, "p", "c1", "m1", "l1", content)
	if err != nil {
		t.Fatal(err)
	}
	if !entry.Videos["v1"] {
		t.Fatalf("re-ensure reset a completed leaf")
	}
}

// TestMarkStatusCompletion checks that completed flips only when every
// selected lesson is done, with locked lessons excluded.
func TestMarkStatusCompletion(t *testing.T) {
	store := resume.NewStore(t.TempDir())
	state, err := store.Initialize("p", testSelection(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	content := &models.LessonContent{Videos: []*models.VideoItem{{ID: "v1"}}}
	if _, err := store.EnsureLessonEntry(state, "p", "c1", "m1", "l1", content); err != nil {
		t.Fatal(err)
	}

	if store.IsComplete(state) {
		t.Fatalf("incomplete state reported complete")
	}

	// l2 is locked so finishing l1's only item completes the run.
	if err := store.MarkStatus(state, "p", "c1", "m1", "l1", consts.CategoryVideos, "v1", true); err != nil {
		t.Fatal(err)
	}
	if !state.Completed {
		t.Fatalf("expected completed after last leaf succeeded")
	}

	// A failure mark flips it back.
	if err := store.MarkStatus(state, "p", "c1", "m1", "l1", consts.CategoryVideos, "v1", false); err != nil {
		t.Fatal(err)
	}
	if state.Completed {
		t.Fatalf("expected incomplete after leaf failure")
	}
}

// TestMarkStatusUnknownCategory checks the invalid category edge.
func TestMarkStatusUnknownCategory(t *testing.T) {
	store := resume.NewStore(t.TempDir())
	state, err := store.Initialize("p", testSelection(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.MarkStatus(state, "p", "c1", "m1", "l1", "bogus", "x", true); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

// TestSaveDurability checks that a save never leaves a temp file behind and
// that the prior checkpoint survives intact until replaced.
func TestSaveDurability(t *testing.T) {
	dir := t.TempDir()
	store := resume.NewStore(dir)

	state, err := store.Initialize("p", testSelection(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save("p", state); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "p.json" {
		t.Fatalf("expected only p.json in %s, got %v", dir, entries)
	}
}
