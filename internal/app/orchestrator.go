// Package app wires the planner, checkpoint store, fetchers and the DRM
// pipeline into the top-level download run.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"coursarr/internal/contracts"
	"coursarr/internal/decrypt"
	"coursarr/internal/domain/consts"
	"coursarr/internal/downloads"
	"coursarr/internal/drm"
	"coursarr/internal/models"
	"coursarr/internal/planner"
	"coursarr/internal/resume"
	"coursarr/internal/retry"
	"coursarr/internal/utils/fs"
	"coursarr/internal/utils/logging"
)

// RunState is the orchestrator lifecycle phase.
type RunState string

const (
	StateInit           RunState = "INIT"
	StatePlanning       RunState = "PLANNING"
	StateExecuting      RunState = "EXECUTING"
	StateDone           RunState = "DONE"
	StatePartialFailure RunState = "PARTIAL_FAILURE"
)

const eventBufferSize = 512

// Orchestrator executes one download run for one platform.
type Orchestrator struct {
	platformName string
	platform     contracts.Platform
	settings     *models.Settings
	store        *resume.Store
	history      contracts.HistoryStore
	registry     *downloads.Registry
	retry        retry.Policy

	// Loaded lazily, only when a protected video appears in the plan.
	cdm       contracts.CDM
	cdmErr    error
	cdmLoaded bool
	pipeline  *decrypt.Pipeline

	state    RunState
	failures int
	events   chan models.Event
}

// New builds an orchestrator. history may be nil when no ledger is wanted.
func New(platformName string, platform contracts.Platform, settings *models.Settings, store *resume.Store, history contracts.HistoryStore, registry *downloads.Registry) *Orchestrator {
	return &Orchestrator{
		platformName: platformName,
		platform:     platform,
		settings:     settings,
		store:        store,
		history:      history,
		registry:     registry,
		retry:        retry.NewPolicy(settings),
		state:        StateInit,
		events:       make(chan models.Event, eventBufferSize),
	}
}

// Events returns the event stream for this run. The channel closes when Run
// returns. Emission never blocks the run: if a consumer falls more than the
// buffer size behind, further events are dropped. The run outcome is carried
// by Run's return value and the checkpoint, never by the event stream alone.
func (o *Orchestrator) Events() <-chan models.Event {
	return o.events
}

// State returns the current lifecycle phase.
func (o *Orchestrator) State() RunState {
	return o.state
}

// Run executes the download run to completion. A prior checkpoint resumes in
// place: its selection snapshot takes precedence over the passed selection,
// and every leaf already marked done is skipped without refetching.
func (o *Orchestrator) Run(ctx context.Context, selection models.Selection, selectedCourses []map[string]any, prior *models.ResumeState) error {
	defer close(o.events)

	state, err := o.ensureState(selection, selectedCourses, prior)
	if err != nil {
		return err
	}

	if state.Completed && o.store.IsComplete(state) {
		o.emit(models.LogEvent("Nothing to do, checkpoint already complete"))
		o.emit(models.ProgressEvent(100))
		o.state = StateDone
		return nil
	}

	o.state = StatePlanning
	plan := planner.Build(state.Selection)
	if plan.Total() == 0 {
		o.emit(models.ProgressEvent(100))
		state.Completed = true
		if err := o.store.Save(o.platformName, state); err != nil {
			return err
		}
		o.state = StateDone
		return nil
	}
	logging.I("Planned %d lesson(s) for %s", plan.Total(), o.platformName)

	o.state = StateExecuting
	processed := 0
	for _, item := range plan.Items {
		if err := ctx.Err(); err != nil {
			o.state = StatePartialFailure
			return err
		}

		o.processLesson(ctx, state, item)

		processed++
		o.emit(models.ProgressEvent(processed * 100 / plan.Total()))
	}

	state.Completed = o.store.IsComplete(state)
	if err := o.store.Save(o.platformName, state); err != nil {
		return err
	}

	if o.failures > 0 {
		o.state = StatePartialFailure
		return fmt.Errorf("run finished with %d failed item(s), re-run to retry", o.failures)
	}

	o.state = StateDone
	logging.S(0, "Download run for %s complete", o.platformName)
	return nil
}

// ensureState returns the checkpoint the run operates on, creating and
// persisting a fresh one when no prior exists.
func (o *Orchestrator) ensureState(selection models.Selection, selectedCourses []map[string]any, prior *models.ResumeState) (*models.ResumeState, error) {
	if prior != nil {
		logging.I("Resuming from existing checkpoint for %s", o.platformName)
		return prior, nil
	}

	var request *models.RequestContext
	if o.platform != nil && o.platform.Session() != nil {
		request = o.platform.Session().RequestContext("")
	}
	return o.store.Initialize(o.platformName, selection, selectedCourses, request)
}

// processLesson handles one plan item. Item failures are recorded and
// absorbed; only the lesson at hand is abandoned.
func (o *Orchestrator) processLesson(ctx context.Context, state *models.ResumeState, item *planner.Item) {
	label := fmt.Sprintf("%s / %s / %s", item.Course.Name, item.Module.Title, item.Lesson.Title)

	if item.Skip {
		logging.D(1, "Skipping %s: %s", label, item.SkipReason)
		o.emit(models.LogEvent(fmt.Sprintf("Skipped %s (%s)", label, item.SkipReason)))
		return
	}

	if entry := state.LessonEntryFor(item.CourseID, item.ModuleKey, item.LessonKey); entry.Done() {
		logging.D(1, "Already complete: %s", label)
		return
	}

	if delay := o.settings.LessonAccessDelay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}

	o.emit(models.LogEvent("Fetching " + label))

	var content *models.LessonContent
	err := o.retry.Run(ctx, "lesson detail fetch", func() error {
		c, err := o.platform.FetchLessonDetails(ctx, item.Lesson, item.Course.Slug, item.CourseID, item.Module.ID)
		if err != nil {
			return err
		}
		content = c
		return nil
	})
	if err != nil {
		o.failLesson(state, item, label, err)
		return
	}

	entry, err := o.store.EnsureLessonEntry(state, o.platformName, item.CourseID, item.ModuleKey, item.LessonKey, content)
	if err != nil {
		o.failLesson(state, item, label, err)
		return
	}

	lessonDir := o.lessonDir(item)

	o.handleDescription(ctx, state, item, entry, content, lessonDir)
	o.handleVideos(ctx, state, item, entry, content, lessonDir)
	o.handleAttachments(ctx, state, item, entry, content, lessonDir)
	o.handleAuxiliaryURLs(ctx, state, item, entry, content, lessonDir)
}

// failLesson records a lesson-level failure without touching item flags that
// may already be true from an earlier run. A lesson never visited before gets
// an entry seeded false so the failure is visible in the checkpoint.
func (o *Orchestrator) failLesson(state *models.ResumeState, item *planner.Item, label string, err error) {
	o.failures++
	logging.E("Lesson %s failed: %v", label, err)
	o.emit(models.ErrorEvent("Failed "+label, err))

	if state.LessonEntryFor(item.CourseID, item.ModuleKey, item.LessonKey) == nil {
		if markErr := o.store.MarkStatus(state, o.platformName, item.CourseID, item.ModuleKey, item.LessonKey, consts.CategoryDescription, "", false); markErr != nil {
			logging.E("Failed recording lesson failure: %v", markErr)
		}
	}

	if errors.Is(err, context.Canceled) {
		o.state = StatePartialFailure
	}
}

// lessonDir builds the sanitized, length-limited directory for one lesson.
func (o *Orchestrator) lessonDir(item *planner.Item) string {
	course := fs.TruncateComponent(fs.SanitizePathComponent(item.Course.Name), consts.MaxCourseNameLen)
	module := fs.TruncateComponent(
		fs.SanitizePathComponent(fmt.Sprintf("%02d. %s", item.ModuleIndex, item.Module.Title)),
		consts.MaxModuleNameLen)
	lesson := fs.TruncateComponent(
		fs.SanitizePathComponent(fmt.Sprintf("%02d. %s", item.LessonIndex, item.Lesson.Title)),
		consts.MaxLessonNameLen)

	return filepath.Join(o.settings.DownloadDir, course, module, lesson)
}

// loadCDM loads the CDM device once. The result, error included, is sticky
// for the whole run.
func (o *Orchestrator) loadCDM() (contracts.CDM, error) {
	if !o.cdmLoaded {
		o.cdmLoaded = true
		cdm, err := drm.NewCDM(o.settings.CDMDevicePath)
		if err != nil {
			logging.E("Failed loading CDM device: %v", err)
			o.cdmErr = err
		} else {
			o.cdm = cdm
		}
	}
	return o.cdm, o.cdmErr
}

// loadPipeline resolves the decrypt/remux tools once.
func (o *Orchestrator) loadPipeline() (*decrypt.Pipeline, error) {
	if o.pipeline != nil {
		return o.pipeline, nil
	}
	p, err := decrypt.New(o.settings)
	if err != nil {
		return nil, err
	}
	o.pipeline = p
	return p, nil
}

// emit enqueues an event without ever blocking the run on a slow consumer.
func (o *Orchestrator) emit(ev models.Event) {
	select {
	case o.events <- ev:
	default:
		logging.D(2, "Event buffer full, dropping %s event", ev.Type)
	}
}
