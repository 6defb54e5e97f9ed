package editor

import (
	"baobab_academy/internal/apiclient"
	"baobab_academy/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrCourseNotSaved  = errors.New("course has not been saved yet")
	ErrCourseDeleted   = errors.New("course has been deleted")
	ErrCourseNotFound  = errors.New("course not found")
	ErrEditorClosed    = errors.New("editor closed")
	ErrIncompleteForm  = errors.New("title, description, category and duration are required")
	ErrEmptyTitle      = errors.New("title is required")
	ErrChapterNotFound = errors.New("chapter not found")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrInvalidContent  = errors.New("invalid content type")
	ErrNoStagedCover   = errors.New("no cover image selected")
	ErrNotAnImage      = errors.New("cover must be an image")
	ErrEmptyFile       = errors.New("file is empty")
	ErrVideoNotAllowed = errors.New("lesson does not accept a video upload")
	ErrBusy            = errors.New("another change is still being saved")
)

// API is the part of the course API the editor drives. *apiclient.Client
// satisfies it.
type API interface {
	CreateCourse(ctx context.Context, in apiclient.CourseInput) (*apiclient.Course, error)
	UpdateCourse(ctx context.Context, courseID string, in apiclient.CourseInput) (*apiclient.Course, error)
	UploadCourseImage(ctx context.Context, courseID string, f apiclient.File) (*apiclient.Course, error)
	AddChapter(ctx context.Context, courseID string, in apiclient.ChapterInput) (*apiclient.Chapter, error)
	AddLesson(ctx context.Context, chapterID string, in apiclient.LessonInput) (*apiclient.Lesson, error)
	UploadLessonVideo(ctx context.Context, lessonID string, f apiclient.File) (*apiclient.Lesson, error)
	PublishCourse(ctx context.Context, courseID string) (*apiclient.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error
	GetCourseForEditing(ctx context.Context, courseID string) (*apiclient.Course, error)
	Categories(ctx context.Context) ([]apiclient.Category, error)
}

var _ API = (*apiclient.Client)(nil)

// Notifier shows a blocking acknowledgement to the author.
type Notifier interface {
	Success(message string)
	Failure(message string)
}

// Navigator moves the author between views.
type Navigator interface {
	ToCourse(courseID string)
	ToDashboard()
}

type Phase int

const (
	PhaseNew Phase = iota
	PhaseDraft
	PhasePublished
	PhaseArchived
	PhaseDeleted
)

func (p Phase) String() string {
	switch p {
	case PhaseNew:
		return "new"
	case PhaseDraft:
		return "draft"
	case PhasePublished:
		return "published"
	case PhaseArchived:
		return "archived"
	case PhaseDeleted:
		return "deleted"
	}
	return "unknown"
}

// LessonDraft is what the lesson modal collects. Content is kept for TEXT only.
type LessonDraft struct {
	Title       string
	ContentType apiclient.ContentType
	Content     string
	VideoURL    string
}

// Editor drives one course through its authoring workflow. Each action issues
// exactly one API call (plus the chained cover upload after a create) and
// merges the response into State only after the server confirms.
//
// Responses are tagged with the generation current when the call started.
// Close bumps the generation, so anything resolving afterwards is dropped.
type Editor struct {
	api API
	log *zap.Logger
	ntf Notifier
	nav Navigator

	mu               sync.Mutex
	state            State
	gen              uint64
	closed           bool
	deleted          bool
	categoriesLoaded bool
}

type Option func(*Editor)

func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) { e.log = l }
}

func WithNotifier(n Notifier) Option {
	return func(e *Editor) { e.ntf = n }
}

func WithNavigator(n Navigator) Option {
	return func(e *Editor) { e.nav = n }
}

func New(api API, opts ...Option) *Editor {
	e := &Editor{
		api:   api,
		log:   logger.Log,
		state: NewState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ntf == nil {
		e.ntf = logNotifier{e.log}
	}
	if e.nav == nil {
		e.nav = noopNavigator{}
	}
	return e
}

type logNotifier struct{ log *zap.Logger }

func (n logNotifier) Success(msg string) { n.log.Info(msg) }
func (n logNotifier) Failure(msg string) { n.log.Warn(msg) }

type noopNavigator struct{}

func (noopNavigator) ToCourse(string) {}
func (noopNavigator) ToDashboard()    {}

// Close detaches the editor. In-flight calls are not aborted but their
// responses no longer touch the state.
func (e *Editor) Close() {
	e.mu.Lock()
	e.gen++
	e.closed = true
	e.mu.Unlock()
}

func (e *Editor) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phaseLocked()
}

func (e *Editor) phaseLocked() Phase {
	if e.deleted {
		return PhaseDeleted
	}
	if e.state.Course.ID == "" {
		return PhaseNew
	}
	switch e.state.Course.Status {
	case apiclient.StatusPublished:
		return PhasePublished
	case apiclient.StatusArchived:
		return PhaseArchived
	}
	return PhaseDraft
}

// CanPublish is true only for a saved course still in DRAFT.
func (e *Editor) CanPublish() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canPublishLocked()
}

func (e *Editor) canPublishLocked() bool {
	return !e.deleted && e.state.Course.ID != "" && e.state.Course.Status == apiclient.StatusDraft
}

// open is the guard for reads: loads may run while a mutation is in flight.
func (e *Editor) open() (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.openLocked()
}

func (e *Editor) openLocked() (uint64, error) {
	if e.closed {
		return 0, ErrEditorClosed
	}
	if e.deleted {
		return 0, ErrCourseDeleted
	}
	return e.gen, nil
}

// beginLocked guards mutations. Only one may be in flight; the busy flags
// stay set from the request until its response is merged.
func (e *Editor) beginLocked() (uint64, error) {
	gen, err := e.openLocked()
	if err != nil {
		return 0, err
	}
	if e.state.busy() {
		return 0, ErrBusy
	}
	return gen, nil
}

// persistedLocked returns the course id, failing while the course is New.
func (e *Editor) persistedLocked() (string, uint64, error) {
	gen, err := e.beginLocked()
	if err != nil {
		return "", 0, err
	}
	if e.state.Course.ID == "" {
		return "", 0, ErrCourseNotSaved
	}
	return e.state.Course.ID, gen, nil
}

func (e *Editor) staleLocked(gen uint64, op string) bool {
	if gen == e.gen {
		return false
	}
	e.log.Debug("Dropping stale response", zap.String("op", op))
	return true
}

func (e *Editor) fail(err error) error {
	e.ntf.Failure(apiclient.DisplayMessage(err))
	return err
}

// SaveBasicInfo creates the course when it has no id yet and updates it
// otherwise. The branch is fixed by the id present at submission. After a
// create with a staged cover, the upload runs before navigating to the course.
func (e *Editor) SaveBasicInfo(ctx context.Context) error {
	e.mu.Lock()
	gen, err := e.beginLocked()
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if !e.state.CanSubmitBasicInfo() {
		e.mu.Unlock()
		return ErrIncompleteForm
	}
	form := e.state.Form
	hours, minutes, err := ValidateDurationInput(form.Hours, form.Minutes)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	in := apiclient.CourseInput{
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		CategoryID:  form.CategoryID,
		Level:       form.Level,
		Duration:    FormatDuration(hours, minutes),
	}
	courseID := e.state.Course.ID
	e.state.Saving = true
	e.mu.Unlock()

	var course *apiclient.Course
	if courseID == "" {
		course, err = e.api.CreateCourse(ctx, in)
	} else {
		course, err = e.api.UpdateCourse(ctx, courseID, in)
	}

	e.mu.Lock()
	if e.staleLocked(gen, "save basic info") {
		e.mu.Unlock()
		return ErrEditorClosed
	}
	e.state.Saving = false
	if err == nil && (course == nil || course.ID == "") {
		err = fmt.Errorf("save basic info: %w", ErrCourseNotFound)
	}
	if err != nil {
		e.mu.Unlock()
		e.log.Warn("Failed to save course", zap.String("course_id", courseID), zap.Error(err))
		return e.fail(err)
	}
	e.state.replaceCourse(course)
	newID := e.state.Course.ID
	chainCover := courseID == "" && e.state.StagedCover != nil
	// Held until the chained upload resolves so nothing slips in between.
	e.state.Uploading = chainCover
	e.mu.Unlock()

	if courseID != "" {
		e.ntf.Success(MsgCourseUpdated)
		return nil
	}

	e.log.Info("Course created", zap.String("course_id", newID))
	e.ntf.Success(MsgCourseCreated)
	if chainCover {
		// The course exists either way; a failed upload was already reported.
		_ = e.uploadCover(ctx, gen, newID)
	}
	if e.current(gen) {
		e.nav.ToCourse(newID)
	}
	return nil
}

func (e *Editor) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.gen
}

// AddChapter appends a chapter after the server acknowledges it.
// Its order index is the current chapter count plus one.
func (e *Editor) AddChapter(ctx context.Context, title string) (*apiclient.Chapter, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	e.mu.Lock()
	courseID, gen, err := e.persistedLocked()
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	in := apiclient.ChapterInput{Title: title, OrderIndex: len(e.state.Course.Chapters) + 1}
	e.state.Saving = true
	e.mu.Unlock()

	ch, err := e.api.AddChapter(ctx, courseID, in)

	e.mu.Lock()
	if e.staleLocked(gen, "add chapter") {
		e.mu.Unlock()
		return nil, ErrEditorClosed
	}
	e.state.Saving = false
	if err == nil && ch == nil {
		err = ErrChapterNotFound
	}
	if err != nil {
		e.mu.Unlock()
		return nil, e.fail(err)
	}
	added := *ch
	added.Lessons = []apiclient.Lesson{}
	e.state.upsertChapter(added)
	e.state.ChapterModalOpen = false
	e.state.ExpandedChapterID = added.ID
	e.mu.Unlock()

	e.ntf.Success(MsgChapterAdded)
	return &added, nil
}

// AddLesson appends a lesson to chapterID after the server acknowledges it.
// Its order index is that chapter's lesson count plus one.
func (e *Editor) AddLesson(ctx context.Context, chapterID string, d LessonDraft) (*apiclient.Lesson, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return nil, ErrEmptyTitle
	}
	if d.ContentType == "" {
		d.ContentType = apiclient.ContentText
	}
	if !d.ContentType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContent, d.ContentType)
	}
	if d.ContentType != apiclient.ContentText {
		d.Content = ""
	}

	e.mu.Lock()
	_, gen, err := e.persistedLocked()
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	ci := e.state.chapterIndex(chapterID)
	if ci < 0 {
		e.mu.Unlock()
		return nil, ErrChapterNotFound
	}
	in := apiclient.LessonInput{
		Title:       d.Title,
		Content:     d.Content,
		ContentType: d.ContentType,
		VideoURL:    strings.TrimSpace(d.VideoURL),
		OrderIndex:  len(e.state.Course.Chapters[ci].Lessons) + 1,
	}
	e.state.Saving = true
	e.mu.Unlock()

	lesson, err := e.api.AddLesson(ctx, chapterID, in)

	e.mu.Lock()
	if e.staleLocked(gen, "add lesson") {
		e.mu.Unlock()
		return nil, ErrEditorClosed
	}
	e.state.Saving = false
	if err == nil && lesson == nil {
		err = ErrLessonNotFound
	}
	if err != nil {
		e.mu.Unlock()
		return nil, e.fail(err)
	}
	ci = e.state.chapterIndex(chapterID)
	if ci < 0 {
		e.mu.Unlock()
		return nil, ErrChapterNotFound
	}
	added := *lesson
	e.state.upsertLesson(ci, added)
	e.state.LessonModalChapter = ""
	e.mu.Unlock()

	e.ntf.Success(MsgLessonAdded)
	return &added, nil
}

// Publish moves a DRAFT course to PUBLISHED. Any other status is a no-op.
func (e *Editor) Publish(ctx context.Context) error {
	e.mu.Lock()
	courseID, gen, err := e.persistedLocked()
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if !e.canPublishLocked() {
		e.mu.Unlock()
		return nil
	}
	e.state.Publishing = true
	e.mu.Unlock()

	course, err := e.api.PublishCourse(ctx, courseID)

	e.mu.Lock()
	if e.staleLocked(gen, "publish") {
		e.mu.Unlock()
		return ErrEditorClosed
	}
	e.state.Publishing = false
	if err == nil && (course == nil || course.ID == "") {
		err = fmt.Errorf("publish: %w", ErrCourseNotFound)
	}
	if err != nil {
		e.mu.Unlock()
		e.log.Warn("Failed to publish course", zap.String("course_id", courseID), zap.Error(err))
		return e.fail(err)
	}
	e.state.replaceCourse(course)
	e.mu.Unlock()

	e.ntf.Success(MsgCoursePublished)
	return nil
}

// Delete removes the course for good and leaves the editor. Every later
// operation fails with ErrCourseDeleted.
func (e *Editor) Delete(ctx context.Context) error {
	e.mu.Lock()
	courseID, gen, err := e.persistedLocked()
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.state.Deleting = true
	e.mu.Unlock()

	err = e.api.DeleteCourse(ctx, courseID)

	e.mu.Lock()
	if e.staleLocked(gen, "delete") {
		e.mu.Unlock()
		return ErrEditorClosed
	}
	e.state.Deleting = false
	if err != nil {
		e.mu.Unlock()
		return e.fail(err)
	}
	e.deleted = true
	e.mu.Unlock()

	e.log.Info("Course deleted", zap.String("course_id", courseID))
	e.ntf.Success(MsgCourseDeleted)
	e.nav.ToDashboard()
	return nil
}
