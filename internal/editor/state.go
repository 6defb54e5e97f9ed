package editor

import (
	"baobab_academy/internal/apiclient"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidLevel = errors.New("invalid level")
	ErrUnknownTab   = errors.New("unknown tab")
)

type Tab string

const (
	TabBasic   Tab = "basic"
	TabContent Tab = "content"
	TabMedia   Tab = "media"
)

// Field names a basic-info form input.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldCategoryID  Field = "categoryId"
	FieldLevel       Field = "level"
	FieldHours       Field = "hours"
	FieldMinutes     Field = "minutes"
)

// BasicInfoForm holds the in-progress basic info. Hours and minutes stay raw
// strings until submission.
type BasicInfoForm struct {
	Title       string
	Description string
	CategoryID  string
	Level       apiclient.Level
	Hours       string
	Minutes     string
}

// State is the local snapshot of one course under edit.
type State struct {
	Course     apiclient.Course
	Form       BasicInfoForm
	Categories []apiclient.Category

	ActiveTab         Tab
	ExpandedChapterID string
	ChapterModalOpen  bool
	// LessonModalChapter is the chapter the lesson modal adds to; empty when closed.
	LessonModalChapter string

	StagedCover  *apiclient.File
	CoverPreview string

	Saving     bool
	Uploading  bool
	Publishing bool
	Deleting   bool
}

// busy reports a mutation in flight.
func (s *State) busy() bool {
	return s.Saving || s.Uploading || s.Publishing || s.Deleting
}

func NewState() State {
	return State{
		Form:      BasicInfoForm{Level: apiclient.LevelBeginner},
		ActiveTab: TabBasic,
	}
}

// SetField updates one form input. No network effect.
func (s *State) SetField(field Field, value string) error {
	switch field {
	case FieldTitle:
		s.Form.Title = value
	case FieldDescription:
		s.Form.Description = value
	case FieldCategoryID:
		s.Form.CategoryID = value
	case FieldLevel:
		lvl := apiclient.Level(strings.ToUpper(strings.TrimSpace(value)))
		if !lvl.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidLevel, value)
		}
		s.Form.Level = lvl
	case FieldHours:
		s.Form.Hours = value
	case FieldMinutes:
		s.Form.Minutes = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// CanSubmitBasicInfo reports whether title, description and category are set
// and the duration is not zero.
func (s *State) CanSubmitBasicInfo() bool {
	f := s.Form
	return strings.TrimSpace(f.Title) != "" &&
		strings.TrimSpace(f.Description) != "" &&
		strings.TrimSpace(f.CategoryID) != "" &&
		totalMinutes(f.Hours, f.Minutes) != 0
}

func (s *State) SetTab(t Tab) error {
	switch t {
	case TabBasic, TabContent, TabMedia:
		s.ActiveTab = t
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownTab, t)
}

// ToggleChapter expands id, or collapses it when already expanded.
func (s *State) ToggleChapter(id string) {
	if s.ExpandedChapterID == id {
		s.ExpandedChapterID = ""
		return
	}
	s.ExpandedChapterID = id
}

// CategoryName resolves the form's category against the loaded categories.
func (s *State) CategoryName() string {
	for _, c := range s.Categories {
		if c.ID == s.Form.CategoryID {
			return c.Name
		}
	}
	return ""
}

// replaceCourse swaps the course node for the server's copy. Chapters the
// response leaves out are kept from the local snapshot.
func (s *State) replaceCourse(c *apiclient.Course) {
	if c == nil {
		return
	}
	next := *c
	if next.Chapters == nil && next.ID == s.Course.ID {
		next.Chapters = s.Course.Chapters
	}
	for i := range next.Chapters {
		if next.Chapters[i].Lessons == nil {
			next.Chapters[i].Lessons = []apiclient.Lesson{}
		}
	}
	s.Course = next
	if s.StagedCover == nil {
		s.CoverPreview = next.CoverImage
	}
}

// loadForm fills the form from the persisted course.
func (s *State) loadForm() {
	d := ParseDuration(s.Course.Duration)
	level := s.Course.Level
	if !level.Valid() {
		level = apiclient.LevelBeginner
	}
	s.Form = BasicInfoForm{
		Title:       s.Course.Title,
		Description: s.Course.Description,
		CategoryID:  s.Course.CategoryID,
		Level:       level,
		Hours:       d.Hours,
		Minutes:     d.Minutes,
	}
}

func (s *State) chapterIndex(id string) int {
	for i := range s.Course.Chapters {
		if s.Course.Chapters[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) upsertChapter(ch apiclient.Chapter) {
	if i := s.chapterIndex(ch.ID); i >= 0 {
		s.Course.Chapters[i] = ch
		return
	}
	s.Course.Chapters = append(s.Course.Chapters, ch)
}

func (s *State) upsertLesson(chapterIdx int, l apiclient.Lesson) {
	lessons := s.Course.Chapters[chapterIdx].Lessons
	for i := range lessons {
		if lessons[i].ID == l.ID {
			lessons[i] = l
			return
		}
	}
	s.Course.Chapters[chapterIdx].Lessons = append(lessons, l)
}

// findLesson scans every chapter for the lesson id.
func (s *State) findLesson(id string) (ci, li int, ok bool) {
	for i := range s.Course.Chapters {
		for j := range s.Course.Chapters[i].Lessons {
			if s.Course.Chapters[i].Lessons[j].ID == id {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// patchLessonVideo sets only the videoUrl of the matching lesson.
func (s *State) patchLessonVideo(lessonID, videoURL string) bool {
	ci, li, ok := s.findLesson(lessonID)
	if !ok {
		return false
	}
	s.Course.Chapters[ci].Lessons[li].VideoURL = videoURL
	return true
}

func (s State) clone() State {
	out := s
	out.Course = cloneCourse(s.Course)
	out.Categories = append([]apiclient.Category(nil), s.Categories...)
	if s.StagedCover != nil {
		f := *s.StagedCover
		f.Data = append([]byte(nil), s.StagedCover.Data...)
		out.StagedCover = &f
	}
	return out
}

func cloneCourse(c apiclient.Course) apiclient.Course {
	out := c
	if c.Chapters == nil {
		return out
	}
	out.Chapters = make([]apiclient.Chapter, len(c.Chapters))
	for i, ch := range c.Chapters {
		out.Chapters[i] = ch
		out.Chapters[i].Lessons = append([]apiclient.Lesson{}, ch.Lessons...)
	}
	return out
}

// LoadCourse replaces the snapshot with the course fetched by id. A failed
// fetch is logged and leaves the state as it was.
func (e *Editor) LoadCourse(ctx context.Context, id string) error {
	gen, err := e.open()
	if err != nil {
		return err
	}

	course, err := e.api.GetCourseForEditing(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.staleLocked(gen, "load course") {
		return ErrEditorClosed
	}
	if err != nil {
		e.log.Error("Failed to load course", zap.String("course_id", id), zap.Error(err))
		return err
	}
	if course == nil {
		e.log.Error("Empty course in response", zap.String("course_id", id))
		return ErrCourseNotFound
	}
	e.state.StagedCover = nil
	e.state.Course = apiclient.Course{}
	e.state.replaceCourse(course)
	e.state.loadForm()
	return nil
}

// LoadCategories fetches the reference categories once per editor.
func (e *Editor) LoadCategories(ctx context.Context) error {
	e.mu.Lock()
	loaded := e.categoriesLoaded
	e.mu.Unlock()
	if loaded {
		return nil
	}

	gen, err := e.open()
	if err != nil {
		return err
	}
	cats, err := e.api.Categories(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.staleLocked(gen, "load categories") {
		return ErrEditorClosed
	}
	if err != nil {
		e.log.Error("Failed to load categories", zap.Error(err))
		return err
	}
	e.state.Categories = cats
	e.categoriesLoaded = true
	return nil
}

func (e *Editor) SetField(field Field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.SetField(field, value)
}

func (e *Editor) SetTab(t Tab) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.SetTab(t)
}

func (e *Editor) ToggleChapter(id string) {
	e.mu.Lock()
	e.state.ToggleChapter(id)
	e.mu.Unlock()
}

func (e *Editor) OpenChapterModal() {
	e.mu.Lock()
	e.state.ChapterModalOpen = true
	e.mu.Unlock()
}

func (e *Editor) OpenLessonModal(chapterID string) {
	e.mu.Lock()
	e.state.LessonModalChapter = chapterID
	e.mu.Unlock()
}

func (e *Editor) CloseModals() {
	e.mu.Lock()
	e.state.ChapterModalOpen = false
	e.state.LessonModalChapter = ""
	e.mu.Unlock()
}

// CanSubmitBasicInfo is recomputed from the current form on every call.
func (e *Editor) CanSubmitBasicInfo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CanSubmitBasicInfo()
}

// State returns a deep copy of the current snapshot.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

func (e *Editor) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Stats()
}
