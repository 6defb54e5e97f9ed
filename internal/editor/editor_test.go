package editor

import (
	"baobab_academy/internal/apiclient"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type fakeAPI struct {
	calls []string
	errs  map[string]error
	hook  func(op string)
	seq   int

	courseInputs  []apiclient.CourseInput
	chapterInputs []apiclient.ChapterInput
	lessonInputs  []apiclient.LessonInput
	stored        *apiclient.Course
	categories    []apiclient.Category
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{errs: map[string]error{}}
}

func (f *fakeAPI) record(op string) error {
	f.calls = append(f.calls, op)
	if f.hook != nil {
		f.hook(op)
	}
	return f.errs[op]
}

func (f *fakeAPI) next(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeAPI) CreateCourse(_ context.Context, in apiclient.CourseInput) (*apiclient.Course, error) {
	f.courseInputs = append(f.courseInputs, in)
	if err := f.record("create"); err != nil {
		return nil, err
	}
	return &apiclient.Course{
		ID: "course-1", Title: in.Title, Description: in.Description, CategoryID: in.CategoryID,
		Level: in.Level, Duration: in.Duration, Status: apiclient.StatusDraft,
	}, nil
}

func (f *fakeAPI) UpdateCourse(_ context.Context, id string, in apiclient.CourseInput) (*apiclient.Course, error) {
	f.courseInputs = append(f.courseInputs, in)
	if err := f.record("update:" + id); err != nil {
		return nil, err
	}
	return &apiclient.Course{
		ID: id, Title: in.Title, Description: in.Description, CategoryID: in.CategoryID,
		Level: in.Level, Duration: in.Duration, Status: apiclient.StatusDraft,
	}, nil
}

func (f *fakeAPI) UploadCourseImage(_ context.Context, id string, file apiclient.File) (*apiclient.Course, error) {
	if err := f.record("cover:" + id); err != nil {
		return nil, err
	}
	return &apiclient.Course{ID: id, Title: "Intro", Status: apiclient.StatusDraft, CoverImage: "https://cdn/" + file.Name}, nil
}

func (f *fakeAPI) AddChapter(_ context.Context, courseID string, in apiclient.ChapterInput) (*apiclient.Chapter, error) {
	f.chapterInputs = append(f.chapterInputs, in)
	if err := f.record("chapter:" + courseID); err != nil {
		return nil, err
	}
	return &apiclient.Chapter{ID: f.next("ch"), CourseID: courseID, Title: in.Title, OrderIndex: in.OrderIndex}, nil
}

func (f *fakeAPI) AddLesson(_ context.Context, chapterID string, in apiclient.LessonInput) (*apiclient.Lesson, error) {
	f.lessonInputs = append(f.lessonInputs, in)
	if err := f.record("lesson:" + chapterID); err != nil {
		return nil, err
	}
	return &apiclient.Lesson{
		ID: f.next("l"), ChapterID: chapterID, Title: in.Title, Content: in.Content,
		ContentType: in.ContentType, VideoURL: in.VideoURL, OrderIndex: in.OrderIndex,
	}, nil
}

func (f *fakeAPI) UploadLessonVideo(_ context.Context, lessonID string, _ apiclient.File) (*apiclient.Lesson, error) {
	if err := f.record("video:" + lessonID); err != nil {
		return nil, err
	}
	// The server answers with the whole lesson; only videoUrl may be taken from it.
	return &apiclient.Lesson{ID: lessonID, Title: "renamed by server", ContentType: apiclient.ContentVideo, VideoURL: "https://cdn/" + lessonID + ".mp4"}, nil
}

func (f *fakeAPI) PublishCourse(_ context.Context, id string) (*apiclient.Course, error) {
	if err := f.record("publish:" + id); err != nil {
		return nil, err
	}
	return &apiclient.Course{ID: id, Title: "Intro", Status: apiclient.StatusPublished}, nil
}

func (f *fakeAPI) DeleteCourse(_ context.Context, id string) error {
	return f.record("delete:" + id)
}

func (f *fakeAPI) GetCourseForEditing(_ context.Context, id string) (*apiclient.Course, error) {
	if err := f.record("get:" + id); err != nil {
		return nil, err
	}
	return f.stored, nil
}

func (f *fakeAPI) Categories(context.Context) ([]apiclient.Category, error) {
	if err := f.record("categories"); err != nil {
		return nil, err
	}
	return f.categories, nil
}

// fakeUI records notifications and navigation into the API call log so
// ordering can be asserted.
type fakeUI struct {
	api       *fakeAPI
	successes []string
	failures  []string
}

func (u *fakeUI) Success(msg string) { u.successes = append(u.successes, msg) }
func (u *fakeUI) Failure(msg string) { u.failures = append(u.failures, msg) }
func (u *fakeUI) ToCourse(id string) { u.api.calls = append(u.api.calls, "nav:"+id) }
func (u *fakeUI) ToDashboard()       { u.api.calls = append(u.api.calls, "nav:dashboard") }

func newTestEditor() (*Editor, *fakeAPI, *fakeUI) {
	api := newFakeAPI()
	ui := &fakeUI{api: api}
	return New(api, WithNotifier(ui), WithNavigator(ui)), api, ui
}

func fillForm(t *testing.T, e *Editor, title, description, categoryID, hours, minutes string) {
	t.Helper()
	fields := []struct {
		f Field
		v string
	}{
		{FieldTitle, title},
		{FieldDescription, description},
		{FieldCategoryID, categoryID},
		{FieldHours, hours},
		{FieldMinutes, minutes},
	}
	for _, fv := range fields {
		if err := e.SetField(fv.f, fv.v); err != nil {
			t.Fatalf("SetField(%s) error = %v", fv.f, err)
		}
	}
}

// savedEditor returns an editor whose course was just created.
func savedEditor(t *testing.T) (*Editor, *fakeAPI, *fakeUI) {
	t.Helper()
	e, api, ui := newTestEditor()
	fillForm(t, e, "Intro", "desc", "cat1", "1", "30")
	if err := e.SaveBasicInfo(context.Background()); err != nil {
		t.Fatalf("SaveBasicInfo() error = %v", err)
	}
	api.calls = nil
	return e, api, ui
}

func TestDurationFormatAndParse(t *testing.T) {
	tests := []struct {
		hours, minutes int
		want           string
		parsed         DurationParts
	}{
		{1, 25, "1h25mn", DurationParts{"1", "25"}},
		{1, 30, "1h30mn", DurationParts{"1", "30"}},
		{2, 0, "2h", DurationParts{"2", "0"}},
		{0, 45, "45mn", DurationParts{"0", "45"}},
		{0, 0, "", DurationParts{"0", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatDuration(tt.hours, tt.minutes)
			if got != tt.want {
				t.Fatalf("FormatDuration(%d, %d) = %q, want %q", tt.hours, tt.minutes, got, tt.want)
			}
			if p := ParseDuration(got); p != tt.parsed {
				t.Errorf("ParseDuration(%q) = %+v, want %+v", got, p, tt.parsed)
			}
		})
	}
}

func TestParseDurationTolerance(t *testing.T) {
	tests := map[string]DurationParts{
		"":         {"0", "0"},
		"01h05mn":  {"1", "5"},
		"3H":       {"3", "0"},
		"90min":    {"0", "90"},
		"2h 15mn":  {"2", "15"},
		"garbage":  {"0", "0"},
		"  40mn  ": {"0", "40"},
	}
	for in, want := range tests {
		if got := ParseDuration(in); got != want {
			t.Errorf("ParseDuration(%q) = %+v, want %+v", in, got, want)
		}
	}
}

func TestValidateDurationInput(t *testing.T) {
	tests := []struct {
		hours, minutes string
		wantH, wantM   int
		wantErr        bool
	}{
		{"1", "30", 1, 30, false},
		{"", "15", 0, 15, false},
		{" 2 ", "", 2, 0, false},
		{"-1", "0", 0, 0, true},
		{"1", "-5", 0, 0, true},
		{"one", "0", 0, 0, true},
		{"1", "1.5", 0, 0, true},
	}
	for _, tt := range tests {
		h, m, err := ValidateDurationInput(tt.hours, tt.minutes)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDurationInput(%q, %q) error = %v, wantErr %v", tt.hours, tt.minutes, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("error %v does not wrap ErrInvalidDuration", err)
		}
		if h != tt.wantH || m != tt.wantM {
			t.Errorf("ValidateDurationInput(%q, %q) = %d, %d", tt.hours, tt.minutes, h, m)
		}
	}
}

func TestCanSubmitBasicInfoAllCombinations(t *testing.T) {
	for mask := 0; mask < 16; mask++ {
		hasTitle := mask&1 != 0
		hasDesc := mask&2 != 0
		hasCat := mask&4 != 0
		hasDuration := mask&8 != 0

		s := NewState()
		if hasTitle {
			s.Form.Title = "Intro"
		}
		if hasDesc {
			s.Form.Description = "desc"
		}
		if hasCat {
			s.Form.CategoryID = "cat1"
		}
		s.Form.Hours, s.Form.Minutes = "0", "0"
		if hasDuration {
			s.Form.Minutes = "30"
		}

		want := hasTitle && hasDesc && hasCat && hasDuration
		if got := s.CanSubmitBasicInfo(); got != want {
			t.Errorf("title=%v description=%v category=%v duration=%v: CanSubmitBasicInfo() = %v, want %v",
				hasTitle, hasDesc, hasCat, hasDuration, got, want)
		}
	}
}

func TestCanSubmitTreatsBlankAndNonNumericDurationAsZero(t *testing.T) {
	s := NewState()
	s.Form = BasicInfoForm{Title: "Intro", Description: "desc", CategoryID: "cat1", Hours: "abc", Minutes: "   "}
	if s.CanSubmitBasicInfo() {
		t.Error("CanSubmitBasicInfo() = true for a zero duration")
	}
	s.Form.Hours = "1"
	if !s.CanSubmitBasicInfo() {
		t.Error("CanSubmitBasicInfo() = false for one hour")
	}
}

func TestSetField(t *testing.T) {
	s := NewState()
	if err := s.SetField(FieldLevel, "advanced"); err != nil || s.Form.Level != apiclient.LevelAdvanced {
		t.Errorf("SetField(level) = %v, level %q", err, s.Form.Level)
	}
	if err := s.SetField(FieldLevel, "EXPERT"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("SetField(level, EXPERT) error = %v", err)
	}
	if err := s.SetField("price", "10"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("SetField(price) error = %v", err)
	}
}

func TestSaveWithoutIDCreates(t *testing.T) {
	e, api, _ := newTestEditor()
	fillForm(t, e, "Intro", "desc", "cat1", "1", "30")

	if err := e.SaveBasicInfo(context.Background()); err != nil {
		t.Fatalf("SaveBasicInfo() error = %v", err)
	}
	if want := []string{"create", "nav:course-1"}; !reflect.DeepEqual(api.calls, want) {
		t.Errorf("calls = %v, want %v", api.calls, want)
	}
	if got := e.Phase(); got != PhaseDraft {
		t.Errorf("Phase() = %v, want draft", got)
	}
}

func TestSaveWithIDUpdates(t *testing.T) {
	e, api, ui := savedEditor(t)
	if err := e.SetField(FieldTitle, "Intro v2"); err != nil {
		t.Fatal(err)
	}

	if err := e.SaveBasicInfo(context.Background()); err != nil {
		t.Fatalf("SaveBasicInfo() error = %v", err)
	}
	if want := []string{"update:course-1"}; !reflect.DeepEqual(api.calls, want) {
		t.Errorf("calls = %v, want %v", api.calls, want)
	}
	if got := e.State().Course.Title; got != "Intro v2" {
		t.Errorf("title = %q", got)
	}
	if ui.successes[len(ui.successes)-1] != MsgCourseUpdated {
		t.Errorf("successes = %v", ui.successes)
	}
}

func TestSaveBlockedBeforeAnyCall(t *testing.T) {
	tests := []struct {
		name    string
		hours   string
		minutes string
		title   string
		want    error
	}{
		{"incomplete form", "1", "0", "", ErrIncompleteForm},
		{"negative minutes", "1", "-5", "Intro", ErrInvalidDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, api, _ := newTestEditor()
			fillForm(t, e, tt.title, "desc", "cat1", tt.hours, tt.minutes)
			if err := e.SaveBasicInfo(context.Background()); !errors.Is(err, tt.want) {
				t.Errorf("SaveBasicInfo() error = %v, want %v", err, tt.want)
			}
			if len(api.calls) != 0 {
				t.Errorf("calls = %v, want none", api.calls)
			}
		})
	}
}

func TestSaveFailureKeepsCourseNew(t *testing.T) {
	e, api, ui := newTestEditor()
	api.errs["create"] = &apiclient.APIError{
		Kind:        apiclient.KindValidation,
		StatusCode:  400,
		FieldErrors: map[string]string{"title": "too short", "categoryId": "unknown"},
	}
	fillForm(t, e, "I", "desc", "cat1", "1", "0")

	if err := e.SaveBasicInfo(context.Background()); err == nil {
		t.Fatal("SaveBasicInfo() error = nil")
	}
	st := e.State()
	if st.Course.ID != "" || e.Phase() != PhaseNew {
		t.Errorf("course id = %q, phase %v", st.Course.ID, e.Phase())
	}
	if st.Saving {
		t.Error("Saving still set")
	}
	if want := []string{"categoryId: unknown, title: too short"}; !reflect.DeepEqual(ui.failures, want) {
		t.Errorf("failures = %v, want %v", ui.failures, want)
	}
}

func TestAddChapterOrderAndEmptyLessons(t *testing.T) {
	e, api, _ := savedEditor(t)
	ctx := context.Background()

	for i, title := range []string{"Basics", "Advanced"} {
		ch, err := e.AddChapter(ctx, title)
		if err != nil {
			t.Fatalf("AddChapter(%q) error = %v", title, err)
		}
		if ch.Lessons == nil || len(ch.Lessons) != 0 {
			t.Errorf("chapter lessons = %#v, want empty", ch.Lessons)
		}
		if got := api.chapterInputs[i].OrderIndex; got != i+1 {
			t.Errorf("orderIndex sent = %d, want %d", got, i+1)
		}
	}
	st := e.State()
	if len(st.Course.Chapters) != 2 || st.Course.Chapters[1].Title != "Advanced" {
		t.Errorf("chapters = %+v", st.Course.Chapters)
	}
	if st.ExpandedChapterID != st.Course.Chapters[1].ID {
		t.Errorf("expanded = %q", st.ExpandedChapterID)
	}
}

func TestAddChapterRequiresSavedCourse(t *testing.T) {
	e, api, _ := newTestEditor()
	if _, err := e.AddChapter(context.Background(), "Basics"); !errors.Is(err, ErrCourseNotSaved) {
		t.Errorf("AddChapter() error = %v, want ErrCourseNotSaved", err)
	}
	if len(api.calls) != 0 {
		t.Errorf("calls = %v", api.calls)
	}
}

func TestAddChapterFailureLeavesStateUnchanged(t *testing.T) {
	e, api, ui := savedEditor(t)
	api.errs["chapter:course-1"] = &apiclient.APIError{Kind: apiclient.KindServer, StatusCode: 500, Message: "boom"}
	before := e.State()

	if _, err := e.AddChapter(context.Background(), "Basics"); err == nil {
		t.Fatal("AddChapter() error = nil")
	}
	if after := e.State(); !reflect.DeepEqual(before.Course, after.Course) {
		t.Errorf("course changed: %+v", after.Course)
	}
	if len(ui.failures) != 1 || ui.failures[0] != "boom" {
		t.Errorf("failures = %v", ui.failures)
	}
}

func TestAddLessonOrderIsPerChapter(t *testing.T) {
	e, api, _ := savedEditor(t)
	ctx := context.Background()
	a, _ := e.AddChapter(ctx, "A")
	b, _ := e.AddChapter(ctx, "B")

	steps := []struct {
		chapter string
		want    int
	}{
		{a.ID, 1},
		{a.ID, 2},
		{a.ID, 3},
		{b.ID, 1},
		{a.ID, 4},
		{b.ID, 2},
	}
	for i, s := range steps {
		if _, err := e.AddLesson(ctx, s.chapter, LessonDraft{Title: fmt.Sprintf("L%d", i), ContentType: apiclient.ContentText}); err != nil {
			t.Fatalf("AddLesson() error = %v", err)
		}
		if got := api.lessonInputs[i].OrderIndex; got != s.want {
			t.Errorf("step %d: orderIndex = %d, want %d", i, got, s.want)
		}
	}
	st := e.State()
	if len(st.Course.Chapters[0].Lessons) != 4 || len(st.Course.Chapters[1].Lessons) != 2 {
		t.Errorf("lesson counts = %d, %d", len(st.Course.Chapters[0].Lessons), len(st.Course.Chapters[1].Lessons))
	}
}

func TestAddLessonDropsContentForNonText(t *testing.T) {
	e, api, _ := savedEditor(t)
	ch, _ := e.AddChapter(context.Background(), "A")

	_, err := e.AddLesson(context.Background(), ch.ID, LessonDraft{Title: "Clip", ContentType: apiclient.ContentVideo, Content: "ignored"})
	if err != nil {
		t.Fatalf("AddLesson() error = %v", err)
	}
	if got := api.lessonInputs[0].Content; got != "" {
		t.Errorf("content sent = %q", got)
	}

	if _, err := e.AddLesson(context.Background(), ch.ID, LessonDraft{Title: "x", ContentType: "AUDIO"}); !errors.Is(err, ErrInvalidContent) {
		t.Errorf("AddLesson(AUDIO) error = %v", err)
	}
	if _, err := e.AddLesson(context.Background(), "missing", LessonDraft{Title: "x"}); !errors.Is(err, ErrChapterNotFound) {
		t.Errorf("AddLesson(missing chapter) error = %v", err)
	}
}

func TestUploadLessonVideoPatchesOnlyVideoURL(t *testing.T) {
	e, _, _ := savedEditor(t)
	ctx := context.Background()
	a, _ := e.AddChapter(ctx, "A")
	b, _ := e.AddChapter(ctx, "B")
	e.AddLesson(ctx, a.ID, LessonDraft{Title: "Text", ContentType: apiclient.ContentText, Content: "hello"})
	video, _ := e.AddLesson(ctx, a.ID, LessonDraft{Title: "Clip", ContentType: apiclient.ContentVideo})
	e.AddLesson(ctx, b.ID, LessonDraft{Title: "Other clip", ContentType: apiclient.ContentVideo})

	before := e.State()
	if err := e.UploadLessonVideo(ctx, video.ID, apiclient.File{Name: "clip.mp4", Data: []byte("mp4")}); err != nil {
		t.Fatalf("UploadLessonVideo() error = %v", err)
	}
	after := e.State()

	want := before.clone()
	want.Course.Chapters[0].Lessons[1].VideoURL = "https://cdn/" + video.ID + ".mp4"
	if !reflect.DeepEqual(after.Course, want.Course) {
		t.Errorf("course after upload =\n%+v\nwant\n%+v", after.Course, want.Course)
	}
}

func TestUploadLessonVideoGuards(t *testing.T) {
	e, api, _ := savedEditor(t)
	ctx := context.Background()
	ch, _ := e.AddChapter(ctx, "A")
	text, _ := e.AddLesson(ctx, ch.ID, LessonDraft{Title: "Text", ContentType: apiclient.ContentText})
	linked, _ := e.AddLesson(ctx, ch.ID, LessonDraft{Title: "Linked", ContentType: apiclient.ContentVideo, VideoURL: "https://youtu.be/x"})
	api.calls = nil

	file := apiclient.File{Name: "a.mp4", Data: []byte("x")}
	tests := []struct {
		lessonID string
		want     error
	}{
		{text.ID, ErrVideoNotAllowed},
		{linked.ID, ErrVideoNotAllowed},
		{"nope", ErrLessonNotFound},
	}
	for _, tt := range tests {
		if err := e.UploadLessonVideo(ctx, tt.lessonID, file); !errors.Is(err, tt.want) {
			t.Errorf("UploadLessonVideo(%s) error = %v, want %v", tt.lessonID, err, tt.want)
		}
	}
	if len(api.calls) != 0 {
		t.Errorf("calls = %v", api.calls)
	}
}

func TestCanUploadVideo(t *testing.T) {
	tests := []struct {
		lesson apiclient.Lesson
		want   bool
	}{
		{apiclient.Lesson{ContentType: apiclient.ContentVideo}, true},
		{apiclient.Lesson{ContentType: apiclient.ContentVideo, VideoURL: "u"}, false},
		{apiclient.Lesson{ContentType: apiclient.ContentText}, false},
		{apiclient.Lesson{ContentType: apiclient.ContentDocument}, false},
	}
	for _, tt := range tests {
		if got := CanUploadVideo(tt.lesson); got != tt.want {
			t.Errorf("CanUploadVideo(%+v) = %v, want %v", tt.lesson, got, tt.want)
		}
	}
}

func TestIntroScenario(t *testing.T) {
	e, api, _ := newTestEditor()
	ctx := context.Background()
	fillForm(t, e, "Intro", "desc", "cat1", "1", "30")

	if err := e.SaveBasicInfo(ctx); err != nil {
		t.Fatalf("SaveBasicInfo() error = %v", err)
	}
	if api.calls[0] != "create" || api.courseInputs[0].Duration != "1h30mn" {
		t.Fatalf("calls = %v, duration = %q", api.calls, api.courseInputs[0].Duration)
	}
	st := e.State()
	if st.Course.ID == "" || st.Course.Status != apiclient.StatusDraft {
		t.Fatalf("course = %+v", st.Course)
	}

	ch, err := e.AddChapter(ctx, "Basics")
	if err != nil {
		t.Fatalf("AddChapter() error = %v", err)
	}
	if api.chapterInputs[0].OrderIndex != 1 {
		t.Errorf("chapter orderIndex = %d", api.chapterInputs[0].OrderIndex)
	}

	if _, err := e.AddLesson(ctx, ch.ID, LessonDraft{Title: "Welcome", ContentType: apiclient.ContentText}); err != nil {
		t.Fatalf("AddLesson() error = %v", err)
	}
	if api.lessonInputs[0].OrderIndex != 1 {
		t.Errorf("lesson orderIndex = %d", api.lessonInputs[0].OrderIndex)
	}

	if !e.CanPublish() {
		t.Fatal("CanPublish() = false for a draft")
	}
	if err := e.Publish(ctx); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	st = e.State()
	if st.Course.Status != apiclient.StatusPublished || e.CanPublish() {
		t.Errorf("status = %s, CanPublish = %v", st.Course.Status, e.CanPublish())
	}
	if len(st.Course.Chapters) != 1 || len(st.Course.Chapters[0].Lessons) != 1 {
		t.Errorf("publish response dropped local chapters: %+v", st.Course.Chapters)
	}

	calls := len(api.calls)
	if err := e.Publish(ctx); err != nil {
		t.Errorf("second Publish() error = %v", err)
	}
	if len(api.calls) != calls {
		t.Errorf("second Publish() issued a call: %v", api.calls[calls:])
	}
}

func TestEditingPublishedCourseKeepsStatus(t *testing.T) {
	e, api, _ := savedEditor(t)
	ctx := context.Background()
	e.Publish(ctx)
	api.calls = nil

	if _, err := e.AddChapter(ctx, "Bonus"); err != nil {
		t.Fatalf("AddChapter() error = %v", err)
	}
	if e.Phase() != PhasePublished {
		t.Errorf("Phase() = %v", e.Phase())
	}
}

func TestDeleteIsTerminal(t *testing.T) {
	e, api, _ := savedEditor(t)
	ctx := context.Background()

	if err := e.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if want := []string{"delete:course-1", "nav:dashboard"}; !reflect.DeepEqual(api.calls, want) {
		t.Errorf("calls = %v, want %v", api.calls, want)
	}
	if e.Phase() != PhaseDeleted {
		t.Errorf("Phase() = %v", e.Phase())
	}

	api.calls = nil
	if err := e.SaveBasicInfo(ctx); !errors.Is(err, ErrCourseDeleted) {
		t.Errorf("SaveBasicInfo() error = %v", err)
	}
	if _, err := e.AddChapter(ctx, "x"); !errors.Is(err, ErrCourseDeleted) {
		t.Errorf("AddChapter() error = %v", err)
	}
	if err := e.Publish(ctx); !errors.Is(err, ErrCourseDeleted) {
		t.Errorf("Publish() error = %v", err)
	}
	if err := e.Delete(ctx); !errors.Is(err, ErrCourseDeleted) {
		t.Errorf("Delete() error = %v", err)
	}
	if len(api.calls) != 0 {
		t.Errorf("calls after delete = %v", api.calls)
	}
}

func TestStagedCoverChainsAfterCreateBeforeNavigation(t *testing.T) {
	e, api, _ := newTestEditor()
	fillForm(t, e, "Intro", "desc", "cat1", "0", "45")
	png := []byte("\x89PNG\r\n\x1a\n0000")
	if err := e.StageCoverImage("cover.png", "", png); err != nil {
		t.Fatalf("StageCoverImage() error = %v", err)
	}
	if p := e.State().CoverPreview; !strings.HasPrefix(p, "data:image/png;base64,") {
		t.Errorf("preview = %q", p)
	}
	if len(api.calls) != 0 {
		t.Fatalf("staging issued calls: %v", api.calls)
	}

	if err := e.SaveBasicInfo(context.Background()); err != nil {
		t.Fatalf("SaveBasicInfo() error = %v", err)
	}
	if want := []string{"create", "cover:course-1", "nav:course-1"}; !reflect.DeepEqual(api.calls, want) {
		t.Errorf("calls = %v, want %v", api.calls, want)
	}
	st := e.State()
	if st.StagedCover != nil || st.Course.CoverImage != "https://cdn/cover.png" || st.CoverPreview != st.Course.CoverImage {
		t.Errorf("staged = %v, cover = %q, preview = %q", st.StagedCover, st.Course.CoverImage, st.CoverPreview)
	}
}

func TestCoverUploadFailureRevertsPreview(t *testing.T) {
	e, api, ui := savedEditor(t)
	api.errs["cover:course-1"] = &apiclient.APIError{Kind: apiclient.KindServer, StatusCode: 413, Message: "File too large"}

	if err := e.StageCoverImage("big.jpg", "image/jpeg", []byte("jpeg")); err != nil {
		t.Fatal(err)
	}
	if err := e.UploadCoverImage(context.Background()); err == nil {
		t.Fatal("UploadCoverImage() error = nil")
	}
	st := e.State()
	if st.CoverPreview != "" || st.StagedCover != nil {
		t.Errorf("preview = %q, staged = %v", st.CoverPreview, st.StagedCover)
	}
	if ui.failures[len(ui.failures)-1] != "File too large" {
		t.Errorf("failures = %v", ui.failures)
	}
}

func TestCoverGuards(t *testing.T) {
	e, _, _ := newTestEditor()
	if err := e.StageCoverImage("notes.txt", "", []byte("plain text")); !errors.Is(err, ErrNotAnImage) {
		t.Errorf("StageCoverImage(text) error = %v", err)
	}
	if err := e.StageCoverImage("empty.png", "image/png", nil); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("StageCoverImage(empty) error = %v", err)
	}
	if err := e.UploadCoverImage(context.Background()); !errors.Is(err, ErrCourseNotSaved) {
		t.Errorf("UploadCoverImage(new) error = %v", err)
	}

	saved, _, _ := savedEditor(t)
	if err := saved.UploadCoverImage(context.Background()); !errors.Is(err, ErrNoStagedCover) {
		t.Errorf("UploadCoverImage(nothing staged) error = %v", err)
	}
}

func TestStaleResponseAfterCloseIsDropped(t *testing.T) {
	e, api, ui := savedEditor(t)
	api.hook = func(op string) {
		if strings.HasPrefix(op, "chapter:") {
			e.Close()
		}
	}

	if _, err := e.AddChapter(context.Background(), "Late"); !errors.Is(err, ErrEditorClosed) {
		t.Errorf("AddChapter() error = %v, want ErrEditorClosed", err)
	}
	if n := len(e.State().Course.Chapters); n != 0 {
		t.Errorf("chapters = %d, want 0", n)
	}
	if len(ui.successes) != 1 {
		t.Errorf("successes = %v", ui.successes)
	}
	if _, err := e.AddChapter(context.Background(), "After"); !errors.Is(err, ErrEditorClosed) {
		t.Errorf("AddChapter() after close error = %v", err)
	}
}

func TestLoadCourse(t *testing.T) {
	e, api, ui := newTestEditor()
	api.stored = &apiclient.Course{
		ID: "c9", Title: "Go", Description: "d", CategoryID: "cat2", Level: apiclient.LevelIntermediate,
		Duration: "2h15mn", Status: apiclient.StatusPublished, CoverImage: "https://cdn/go.png",
		Chapters: []apiclient.Chapter{{ID: "ch1", Title: "One"}},
	}

	if err := e.LoadCourse(context.Background(), "c9"); err != nil {
		t.Fatalf("LoadCourse() error = %v", err)
	}
	st := e.State()
	if st.Form.Hours != "2" || st.Form.Minutes != "15" || st.Form.Level != apiclient.LevelIntermediate {
		t.Errorf("form = %+v", st.Form)
	}
	if st.CoverPreview != "https://cdn/go.png" || st.Course.Chapters[0].Lessons == nil {
		t.Errorf("state = %+v", st)
	}
	if e.Phase() != PhasePublished || e.CanPublish() {
		t.Errorf("Phase() = %v, CanPublish = %v", e.Phase(), e.CanPublish())
	}

	api.errs["get:c10"] = &apiclient.APIError{Kind: apiclient.KindTransport}
	if err := e.LoadCourse(context.Background(), "c10"); err == nil {
		t.Fatal("LoadCourse() error = nil")
	}
	if e.State().Course.ID != "c9" {
		t.Error("failed load replaced the snapshot")
	}
	if len(ui.failures) != 0 {
		t.Errorf("load failure was notified: %v", ui.failures)
	}
}

func TestLoadCategoriesOnce(t *testing.T) {
	e, api, _ := newTestEditor()
	api.categories = []apiclient.Category{{ID: "cat1", Name: "Programmation"}}
	ctx := context.Background()

	if err := e.LoadCategories(ctx); err != nil {
		t.Fatal(err)
	}
	if err := e.LoadCategories(ctx); err != nil {
		t.Fatal(err)
	}
	if len(api.calls) != 1 {
		t.Errorf("calls = %v, want one fetch", api.calls)
	}
	e.SetField(FieldCategoryID, "cat1")
	st := e.State()
	if st.CategoryName() != "Programmation" {
		t.Errorf("CategoryName() = %q", st.CategoryName())
	}
}

func TestUIState(t *testing.T) {
	e, _, _ := newTestEditor()
	if err := e.SetTab(TabContent); err != nil {
		t.Fatal(err)
	}
	if err := e.SetTab("settings"); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("SetTab(settings) error = %v", err)
	}
	e.ToggleChapter("ch1")
	e.OpenChapterModal()
	e.OpenLessonModal("ch1")
	st := e.State()
	if st.ActiveTab != TabContent || st.ExpandedChapterID != "ch1" || !st.ChapterModalOpen || st.LessonModalChapter != "ch1" {
		t.Errorf("state = %+v", st)
	}
	e.ToggleChapter("ch1")
	e.CloseModals()
	st = e.State()
	if st.ExpandedChapterID != "" || st.ChapterModalOpen || st.LessonModalChapter != "" {
		t.Errorf("state = %+v", st)
	}
}

func TestStats(t *testing.T) {
	s := NewState()
	s.Form.Hours, s.Form.Minutes = "1", "5"
	s.Course.Chapters = []apiclient.Chapter{
		{ID: "a", Lessons: []apiclient.Lesson{
			{ContentType: apiclient.ContentText},
			{ContentType: apiclient.ContentVideo},
			{ContentType: apiclient.ContentVideo, VideoURL: "u"},
		}},
		{ID: "b", Lessons: []apiclient.Lesson{{ContentType: apiclient.ContentDocument}}},
	}
	got := s.Stats()
	if got.Chapters != 2 || got.Lessons != 4 || got.VideosMissing != 1 || got.TotalMinutes != 65 {
		t.Errorf("Stats() = %+v", got)
	}
	if got.ByType[apiclient.ContentVideo] != 2 || got.ByType[apiclient.ContentText] != 1 {
		t.Errorf("ByType = %v", got.ByType)
	}
}

func TestLabels(t *testing.T) {
	if StatusLabel(apiclient.StatusPublished) != "Publié" || StatusLabel("UNKNOWN") != "UNKNOWN" {
		t.Error("StatusLabel")
	}
	if LevelLabel(apiclient.LevelBeginner) != "Débutant" {
		t.Error("LevelLabel")
	}
	if ContentTypeLabel(apiclient.ContentVideo) != "Vidéo" {
		t.Error("ContentTypeLabel")
	}
}

// gate blocks the fake API inside the first call whose name has prefix
// until release is closed.
func gate(api *fakeAPI, prefix string) (entered chan struct{}, release chan struct{}) {
	entered = make(chan struct{})
	release = make(chan struct{})
	var once bool
	api.hook = func(op string) {
		if once || !strings.HasPrefix(op, prefix) {
			return
		}
		once = true
		close(entered)
		<-release
	}
	return entered, release
}

func TestSecondActionWhileSavingIsRejected(t *testing.T) {
	e, api, _ := newTestEditor()
	fillForm(t, e, "Intro", "desc", "cat1", "1", "0")
	entered, release := gate(api, "create")

	done := make(chan error, 1)
	go func() { done <- e.SaveBasicInfo(context.Background()) }()
	<-entered

	if !e.State().Saving {
		t.Error("Saving not set while create is in flight")
	}
	if err := e.SaveBasicInfo(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("second SaveBasicInfo() error = %v, want ErrBusy", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("SaveBasicInfo() error = %v", err)
	}

	creates := 0
	for _, c := range api.calls {
		if c == "create" {
			creates++
		}
	}
	if creates != 1 {
		t.Errorf("create calls = %d, want 1 (calls %v)", creates, api.calls)
	}
	if st := e.State(); st.Saving || st.Course.ID != "course-1" {
		t.Errorf("saving = %v, id = %q", st.Saving, st.Course.ID)
	}
}

func TestMutationsRejectedWhileAnotherIsInFlight(t *testing.T) {
	ctx := context.Background()
	e, api, _ := savedEditor(t)
	ch, err := e.AddChapter(ctx, "Bases")
	if err != nil {
		t.Fatal(err)
	}
	api.calls = nil
	entered, release := gate(api, "chapter:")

	done := make(chan error, 1)
	go func() {
		_, err := e.AddChapter(ctx, "Second")
		done <- err
	}()
	<-entered

	busy := []struct {
		name string
		run  func() error
	}{
		{"AddChapter", func() error { _, err := e.AddChapter(ctx, "Third"); return err }},
		{"AddLesson", func() error { _, err := e.AddLesson(ctx, ch.ID, LessonDraft{Title: "L"}); return err }},
		{"SaveBasicInfo", func() error { return e.SaveBasicInfo(ctx) }},
		{"Publish", func() error { return e.Publish(ctx) }},
		{"Delete", func() error { return e.Delete(ctx) }},
		{"UploadLessonVideo", func() error {
			return e.UploadLessonVideo(ctx, "l-1", apiclient.File{Name: "v.mp4", Data: []byte("v")})
		}},
	}
	for _, b := range busy {
		if err := b.run(); !errors.Is(err, ErrBusy) {
			t.Errorf("%s() error = %v, want ErrBusy", b.name, err)
		}
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("AddChapter() error = %v", err)
	}

	if want := []string{"chapter:course-1"}; !reflect.DeepEqual(api.calls, want) {
		t.Errorf("calls = %v, want %v", api.calls, want)
	}
	var orders []int
	for _, in := range api.chapterInputs {
		orders = append(orders, in.OrderIndex)
	}
	if want := []int{1, 2}; !reflect.DeepEqual(orders, want) {
		t.Errorf("order indexes = %v, want %v", orders, want)
	}
}

func TestStagingBlockedDuringCoverUpload(t *testing.T) {
	e, api, _ := savedEditor(t)
	if err := e.StageCoverImage("a.png", "image/png", []byte("png")); err != nil {
		t.Fatal(err)
	}
	entered, release := gate(api, "cover:")

	done := make(chan error, 1)
	go func() { done <- e.UploadCoverImage(context.Background()) }()
	<-entered

	if err := e.StageCoverImage("b.png", "image/png", []byte("png")); !errors.Is(err, ErrBusy) {
		t.Errorf("StageCoverImage() during upload error = %v, want ErrBusy", err)
	}
	if err := e.UploadCoverImage(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("second UploadCoverImage() error = %v, want ErrBusy", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("UploadCoverImage() error = %v", err)
	}
	if st := e.State(); st.Uploading || st.Course.CoverImage != "https://cdn/a.png" {
		t.Errorf("uploading = %v, cover = %q", st.Uploading, st.Course.CoverImage)
	}
}

type emptyPublishAPI struct{ *fakeAPI }

func (f emptyPublishAPI) PublishCourse(_ context.Context, id string) (*apiclient.Course, error) {
	return nil, f.record("publish:" + id)
}

func TestPublishWithoutCourseInResponseFails(t *testing.T) {
	api := newFakeAPI()
	ui := &fakeUI{api: api}
	e := New(emptyPublishAPI{api}, WithNotifier(ui), WithNavigator(ui))
	fillForm(t, e, "Intro", "desc", "cat1", "1", "0")
	if err := e.SaveBasicInfo(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := e.Publish(context.Background()); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("Publish() error = %v, want ErrCourseNotFound", err)
	}
	if st := e.State(); st.Course.Status != apiclient.StatusDraft || st.Publishing {
		t.Errorf("status = %s, publishing = %v", st.Course.Status, st.Publishing)
	}
	for _, m := range ui.successes {
		if m == MsgCoursePublished {
			t.Errorf("publish was announced: %v", ui.successes)
		}
	}
	if len(ui.failures) != 1 {
		t.Errorf("failures = %v", ui.failures)
	}
}

func TestNoticesAreFrench(t *testing.T) {
	ctx := context.Background()
	e, _, ui := newTestEditor()
	fillForm(t, e, "Intro", "desc", "cat1", "1", "0")
	if err := e.SaveBasicInfo(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddChapter(ctx, "Bases"); err != nil {
		t.Fatal(err)
	}
	if err := e.Publish(ctx); err != nil {
		t.Fatal(err)
	}
	want := []string{"Cours créé avec succès", "Chapitre ajouté", "Cours publié"}
	if !reflect.DeepEqual(ui.successes, want) {
		t.Errorf("successes = %v, want %v", ui.successes, want)
	}
}

func TestChainedCoverUploadHoldsEditor(t *testing.T) {
	e, api, _ := newTestEditor()
	fillForm(t, e, "Intro", "desc", "cat1", "1", "0")
	if err := e.StageCoverImage("a.png", "image/png", []byte("png")); err != nil {
		t.Fatal(err)
	}
	entered, release := gate(api, "cover:")

	done := make(chan error, 1)
	go func() { done <- e.SaveBasicInfo(context.Background()) }()
	<-entered

	if _, err := e.AddChapter(context.Background(), "Bases"); !errors.Is(err, ErrBusy) {
		t.Errorf("AddChapter() between create and cover upload error = %v, want ErrBusy", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("SaveBasicInfo() error = %v", err)
	}
	if want := []string{"create", "cover:course-1", "nav:course-1"}; !reflect.DeepEqual(api.calls, want) {
		t.Errorf("calls = %v, want %v", api.calls, want)
	}
	if e.State().Uploading {
		t.Error("Uploading still set after the chained upload")
	}
}
