package main

import (
	"baobab_academy/internal/apiclient"
	"baobab_academy/internal/editor"
	"context"
	"errors"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: course-editor %s %s\n", name, commands[name].usage)
		fs.PrintDefaults()
	}
	return fs
}

func runLogin(ctx context.Context, app *cli, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("BAOBAB_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := app.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s %s (%s)\n", res.User.FirstName, res.User.LastName, res.User.Role)
	return nil
}

func runCategories(ctx context.Context, app *cli, args []string) error {
	ed := app.editor()
	if err := ed.LoadCategories(ctx); err != nil {
		return err
	}
	for _, c := range ed.State().Categories {
		fmt.Printf("%s\t%s\n", c.ID, c.Name)
	}
	return nil
}

// basicFlags registers the basic-info inputs; only flags given on the
// command line are applied to the form.
type basicFlags struct {
	fs     *flag.FlagSet
	values map[editor.Field]*string
}

func newBasicFlags(fs *flag.FlagSet) *basicFlags {
	b := &basicFlags{fs: fs, values: map[editor.Field]*string{}}
	b.values[editor.FieldTitle] = fs.String("title", "", "course title")
	b.values[editor.FieldDescription] = fs.String("description", "", "course description")
	b.values[editor.FieldCategoryID] = fs.String("category", "", "category id")
	b.values[editor.FieldLevel] = fs.String("level", "", "BEGINNER, INTERMEDIATE or ADVANCED")
	b.values[editor.FieldHours] = fs.String("hours", "", "duration hours")
	b.values[editor.FieldMinutes] = fs.String("minutes", "", "duration minutes")
	return b
}

var flagFields = map[string]editor.Field{
	"title":       editor.FieldTitle,
	"description": editor.FieldDescription,
	"category":    editor.FieldCategoryID,
	"level":       editor.FieldLevel,
	"hours":       editor.FieldHours,
	"minutes":     editor.FieldMinutes,
}

func (b *basicFlags) apply(ed *editor.Editor) error {
	var err error
	b.fs.Visit(func(f *flag.Flag) {
		field, ok := flagFields[f.Name]
		if !ok || err != nil {
			return
		}
		err = ed.SetField(field, *b.values[field])
	})
	return err
}

func runCreate(ctx context.Context, app *cli, args []string) error {
	fs := newFlagSet("create")
	basic := newBasicFlags(fs)
	cover := fs.String("cover", "", "cover image to upload once created")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ed := app.editor()
	if err := basic.apply(ed); err != nil {
		return err
	}
	if *cover != "" {
		f, err := readFile(*cover)
		if err != nil {
			return err
		}
		if err := ed.StageCoverImage(f.Name, f.ContentType, f.Data); err != nil {
			return err
		}
	}
	return ed.SaveBasicInfo(ctx)
}

func runEdit(ctx context.Context, app *cli, args []string) error {
	fs := newFlagSet("edit")
	courseID := fs.String("course", "", "course id")
	basic := newBasicFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	ed, err := app.open(ctx, *courseID)
	if err != nil {
		return err
	}
	if err := basic.apply(ed); err != nil {
		return err
	}
	return ed.SaveBasicInfo(ctx)
}

func runAddChapter(ctx context.Context, app *cli, args []string) error {
	fs := newFlagSet("add-chapter")
	courseID := fs.String("course", "", "course id")
	title := fs.String("title", "", "chapter title")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ed, err := app.open(ctx, *courseID)
	if err != nil {
		return err
	}
	ch, err := ed.AddChapter(ctx, *title)
	if err != nil {
		return err
	}
	fmt.Printf("chapter %s (#%d)\n", ch.ID, ch.OrderIndex)
	return nil
}

func runAddLesson(ctx context.Context, app *cli, args []string) error {
	fs := newFlagSet("add-lesson")
	courseID := fs.String("course", "", "course id")
	chapterID := fs.String("chapter", "", "chapter id")
	title := fs.String("title", "", "lesson title")
	contentType := fs.String("type", string(apiclient.ContentText), "TEXT, VIDEO or DOCUMENT")
	content := fs.String("content", "", "text body, TEXT lessons only")
	videoURL := fs.String("video-url", "", "external video URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ed, err := app.open(ctx, *courseID)
	if err != nil {
		return err
	}
	l, err := ed.AddLesson(ctx, *chapterID, editor.LessonDraft{
		Title:       *title,
		ContentType: apiclient.ContentType(strings.ToUpper(*contentType)),
		Content:     *content,
		VideoURL:    *videoURL,
	})
	if err != nil {
		return err
	}
	fmt.Printf("lesson %s (#%d)\n", l.ID, l.OrderIndex)
	return nil
}

func runUploadCover(ctx context.Context, app *cli, args []string) error {
	fs := newFlagSet("upload-cover")
	courseID := fs.String("course", "", "course id")
	path := fs.String("file", "", "image file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := readFile(*path)
	if err != nil {
		return err
	}
	ed, err := app.open(ctx, *courseID)
	if err != nil {
		return err
	}
	if err := ed.StageCoverImage(f.Name, f.ContentType, f.Data); err != nil {
		return err
	}
	return ed.UploadCoverImage(ctx)
}

func runUploadVideo(ctx context.Context, app *cli, args []string) error {
	fs := newFlagSet("upload-video")
	courseID := fs.String("course", "", "course id")
	lessonID := fs.String("lesson", "", "lesson id")
	path := fs.String("file", "", "video file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := readFile(*path)
	if err != nil {
		return err
	}
	ed, err := app.open(ctx, *courseID)
	if err != nil {
		return err
	}
	return ed.UploadLessonVideo(ctx, *lessonID, f)
}

func runPublish(ctx context.Context, app *cli, args []string) error {
	fs := newFlagSet("publish")
	courseID := fs.String("course", "", "course id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ed, err := app.open(ctx, *courseID)
	if err != nil {
		return err
	}
	if !ed.CanPublish() {
		fmt.Fprintf(os.Stderr, "course is %s, nothing to publish\n", editor.StatusLabel(ed.State().Course.Status))
		return nil
	}
	return ed.Publish(ctx)
}

func runDelete(ctx context.Context, app *cli, args []string) error {
	fs := newFlagSet("delete")
	courseID := fs.String("course", "", "course id")
	yes := fs.Bool("yes", false, "confirm deletion, it cannot be undone")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("deleting a course is permanent, pass -yes to confirm")
	}
	ed, err := app.open(ctx, *courseID)
	if err != nil {
		return err
	}
	return ed.Delete(ctx)
}

func runShow(ctx context.Context, app *cli, args []string) error {
	fs := newFlagSet("show")
	courseID := fs.String("course", "", "course id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ed, err := app.open(ctx, *courseID)
	if err != nil {
		return err
	}
	st := ed.State()
	c := st.Course
	stats := st.Stats()

	fmt.Printf("%s  [%s]\n", c.Title, editor.StatusLabel(c.Status))
	fmt.Printf("  id:        %s\n", c.ID)
	fmt.Printf("  level:     %s\n", editor.LevelLabel(c.Level))
	fmt.Printf("  duration:  %sh %smn\n", st.Form.Hours, st.Form.Minutes)
	if c.CoverImage != "" {
		fmt.Printf("  cover:     %s\n", c.CoverImage)
	}
	fmt.Printf("  content:   %d chapters, %d lessons, %d videos missing\n", stats.Chapters, stats.Lessons, stats.VideosMissing)
	for _, ch := range c.Chapters {
		fmt.Printf("  %d. %s  (%s)\n", ch.OrderIndex, ch.Title, ch.ID)
		for _, l := range ch.Lessons {
			line := fmt.Sprintf("     %d.%d %s  [%s]  (%s)", ch.OrderIndex, l.OrderIndex, l.Title, editor.ContentTypeLabel(l.ContentType), l.ID)
			if editor.CanUploadVideo(l) {
				line += "  video pending"
			}
			fmt.Println(line)
		}
	}
	return nil
}

func runMyCourses(ctx context.Context, app *cli, args []string) error {
	fs := newFlagSet("my-courses")
	page := fs.Int("page", 0, "page, 0-based")
	size := fs.Int("size", 10, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := app.client.MyCourses(ctx, apiclient.PageQuery{Page: *page, Size: *size, SortBy: "updatedAt", SortDir: "desc"})
	if err != nil {
		return err
	}
	for _, c := range res.Content {
		fmt.Printf("%s\t%-10s\t%s\n", c.ID, editor.StatusLabel(c.Status), c.Title)
	}
	fmt.Fprintf(os.Stderr, "page %d/%d, %d courses\n", res.Page+1, res.TotalPages, res.TotalElements)
	return nil
}

func runWatch(ctx context.Context, app *cli, args []string) error {
	fs := newFlagSet("watch")
	courseID := fs.String("course", "", "only print events of this course")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "watching course events, Ctrl-C to stop")
	return app.client.WatchEvents(ctx, func(ev apiclient.CourseEvent) {
		if *courseID != "" && ev.CourseID != *courseID {
			return
		}
		line := fmt.Sprintf("%s\t%s\t%s", ev.Timestamp.Local().Format("15:04:05"), ev.Type, ev.CourseID)
		if ev.EntityID != "" {
			line += "\t" + ev.EntityID
		}
		fmt.Println(line)
	})
}

func readFile(path string) (apiclient.File, error) {
	if path == "" {
		return apiclient.File{}, errors.New("-file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return apiclient.File{}, err
	}
	return apiclient.File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Data:        data,
	}, nil
}
