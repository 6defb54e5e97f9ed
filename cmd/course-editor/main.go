// Command course-editor authors courses against a running Baobab Academy API.
package main

import (
	"baobab_academy/internal/apiclient"
	"baobab_academy/internal/config"
	"baobab_academy/internal/editor"
	"baobab_academy/pkg/logger"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"
)

type command struct {
	usage string
	run   func(ctx context.Context, app *cli, args []string) error
}

// commands is filled in init: the handlers read it back for their usage line.
var commands map[string]command

func init() {
	commands = map[string]command{
		"login":        {"-email E -password P", runLogin},
		"categories":   {"", runCategories},
		"create":       {"-title T -description D -category ID [-level L] [-hours H] [-minutes M] [-cover FILE]", runCreate},
		"edit":         {"-course ID [-title T] [-description D] [-category ID] [-level L] [-hours H] [-minutes M]", runEdit},
		"add-chapter":  {"-course ID -title T", runAddChapter},
		"add-lesson":   {"-course ID -chapter ID -title T [-type TEXT|VIDEO|DOCUMENT] [-content C] [-video-url U]", runAddLesson},
		"upload-cover": {"-course ID -file FILE", runUploadCover},
		"upload-video": {"-course ID -lesson ID -file FILE", runUploadVideo},
		"publish":      {"-course ID", runPublish},
		"delete":       {"-course ID -yes", runDelete},
		"show":         {"-course ID", runShow},
		"my-courses":   {"[-page N] [-size N]", runMyCourses},
		"watch":        {"[-course ID]", runWatch},
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: course-editor [-config DIR] [-debug] <command> [flags]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-13s %s\n", name, commands[name].usage)
	}
}

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	logger.InitCLILogger(*debug)
	defer logger.Log.Sync()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if t := cfg.Editor.TimeoutSeconds; t > 0 && flag.Arg(0) != "watch" {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(t)*time.Second)
		defer cancel()
	}

	app := newCLI(cfg.Editor)
	if err := cmd.run(ctx, app, flag.Args()[1:]); err != nil {
		if !app.reported {
			fmt.Fprintln(os.Stderr, "error:", message(err))
		}
		if apiclient.IsUnauthorized(err) {
			fmt.Fprintln(os.Stderr, "session expired, run: course-editor login")
		}
		os.Exit(1)
	}
}

// message prefers the API's display text for API failures.
func message(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.DisplayMessage()
	}
	return err.Error()
}

// cli wires the API client to an editor and prints what the editor reports.
type cli struct {
	client   *apiclient.Client
	reported bool
}

func newCLI(cfg config.EditorConfig) *cli {
	store := &apiclient.FileTokenStore{Path: cfg.TokenFile}
	return &cli{
		client: apiclient.New(cfg.APIBaseURL,
			apiclient.WithTokenStore(store),
			apiclient.WithLogger(logger.Log),
		),
	}
}

func (c *cli) Success(msg string) { fmt.Fprintln(os.Stderr, msg) }

func (c *cli) Failure(msg string) {
	c.reported = true
	fmt.Fprintln(os.Stderr, "error:", msg)
}

func (c *cli) ToCourse(courseID string) { fmt.Printf("course %s\n", courseID) }
func (c *cli) ToDashboard()             {}

func (c *cli) editor() *editor.Editor {
	return editor.New(c.client,
		editor.WithLogger(logger.Log),
		editor.WithNotifier(c),
		editor.WithNavigator(c),
	)
}

// open loads courseID into a fresh editor.
func (c *cli) open(ctx context.Context, courseID string) (*editor.Editor, error) {
	if courseID == "" {
		return nil, errors.New("-course is required")
	}
	ed := c.editor()
	if err := ed.LoadCourse(ctx, courseID); err != nil {
		return nil, fmt.Errorf("load course %s: %w", courseID, err)
	}
	return ed, nil
}
