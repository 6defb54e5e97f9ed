package apiclient

import "time"

type Level string

const (
	LevelBeginner     Level = "BEGINNER"
	LevelIntermediate Level = "INTERMEDIATE"
	LevelAdvanced     Level = "ADVANCED"
)

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

type ContentType string

const (
	ContentText     ContentType = "TEXT"
	ContentVideo    ContentType = "VIDEO"
	ContentDocument ContentType = "DOCUMENT"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentVideo, ContentDocument:
		return true
	}
	return false
}

// Course as the API returns it. ID is empty until the first create succeeds.
type Course struct {
	ID            string    `json:"id,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CategoryID    string    `json:"categoryId"`
	CategoryName  string    `json:"categoryName,omitempty"`
	InstructorID  string    `json:"instructorId,omitempty"`
	Level         Level     `json:"level"`
	Duration      string    `json:"duration"`
	CoverImage    string    `json:"coverImage,omitempty"`
	Status        Status    `json:"status,omitempty"`
	StudentsCount int       `json:"studentsCount"`
	Rating        float64   `json:"rating"`
	Chapters      []Chapter `json:"chapters,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

type Chapter struct {
	ID         string   `json:"id"`
	CourseID   string   `json:"courseId,omitempty"`
	Title      string   `json:"title"`
	OrderIndex int      `json:"orderIndex"`
	Lessons    []Lesson `json:"lessons"`
}

type Lesson struct {
	ID            string      `json:"id"`
	ChapterID     string      `json:"chapterId,omitempty"`
	Title         string      `json:"title"`
	Content       string      `json:"content,omitempty"`
	ContentType   ContentType `json:"contentType"`
	VideoURL      string      `json:"videoUrl,omitempty"`
	VideoDuration float64     `json:"videoDuration,omitempty"`
	ThumbnailURL  string      `json:"thumbnailUrl,omitempty"`
	OrderIndex    int         `json:"orderIndex"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// CourseInput carries the basic-info fields for create and update.
type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId"`
	Level       Level  `json:"level"`
	Duration    string `json:"duration"`
}

type ChapterInput struct {
	Title      string `json:"title"`
	OrderIndex int    `json:"orderIndex"`
}

type LessonInput struct {
	Title       string      `json:"title"`
	Content     string      `json:"content,omitempty"`
	ContentType ContentType `json:"contentType"`
	VideoURL    string      `json:"videoUrl,omitempty"`
	OrderIndex  int         `json:"orderIndex"`
}

// File is an in-memory upload sent as the multipart field "file".
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// PageQuery pages and sorts listings; zero values are omitted from the query.
type PageQuery struct {
	Page       int
	Size       int
	SortBy     string
	SortDir    string
	CategoryID string
	Search     string
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UserProgress struct {
	LessonID           string `json:"lessonId"`
	Completed          bool   `json:"completed"`
	ProgressPercentage int    `json:"progressPercentage"`
	WatchTimeSeconds   int    `json:"watchTimeSeconds"`
}

type CourseProgress struct {
	Course             Course         `json:"course"`
	Enrolled           bool           `json:"enrolled"`
	ProgressPercentage float64        `json:"progressPercentage"`
	CompletedLessons   int            `json:"completedLessons"`
	TotalLessons       int            `json:"totalLessons"`
	UserProgress       []UserProgress `json:"userProgress,omitempty"`
}
