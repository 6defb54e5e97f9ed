package model

import "time"

// UserProgress tracks one learner on one lesson.
type UserProgress struct {
	UUIDBase
	UserID             string     `gorm:"type:varchar(36);uniqueIndex:idx_user_lesson;not null" json:"userId"`
	CourseID           string     `gorm:"type:varchar(36);index;not null" json:"courseId"`
	LessonID           string     `gorm:"type:varchar(36);uniqueIndex:idx_user_lesson;not null" json:"lessonId"`
	IsCompleted        bool       `gorm:"default:false" json:"completed"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	ProgressPercentage int        `gorm:"default:0" json:"progressPercentage"`
	WatchTimeSeconds   int        `gorm:"default:0" json:"watchTimeSeconds"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

func (p *UserProgress) MarkCompleted(now time.Time) {
	p.IsCompleted = true
	p.ProgressPercentage = 100
	p.CompletedAt = &now
}

// CourseProgress is the per-learner summary of one course.
type CourseProgress struct {
	Course             *Course        `json:"course"`
	Enrolled           bool           `json:"enrolled"`
	ProgressPercentage float64        `json:"progressPercentage"`
	CompletedLessons   int            `json:"completedLessons"`
	TotalLessons       int            `json:"totalLessons"`
	UserProgress       []UserProgress `json:"userProgress,omitempty"`
}

type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

func NewPage[T any](items []T, page, size int, total int64) PageResponse[T] {
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{Content: items, Page: page, Size: size, TotalElements: total, TotalPages: pages}
}
