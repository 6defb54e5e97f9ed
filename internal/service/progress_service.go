package service

import (
	"baobab_academy/internal/model"
	"baobab_academy/internal/repository"
	"baobab_academy/internal/util"
	"baobab_academy/pkg/logger"
	"baobab_academy/pkg/monitoring"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// swagger:model LessonProgressRequest
type LessonProgressRequest struct {
	ProgressPercentage int `json:"progressPercentage" binding:"gte=0"`
	WatchTimeSeconds   int `json:"watchTimeSeconds" binding:"gte=0"`
}

// ProgressService tracks enrollments and per-lesson completion.
type ProgressService struct {
	DB            *gorm.DB
	CourseRepo    *repository.CourseRepository
	LessonRepo    *repository.LessonRepository
	ChapterRepo   *repository.ChapterRepository
	ProgressRepo  *repository.ProgressRepository
	PublicService *CoursePublicService
	now           func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	chapterRepo *repository.ChapterRepository,
	lessonRepo *repository.LessonRepository,
	progressRepo *repository.ProgressRepository,
	publicService *CoursePublicService,
) *ProgressService {
	return &ProgressService{
		DB:            db,
		CourseRepo:    courseRepo,
		ChapterRepo:   chapterRepo,
		LessonRepo:    lessonRepo,
		ProgressRepo:  progressRepo,
		PublicService: publicService,
		now:           time.Now,
	}
}

// Enroll creates one progress row per lesson and bumps the student count.
func (s *ProgressService) Enroll(ctx context.Context, userID, courseID string) error {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return notFound(err, util.ErrCourseNotPublished)
	}
	if course.Status != model.StatusPublished {
		return util.ErrCourseNotPublished
	}

	enrolled, err := s.ProgressRepo.ExistsForCourse(userID, courseID)
	if err != nil {
		return err
	}
	if enrolled {
		return util.ErrAlreadyEnrolled
	}

	lessons, err := s.LessonRepo.FindByCourse(courseID)
	if err != nil {
		return fmt.Errorf("load lessons: %w", err)
	}
	rows := make([]model.UserProgress, 0, len(lessons))
	for _, l := range lessons {
		rows = append(rows, model.UserProgress{
			UserID:   userID,
			CourseID: courseID,
			LessonID: l.ID,
		})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.ProgressRepo.CreateBatch(tx, rows); err != nil {
			return err
		}
		return s.CourseRepo.IncrementStudents(tx, courseID)
	})
	if err != nil {
		return fmt.Errorf("enroll: %w", err)
	}

	invalidate(ctx, s.PublicService.Redis, popularCacheKey)
	monitoring.RecordCourseEvent(monitoring.EventEnrollment)
	logger.Log.Info("User enrolled", zap.String("userID", userID), zap.String("courseID", courseID))
	return nil
}

// lessonProgress finds the row for an enrolled user, creating it for lessons
// added after enrollment.
func (s *ProgressService) lessonProgress(userID, lessonID string) (*model.UserProgress, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, notFound(err, util.ErrLessonNotFound)
	}
	chapter, err := s.ChapterRepo.FindByID(lesson.ChapterID)
	if err != nil {
		return nil, notFound(err, util.ErrChapterNotFound)
	}

	p, err := s.ProgressRepo.FindByUserAndLesson(userID, lessonID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrolled, err := s.ProgressRepo.ExistsForCourse(userID, chapter.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}
	return &model.UserProgress{UserID: userID, CourseID: chapter.CourseID, LessonID: lessonID}, nil
}

func (s *ProgressService) MarkLessonCompleted(ctx context.Context, userID, lessonID string) (*model.UserProgress, error) {
	p, err := s.lessonProgress(userID, lessonID)
	if err != nil {
		return nil, err
	}
	if !p.IsCompleted {
		p.MarkCompleted(s.now())
	}
	if err := s.ProgressRepo.Save(p); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return p, nil
}

// UpdateLessonProgress clamps the percentage to 0..100; 100 completes the lesson.
func (s *ProgressService) UpdateLessonProgress(ctx context.Context, userID, lessonID string, req LessonProgressRequest) (*model.UserProgress, error) {
	p, err := s.lessonProgress(userID, lessonID)
	if err != nil {
		return nil, err
	}

	pct := util.ClampInt(req.ProgressPercentage, 0, 100)
	if pct > p.ProgressPercentage {
		p.ProgressPercentage = pct
	}
	if req.WatchTimeSeconds > p.WatchTimeSeconds {
		p.WatchTimeSeconds = req.WatchTimeSeconds
	}
	if pct == 100 && !p.IsCompleted {
		p.MarkCompleted(s.now())
	}

	if err := s.ProgressRepo.Save(p); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return p, nil
}

// CourseProgress returns the published course and, for a signed-in user, their progress.
func (s *ProgressService) CourseProgress(ctx context.Context, userID, courseID string) (*model.CourseProgress, error) {
	course, err := s.PublicService.GetPublished(ctx, courseID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, ch := range course.Chapters {
		total += len(ch.Lessons)
	}
	out := &model.CourseProgress{Course: course, TotalLessons: total}
	if userID == "" {
		return out, nil
	}

	rows, err := s.ProgressRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	out.Enrolled = len(rows) > 0
	out.UserProgress = rows
	for _, r := range rows {
		if r.IsCompleted {
			out.CompletedLessons++
		}
	}
	out.ProgressPercentage = completion(out.CompletedLessons, total)
	return out, nil
}

func completion(done, total int) float64 {
	if total == 0 {
		return 0
	}
	pct := float64(done) * 100 / float64(total)
	return math.Round(pct*10) / 10
}
