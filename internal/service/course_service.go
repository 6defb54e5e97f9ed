package service

import (
	"baobab_academy/internal/model"
	"baobab_academy/internal/repository"
	"baobab_academy/internal/util"
	"baobab_academy/pkg/logger"
	"baobab_academy/pkg/monitoring"
	"baobab_academy/pkg/tracing"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// swagger:model CourseCreateRequest
type CourseCreateRequest struct {
	Title       string            `json:"title" binding:"required,min=3,max=200"`
	Description string            `json:"description" binding:"required,max=5000"`
	CategoryID  string            `json:"categoryId" binding:"required"`
	Level       model.CourseLevel `json:"level" binding:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Duration    string            `json:"duration" binding:"max=20"`
}

// CourseUpdateRequest is a partial update; nil fields are left untouched.
// swagger:model CourseUpdateRequest
type CourseUpdateRequest struct {
	Title       *string             `json:"title" binding:"omitempty,min=3,max=200"`
	Description *string             `json:"description" binding:"omitempty,max=5000"`
	CategoryID  *string             `json:"categoryId"`
	Level       *model.CourseLevel  `json:"level" binding:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Duration    *string             `json:"duration" binding:"omitempty,max=20"`
	Status      *model.CourseStatus `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
}

// swagger:model ChapterCreateRequest
type ChapterCreateRequest struct {
	Title      string `json:"title" binding:"required,min=2,max=200"`
	OrderIndex int    `json:"orderIndex" binding:"gte=0"`
}

// swagger:model LessonCreateRequest
type LessonCreateRequest struct {
	Title       string            `json:"title" binding:"required,min=2,max=200"`
	Content     string            `json:"content"`
	ContentType model.ContentType `json:"contentType" binding:"required,oneof=TEXT VIDEO DOCUMENT"`
	VideoURL    string            `json:"videoUrl" binding:"max=500"`
	OrderIndex  int               `json:"orderIndex" binding:"gte=0"`
}

// The stores below are the slices of the repositories the authoring
// operations need; the gorm repositories satisfy them.
type courseStore interface {
	Create(course *model.Course) error
	Update(course *model.Course) error
	FindByID(id string) (*model.Course, error)
	FindWithContent(id string) (*model.Course, error)
	List(q repository.CourseQuery) ([]model.Course, int64, error)
	Delete(tx *gorm.DB, id string) error
}

type chapterStore interface {
	Create(chapter *model.Chapter) error
	FindByID(id string) (*model.Chapter, error)
	CountByCourse(courseID string) (int64, error)
	DeleteByCourse(tx *gorm.DB, courseID string) error
}

type lessonStore interface {
	Create(lesson *model.Lesson) error
	Update(lesson *model.Lesson) error
	FindByID(id string) (*model.Lesson, error)
	CountByChapter(chapterID string) (int64, error)
	CountByCourse(courseID string) (int64, error)
	DeleteByChapters(tx *gorm.DB, chapterIDs []string) error
}

type categoryFinder interface {
	FindByID(id string) (*model.Category, error)
}

type progressCleaner interface {
	DeleteByCourse(tx *gorm.DB, courseID string) error
}

// transactor is satisfied by *gorm.DB.
type transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

var (
	_ courseStore     = (*repository.CourseRepository)(nil)
	_ chapterStore    = (*repository.ChapterRepository)(nil)
	_ lessonStore     = (*repository.LessonRepository)(nil)
	_ categoryFinder  = (*repository.CategoryRepository)(nil)
	_ progressCleaner = (*repository.ProgressRepository)(nil)
	_ transactor      = (*gorm.DB)(nil)
)

// CourseService holds the instructor-side authoring operations.
// Every operation checks that the caller owns the course.
type CourseService struct {
	DB              transactor
	CourseRepo      courseStore
	ChapterRepo     chapterStore
	LessonRepo      lessonStore
	CategoryRepo    categoryFinder
	ProgressRepo    progressCleaner
	StorageService  *StorageService
	MediaService    *MediaService
	CategoryService *CategoryService
	Redis           *redis.Client
	// Events is optional; without it authoring events are only counted.
	Events *EventHub
}

func NewCourseService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	chapterRepo *repository.ChapterRepository,
	lessonRepo *repository.LessonRepository,
	categoryRepo *repository.CategoryRepository,
	progressRepo *repository.ProgressRepository,
	storageService *StorageService,
	mediaService *MediaService,
	categoryService *CategoryService,
	rdb *redis.Client,
) *CourseService {
	return &CourseService{
		DB:              db,
		CourseRepo:      courseRepo,
		ChapterRepo:     chapterRepo,
		LessonRepo:      lessonRepo,
		CategoryRepo:    categoryRepo,
		ProgressRepo:    progressRepo,
		StorageService:  storageService,
		MediaService:    mediaService,
		CategoryService: categoryService,
		Redis:           rdb,
	}
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func (s *CourseService) ownedCourse(courseID, instructorID string) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	if course.InstructorID != instructorID {
		return nil, util.ErrNotCourseOwner
	}
	return course, nil
}

func (s *CourseService) checkCategory(categoryID string) error {
	if _, err := s.CategoryRepo.FindByID(categoryID); err != nil {
		return notFound(err, util.ErrCategoryNotFound)
	}
	return nil
}

func (s *CourseService) withCategoryName(ctx context.Context, courses ...*model.Course) {
	if s.CategoryService == nil {
		return
	}
	names := s.CategoryService.Names(ctx)
	for _, c := range courses {
		c.CategoryName = names[c.CategoryID]
	}
}

func (s *CourseService) CreateCourse(ctx context.Context, req CourseCreateRequest, instructorID string) (*model.Course, error) {
	if !req.Level.Valid() {
		return nil, util.ErrInvalidLevel
	}
	if err := s.checkCategory(req.CategoryID); err != nil {
		return nil, err
	}

	course := &model.Course{
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		CategoryID:   req.CategoryID,
		InstructorID: instructorID,
		Level:        req.Level,
		Duration:     req.Duration,
		Status:       model.StatusDraft,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.emit(ctx, monitoring.EventCourseCreated, instructorID, course.ID, "")
	logger.Log.Info("Course created", zap.String("courseID", course.ID), zap.String("instructorID", instructorID))

	s.withCategoryName(ctx, course)
	return course, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, courseID string, req CourseUpdateRequest, instructorID string) (*model.Course, error) {
	course, err := s.ownedCourse(courseID, instructorID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		course.Description = strings.TrimSpace(*req.Description)
	}
	if req.CategoryID != nil && *req.CategoryID != course.CategoryID {
		if err := s.checkCategory(*req.CategoryID); err != nil {
			return nil, err
		}
		course.CategoryID = *req.CategoryID
	}
	if req.Level != nil {
		if !req.Level.Valid() {
			return nil, util.ErrInvalidLevel
		}
		course.Level = *req.Level
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, util.ErrInvalidStatus
		}
		course.Status = *req.Status
	}

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	s.invalidateCatalog(ctx)
	s.emit(ctx, monitoring.EventCourseUpdated, instructorID, course.ID, "")

	s.withCategoryName(ctx, course)
	return course, nil
}

// openUpload checks size, extension and sniffed MIME type, then rewinds the file.
func openUpload(file *multipart.FileHeader, maxSize int64, exts []string, mimePrefix string, invalid error) (multipart.File, string, error) {
	if file.Size > maxSize {
		return nil, "", fmt.Errorf("%w: file exceeds %d bytes", invalid, maxSize)
	}
	if !util.HasExtension(file.Filename, exts) {
		return nil, "", fmt.Errorf("%w: unsupported extension %q", invalid, filepath.Ext(file.Filename))
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	mime, err := util.ValidateMimeType(src, []string{mimePrefix})
	if err != nil {
		src.Close()
		return nil, "", fmt.Errorf("%w: %v", invalid, err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		src.Close()
		return nil, "", err
	}
	return src, mime, nil
}

func (s *CourseService) UploadCourseImage(ctx context.Context, courseID string, file *multipart.FileHeader, instructorID string) (*model.Course, error) {
	course, err := s.ownedCourse(courseID, instructorID)
	if err != nil {
		return nil, err
	}

	src, mime, err := openUpload(file, util.MaxCoverImageSize, util.AllowedImageExtensions, util.MimeImage, util.ErrInvalidImage)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	key := CoverKey(course.ID, filepath.Ext(file.Filename))
	url, err := s.StorageService.Store(ctx, key, src, file.Size, mime)
	if err != nil {
		return nil, fmt.Errorf("store cover image: %w", err)
	}

	oldKey := ObjectKey(course.CoverImageKey)
	course.CoverImage = url
	course.CoverImageKey = string(key)
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, fmt.Errorf("update course cover: %w", err)
	}
	monitoring.RecordUpload("cover", file.Size)
	s.emit(ctx, monitoring.EventCoverUploaded, instructorID, course.ID, "")

	if oldKey != "" && oldKey != key {
		if err := s.StorageService.Remove(ctx, oldKey); err != nil {
			logger.Log.Warn("Failed to delete previous cover", zap.String("key", string(oldKey)), zap.Error(err))
		}
	}
	s.invalidateCatalog(ctx)

	s.withCategoryName(ctx, course)
	return course, nil
}

func (s *CourseService) AddChapter(ctx context.Context, courseID string, req ChapterCreateRequest, instructorID string) (*model.Chapter, error) {
	course, err := s.ownedCourse(courseID, instructorID)
	if err != nil {
		return nil, err
	}

	order := req.OrderIndex
	if order <= 0 {
		count, err := s.ChapterRepo.CountByCourse(course.ID)
		if err != nil {
			return nil, err
		}
		order = int(count) + 1
	}

	chapter := &model.Chapter{
		CourseID:   course.ID,
		Title:      strings.TrimSpace(req.Title),
		OrderIndex: order,
	}
	if err := s.ChapterRepo.Create(chapter); err != nil {
		return nil, fmt.Errorf("create chapter: %w", err)
	}
	chapter.Lessons = []model.Lesson{}

	s.emit(ctx, monitoring.EventChapterAdded, instructorID, chapter.CourseID, chapter.ID)
	return chapter, nil
}

// chapterOwner resolves a chapter and checks ownership of its course.
func (s *CourseService) chapterOwner(chapterID, instructorID string) (*model.Chapter, error) {
	chapter, err := s.ChapterRepo.FindByID(chapterID)
	if err != nil {
		return nil, notFound(err, util.ErrChapterNotFound)
	}
	if _, err := s.ownedCourse(chapter.CourseID, instructorID); err != nil {
		return nil, err
	}
	return chapter, nil
}

func (s *CourseService) AddLesson(ctx context.Context, chapterID string, req LessonCreateRequest, instructorID string) (*model.Lesson, error) {
	if !req.ContentType.Valid() {
		return nil, util.ErrInvalidContentType
	}
	chapter, err := s.chapterOwner(chapterID, instructorID)
	if err != nil {
		return nil, err
	}

	order := req.OrderIndex
	if order <= 0 {
		count, err := s.LessonRepo.CountByChapter(chapter.ID)
		if err != nil {
			return nil, err
		}
		order = int(count) + 1
	}

	lesson := &model.Lesson{
		ChapterID:   chapter.ID,
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		ContentType: req.ContentType,
		VideoURL:    strings.TrimSpace(req.VideoURL),
		OrderIndex:  order,
	}
	if err := s.LessonRepo.Create(lesson); err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}

	s.emit(ctx, monitoring.EventLessonAdded, instructorID, chapter.CourseID, lesson.ID)
	return lesson, nil
}

// UploadLessonVideo stores the video, then inspects it for duration and a thumbnail.
// Inspection failures do not fail the upload.
func (s *CourseService) UploadLessonVideo(ctx context.Context, lessonID string, file *multipart.FileHeader, instructorID string) (*model.Lesson, error) {
	ctx, span := tracing.StartSpan(ctx, "CourseService.UploadLessonVideo", attribute.String("lesson.id", lessonID))
	defer span.End()

	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, notFound(err, util.ErrLessonNotFound)
	}
	chapter, err := s.chapterOwner(lesson.ChapterID, instructorID)
	if err != nil {
		return nil, err
	}

	src, mime, err := openUpload(file, util.MaxLessonVideoSize, util.AllowedVideoExtensions, util.MimeVideo, util.ErrInvalidVideo)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	tmp, err := os.CreateTemp("", "baobab-video-*"+ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("buffer video: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	key := LessonVideoKey(chapter.CourseID, lesson.ID, ext)
	url, err := s.StorageService.StoreFile(ctx, key, tmp.Name(), mime)
	if err != nil {
		return nil, fmt.Errorf("store lesson video: %w", err)
	}

	oldKey := ObjectKey(lesson.VideoKey)
	lesson.VideoURL = url
	lesson.VideoKey = string(key)
	if s.MediaService != nil {
		meta, err := s.MediaService.ProcessVideo(ctx, tmp.Name(), LessonThumbnailKey(chapter.CourseID, lesson.ID))
		if err != nil {
			logger.Log.Warn("Video inspection failed", zap.String("lessonID", lesson.ID), zap.Error(err))
		} else {
			lesson.VideoDuration = meta.Duration
			if meta.ThumbnailURL != "" {
				lesson.ThumbnailURL = meta.ThumbnailURL
			}
		}
	}

	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, fmt.Errorf("update lesson video: %w", err)
	}
	monitoring.RecordUpload("video", file.Size)
	s.emit(ctx, monitoring.EventVideoUploaded, instructorID, chapter.CourseID, lesson.ID)

	if oldKey != "" && oldKey != key {
		if err := s.StorageService.Remove(ctx, oldKey); err != nil {
			logger.Log.Warn("Failed to delete previous video", zap.String("key", string(oldKey)), zap.Error(err))
		}
	}
	return lesson, nil
}

// PublishCourse requires at least one chapter and one lesson.
func (s *CourseService) PublishCourse(ctx context.Context, courseID, instructorID string) (*model.Course, error) {
	course, err := s.ownedCourse(courseID, instructorID)
	if err != nil {
		return nil, err
	}

	chapters, err := s.ChapterRepo.CountByCourse(course.ID)
	if err != nil {
		return nil, err
	}
	if chapters == 0 {
		return nil, util.ErrCourseWithoutChapters
	}
	lessons, err := s.LessonRepo.CountByCourse(course.ID)
	if err != nil {
		return nil, err
	}
	if lessons == 0 {
		return nil, util.ErrCourseWithoutLessons
	}

	course.Status = model.StatusPublished
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, fmt.Errorf("publish course: %w", err)
	}
	s.invalidateCatalog(ctx)

	s.emit(ctx, monitoring.EventCoursePublished, instructorID, course.ID, "")
	logger.Log.Info("Course published", zap.String("courseID", course.ID))

	s.withCategoryName(ctx, course)
	return course, nil
}

// DeleteCourse removes the course tree in one transaction, then its stored media.
func (s *CourseService) DeleteCourse(ctx context.Context, courseID, instructorID string) error {
	ctx, span := tracing.StartSpan(ctx, "CourseService.DeleteCourse", attribute.String("course.id", courseID))
	defer span.End()

	if _, err := s.ownedCourse(courseID, instructorID); err != nil {
		return err
	}
	course, err := s.CourseRepo.FindWithContent(courseID)
	if err != nil {
		return notFound(err, util.ErrCourseNotFound)
	}

	var keys []ObjectKey
	if course.CoverImageKey != "" {
		keys = append(keys, ObjectKey(course.CoverImageKey))
	}
	chapterIDs := make([]string, 0, len(course.Chapters))
	for _, ch := range course.Chapters {
		chapterIDs = append(chapterIDs, ch.ID)
		for _, l := range ch.Lessons {
			if l.VideoKey != "" {
				keys = append(keys, ObjectKey(l.VideoKey))
			}
			if l.ThumbnailURL != "" {
				keys = append(keys, LessonThumbnailKey(course.ID, l.ID))
			}
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.ProgressRepo.DeleteByCourse(tx, course.ID); err != nil {
			return err
		}
		if err := s.LessonRepo.DeleteByChapters(tx, chapterIDs); err != nil {
			return err
		}
		if err := s.ChapterRepo.DeleteByCourse(tx, course.ID); err != nil {
			return err
		}
		return s.CourseRepo.Delete(tx, course.ID)
	})
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	removed := s.StorageService.RemoveAll(ctx, keys)
	s.invalidateCatalog(ctx)

	s.emit(ctx, monitoring.EventCourseDeleted, instructorID, course.ID, "")
	logger.Log.Info("Course deleted", zap.String("courseID", course.ID), zap.Int("objects", removed), zap.Int("expected", len(keys)))
	return nil
}

func (s *CourseService) GetInstructorCourses(ctx context.Context, instructorID string, page, size int, sortBy, sortDir string) (model.PageResponse[model.Course], error) {
	courses, total, err := s.CourseRepo.List(repository.CourseQuery{
		InstructorID: instructorID,
		SortBy:       sortBy,
		SortDir:      sortDir,
		Page:         page,
		Size:         size,
	})
	if err != nil {
		return model.PageResponse[model.Course]{}, fmt.Errorf("list instructor courses: %w", err)
	}
	for i := range courses {
		s.withCategoryName(ctx, &courses[i])
	}
	return model.NewPage(courses, page, size, total), nil
}

// GetCourseForEditing returns the course with chapters and lessons in order.
func (s *CourseService) GetCourseForEditing(ctx context.Context, courseID, instructorID string) (*model.Course, error) {
	course, err := s.CourseRepo.FindWithContent(courseID)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	if course.InstructorID != instructorID {
		return nil, util.ErrNotCourseOwner
	}
	normalizeContent(course)
	s.withCategoryName(ctx, course)
	return course, nil
}

// normalizeContent makes empty collections serialize as [] rather than null.
func normalizeContent(course *model.Course) {
	if course.Chapters == nil {
		course.Chapters = []model.Chapter{}
	}
	for i := range course.Chapters {
		if course.Chapters[i].Lessons == nil {
			course.Chapters[i].Lessons = []model.Lesson{}
		}
	}
}

// emit counts the event and pushes it to the instructor's live sessions.
func (s *CourseService) emit(ctx context.Context, event, instructorID, courseID, entityID string) {
	monitoring.RecordCourseEvent(event)
	s.Events.Publish(ctx, instructorID, CourseEvent{Type: event, CourseID: courseID, EntityID: entityID})
}

func (s *CourseService) invalidateCatalog(ctx context.Context) {
	invalidate(ctx, s.Redis, catalogKeys...)
}
