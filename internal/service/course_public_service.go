package service

import (
	"baobab_academy/internal/config"
	"baobab_academy/internal/model"
	"baobab_academy/internal/repository"
	"baobab_academy/internal/util"
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	popularCacheKey   = "courses:popular"
	topRatedCacheKey  = "courses:top-rated"
	latestCacheKey    = "courses:latest"
	catalogCacheDepth = 24
	DefaultListLimit  = 6
)

var catalogKeys = []string{popularCacheKey, topRatedCacheKey, latestCacheKey}

// CatalogQuery filters the public listing of published courses.
type CatalogQuery struct {
	Page       int
	Size       int
	SortBy     string
	SortDir    string
	CategoryID string
	Search     string
}

// CoursePublicService serves published courses to learners and visitors.
type CoursePublicService struct {
	CourseRepo      *repository.CourseRepository
	CategoryService *CategoryService
	Redis           *redis.Client
	Cfg             *config.Config
}

func NewCoursePublicService(courseRepo *repository.CourseRepository, categoryService *CategoryService, rdb *redis.Client, cfg *config.Config) *CoursePublicService {
	return &CoursePublicService{
		CourseRepo:      courseRepo,
		CategoryService: categoryService,
		Redis:           rdb,
		Cfg:             cfg,
	}
}

func (s *CoursePublicService) named(ctx context.Context, courses []model.Course) []model.Course {
	names := s.CategoryService.Names(ctx)
	for i := range courses {
		courses[i].CategoryName = names[courses[i].CategoryID]
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses
}

func (s *CoursePublicService) ListPublished(ctx context.Context, q CatalogQuery) (model.PageResponse[model.Course], error) {
	courses, total, err := s.CourseRepo.List(repository.CourseQuery{
		Status:     model.StatusPublished,
		CategoryID: q.CategoryID,
		Search:     q.Search,
		SortBy:     q.SortBy,
		SortDir:    q.SortDir,
		Page:       q.Page,
		Size:       q.Size,
	})
	if err != nil {
		return model.PageResponse[model.Course]{}, fmt.Errorf("list published courses: %w", err)
	}
	return model.NewPage(s.named(ctx, courses), q.Page, q.Size, total), nil
}

// GetPublished returns a published course with its content; drafts read as not found.
func (s *CoursePublicService) GetPublished(ctx context.Context, courseID string) (*model.Course, error) {
	course, err := s.CourseRepo.FindWithContent(courseID)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotPublished)
	}
	if course.Status != model.StatusPublished {
		return nil, util.ErrCourseNotPublished
	}
	normalizeContent(course)
	course.CategoryName = s.CategoryService.Names(ctx)[course.CategoryID]
	return course, nil
}

func (s *CoursePublicService) Popular(ctx context.Context, limit int) ([]model.Course, error) {
	return s.top(ctx, popularCacheKey, "students_count", limit)
}

func (s *CoursePublicService) TopRated(ctx context.Context, limit int) ([]model.Course, error) {
	return s.top(ctx, topRatedCacheKey, "rating", limit)
}

func (s *CoursePublicService) Latest(ctx context.Context, limit int) ([]model.Course, error) {
	return s.top(ctx, latestCacheKey, "created_at", limit)
}

// top caches the first catalogCacheDepth courses per ordering and slices to limit.
func (s *CoursePublicService) top(ctx context.Context, key, column string, limit int) ([]model.Course, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = util.ClampInt(limit, 1, catalogCacheDepth)

	ttl := time.Duration(s.Cfg.Cache.CatalogTTLSeconds) * time.Second
	courses, err := cached(ctx, s.Redis, key, ttl, func() ([]model.Course, error) {
		courses, err := s.CourseRepo.Top(column, catalogCacheDepth)
		if err != nil {
			return nil, err
		}
		return s.named(ctx, courses), nil
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if len(courses) > limit {
		courses = courses[:limit]
	}
	return courses, nil
}
