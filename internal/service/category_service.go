package service

import (
	"baobab_academy/internal/config"
	"baobab_academy/internal/model"
	"baobab_academy/internal/repository"
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const categoriesCacheKey = "categories:all"

type CategoryService struct {
	CategoryRepo *repository.CategoryRepository
	Redis        *redis.Client
	Cfg          *config.Config
}

func NewCategoryService(categoryRepo *repository.CategoryRepository, rdb *redis.Client, cfg *config.Config) *CategoryService {
	return &CategoryService{
		CategoryRepo: categoryRepo,
		Redis:        rdb,
		Cfg:          cfg,
	}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	ttl := time.Duration(s.Cfg.Cache.CategoriesTTLMinutes) * time.Minute
	return cached(ctx, s.Redis, categoriesCacheKey, ttl, func() ([]model.Category, error) {
		categories, err := s.CategoryRepo.FindAll()
		if categories == nil {
			categories = []model.Category{}
		}
		return categories, err
	})
}

// Names maps category id to display name.
func (s *CategoryService) Names(ctx context.Context) map[string]string {
	categories, err := s.List(ctx)
	if err != nil {
		return nil
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}
