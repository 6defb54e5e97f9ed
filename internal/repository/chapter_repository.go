package repository

import (
	"baobab_academy/internal/model"

	"gorm.io/gorm"
)

type ChapterRepository struct {
	DB *gorm.DB
}

func NewChapterRepository(db *gorm.DB) *ChapterRepository {
	return &ChapterRepository{DB: db}
}

func (r *ChapterRepository) Create(chapter *model.Chapter) error {
	return r.DB.Omit("Lessons").Create(chapter).Error
}

func (r *ChapterRepository) FindByID(id string) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.DB.Where("id = ?", id).First(&chapter).Error
	return &chapter, err
}

func (r *ChapterRepository) FindByCourse(courseID string) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := r.DB.Where("course_id = ?", courseID).Order("order_index asc").Find(&chapters).Error
	return chapters, err
}

func (r *ChapterRepository) CountByCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Chapter{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *ChapterRepository) DeleteByCourse(tx *gorm.DB, courseID string) error {
	return tx.Where("course_id = ?", courseID).Delete(&model.Chapter{}).Error
}
