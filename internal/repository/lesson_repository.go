package repository

import (
	"baobab_academy/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) Update(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *LessonRepository) FindByID(id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Where("id = ?", id).First(&lesson).Error
	return &lesson, err
}

func (r *LessonRepository) CountByChapter(chapterID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).Where("chapter_id = ?", chapterID).Count(&count).Error
	return count, err
}

// FindByCourse returns every lesson of a course across its chapters.
func (r *LessonRepository) FindByCourse(courseID string) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.
		Joins("JOIN chapters ON chapters.id = lessons.chapter_id").
		Where("chapters.course_id = ?", courseID).
		Order("chapters.order_index asc, lessons.order_index asc").
		Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) CountByCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).
		Joins("JOIN chapters ON chapters.id = lessons.chapter_id").
		Where("chapters.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *LessonRepository) DeleteByChapters(tx *gorm.DB, chapterIDs []string) error {
	if len(chapterIDs) == 0 {
		return nil
	}
	return tx.Where("chapter_id IN ?", chapterIDs).Delete(&model.Lesson{}).Error
}
