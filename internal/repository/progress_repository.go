package repository

import (
	"baobab_academy/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) CreateBatch(tx *gorm.DB, rows []model.UserProgress) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (r *ProgressRepository) Save(p *model.UserProgress) error {
	return r.DB.Save(p).Error
}

func (r *ProgressRepository) FindByUserAndLesson(userID, lessonID string) (*model.UserProgress, error) {
	var p model.UserProgress
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&p).Error
	return &p, err
}

func (r *ProgressRepository) FindByUserAndCourse(userID, courseID string) ([]model.UserProgress, error) {
	var rows []model.UserProgress
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) ExistsForCourse(userID, courseID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.UserProgress{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *ProgressRepository) DeleteByCourse(tx *gorm.DB, courseID string) error {
	return tx.Where("course_id = ?", courseID).Delete(&model.UserProgress{}).Error
}
