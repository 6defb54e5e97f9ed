package repository

import (
	"baobab_academy/internal/model"
	"strings"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// CourseQuery filters and pages course listings.
type CourseQuery struct {
	Status       model.CourseStatus
	InstructorID string
	CategoryID   string
	Search       string
	SortBy       string
	SortDir      string
	Page         int
	Size         int
}

var sortableColumns = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"title":         "title",
	"rating":        "rating",
	"studentsCount": "students_count",
}

func (q CourseQuery) order() string {
	col, ok := sortableColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}
	if strings.EqualFold(q.SortDir, "asc") {
		return col + " asc"
	}
	return col + " desc"
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Omit("Chapters").Save(course).Error
}

func (r *CourseRepository) FindByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("id = ?", id).First(&course).Error
	return &course, err
}

// FindWithContent loads the course with chapters and lessons in order.
func (r *CourseRepository) FindWithContent(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index asc")
		}).
		Preload("Chapters.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index asc")
		}).
		Where("id = ?", id).
		First(&course).Error
	return &course, err
}

func (r *CourseRepository) List(q CourseQuery) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.InstructorID != "" {
		query = query.Where("instructor_id = ?", q.InstructorID)
	}
	if q.CategoryID != "" {
		query = query.Where("category_id = ?", q.CategoryID)
	}
	if q.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := q.Page * q.Size
	err := query.Order(q.order()).Offset(offset).Limit(q.Size).Find(&courses).Error
	return courses, total, err
}

// Top returns published courses ordered by column desc.
func (r *CourseRepository) Top(column string, limit int) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("status = ?", model.StatusPublished).
		Order(column + " desc").
		Limit(limit).
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) IncrementStudents(tx *gorm.DB, id string) error {
	return tx.Model(&model.Course{}).
		Where("id = ?", id).
		Update("students_count", gorm.Expr("students_count + 1")).
		Error
}

func (r *CourseRepository) Delete(tx *gorm.DB, id string) error {
	return tx.Where("id = ?", id).Delete(&model.Course{}).Error
}
