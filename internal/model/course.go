package model

type CourseLevel string

const (
	Beginner     CourseLevel = "BEGINNER"
	Intermediate CourseLevel = "INTERMEDIATE"
	Advanced     CourseLevel = "ADVANCED"
)

func (l CourseLevel) Valid() bool {
	switch l {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

type CourseStatus string

const (
	StatusDraft     CourseStatus = "DRAFT"
	StatusPublished CourseStatus = "PUBLISHED"
	StatusArchived  CourseStatus = "ARCHIVED"
)

func (s CourseStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

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

// Course is owned by its instructor; chapters and lessons cascade with it.
// swagger:model Course
type Course struct {
	UUIDBase
	Title         string       `gorm:"size:200;not null" json:"title"`
	Description   string       `gorm:"type:text" json:"description"`
	CategoryID    string       `gorm:"type:varchar(36);index" json:"categoryId"`
	CategoryName  string       `gorm:"-" json:"categoryName,omitempty"`
	InstructorID  string       `gorm:"type:varchar(36);index;not null" json:"instructorId"`
	Level         CourseLevel  `gorm:"size:20;default:'BEGINNER'" json:"level"`
	Duration      string       `gorm:"size:20" json:"duration"`
	CoverImage    string       `gorm:"size:500" json:"coverImage,omitempty"`
	CoverImageKey string       `gorm:"size:255" json:"-"`
	Status        CourseStatus `gorm:"size:20;default:'DRAFT';index" json:"status"`
	StudentsCount int          `gorm:"default:0" json:"studentsCount"`
	Rating        float64      `gorm:"default:0" json:"rating"`
	Chapters      []Chapter    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"chapters,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Chapter
type Chapter struct {
	UUIDBase
	CourseID   string   `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Title      string   `gorm:"size:200;not null" json:"title"`
	OrderIndex int      `gorm:"not null" json:"orderIndex"`
	Lessons    []Lesson `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"lessons"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// swagger:model Lesson
type Lesson struct {
	UUIDBase
	ChapterID     string      `gorm:"type:varchar(36);index;not null" json:"chapterId"`
	Title         string      `gorm:"size:200;not null" json:"title"`
	Content       string      `gorm:"type:longtext" json:"content,omitempty"`
	ContentType   ContentType `gorm:"size:20;not null" json:"contentType"`
	VideoURL      string      `gorm:"size:500" json:"videoUrl,omitempty"`
	VideoKey      string      `gorm:"size:255" json:"-"`
	VideoDuration float64     `gorm:"default:0" json:"videoDuration,omitempty"` // seconds
	ThumbnailURL  string      `gorm:"size:500" json:"thumbnailUrl,omitempty"`
	OrderIndex    int         `gorm:"not null" json:"orderIndex"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// swagger:model Category
type Category struct {
	UUIDBase
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:255" json:"description,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}
