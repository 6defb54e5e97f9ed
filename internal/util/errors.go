package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrEmailRegistered       = errors.New("email already registered")
	ErrUserNotFound          = errors.New("user not found")
	ErrCourseNotFound        = errors.New("course not found")
	ErrChapterNotFound       = errors.New("chapter not found")
	ErrLessonNotFound        = errors.New("lesson not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrNotCourseOwner        = errors.New("access to this course is not allowed")
	ErrCourseWithoutChapters = errors.New("a course needs at least one chapter to be published")
	ErrCourseWithoutLessons  = errors.New("a course needs at least one lesson to be published")
	ErrCourseNotPublished    = errors.New("course not found or not published")
	ErrAlreadyEnrolled       = errors.New("already enrolled in this course")
	ErrNotEnrolled           = errors.New("not enrolled in this course")
	ErrInvalidImage          = errors.New("invalid image file")
	ErrInvalidVideo          = errors.New("invalid video file")
	ErrInvalidLevel          = errors.New("invalid course level")
	ErrInvalidStatus         = errors.New("invalid course status")
	ErrInvalidContentType    = errors.New("invalid lesson content type")
)

var errorStatus = []struct {
	err    error
	status int
}{
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrNotCourseOwner, http.StatusForbidden},
	{ErrUserNotFound, http.StatusNotFound},
	{ErrCourseNotFound, http.StatusNotFound},
	{ErrChapterNotFound, http.StatusNotFound},
	{ErrLessonNotFound, http.StatusNotFound},
	{ErrCourseNotPublished, http.StatusNotFound},
	{ErrCategoryNotFound, http.StatusBadRequest},
	{ErrEmailRegistered, http.StatusConflict},
	{ErrAlreadyEnrolled, http.StatusConflict},
	{ErrNotEnrolled, http.StatusBadRequest},
	{ErrCourseWithoutChapters, http.StatusBadRequest},
	{ErrCourseWithoutLessons, http.StatusBadRequest},
	{ErrInvalidImage, http.StatusBadRequest},
	{ErrInvalidVideo, http.StatusBadRequest},
	{ErrInvalidLevel, http.StatusBadRequest},
	{ErrInvalidStatus, http.StatusBadRequest},
	{ErrInvalidContentType, http.StatusBadRequest},
}

// StatusFor maps a service error to an HTTP status; unknown errors are 500.
func StatusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// HandleServiceError writes the envelope for a service-layer failure.
func HandleServiceError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		LogInternalError(c, err)
		return
	}
	Error(c, status, err.Error())
}
