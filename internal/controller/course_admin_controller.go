package controller

import (
	"baobab_academy/internal/service"
	"baobab_academy/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CourseAdminController exposes course authoring to instructors (ADMIN role).
type CourseAdminController struct {
	CourseService *service.CourseService
}

func NewCourseAdminController(courseService *service.CourseService) *CourseAdminController {
	return &CourseAdminController{CourseService: courseService}
}

func instructorID(ctx *gin.Context) (string, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return "", false
	}
	return claims.UserID, true
}

// CreateCourse godoc
// @Summary Create a draft course
// @Tags Courses (admin)
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CourseCreateRequest true "Basic information"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response "Validation failed"
// @Router /api/admin/courses [post]
func (c *CourseAdminController) CreateCourse(ctx *gin.Context) {
	uid, ok := instructorID(ctx)
	if !ok {
		return
	}
	var req service.CourseCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	course, err := c.CourseService.CreateCourse(ctx.Request.Context(), req, uid)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, "Course created", course)
}

// UpdateCourse godoc
// @Summary Update course basic information
// @Tags Courses (admin)
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path string true "Course ID"
// @Param   body body service.CourseUpdateRequest true "Fields to change"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response "Not the course instructor"
// @Failure 404 {object} util.Response "Course not found"
// @Router /api/admin/courses/{courseId} [put]
func (c *CourseAdminController) UpdateCourse(ctx *gin.Context) {
	uid, ok := instructorID(ctx)
	if !ok {
		return
	}
	var req service.CourseUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	course, err := c.CourseService.UpdateCourse(ctx.Request.Context(), ctx.Param("courseId"), req, uid)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Course updated", course)
}

// UploadCoverImage godoc
// @Summary Upload the course cover image
// @Tags Courses (admin)
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path string true "Course ID"
// @Param   file formData file true "Image file"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response "Invalid image"
// @Router /api/admin/courses/{courseId}/cover-image [post]
func (c *CourseAdminController) UploadCoverImage(ctx *gin.Context) {
	uid, ok := instructorID(ctx)
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "An image file is required in field 'file'")
		return
	}

	course, err := c.CourseService.UploadCourseImage(ctx.Request.Context(), ctx.Param("courseId"), file, uid)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Cover image uploaded", course)
}

// AddChapter godoc
// @Summary Add a chapter to a course
// @Description orderIndex 0 appends after the existing chapters
// @Tags Courses (admin)
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path string true "Course ID"
// @Param   body body service.ChapterCreateRequest true "Chapter"
// @Success 201 {object} util.Response{data=model.Chapter}
// @Router /api/admin/courses/{courseId}/chapters [post]
func (c *CourseAdminController) AddChapter(ctx *gin.Context) {
	uid, ok := instructorID(ctx)
	if !ok {
		return
	}
	var req service.ChapterCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	chapter, err := c.CourseService.AddChapter(ctx.Request.Context(), ctx.Param("courseId"), req, uid)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, "Chapter added", chapter)
}

// AddLesson godoc
// @Summary Add a lesson to a chapter
// @Tags Courses (admin)
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   chapterId path string true "Chapter ID"
// @Param   body body service.LessonCreateRequest true "Lesson"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /api/admin/courses/chapters/{chapterId}/lessons [post]
func (c *CourseAdminController) AddLesson(ctx *gin.Context) {
	uid, ok := instructorID(ctx)
	if !ok {
		return
	}
	var req service.LessonCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	lesson, err := c.CourseService.AddLesson(ctx.Request.Context(), ctx.Param("chapterId"), req, uid)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, "Lesson added", lesson)
}

// UploadLessonVideo godoc
// @Summary Upload a lesson video
// @Tags Courses (admin)
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   lessonId path string true "Lesson ID"
// @Param   file formData file true "Video file"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 400 {object} util.Response "Invalid video"
// @Router /api/admin/courses/lessons/{lessonId}/video [post]
func (c *CourseAdminController) UploadLessonVideo(ctx *gin.Context) {
	uid, ok := instructorID(ctx)
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "A video file is required in field 'file'")
		return
	}

	lesson, err := c.CourseService.UploadLessonVideo(ctx.Request.Context(), ctx.Param("lessonId"), file, uid)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Video uploaded", lesson)
}

// PublishCourse godoc
// @Summary Publish a course
// @Description Requires at least one chapter and one lesson
// @Tags Courses (admin)
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path string true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response "Course has no content"
// @Router /api/admin/courses/{courseId}/publish [post]
func (c *CourseAdminController) PublishCourse(ctx *gin.Context) {
	uid, ok := instructorID(ctx)
	if !ok {
		return
	}
	course, err := c.CourseService.PublishCourse(ctx.Request.Context(), ctx.Param("courseId"), uid)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Course published", course)
}

// GetMyCourses godoc
// @Summary Courses of the signed-in instructor
// @Tags Courses (admin)
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page (0-based)"
// @Param   size query int false "Page size"
// @Param   sortBy query string false "createdAt, updatedAt, title, rating, studentsCount"
// @Param   sortDir query string false "asc or desc"
// @Success 200 {object} util.Response{data=model.PageResponse[model.Course]}
// @Router /api/admin/courses/my-courses [get]
func (c *CourseAdminController) GetMyCourses(ctx *gin.Context) {
	uid, ok := instructorID(ctx)
	if !ok {
		return
	}
	p := readPage(ctx)
	page, err := c.CourseService.GetInstructorCourses(ctx.Request.Context(), uid, p.Page, p.Size, p.SortBy, p.SortDir)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, "", page)
}

// GetCourseForEditing godoc
// @Summary Course with ordered chapters and lessons, for the editor
// @Tags Courses (admin)
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path string true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/admin/courses/{courseId}/edit [get]
func (c *CourseAdminController) GetCourseForEditing(ctx *gin.Context) {
	uid, ok := instructorID(ctx)
	if !ok {
		return
	}
	course, err := c.CourseService.GetCourseForEditing(ctx.Request.Context(), ctx.Param("courseId"), uid)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "", course)
}

// DeleteCourse godoc
// @Summary Delete a course with its content and media
// @Tags Courses (admin)
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path string true "Course ID"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{courseId} [delete]
func (c *CourseAdminController) DeleteCourse(ctx *gin.Context) {
	uid, ok := instructorID(ctx)
	if !ok {
		return
	}
	if err := c.CourseService.DeleteCourse(ctx.Request.Context(), ctx.Param("courseId"), uid); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Course deleted", nil)
}

// StreamEvents godoc
// @Summary Live authoring events over WebSocket
// @Description Pushes course events (created, published, video uploaded...) for the caller's courses
// @Tags Courses (admin)
// @Security ApiKeyAuth
// @Param   token query string false "JWT token, for clients that cannot set headers"
// @Success 101 {string} string "Switching Protocols"
// @Failure 503 {object} util.Response
// @Router /api/admin/courses/events [get]
func (c *CourseAdminController) StreamEvents(ctx *gin.Context) {
	uid, ok := instructorID(ctx)
	if !ok {
		return
	}
	if c.CourseService.Events == nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Event stream unavailable")
		return
	}
	c.CourseService.Events.Serve(ctx.Writer, ctx.Request, uid)
}
