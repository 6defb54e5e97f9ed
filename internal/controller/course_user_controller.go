package controller

import (
	"baobab_academy/internal/service"
	"baobab_academy/internal/util"

	"github.com/gin-gonic/gin"
)

// CourseUserController serves learners: enrollment and lesson progress.
type CourseUserController struct {
	ProgressService *service.ProgressService
}

func NewCourseUserController(progressService *service.ProgressService) *CourseUserController {
	return &CourseUserController{ProgressService: progressService}
}

// GetCourse godoc
// @Summary Published course with the caller's progress when signed in
// @Tags Courses (learner)
// @Produce  json
// @Param   courseId path string true "Course ID"
// @Success 200 {object} util.Response{data=model.CourseProgress}
// @Router /api/courses/{courseId} [get]
func (c *CourseUserController) GetCourse(ctx *gin.Context) {
	userID := ""
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
	}
	progress, err := c.ProgressService.CourseProgress(ctx.Request.Context(), userID, ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "", progress)
}

// Enroll godoc
// @Summary Enroll in a published course
// @Tags Courses (learner)
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path string true "Course ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "Already enrolled"
// @Router /api/courses/{courseId}/enroll [post]
func (c *CourseUserController) Enroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	if err := c.ProgressService.Enroll(ctx.Request.Context(), claims.UserID, ctx.Param("courseId")); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Enrolled", nil)
}

// CompleteLesson godoc
// @Summary Mark a lesson as completed
// @Tags Courses (learner)
// @Produce  json
// @Security ApiKeyAuth
// @Param   lessonId path string true "Lesson ID"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Router /api/courses/lessons/{lessonId}/complete [post]
func (c *CourseUserController) CompleteLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	p, err := c.ProgressService.MarkLessonCompleted(ctx.Request.Context(), claims.UserID, ctx.Param("lessonId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Lesson completed", p)
}

// UpdateProgress godoc
// @Summary Record watch progress on a lesson
// @Tags Courses (learner)
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   lessonId path string true "Lesson ID"
// @Param   body body service.LessonProgressRequest true "Progress"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Router /api/courses/lessons/{lessonId}/progress [put]
func (c *CourseUserController) UpdateProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.LessonProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	p, err := c.ProgressService.UpdateLessonProgress(ctx.Request.Context(), claims.UserID, ctx.Param("lessonId"), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Progress saved", p)
}
