package controller

import (
	"baobab_academy/internal/service"
	"baobab_academy/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

type CoursePublicController struct {
	PublicService *service.CoursePublicService
}

func NewCoursePublicController(publicService *service.CoursePublicService) *CoursePublicController {
	return &CoursePublicController{PublicService: publicService}
}

// ListCourses godoc
// @Summary Published courses
// @Tags Courses (public)
// @Produce  json
// @Param   page query int false "Page (0-based)"
// @Param   size query int false "Page size"
// @Param   sortBy query string false "Sort field"
// @Param   sortDir query string false "asc or desc"
// @Param   categoryId query string false "Category filter"
// @Param   search query string false "Title search"
// @Success 200 {object} util.Response{data=model.PageResponse[model.Course]}
// @Router /api/courses/public [get]
func (c *CoursePublicController) ListCourses(ctx *gin.Context) {
	p := readPage(ctx)
	page, err := c.PublicService.ListPublished(ctx.Request.Context(), service.CatalogQuery{
		Page:       p.Page,
		Size:       p.Size,
		SortBy:     p.SortBy,
		SortDir:    p.SortDir,
		CategoryID: ctx.Query("categoryId"),
		Search:     strings.TrimSpace(ctx.Query("search")),
	})
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, "", page)
}

// GetCourse godoc
// @Summary Published course with its content
// @Tags Courses (public)
// @Produce  json
// @Param   courseId path string true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response "Not found or not published"
// @Router /api/courses/public/{courseId} [get]
func (c *CoursePublicController) GetCourse(ctx *gin.Context) {
	course, err := c.PublicService.GetPublished(ctx.Request.Context(), ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "", course)
}

// Popular godoc
// @Summary Most followed courses
// @Tags Courses (public)
// @Produce  json
// @Param   limit query int false "Number of courses (default 6)"
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses/public/popular [get]
func (c *CoursePublicController) Popular(ctx *gin.Context) {
	courses, err := c.PublicService.Popular(ctx.Request.Context(), util.QueryInt(ctx, "limit", service.DefaultListLimit))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, "", courses)
}

// TopRated godoc
// @Summary Best rated courses
// @Tags Courses (public)
// @Produce  json
// @Param   limit query int false "Number of courses (default 6)"
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses/public/top-rated [get]
func (c *CoursePublicController) TopRated(ctx *gin.Context) {
	courses, err := c.PublicService.TopRated(ctx.Request.Context(), util.QueryInt(ctx, "limit", service.DefaultListLimit))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, "", courses)
}

// Latest godoc
// @Summary Newest courses
// @Tags Courses (public)
// @Produce  json
// @Param   limit query int false "Number of courses (default 6)"
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses/public/latest [get]
func (c *CoursePublicController) Latest(ctx *gin.Context) {
	courses, err := c.PublicService.Latest(ctx.Request.Context(), util.QueryInt(ctx, "limit", service.DefaultListLimit))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, "", courses)
}
