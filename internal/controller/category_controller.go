package controller

import (
	"baobab_academy/internal/service"
	"baobab_academy/internal/util"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	CategoryService *service.CategoryService
}

func NewCategoryController(categoryService *service.CategoryService) *CategoryController {
	return &CategoryController{CategoryService: categoryService}
}

// GetCategories godoc
// @Summary List course categories
// @Tags Categories
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Category}
// @Router /api/categories [get]
func (c *CategoryController) GetCategories(ctx *gin.Context) {
	categories, err := c.CategoryService.List(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, "", categories)
}
