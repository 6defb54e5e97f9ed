package controller

import (
	"baobab_academy/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type pageParams struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

// readPage reads page (0-based), size, sortBy and sortDir from the query string.
func readPage(ctx *gin.Context) pageParams {
	return pageParams{
		Page:    util.QueryInt(ctx, "page", 0),
		Size:    util.ClampInt(util.QueryInt(ctx, "size", defaultPageSize), 1, maxPageSize),
		SortBy:  ctx.DefaultQuery("sortBy", "createdAt"),
		SortDir: ctx.DefaultQuery("sortDir", "desc"),
	}
}
