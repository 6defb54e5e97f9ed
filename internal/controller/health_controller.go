package controller

import (
	"baobab_academy/internal/util"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB          *gorm.DB
	Redis       *redis.Client
	ffmpegVersion func() (string, error)
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, Redis: rdb, ffmpegVersion: util.FFmpegVersion}
}

// @Summary Health check
// @Description Database is required; redis and ffmpeg are reported but optional
// @Tags System
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	components := gin.H{"database": "up", "cache": "disabled", "media": "unavailable"}
	if c.Redis != nil {
		components["cache"] = "up"
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			components["cache"] = "down"
		}
	}
	if out, err := c.ffmpegVersion(); err == nil {
		components["media"] = firstLine(out)
	}

	util.Success(ctx, "ok", gin.H{
		"status":     "ok",
		"components": components,
	})
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
