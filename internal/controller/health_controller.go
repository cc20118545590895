package controller

import (
	"time"

	"speech_therapy_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Health 存活与依赖检查
// @Summary 健康检查
// @Tags health
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (ctl *HealthController) Health(c *gin.Context) {
	dbStatus := "ok"
	if sqlDB, err := ctl.db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unavailable"
	}

	util.Success(c, gin.H{
		"status":   "ok",
		"database": dbStatus,
		"time":     time.Now().Format(util.TimeFormat),
	})
}
