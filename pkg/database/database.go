package database

import (
	"fmt"
	"log"
	"speech_therapy_backend/internal/config"
	"speech_therapy_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Child{},
		&model.ActivityCategory{},
		&model.ActivityItem{},
		&model.TherapySession{},
		&model.SessionActivity{},
		&model.ChildPerformance{},
		&model.LearningPathItem{},
		&model.CaregiverFeedback{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
