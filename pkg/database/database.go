package database

import (
	"fmt"
	"log"

	"study_planner_backend/internal/config"
	"study_planner_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	level := logger.Warn
	if mode == "debug" {
		level = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

// Migrate creates or updates every planner table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Todo{},
		&model.StudyLog{},
		&model.Subject{},
		&model.DailyComment{},
		&model.Feedback{},
		&model.FeedbackSeen{},
		&model.AssignedTaskLog{},
		&model.TaskDetail{},
		&model.Reminder{},
	)
	if err != nil {
		return err
	}
	log.Println("Database migration completed")
	return nil
}
