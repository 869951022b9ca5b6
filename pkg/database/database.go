package database

import (
	"fmt"
	"log"

	"exam_portal_backend/internal/config"
	"exam_portal_backend/internal/model"

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
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.Institution{},
		&model.Department{},
		&model.User{},
		&model.Exam{},
		&model.ExamQuestion{},
		&model.ExamSession{},
		&model.ProctorFlag{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// Seed a default institution so the first admin account has a tenant
	// to live in.
	var count int64
	db.Model(&model.Institution{}).Count(&count)
	if count == 0 {
		db.Create(&model.Institution{
			Name:   "Default Institution",
			Code:   "default",
			Active: true,
		})
	}

	return db, nil
}
