package database

import (
	"baobab_academy/internal/config"
	"baobab_academy/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var defaultCategories = []model.Category{
	{Name: "Développement Web", Description: "Frontend, backend et outils du web"},
	{Name: "Design", Description: "UI, UX et design graphique"},
	{Name: "Marketing", Description: "Marketing digital et communication"},
	{Name: "Management", Description: "Gestion d'équipe et de projet"},
	{Name: "Technologie", Description: "Cloud, données et nouvelles technologies"},
	{Name: "Business", Description: "Entrepreneuriat et stratégie"},
}

func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)
}

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !migrate {
		return db, nil
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	return db, nil
}

// Migrate creates the schema and seeds reference categories once.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Course{},
		&model.Chapter{},
		&model.Lesson{},
		&model.UserProgress{},
	)
	if err != nil {
		return err
	}

	var count int64
	db.Model(&model.Category{}).Count(&count)
	if count == 0 {
		for _, c := range defaultCategories {
			category := c
			if err := db.Create(&category).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
