package db

import (
	"fmt"
	"log"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"blog_backend/internal/config"
	authentity "blog_backend/internal/feature/auth/domain/entity"
	postentity "blog_backend/internal/feature/posts/domain/entity"
)

// OpenGorm opens the fallback relational store: MySQL when a DB host is
// configured, otherwise a local SQLite file for development.
func OpenGorm(cfg config.Config) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	if cfg.DBHost != "" {
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

		deadline := time.Now().Add(60 * time.Second)
		for {
			db, err = gorm.Open(gmysql.Open(dsn), &gorm.Config{})
			if err == nil {
				break
			}
			if time.Now().After(deadline) {
				log.Fatalf("DB connect failed after 60s: %v", err)
			}
			log.Printf("DB connect failed, retrying...: %v", err)
			time.Sleep(3 * time.Second)
		}
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open sqlite at %s: %v", cfg.SQLitePath, err)
		}
	}

	// マイグレーション（User, Post）
	if err := db.AutoMigrate(
		&authentity.User{},
		&postentity.Post{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	return db
}
