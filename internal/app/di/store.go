// Package di provides dependency injection factories for creating application components.
package di

import (
	authadapters "blog_backend/internal/feature/auth/adapters"
	authusecase "blog_backend/internal/feature/auth/usecase"
	postadapters "blog_backend/internal/feature/posts/adapters"
	postusecase "blog_backend/internal/feature/posts/usecase"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

// NewUserRepository creates a UserRepository implementation.
// If MongoDB is available, it returns a Mongo-backed implementation.
// Otherwise, it falls back to the GORM store.
func NewUserRepository(mdb *mongo.Database, db *gorm.DB) authusecase.UserRepository {
	if mdb != nil {
		return authadapters.NewUserMongo(mdb.Collection("users"))
	}
	return authadapters.NewUserGorm(db)
}

// NewPostRepository creates a PostRepository implementation with the same
// MongoDB-else-GORM fallback as NewUserRepository.
func NewPostRepository(mdb *mongo.Database, db *gorm.DB) postusecase.PostRepository {
	if mdb != nil {
		return postadapters.NewPostMongo(mdb.Collection("posts"))
	}
	return postadapters.NewPostGorm(db)
}
