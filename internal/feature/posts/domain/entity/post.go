// Package entity defines the domain entities for the posts feature.
package entity

import "time"

// Post is a user-authored article, optionally carrying an uploaded image.
type Post struct {
	// ID is the unique identifier for the post.
	ID string `gorm:"primaryKey;size:36" bson:"_id,omitempty"`

	// Title and Body are the post contents.
	Title string `gorm:"size:255;not null" bson:"title"`
	Body  string `gorm:"type:text" bson:"body"`

	// ImagePath is the bare filename of the uploaded image inside the
	// upload dir, empty when the post has none. The serving URL is the
	// static route prefix plus this name.
	ImagePath string `gorm:"size:255" bson:"image_path,omitempty"`

	// AuthorID is the owning user. Only the owner may edit or delete.
	AuthorID string `gorm:"index;size:36;not null" bson:"author_id"`

	// AuthorName is denormalized for listing pages.
	AuthorName string `gorm:"size:255" bson:"author_name"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
