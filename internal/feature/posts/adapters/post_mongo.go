// Package adapters はpostsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/feature/posts/usecase"
)

// postMongo はPostRepositoryインターフェースのMongoDB実装です。
type postMongo struct {
	col *mongo.Collection
}

// postMongoがPostRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.PostRepository = (*postMongo)(nil)

// NewPostMongo は指定されたコレクションでpostMongoの新しいインスタンスを生成します。
func NewPostMongo(col *mongo.Collection) *postMongo {
	return &postMongo{col: col}
}

// Create は投稿をコレクションに追加します。
func (r *postMongo) Create(ctx context.Context, p *entity.Post) error {
	now := time.Now()
	p.ID = bson.NewObjectID().Hex()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, p)
	return err
}

// FindByID はIDで投稿を取得します。
// 投稿が存在しない場合、usecase.ErrPostNotFoundを返します。
func (r *postMongo) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	var p entity.Post
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrPostNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListAll は全投稿を新しい順で取得します。
func (r *postMongo) ListAll(ctx context.Context) ([]*entity.Post, error) {
	return r.list(ctx, bson.M{})
}

// ListByAuthor は指定ユーザーの投稿を新しい順で取得します。
func (r *postMongo) ListByAuthor(ctx context.Context, authorID string) ([]*entity.Post, error) {
	return r.list(ctx, bson.M{"author_id": authorID})
}

// Save は既存投稿の変更を永続化します。
func (r *postMongo) Save(ctx context.Context, p *entity.Post) error {
	p.UpdatedAt = time.Now()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrPostNotFound
	}
	return nil
}

// Delete は投稿を削除します。
func (r *postMongo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrPostNotFound
	}
	return nil
}

func (r *postMongo) list(ctx context.Context, filter bson.M) ([]*entity.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []*entity.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
