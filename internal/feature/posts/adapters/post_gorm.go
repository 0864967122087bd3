package adapters

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/feature/posts/usecase"
)

// postGorm はPostRepositoryインターフェースのGORM実装です。
// MongoDBが設定されていない環境（ローカル開発、テスト）で使用されます。
type postGorm struct {
	db *gorm.DB
}

// postGormがPostRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.PostRepository = (*postGorm)(nil)

// NewPostGorm は指定されたgorm.DB接続でpostGormの新しいインスタンスを生成します。
func NewPostGorm(db *gorm.DB) *postGorm {
	return &postGorm{db: db}
}

// Create は投稿をデータベースに追加します。
func (r *postGorm) Create(ctx context.Context, p *entity.Post) error {
	if p == nil {
		return errors.New("nil post")
	}
	p.ID = uuid.NewString()
	return r.db.WithContext(ctx).Create(p).Error
}

// FindByID はIDで投稿を取得します。
// 投稿が存在しない場合、usecase.ErrPostNotFoundを返します。
func (r *postGorm) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	var p entity.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPostNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListAll は全投稿を新しい順で取得します。
func (r *postGorm) ListAll(ctx context.Context) ([]*entity.Post, error) {
	var posts []*entity.Post
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&posts).Error
	return posts, err
}

// ListByAuthor は指定ユーザーの投稿を新しい順で取得します。
func (r *postGorm) ListByAuthor(ctx context.Context, authorID string) ([]*entity.Post, error) {
	var posts []*entity.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// Save は既存投稿の変更を永続化します。
func (r *postGorm) Save(ctx context.Context, p *entity.Post) error {
	res := r.db.WithContext(ctx).Model(p).Select("*").Omit("created_at").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrPostNotFound
	}
	return nil
}

// Delete は投稿を削除します。
func (r *postGorm) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrPostNotFound
	}
	return nil
}
