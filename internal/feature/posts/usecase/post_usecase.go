// Package usecase はpostsフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"

	"blog_backend/internal/feature/posts/domain/entity"
)

// PostRepository は投稿エンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type PostRepository interface {
	// Create は新しい投稿をストレージに永続化します。
	Create(ctx context.Context, post *entity.Post) error

	// FindByID は指定されたIDの投稿を取得します。
	// 投稿が存在しない場合、ErrPostNotFoundを返します。
	FindByID(ctx context.Context, id string) (*entity.Post, error)

	// ListAll は全投稿を新しい順で取得します。
	ListAll(ctx context.Context) ([]*entity.Post, error)

	// ListByAuthor は指定ユーザーの投稿を新しい順で取得します。
	ListByAuthor(ctx context.Context, authorID string) ([]*entity.Post, error)

	// Save は既存投稿の変更を永続化します。
	Save(ctx context.Context, post *entity.Post) error

	// Delete は投稿を削除します。
	Delete(ctx context.Context, id string) error
}

// PostUsecase は投稿のCRUDと所有権チェックを実装します。
type PostUsecase struct {
	posts PostRepository
}

// NewPostUsecase はPostUsecaseの新しいインスタンスを生成します。
func NewPostUsecase(posts PostRepository) *PostUsecase {
	return &PostUsecase{posts: posts}
}

// Create は新しい投稿を作成します。
func (u *PostUsecase) Create(ctx context.Context, authorID, authorName, title, body, imagePath string) (*entity.Post, error) {
	post := &entity.Post{
		Title:      title,
		Body:       body,
		ImagePath:  imagePath,
		AuthorID:   authorID,
		AuthorName: authorName,
	}
	if err := u.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Get はIDで投稿を取得します。
func (u *PostUsecase) Get(ctx context.Context, id string) (*entity.Post, error) {
	return u.posts.FindByID(ctx, id)
}

// ListAll はホームページ用に全投稿を新しい順で取得します。
func (u *PostUsecase) ListAll(ctx context.Context) ([]*entity.Post, error) {
	return u.posts.ListAll(ctx)
}

// ListByAuthor は指定ユーザーの投稿を取得します。
func (u *PostUsecase) ListByAuthor(ctx context.Context, authorID string) ([]*entity.Post, error) {
	return u.posts.ListByAuthor(ctx, authorID)
}

// Update は所有者本人による投稿の更新を行います。
// 所有者以外が呼び出した場合、ErrNotOwnerを返し、投稿は変更されません。
// imagePath が空の場合、既存の画像を維持します。画像を差し替えた場合、
// 置き換えられた旧画像のパスを返します（呼び出し側でファイルを破棄するため）。
func (u *PostUsecase) Update(ctx context.Context, userID, postID, title, body, imagePath string) (*entity.Post, string, error) {
	post, err := u.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, "", err
	}
	if post.AuthorID != userID {
		return nil, "", ErrNotOwner
	}

	post.Title = title
	post.Body = body
	replaced := ""
	if imagePath != "" && imagePath != post.ImagePath {
		replaced = post.ImagePath
		post.ImagePath = imagePath
	}
	if err := u.posts.Save(ctx, post); err != nil {
		return nil, "", fmt.Errorf("update post: %w", err)
	}
	return post, replaced, nil
}

// Delete は所有者本人による投稿の削除を行います。
// 削除された投稿の画像パスを返します（呼び出し側でファイルを破棄するため）。
func (u *PostUsecase) Delete(ctx context.Context, userID, postID string) (string, error) {
	post, err := u.posts.FindByID(ctx, postID)
	if err != nil {
		return "", err
	}
	if post.AuthorID != userID {
		return "", ErrNotOwner
	}
	if err := u.posts.Delete(ctx, postID); err != nil {
		return "", fmt.Errorf("delete post: %w", err)
	}
	return post.ImagePath, nil
}
