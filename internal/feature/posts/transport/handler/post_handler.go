// Package handler はpostsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/feature/posts/transport/http/dto"
	"blog_backend/internal/feature/posts/usecase"
	"blog_backend/internal/platform/session"
	"blog_backend/internal/platform/storage"
)

const genericErrorNotice = "Something went wrong. Please try again."

// PostUsecase は投稿操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type PostUsecase interface {
	Create(ctx context.Context, authorID, authorName, title, body, imagePath string) (*entity.Post, error)
	Get(ctx context.Context, id string) (*entity.Post, error)
	ListAll(ctx context.Context) ([]*entity.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*entity.Post, error)
	Update(ctx context.Context, userID, postID, title, body, imagePath string) (*entity.Post, string, error)
	Delete(ctx context.Context, userID, postID string) (string, error)
}

// PostHandler は投稿のCRUDリクエストを処理します。
type PostHandler struct {
	posts    PostUsecase
	sessions *session.Manager
	images   *storage.LocalStore
}

// NewPostHandler はPostHandlerの新しいインスタンスを生成します。
func NewPostHandler(posts PostUsecase, sessions *session.Manager, images *storage.LocalStore) *PostHandler {
	return &PostHandler{posts: posts, sessions: sessions, images: images}
}

// Home はホームページに全投稿を新しい順で表示します。
func (h *PostHandler) Home(c *gin.Context) {
	posts, err := h.posts.ListAll(c.Request.Context())
	if err != nil {
		slog.Error("list posts failed", "error", err)
		posts = nil
	}
	user, _ := session.CurrentUser(c)
	c.HTML(http.StatusOK, "home", gin.H{
		"title": "Home Page",
		"posts": posts,
		"user":  user,
		"flash": h.sessions.PopFlash(c),
	})
}

// MyPosts はログインユーザー自身の投稿を新しい順で表示します。
func (h *PostHandler) MyPosts(c *gin.Context) {
	user, ok := session.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	posts, err := h.posts.ListByAuthor(c.Request.Context(), user.ID)
	if err != nil {
		slog.Error("list my posts failed", "error", err, "user_id", user.ID)
		posts = nil
	}
	c.HTML(http.StatusOK, "my-posts", gin.H{
		"title": "My Posts",
		"posts": posts,
		"user":  user,
		"flash": h.sessions.PopFlash(c),
	})
}

// ShowNew は新規投稿フォームを表示します。
func (h *PostHandler) ShowNew(c *gin.Context) {
	user, _ := session.CurrentUser(c)
	c.HTML(http.StatusOK, "post-new", gin.H{
		"title": "New Post",
		"user":  user,
		"flash": h.sessions.PopFlash(c),
	})
}

// Show は単一の投稿を表示します。
func (h *PostHandler) Show(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrPostNotFound) {
			h.redirectWith(c, session.FlashError, "Post not found", "/")
			return
		}
		slog.Error("get post failed", "error", err)
		h.redirectWith(c, session.FlashError, genericErrorNotice, "/")
		return
	}
	user, _ := session.CurrentUser(c)
	c.HTML(http.StatusOK, "post-show", gin.H{
		"title": post.Title,
		"post":  post,
		"user":  user,
		"flash": h.sessions.PopFlash(c),
	})
}

// Create は新規投稿を作成します。画像はオプションです。
func (h *PostHandler) Create(c *gin.Context) {
	user, ok := session.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var form dto.PostForm
	if err := c.ShouldBind(&form); err != nil {
		h.redirectWith(c, session.FlashError, "Title and body are required", "/posts/new")
		return
	}

	imagePath, err := h.saveImageIfAny(c)
	if err != nil {
		h.redirectWith(c, session.FlashError, "Please upload a valid image file", "/posts/new")
		return
	}

	post, err := h.posts.Create(c.Request.Context(), user.ID, user.Name, form.Title, form.Body, imagePath)
	if err != nil {
		h.discardImage(imagePath)
		slog.Error("create post failed", "error", err, "user_id", user.ID)
		h.redirectWith(c, session.FlashError, genericErrorNotice, "/posts/new")
		return
	}
	h.redirectWith(c, session.FlashSuccess, "Post published", "/posts/"+post.ID)
}

// ShowEdit は編集フォームを表示します。所有者以外はホームへ差し戻します。
func (h *PostHandler) ShowEdit(c *gin.Context) {
	user, _ := session.CurrentUser(c)
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.redirectWith(c, session.FlashError, "Post not found", "/")
		return
	}
	if user == nil || post.AuthorID != user.ID {
		h.redirectWith(c, session.FlashError, "You can only edit your own posts", "/")
		return
	}
	c.HTML(http.StatusOK, "post-edit", gin.H{
		"title": "Edit Post",
		"post":  post,
		"user":  user,
		"flash": h.sessions.PopFlash(c),
	})
}

// Update は投稿を更新します。
func (h *PostHandler) Update(c *gin.Context) {
	user, ok := session.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	postID := c.Param("id")
	formURL := "/posts/" + postID + "/edit"

	var form dto.PostForm
	if err := c.ShouldBind(&form); err != nil {
		h.redirectWith(c, session.FlashError, "Title and body are required", formURL)
		return
	}

	imagePath, err := h.saveImageIfAny(c)
	if err != nil {
		h.redirectWith(c, session.FlashError, "Please upload a valid image file", formURL)
		return
	}

	_, replaced, err := h.posts.Update(c.Request.Context(), user.ID, postID, form.Title, form.Body, imagePath)
	switch {
	case err == nil:
		// 差し替えられた旧画像を破棄する
		h.discardImage(replaced)
		h.redirectWith(c, session.FlashSuccess, "Post updated", "/posts/"+postID)
	case errors.Is(err, usecase.ErrNotOwner):
		h.discardImage(imagePath)
		h.redirectWith(c, session.FlashError, "You can only edit your own posts", "/")
	case errors.Is(err, usecase.ErrPostNotFound):
		h.discardImage(imagePath)
		h.redirectWith(c, session.FlashError, "Post not found", "/")
	default:
		h.discardImage(imagePath)
		slog.Error("update post failed", "error", err, "post_id", postID)
		h.redirectWith(c, session.FlashError, genericErrorNotice, formURL)
	}
}

// discardImage は投稿に紐付かなくなった画像をベストエフォートで破棄します。
func (h *PostHandler) discardImage(imagePath string) {
	if imagePath == "" {
		return
	}
	if err := h.images.Remove(imagePath); err != nil {
		slog.Warn("remove post image failed", "error", err, "path", imagePath)
	}
}

// Delete は投稿を削除し、添付画像もベストエフォートで破棄します。
func (h *PostHandler) Delete(c *gin.Context) {
	user, ok := session.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	postID := c.Param("id")

	imagePath, err := h.posts.Delete(c.Request.Context(), user.ID, postID)
	switch {
	case err == nil:
		h.discardImage(imagePath)
		h.redirectWith(c, session.FlashSuccess, "Post deleted", "/")
	case errors.Is(err, usecase.ErrNotOwner):
		h.redirectWith(c, session.FlashError, "You can only delete your own posts", "/")
	case errors.Is(err, usecase.ErrPostNotFound):
		h.redirectWith(c, session.FlashError, "Post not found", "/")
	default:
		slog.Error("delete post failed", "error", err, "post_id", postID)
		h.redirectWith(c, session.FlashError, genericErrorNotice, "/")
	}
}

// saveImageIfAny はオプションの画像フィールドを保存します。
// フィールドが無い場合は空パスを返します。
func (h *PostHandler) saveImageIfAny(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		// マルチパートでないフォームも画像なしとして扱います。
		if errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	return h.saveImage(c, file)
}

func (h *PostHandler) saveImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	path, err := h.images.SaveImage(c, file)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return "", err
		}
		slog.Error("save image failed", "error", err)
		return "", err
	}
	return path, nil
}

func (h *PostHandler) redirectWith(c *gin.Context, category, message, location string) {
	if err := h.sessions.SetFlash(c, category, message); err != nil {
		slog.Error("set flash failed", "error", err)
	}
	c.Redirect(http.StatusFound, location)
}
