package router

import (
	authhandler "blog_backend/internal/feature/auth/transport/handler"
	posthandler "blog_backend/internal/feature/posts/transport/handler"
	"blog_backend/internal/platform/http/handler"
	"blog_backend/internal/platform/session"

	"github.com/gin-gonic/gin"
)

func NewRouter(auth *authhandler.AuthHandler, posts *posthandler.PostHandler,
	sessions *session.Manager, users session.UserLoader,
	templateGlob, uploadDir string) *gin.Engine {
	r := gin.Default()

	r.LoadHTMLGlob(templateGlob)
	// アップロード画像の配信
	r.Static("/uploads", uploadDir)

	// 導通確認用
	r.GET("/healthz", handler.Health)

	// 全ルートでセッションからログインユーザーを解決する
	r.Use(sessions.LoadUser(users))

	// 認証不要
	r.GET("/", posts.Home)
	r.GET("/posts/:id", posts.Show)

	r.GET("/register", auth.ShowRegister)
	r.POST("/register", auth.Register)
	r.GET("/login", auth.ShowLogin)
	r.POST("/login", auth.Login)
	r.GET("/logout", auth.Logout)
	r.GET("/forgot-password", auth.ShowForgotPassword)
	r.POST("/forgot-password", auth.ForgotPassword)
	r.GET("/reset-password/:token", auth.ShowResetPassword)
	r.POST("/reset-password/:token", auth.ResetPassword)

	// 認証必須のルート
	authRequired := r.Group("/")
	authRequired.Use(sessions.RequireAuth())
	{
		authRequired.GET("/my-posts", posts.MyPosts)
		authRequired.GET("/posts/new", posts.ShowNew)
		authRequired.POST("/posts/new", posts.Create)
		authRequired.GET("/posts/:id/edit", posts.ShowEdit)
		authRequired.POST("/posts/:id/edit", posts.Update)
		authRequired.POST("/posts/:id/delete", posts.Delete)
	}

	return r
}
