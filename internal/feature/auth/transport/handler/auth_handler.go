// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/transport/http/dto"
	"blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/platform/session"
)

// 予期しない下位層の失敗時にユーザーへ表示する汎用メッセージ。
// 実際のエラーはオペレーター向けにログへ出力されます。
const genericErrorNotice = "Something went wrong. Please try again."

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は指定された名前・メールアドレス・パスワードで新規ユーザーを登録します。
	Register(ctx context.Context, name, email, password string) error
	// Login はユーザーを認証し、成功時にユーザーを返します。
	Login(ctx context.Context, email, password string) (*entity.User, error)
	// ForgotPassword はリセットトークンを発行しメールで送付します。
	ForgotPassword(ctx context.Context, email string) error
	// ValidateResetToken はリセットフォームの表示可否を判定します。
	ValidateResetToken(ctx context.Context, token string) (*entity.User, error)
	// ResetPassword はトークンを消費してパスワードを更新します。
	ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// すべての結果はリダイレクトと一回限りのフラッシュ通知で報告され、
// 生のエラーページは返しません。
type AuthHandler struct {
	auth     AuthUsecase
	sessions *session.Manager
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewAuthHandler(auth AuthUsecase, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// ShowRegister は登録ページを表示します。
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.render(c, "register", "Register Page")
}

// ShowLogin はログインページを表示します。
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.render(c, "login", "Login Page")
}

// ShowForgotPassword はパスワード再設定の入口ページを表示します。
func (h *AuthHandler) ShowForgotPassword(c *gin.Context) {
	h.render(c, "forgot-password", "Forgot Password Page")
}

// Register はユーザー登録を処理します。
// - 重複メールアドレス時はログインページへエラー通知付きでリダイレクト
// - 成功時はログインページへ成功通知付きでリダイレクト
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		h.redirectWith(c, session.FlashError, "Please fill in all fields with a valid email", "/register")
		return
	}

	err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	switch {
	case err == nil:
		slog.Info("user registered", "email", req.Email, "remote_addr", c.ClientIP())
		h.redirectWith(c, session.FlashSuccess, "Account created. Please log in.", "/login")
	case errors.Is(err, usecase.ErrDuplicateAccount):
		// 登録フォームではなくログインページへ誘導する
		h.redirectWith(c, session.FlashError, "An account with this email already exists. Please log in.", "/login")
	default:
		slog.Error("register failed", "error", err, "email", req.Email)
		h.redirectWith(c, session.FlashError, genericErrorNotice, "/register")
	}
}

// Login はユーザーログインを処理します。
// アカウント不明とパスワード不一致は区別されたメッセージで報告します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		h.redirectWith(c, session.FlashError, "Please enter a valid email and password", "/login")
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		// セッションには不透明なユーザーIDのみを保存します。
		if serr := h.sessions.SetUser(c, user.ID); serr != nil {
			slog.Error("session issue failed", "error", serr, "user_id", user.ID)
			h.redirectWith(c, session.FlashError, genericErrorNotice, "/login")
			return
		}
		slog.Info("user login successful", "email", req.Email, "remote_addr", c.ClientIP())
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, usecase.ErrUnknownAccount):
		h.redirectWith(c, session.FlashError, "No account found with this email", "/login")
	case errors.Is(err, usecase.ErrBadPassword):
		h.redirectWith(c, session.FlashError, "Incorrect password", "/login")
	default:
		slog.Error("login failed", "error", err, "email", req.Email)
		h.redirectWith(c, session.FlashError, genericErrorNotice, "/login")
	}
}

// Logout は現在のセッションを無条件に破棄します。
// アクティブなセッションが無い場合も冪等に成功します。
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	c.Redirect(http.StatusFound, "/")
}

// ForgotPassword はリセットトークンの発行とメール送付を処理します。
// すべての結果は/forgot-passwordへ通知付きでリダイレクトします。
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("forgot-password validation failed", "error", err, "remote_addr", c.ClientIP())
		h.redirectWith(c, session.FlashError, "Please enter a valid email", "/forgot-password")
		return
	}

	err := h.auth.ForgotPassword(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		h.redirectWith(c, session.FlashSuccess, "A reset link has been sent to your email", "/forgot-password")
	case errors.Is(err, usecase.ErrUnknownAccount):
		h.redirectWith(c, session.FlashError, "No account found with this email", "/forgot-password")
	case errors.Is(err, usecase.ErrDeliveryFailed):
		h.redirectWith(c, session.FlashError, "Could not send the reset email. Please try again.", "/forgot-password")
	default:
		slog.Error("forgot-password failed", "error", err, "email", req.Email)
		h.redirectWith(c, session.FlashError, genericErrorNotice, "/forgot-password")
	}
}

// ShowResetPassword はリセットフォームの表示をトークン検証でゲートします。
// 無効なトークンは/forgot-passwordへ差し戻します。
func (h *AuthHandler) ShowResetPassword(c *gin.Context) {
	tok := c.Param("token")
	if _, err := h.auth.ValidateResetToken(c.Request.Context(), tok); err != nil {
		if !errors.Is(err, usecase.ErrInvalidToken) {
			slog.Error("reset token validation failed", "error", err)
			h.redirectWith(c, session.FlashError, genericErrorNotice, "/forgot-password")
			return
		}
		h.redirectWith(c, session.FlashError, "This reset link is invalid or has expired", "/forgot-password")
		return
	}

	c.HTML(http.StatusOK, "reset-password", gin.H{
		"title": "Reset Password Page",
		"token": tok,
		"flash": h.sessions.PopFlash(c),
	})
}

// ResetPassword はパスワードの再設定を確定します。
// パスワード不一致はトークン付きのフォームへ、無効トークンは
// /forgot-passwordへ差し戻します。
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	tok := c.Param("token")
	formURL := "/reset-password/" + tok

	var req dto.ResetPasswordReq
	if err := c.ShouldBind(&req); err != nil {
		h.redirectWith(c, session.FlashError, "Please fill in both password fields", formURL)
		return
	}

	err := h.auth.ResetPassword(c.Request.Context(), tok, req.Password, req.ConfirmPassword)
	switch {
	case err == nil:
		h.redirectWith(c, session.FlashSuccess, "Password updated. Please log in.", "/login")
	case errors.Is(err, usecase.ErrPasswordMismatch):
		// トークンをURLに保持したままフォームへ戻す
		h.redirectWith(c, session.FlashError, "Passwords do not match", formURL)
	case errors.Is(err, usecase.ErrInvalidToken):
		h.redirectWith(c, session.FlashError, "This reset link is invalid or has expired", "/forgot-password")
	default:
		slog.Error("reset-password failed", "error", err)
		h.redirectWith(c, session.FlashError, genericErrorNotice, formURL)
	}
}

// render は認証ページをフラッシュ通知付きで描画します。
func (h *AuthHandler) render(c *gin.Context, name, title string) {
	user, _ := session.CurrentUser(c)
	c.HTML(http.StatusOK, name, gin.H{
		"title": title,
		"flash": h.sessions.PopFlash(c),
		"user":  user,
	})
}

// redirectWith はフラッシュ通知を積んでリダイレクトします。
// 通知の保存失敗はリダイレクト自体を妨げません。
func (h *AuthHandler) redirectWith(c *gin.Context, category, message, location string) {
	if err := h.sessions.SetFlash(c, category, message); err != nil {
		slog.Error("set flash failed", "error", err)
	}
	c.Redirect(http.StatusFound, location)
}
