package dto

// ForgotPasswordReq は/forgot-passwordエンドポイントのフォーム入力を表します。
type ForgotPasswordReq struct {
	Email string `form:"email" binding:"required,email"`
}
