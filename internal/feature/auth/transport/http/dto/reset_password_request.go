package dto

// ResetPasswordReq は/reset-password/:tokenエンドポイントのフォーム入力を表します。
// パスワード確認の一致はトークン検証より先にユースケース側で判定されます。
type ResetPasswordReq struct {
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required"`
}
