// Package dto はpostsフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// PostForm は投稿の作成・編集フォームの入力を表します。
// 画像はマルチパートフィールド "image" として別途処理されます。
type PostForm struct {
	Title string `form:"title" binding:"required"`
	Body  string `form:"body" binding:"required"`
}
