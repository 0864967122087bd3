// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"blog_backend/internal/feature/auth/domain/entity"
)

// タイミング攻撃緩和用のダミーハッシュ。ユーザーが存在しない場合でも
// bcrypt比較が常に実行されることを保証します。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrDuplicateAccountを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUnknownAccountを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// FindByResetToken は指定されたリセットトークンを保持するユーザーを取得します。
	// 該当ユーザーがいない場合、ErrInvalidTokenを返します。
	FindByResetToken(ctx context.Context, token string) (*entity.User, error)

	// Save は既存ユーザーの変更を永続化します。
	Save(ctx context.Context, user *entity.User) error
}

// TokenIssuer はワンタイムのリセットトークン生成を抽象化します。
type TokenIssuer interface {
	// Generate は暗号学的に予測不可能な不透明トークンを生成します。
	Generate() (string, error)
}

// Mailer はメール配送を抽象化します。メッセージIDが返された場合のみ
// 配送が受理されたとみなします。
type Mailer interface {
	// Send は指定アドレスへメールを送信し、受理時にメッセージIDを返します。
	Send(ctx context.Context, to, subject, body string) (messageID string, err error)
}

// AuthUsecase は登録・ログイン・パスワード再設定のフローを、
// ストア・ハッシュ・トークン発行・メーラーに対するガード付き状態遷移として実装します。
type AuthUsecase struct {
	users  UserRepository
	tokens TokenIssuer
	mailer Mailer

	// baseURL はリセットリンクの生成に使用されます。
	baseURL string
	// resetTokenTTL を超過したトークンは検証時に不在として扱われます。
	resetTokenTTL time.Duration
}

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
// 依存はすべて明示的に注入され、プロセス全体のシングルトンは持ちません。
func NewAuthUsecase(users UserRepository, tokens TokenIssuer, mailer Mailer, baseURL string, resetTokenTTL time.Duration) *AuthUsecase {
	return &AuthUsecase{
		users:         users,
		tokens:        tokens,
		mailer:        mailer,
		baseURL:       baseURL,
		resetTokenTTL: resetTokenTTL,
	}
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録します。
// メールアドレスが既存ユーザーに属する場合、ErrDuplicateAccountを返します。
// 事前チェックに加えて、ストア側のユニーク制約違反もErrDuplicateAccountへ
// 写像されるため、同時登録の競合でも重複アカウントは作成されません。
func (u *AuthUsecase) Register(ctx context.Context, name, email, password string) error {
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return ErrDuplicateAccount
	} else if !errors.Is(err, ErrUnknownAccount) {
		return fmt.Errorf("register: lookup by email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("register: hash password: %w", err)
	}

	user := &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := u.users.Create(ctx, user); err != nil {
		return err
	}
	return nil
}

// Login はユーザーを認証し、成功時にユーザーを返します。
// 失敗は2系統を区別して報告します: 該当ユーザーなし → ErrUnknownAccount、
// パスワード不一致 → ErrBadPassword。
// タイミング攻撃を緩和するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, email)

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if err != nil {
		if errors.Is(err, ErrUnknownAccount) {
			return nil, ErrUnknownAccount
		}
		return nil, fmt.Errorf("login: lookup by email: %w", err)
	}
	if compareErr != nil {
		return nil, ErrBadPassword
	}
	return user, nil
}

// ForgotPassword は新しいリセットトークンを発行し、リセットリンクをメール送信します。
// トークンはメール送信の前に永続化され、ユーザーごとに未消化のトークンは
// 常に1つだけです（再発行は既存トークンを置き換えます）。
// 配送が受理されなかった場合はErrDeliveryFailedを返しますが、保存済みの
// トークンはロールバックされません。
func (u *AuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUnknownAccount) {
			return ErrUnknownAccount
		}
		return fmt.Errorf("forgot password: lookup by email: %w", err)
	}

	token, err := u.tokens.Generate()
	if err != nil {
		return fmt.Errorf("forgot password: generate token: %w", err)
	}

	now := time.Now()
	user.ResetToken = token
	user.ResetTokenIssuedAt = &now
	if err := u.users.Save(ctx, user); err != nil {
		return fmt.Errorf("forgot password: save token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", u.baseURL, token)
	body := fmt.Sprintf("Hi %s,\n\nClick the link below to reset your password:\n%s\n\nIf you did not request this, you can ignore this email.", user.Name, link)
	messageID, err := u.mailer.Send(ctx, user.Email, "Reset your password", body)
	if err != nil || messageID == "" {
		// トークンは有効なまま残るため、ユーザーは再送を依頼できます。
		return ErrDeliveryFailed
	}
	return nil
}

// ValidateResetToken はリセットフォームの表示可否を判定します。
// トークンを保持するユーザーがいない場合、またはトークンが有効期限を
// 超過している場合、ErrInvalidTokenを返します。
func (u *AuthUsecase) ValidateResetToken(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := u.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("validate reset token: lookup by token: %w", err)
	}
	if u.tokenExpired(user.ResetTokenIssuedAt) {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// ResetPassword はトークンを消費してパスワードを更新します。
// チェック順序は (1) パスワード確認の一致、(2) トークンの有効性。
// 両方が不正な場合、ユーザーにはErrPasswordMismatchが報告されます。
// 成功時にトークンはクリアされ、以後の検証では受理されません。
func (u *AuthUsecase) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	user, err := u.ValidateResetToken(ctx, token)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("reset password: hash password: %w", err)
	}

	user.PasswordHash = string(hashed)
	user.ResetToken = ""
	user.ResetTokenIssuedAt = nil
	if err := u.users.Save(ctx, user); err != nil {
		return fmt.Errorf("reset password: save: %w", err)
	}
	return nil
}

// tokenExpired は発行時刻がTTLを超過しているかを判定します。
// TTLが0以下の場合、期限切れ判定は無効です。
func (u *AuthUsecase) tokenExpired(issuedAt *time.Time) bool {
	if u.resetTokenTTL <= 0 {
		return false
	}
	return issuedAt == nil || time.Since(*issuedAt) > u.resetTokenTTL
}
