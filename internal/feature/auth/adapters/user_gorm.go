package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
// MongoDBが設定されていない環境（ローカル開発、テスト）で使用されます。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrDuplicateAccountを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	u.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrDuplicateAccount
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUnknownAccountを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", email, usecase.ErrUnknownAccount)
}

// FindByID はIDでユーザーを取得します。
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id, usecase.ErrUnknownAccount)
}

// FindByResetToken はリセットトークンを保持するユーザーを取得します。
// 該当ユーザーがいない場合、usecase.ErrInvalidTokenを返します。
func (r *userGorm) FindByResetToken(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, usecase.ErrInvalidToken
	}
	return r.findOne(ctx, "reset_token = ?", token, usecase.ErrInvalidToken)
}

// Save は既存ユーザーの変更を永続化します。
// リセットトークンのクリア（空文字列への更新）も確実に書き込むため、
// 全カラムを保存します。
func (r *userGorm) Save(ctx context.Context, u *entity.User) error {
	res := r.db.WithContext(ctx).Model(u).Select("*").Omit("created_at").Updates(u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUnknownAccount
	}
	return nil
}

func (r *userGorm) findOne(ctx context.Context, query string, arg any, notFound error) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return &u, nil
}

// isDuplicateKey はユニークキー違反かどうかをドライバ横断で判定します。
// MySQLエラー1062、またはSQLiteのUNIQUE制約メッセージを検出します。
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
