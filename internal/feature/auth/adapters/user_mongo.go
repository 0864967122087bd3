// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
)

// userMongo はUserRepositoryインターフェースのMongoDB実装です。
type userMongo struct {
	col *mongo.Collection
}

// userMongoがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userMongo)(nil)

// NewUserMongo は指定されたコレクションでuserMongoの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。メールアドレスのユニークインデックスは
// platform/db側で作成されます。
func NewUserMongo(col *mongo.Collection) *userMongo {
	return &userMongo{col: col}
}

// Create はユーザーをコレクションに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrDuplicateAccountを返します。
func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	now := time.Now()
	u.ID = bson.NewObjectID().Hex()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, u); err != nil {
		// ユニークインデックス違反（重複メールアドレス）
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrDuplicateAccount
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUnknownAccountを返します。
func (r *userMongo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, usecase.ErrUnknownAccount)
}

// FindByID はIDでユーザーを取得します。
func (r *userMongo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, usecase.ErrUnknownAccount)
}

// FindByResetToken はリセットトークンを保持するユーザーを取得します。
// 該当ユーザーがいない場合、usecase.ErrInvalidTokenを返します。
func (r *userMongo) FindByResetToken(ctx context.Context, token string) (*entity.User, error) {
	// 空トークンはトークン未発行ユーザーに一致してしまうため照会しません。
	if token == "" {
		return nil, usecase.ErrInvalidToken
	}
	return r.findOne(ctx, bson.M{"reset_token": token}, usecase.ErrInvalidToken)
}

// Save は既存ユーザーの変更を永続化します。
func (r *userMongo) Save(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrUnknownAccount
	}
	return nil
}

// findOne は単一ドキュメントの取得と未検出エラーの写像を共通化します。
func (r *userMongo) findOne(ctx context.Context, filter bson.M, notFound error) (*entity.User, error) {
	var u entity.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, err
	}
	return &u, nil
}
