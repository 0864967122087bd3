package main

import (
	"log"
	"time"

	"blog_backend/internal/app/di"
	"blog_backend/internal/app/router"
	"blog_backend/internal/config"
	authhandler "blog_backend/internal/feature/auth/transport/handler"
	authusecase "blog_backend/internal/feature/auth/usecase"
	posthandler "blog_backend/internal/feature/posts/transport/handler"
	postusecase "blog_backend/internal/feature/posts/usecase"
	"blog_backend/internal/platform/cache"
	infradb "blog_backend/internal/platform/db"
	"blog_backend/internal/platform/mail"
	infraredis "blog_backend/internal/platform/redis"
	"blog_backend/internal/platform/session"
	"blog_backend/internal/platform/storage"
	"blog_backend/internal/platform/token"
	"blog_backend/internal/shared/ratelimiter"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

func main() {
	cfg := config.FromEnv()

	// 資格情報・投稿ストア（Mongoがあれば優先、無ければGORM）
	var (
		mdb *mongo.Database
		db  *gorm.DB
	)
	if cfg.MongoURI != "" {
		tmp, err := infradb.OpenMongo(cfg)
		if err != nil {
			log.Fatal("MongoDB connect failed: ", err)
		}
		mdb = tmp
	} else {
		db = infradb.OpenGorm(cfg)
	}

	// Redis（セッションストアなので必須）
	rdb, err := infraredis.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Redis is required for sessions: ", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Println("[ERROR] Failed to close Redis client:", err)
		}
	}()

	// Repository
	userRepo := di.NewUserRepository(mdb, db)
	postRepo := di.NewPostRepository(mdb, db)

	// Redisキャッシュでラップ
	cachedPostRepo := cache.NewCachingPostRepository(rdb, 5*time.Minute, postRepo, "posts")

	// セッション管理
	sessions := session.NewManager(rdb, "session", cfg.SessionCookie, cfg.SessionTTL)

	// メール送信（レート制限付き）
	limiter := ratelimiter.NewRateLimiter(10, time.Minute)
	mailer := mail.NewResendMailer(cfg.ResendAPIKey, cfg.MailSender, cfg.MailTimeout, limiter)

	// 画像アップロード先
	images, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("upload dir unavailable: ", err)
	}

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, token.NewIssuer(), mailer, cfg.BaseURL, cfg.ResetTokenTTL)
	postUC := postusecase.NewPostUsecase(cachedPostRepo)

	// Handler
	authH := authhandler.NewAuthHandler(authUC, sessions)
	postH := posthandler.NewPostHandler(postUC, sessions, images)

	// ルータ生成
	r := router.NewRouter(authH, postH, sessions, userRepo, "web/templates/*.html", cfg.UploadDir)

	if cfg.ResendAPIKey == "" {
		log.Println("[WARN] RESEND_API_KEY is not set. Password-reset mail will fail to send.")
	}

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
