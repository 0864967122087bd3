package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"blog_backend/internal/feature/auth/domain/entity"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
// It simulates store operations during testing.
type mockUserRepository struct {
	CreateFunc           func(ctx context.Context, user *entity.User) error
	FindByEmailFunc      func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc         func(ctx context.Context, id string) (*entity.User, error)
	FindByResetTokenFunc func(ctx context.Context, token string) (*entity.User, error)
	SaveFunc             func(ctx context.Context, user *entity.User) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUnknownAccount
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUnknownAccount
}

func (m *mockUserRepository) FindByResetToken(ctx context.Context, token string) (*entity.User, error) {
	if m.FindByResetTokenFunc != nil {
		return m.FindByResetTokenFunc(ctx, token)
	}
	return nil, ErrInvalidToken
}

func (m *mockUserRepository) Save(ctx context.Context, user *entity.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

// mockTokenIssuer is a mock implementation of the TokenIssuer interface.
type mockTokenIssuer struct {
	GenerateFunc func() (string, error)
}

func (m *mockTokenIssuer) Generate() (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	return "mock-reset-token", nil
}

// mockMailer is a mock implementation of the Mailer interface.
type mockMailer struct {
	SendFunc func(ctx context.Context, to, subject, body string) (string, error)
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) (string, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}
	return "mock-message-id", nil
}

func newTestUsecase(repo UserRepository) *AuthUsecase {
	return NewAuthUsecase(repo, &mockTokenIssuer{}, &mockMailer{}, "http://localhost:8080", time.Hour)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestAuthUsecase_Register(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				// Verify that the password is hashed
				if user.PasswordHash == "" || user.PasswordHash == "password123" {
					t.Errorf("password is not hashed")
				}
				if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
					t.Errorf("invalid bcrypt hash: %v", err)
				}
				if user.Name != "Alice" || user.Email != "a@x.com" {
					t.Errorf("unexpected user fields: %+v", user)
				}
				return nil
			},
		}

		uc := newTestUsecase(mockRepo)
		if err := uc.Register(context.Background(), "Alice", "a@x.com", "password123"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		created := 0
		mockRepo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return &entity.User{ID: "u1", Email: email}, nil
			},
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				created++
				return nil
			},
		}

		uc := newTestUsecase(mockRepo)
		err := uc.Register(context.Background(), "Alice", "a@x.com", "password123")
		if !errors.Is(err, ErrDuplicateAccount) {
			t.Errorf("expected ErrDuplicateAccount, got: %v", err)
		}
		if created != 0 {
			t.Errorf("no user should be created, got %d creations", created)
		}
	})

	t.Run("store-level duplicate maps through", func(t *testing.T) {
		// The race window: the pre-check saw no user, but the unique
		// index rejected the insert.
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				return ErrDuplicateAccount
			},
		}

		uc := newTestUsecase(mockRepo)
		err := uc.Register(context.Background(), "Alice", "a@x.com", "password123")
		if !errors.Is(err, ErrDuplicateAccount) {
			t.Errorf("expected ErrDuplicateAccount, got: %v", err)
		}
	})

	t.Run("unexpected lookup failure is wrapped", func(t *testing.T) {
		storeErr := errors.New("store down")
		mockRepo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return nil, storeErr
			},
		}

		uc := newTestUsecase(mockRepo)
		err := uc.Register(context.Background(), "Alice", "a@x.com", "password123")
		if !errors.Is(err, storeErr) {
			t.Errorf("expected wrapped store error, got: %v", err)
		}
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	password := "password123"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	testUser := &entity.User{
		ID:           "u1",
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: string(hashedPassword),
	}

	findAlice := func(ctx context.Context, email string) (*entity.User, error) {
		if email == testUser.Email {
			u := *testUser
			return &u, nil
		}
		return nil, ErrUnknownAccount
	}

	t.Run("successful login", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{FindByEmailFunc: findAlice})

		user, err := uc.Login(context.Background(), "a@x.com", password)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != testUser.ID {
			t.Errorf("expected user %q, got %q", testUser.ID, user.ID)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{FindByEmailFunc: findAlice})

		_, err := uc.Login(context.Background(), "nobody@x.com", password)
		if !errors.Is(err, ErrUnknownAccount) {
			t.Errorf("expected ErrUnknownAccount, got: %v", err)
		}
	})

	t.Run("bad password", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{FindByEmailFunc: findAlice})

		_, err := uc.Login(context.Background(), "a@x.com", "wrong")
		if !errors.Is(err, ErrBadPassword) {
			t.Errorf("expected ErrBadPassword, got: %v", err)
		}
	})
}

func TestAuthUsecase_ForgotPassword(t *testing.T) {
	newAlice := func() *entity.User {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
		return &entity.User{ID: "u1", Name: "Alice", Email: "a@x.com", PasswordHash: string(hashed)}
	}

	t.Run("token issued, persisted before send, mail accepted", func(t *testing.T) {
		alice := newAlice()
		var savedToken string
		sentBeforeSave := false

		mockRepo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return alice, nil
			},
			SaveFunc: func(ctx context.Context, user *entity.User) error {
				savedToken = user.ResetToken
				if user.ResetTokenIssuedAt == nil {
					t.Error("issuance time not recorded")
				}
				return nil
			},
		}
		mailer := &mockMailer{
			SendFunc: func(ctx context.Context, to, subject, body string) (string, error) {
				if savedToken == "" {
					sentBeforeSave = true
				}
				if to != alice.Email {
					t.Errorf("mail sent to %q, want %q", to, alice.Email)
				}
				return "msg-1", nil
			},
		}

		uc := NewAuthUsecase(mockRepo, &mockTokenIssuer{}, mailer, "http://localhost:8080", time.Hour)
		if err := uc.ForgotPassword(context.Background(), "a@x.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if savedToken != "mock-reset-token" {
			t.Errorf("token not persisted, got %q", savedToken)
		}
		if sentBeforeSave {
			t.Error("mail was dispatched before the token was persisted")
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{})
		err := uc.ForgotPassword(context.Background(), "nobody@x.com")
		if !errors.Is(err, ErrUnknownAccount) {
			t.Errorf("expected ErrUnknownAccount, got: %v", err)
		}
	})

	t.Run("delivery failure keeps the stored token", func(t *testing.T) {
		alice := newAlice()
		mockRepo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return alice, nil
			},
		}
		mailer := &mockMailer{
			SendFunc: func(ctx context.Context, to, subject, body string) (string, error) {
				return "", errors.New("smtp timeout")
			},
		}

		uc := NewAuthUsecase(mockRepo, &mockTokenIssuer{}, mailer, "http://localhost:8080", time.Hour)
		err := uc.ForgotPassword(context.Background(), "a@x.com")
		if !errors.Is(err, ErrDeliveryFailed) {
			t.Errorf("expected ErrDeliveryFailed, got: %v", err)
		}
		if alice.ResetToken == "" {
			t.Error("token must remain valid after a failed send")
		}
	})

	t.Run("accepted send without a message id is a delivery failure", func(t *testing.T) {
		alice := newAlice()
		mockRepo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return alice, nil
			},
		}
		mailer := &mockMailer{
			SendFunc: func(ctx context.Context, to, subject, body string) (string, error) {
				return "", nil
			},
		}

		uc := NewAuthUsecase(mockRepo, &mockTokenIssuer{}, mailer, "http://localhost:8080", time.Hour)
		if err := uc.ForgotPassword(context.Background(), "a@x.com"); !errors.Is(err, ErrDeliveryFailed) {
			t.Errorf("expected ErrDeliveryFailed, got: %v", err)
		}
	})
}

func TestAuthUsecase_ValidateResetToken(t *testing.T) {
	holder := &entity.User{
		ID:                 "u1",
		Email:              "a@x.com",
		PasswordHash:       "hash",
		ResetToken:         "tok-1",
		ResetTokenIssuedAt: timePtr(time.Now()),
	}
	findByToken := func(ctx context.Context, token string) (*entity.User, error) {
		if token == holder.ResetToken {
			u := *holder
			return &u, nil
		}
		return nil, ErrInvalidToken
	}

	t.Run("valid token returns the holder", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{FindByResetTokenFunc: findByToken})
		user, err := uc.ValidateResetToken(context.Background(), "tok-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != holder.ID {
			t.Errorf("expected user %q, got %q", holder.ID, user.ID)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{FindByResetTokenFunc: findByToken})
		if _, err := uc.ValidateResetToken(context.Background(), "tok-other"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got: %v", err)
		}
	})

	t.Run("empty token", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{})
		if _, err := uc.ValidateResetToken(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got: %v", err)
		}
	})

	t.Run("expired token validates as absent", func(t *testing.T) {
		stale := *holder
		stale.ResetTokenIssuedAt = timePtr(time.Now().Add(-2 * time.Hour))
		repo := &mockUserRepository{
			FindByResetTokenFunc: func(ctx context.Context, token string) (*entity.User, error) {
				u := stale
				return &u, nil
			},
		}
		uc := NewAuthUsecase(repo, &mockTokenIssuer{}, &mockMailer{}, "http://localhost:8080", time.Hour)
		if _, err := uc.ValidateResetToken(context.Background(), stale.ResetToken); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken for expired token, got: %v", err)
		}
	})
}

func TestAuthUsecase_ResetPassword(t *testing.T) {
	newHolder := func() *entity.User {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
		return &entity.User{
			ID:                 "u1",
			Email:              "a@x.com",
			PasswordHash:       string(hashed),
			ResetToken:         "tok-1",
			ResetTokenIssuedAt: timePtr(time.Now()),
		}
	}

	t.Run("successful reset clears the token and changes the hash", func(t *testing.T) {
		holder := newHolder()
		oldHash := holder.PasswordHash
		var saved *entity.User

		repo := &mockUserRepository{
			FindByResetTokenFunc: func(ctx context.Context, token string) (*entity.User, error) {
				if token == holder.ResetToken {
					return holder, nil
				}
				return nil, ErrInvalidToken
			},
			SaveFunc: func(ctx context.Context, user *entity.User) error {
				saved = user
				return nil
			},
		}

		uc := newTestUsecase(repo)
		if err := uc.ResetPassword(context.Background(), "tok-1", "pw2", "pw2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved == nil {
			t.Fatal("user was not saved")
		}
		if saved.ResetToken != "" || saved.ResetTokenIssuedAt != nil {
			t.Errorf("token not cleared: %q issued %v", saved.ResetToken, saved.ResetTokenIssuedAt)
		}
		if saved.PasswordHash == oldHash {
			t.Error("password hash unchanged")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("pw2")); err != nil {
			t.Errorf("new hash does not verify: %v", err)
		}
	})

	t.Run("mismatch is reported before token validity and mutates nothing", func(t *testing.T) {
		lookedUp := false
		savedCount := 0
		repo := &mockUserRepository{
			FindByResetTokenFunc: func(ctx context.Context, token string) (*entity.User, error) {
				lookedUp = true
				return nil, ErrInvalidToken
			},
			SaveFunc: func(ctx context.Context, user *entity.User) error {
				savedCount++
				return nil
			},
		}

		uc := newTestUsecase(repo)
		// Both conditions hold: mismatched passwords and a bogus token.
		// The user must see the mismatch.
		err := uc.ResetPassword(context.Background(), "bogus", "a", "b")
		if !errors.Is(err, ErrPasswordMismatch) {
			t.Errorf("expected ErrPasswordMismatch, got: %v", err)
		}
		if lookedUp {
			t.Error("token must not be looked up when passwords mismatch")
		}
		if savedCount != 0 {
			t.Error("no mutation may happen on mismatch")
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{})
		if err := uc.ResetPassword(context.Background(), "bogus", "pw2", "pw2"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got: %v", err)
		}
	})
}

// fakeUserStore is an in-memory UserRepository used to drive the full
// recovery scenario end to end.
type fakeUserStore struct {
	users map[string]*entity.User // keyed by ID
	next  int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*entity.User{}}
}

func (s *fakeUserStore) Create(ctx context.Context, user *entity.User) error {
	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicateAccount
		}
	}
	s.next++
	user.ID = fmt.Sprintf("u%d", s.next)
	user.CreatedAt = time.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUnknownAccount
}

func (s *fakeUserStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrUnknownAccount
}

func (s *fakeUserStore) FindByResetToken(ctx context.Context, token string) (*entity.User, error) {
	for _, u := range s.users {
		if u.ResetToken != "" && u.ResetToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrInvalidToken
}

func (s *fakeUserStore) Save(ctx context.Context, user *entity.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return ErrUnknownAccount
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// TestAuthUsecase_RecoveryScenario walks the full register → login →
// forgot → reset → login sequence against an in-memory store.
func TestAuthUsecase_RecoveryScenario(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()

	var issuedToken string
	issuer := &mockTokenIssuer{
		GenerateFunc: func() (string, error) {
			issuedToken = "scenario-token"
			return issuedToken, nil
		},
	}
	uc := NewAuthUsecase(store, issuer, &mockMailer{}, "http://localhost:8080", time.Hour)

	if err := uc.Register(ctx, "Alice", "a@x.com", "pw1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := uc.Register(ctx, "Alice again", "a@x.com", "pw9"); !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("second register: expected ErrDuplicateAccount, got %v", err)
	}
	if _, err := uc.Login(ctx, "a@x.com", "pw1"); err != nil {
		t.Fatalf("login with pw1: %v", err)
	}
	if _, err := uc.Login(ctx, "a@x.com", "wrong"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("login with wrong password: expected ErrBadPassword, got %v", err)
	}

	if err := uc.ForgotPassword(ctx, "a@x.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if user, err := uc.ValidateResetToken(ctx, issuedToken); err != nil {
		t.Fatalf("validate issued token: %v", err)
	} else if user.Email != "a@x.com" {
		t.Fatalf("token resolves to %q, want a@x.com", user.Email)
	}

	if err := uc.ResetPassword(ctx, issuedToken, "pw2", "pw2"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if _, err := uc.ValidateResetToken(ctx, issuedToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("consumed token must not validate, got %v", err)
	}
	if _, err := uc.Login(ctx, "a@x.com", "pw1"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("old password must fail, got %v", err)
	}
	if _, err := uc.Login(ctx, "a@x.com", "pw2"); err != nil {
		t.Fatalf("login with pw2: %v", err)
	}
}
