package auth_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	auth "app/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

// =====================
// Stub: hasher / verifier / issuer / clock
// =====================

type stubHasher struct{}

func (h *stubHasher) Hash(plain string) (string, error) {
	return "hashed:" + plain, nil
}

type stubVerifier struct{}

func (v *stubVerifier) Verify(plain string, hashed string) bool {
	return hashed == "hashed:"+plain
}

type stubIssuer struct {
	lastUserID  int64
	lastIsAdmin bool
}

func (i *stubIssuer) Issue(userID int64, isAdmin bool, now time.Time) (string, time.Time, error) {
	i.lastUserID = userID
	i.lastIsAdmin = isAdmin
	return "signed-token", now.Add(time.Hour), nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

// =====================
// Tests: RegisterAdmin
// =====================

// 登録成功：is_admin=true、平文を保存せず、tokenを返す
func TestRegisterAdmin_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	issuer := &stubIssuer{}
	clock := &fixedClock{now: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}

	userRepo.On("FindByUsername", mock.Anything, "admin").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		u.ID = 7 //DBの採番を模倣
		return u.Username == "admin" && u.IsAdmin && u.PasswordHash == "hashed:password123"
	})).Return(nil)

	uc := auth.NewRegisterAdminUsecase(userRepo, &stubHasher{}, issuer, clock)

	out, err := uc.Execute(context.Background(), auth.RegisterAdminInput{
		Username: "admin",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", out.Token)
	assert.True(t, out.User.IsAdmin)
	//返却値にハッシュは載せない
	assert.Empty(t, out.User.PasswordHash)
	assert.EqualValues(t, 7, issuer.lastUserID)
	assert.True(t, issuer.lastIsAdmin)
	userRepo.AssertExpectations(t)
}

// 既存ユーザー名は409ではなく既存エラー（handlerで400にする）
func TestRegisterAdmin_DuplicateUsername(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", mock.Anything, "admin").Return(&model.User{ID: 1, Username: "admin"}, nil)

	uc := auth.NewRegisterAdminUsecase(userRepo, &stubHasher{}, &stubIssuer{}, &fixedClock{now: time.Now()})

	_, err := uc.Execute(context.Background(), auth.RegisterAdminInput{
		Username: "admin",
		Password: "password123",
	})

	assert.ErrorIs(t, err, auth.ErrUserAlreadyExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 短いパスワードは弾く
func TestRegisterAdmin_PasswordTooShort(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := auth.NewRegisterAdminUsecase(userRepo, &stubHasher{}, &stubIssuer{}, &fixedClock{now: time.Now()})

	_, err := uc.Execute(context.Background(), auth.RegisterAdminInput{
		Username: "admin",
		Password: "short",
	})

	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

// 空入力は弾く
func TestRegisterAdmin_EmptyInput(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := auth.NewRegisterAdminUsecase(userRepo, &stubHasher{}, &stubIssuer{}, &fixedClock{now: time.Now()})

	_, err := uc.Execute(context.Background(), auth.RegisterAdminInput{Username: "  ", Password: ""})

	assert.ErrorIs(t, err, auth.ErrInvalidInput)
}

// =====================
// Tests: Login
// =====================

// ログイン成功でtokenが返る
func TestLogin_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	issuer := &stubIssuer{}

	userRepo.On("FindByUsername", mock.Anything, "admin").Return(&model.User{
		ID:           7,
		Username:     "admin",
		PasswordHash: "hashed:password123",
		IsAdmin:      true,
	}, nil)

	uc := auth.NewLoginUsecase(userRepo, &stubVerifier{}, issuer, &fixedClock{now: time.Now()})

	out, err := uc.Execute(context.Background(), auth.LoginInput{
		Username: "admin",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", out.Token)
	assert.EqualValues(t, 7, issuer.lastUserID)
	assert.True(t, issuer.lastIsAdmin)
}

// パスワード違いは資格情報エラー
func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", mock.Anything, "admin").Return(&model.User{
		ID:           7,
		PasswordHash: "hashed:password123",
	}, nil)

	uc := auth.NewLoginUsecase(userRepo, &stubVerifier{}, &stubIssuer{}, &fixedClock{now: time.Now()})

	_, err := uc.Execute(context.Background(), auth.LoginInput{
		Username: "admin",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

// 存在しないユーザーも同じエラー（ユーザー有無を漏らさない）
func TestLogin_UnknownUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, repository.ErrUserNotFound)

	uc := auth.NewLoginUsecase(userRepo, &stubVerifier{}, &stubIssuer{}, &fixedClock{now: time.Now()})

	_, err := uc.Execute(context.Background(), auth.LoginInput{
		Username: "ghost",
		Password: "password123",
	})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

// 空入力はリポジトリに触らず資格情報エラー
func TestLogin_EmptyInput(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := auth.NewLoginUsecase(userRepo, &stubVerifier{}, &stubIssuer{}, &fixedClock{now: time.Now()})

	_, err := uc.Execute(context.Background(), auth.LoginInput{Username: "", Password: ""})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	userRepo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
}

// =====================
// Tests: bcrypt hasher / verifier
// =====================

// Hashした値はVerifyで照合でき、平文とは一致しない
func TestBcryptRoundTrip(t *testing.T) {
	hasher := auth.NewBcryptPasswordHasher(4) //テストなので最小コスト
	verifier := auth.NewBcryptPasswordVerifier()

	hashed, err := hasher.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hashed)

	assert.True(t, verifier.Verify("password123", hashed))
	assert.False(t, verifier.Verify("wrong", hashed))
}
