package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/it-dept/dept-cms-api/internal/models"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
)

type mockUserRepo struct {
	userByEmail *models.User
	created     *models.User
	createErr   error
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = 1
	m.created = user
	return nil
}

func newAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: time.Hour,
		Issuer:      "dept-cms",
	})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockUserRepo{userByEmail: &models.User{ID: 1, Email: "admin@example.com", PasswordHash: string(hash), FullName: "Admin", Active: true}}
	svc := newAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "admin@example.com", res.User.Email)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "dept-cms", claims.Issuer)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockUserRepo{userByEmail: &models.User{ID: 1, Email: "admin@example.com", PasswordHash: string(hash), Active: true}}
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(&mockUserRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockUserRepo{userByEmail: &models.User{ID: 1, Email: "admin@example.com", PasswordHash: string(hash), Active: false}}
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	svc := newAuthService(&mockUserRepo{})

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceEnsureAdminSeeds(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "password", "Admin"))
	require.NotNil(t, repo.created)
	assert.True(t, repo.created.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("password")))
}

func TestAuthServiceEnsureAdminSkipsExisting(t *testing.T) {
	repo := &mockUserRepo{userByEmail: &models.User{ID: 1, Email: "admin@example.com"}}
	svc := newAuthService(repo)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "password", "Admin"))
	assert.Nil(t, repo.created)
}

func TestAuthServiceEnsureAdminTreatsConflictAsSeeded(t *testing.T) {
	repo := &mockUserRepo{createErr: sql.ErrNoRows}
	svc := newAuthService(repo)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "password", "Admin"))
}

func TestAuthServiceEnsureAdminNoConfig(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "", "", ""))
	assert.Nil(t, repo.created)
}
