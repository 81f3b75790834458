package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Lucaamst/farmy/internal/auth"
	"github.com/Lucaamst/farmy/internal/platform/httpx"
	_ "github.com/Lucaamst/farmy/testing"
)

type stubRepo struct {
	users     map[string]*auth.User
	companies map[string]*auth.Company
	created   []auth.User
	hasSuper  bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:     map[string]*auth.User{},
		companies: map[string]*auth.Company{},
	}
}

func (s *stubRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *stubRepo) GetCompany(ctx context.Context, id string) (*auth.Company, error) {
	company, ok := s.companies[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return company, nil
}

func (s *stubRepo) HasSuperAdmin(ctx context.Context) (bool, error) {
	return s.hasSuper, nil
}

func (s *stubRepo) CreateUser(ctx context.Context, user auth.User) error {
	s.created = append(s.created, user)
	s.users[user.Username] = &user
	return nil
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return string(h)
}

func newService(repo auth.Repository) *auth.Service {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	return auth.NewService(repo, tokens, slog.Default())
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubRepo()
	companyID := "c1"
	repo.companies[companyID] = &auth.Company{ID: companyID, Name: "Acme", IsActive: true}
	repo.users["admin"] = &auth.User{
		ID: "u1", Username: "admin", PasswordHash: hash(t, "secret1"),
		Role: auth.RoleCompanyAdmin, CompanyID: &companyID, IsActive: true,
	}

	result, err := newService(repo).Login(context.Background(), "admin", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "bearer", result.TokenType)
	require.NotNil(t, result.Company)
	assert.Equal(t, "Acme", result.Company.Name)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newStubRepo()
	repo.users["admin"] = &auth.User{
		ID: "u1", Username: "admin", PasswordHash: hash(t, "secret1"),
		Role: auth.RoleSuperAdmin, IsActive: true,
	}
	svc := newService(repo)

	_, badUser := svc.Login(context.Background(), "nobody", "secret1")
	_, badPass := svc.Login(context.Background(), "admin", "wrong")
	require.Error(t, badUser)
	require.Error(t, badPass)
	assert.True(t, errors.Is(badUser, httpx.ErrUnauthorized))
	assert.True(t, errors.Is(badPass, httpx.ErrUnauthorized))
}

func TestLoginDisabledAccount(t *testing.T) {
	repo := newStubRepo()
	repo.users["admin"] = &auth.User{
		ID: "u1", Username: "admin", PasswordHash: hash(t, "secret1"),
		Role: auth.RoleSuperAdmin, IsActive: false,
	}

	_, err := newService(repo).Login(context.Background(), "admin", "secret1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestResolveBearerRereadsUserState(t *testing.T) {
	repo := newStubRepo()
	repo.users["courier1"] = &auth.User{
		ID: "u2", Username: "courier1", PasswordHash: hash(t, "secret1"),
		Role: auth.RoleCourier, IsActive: true,
	}
	svc := newService(repo)

	result, err := svc.Login(context.Background(), "courier1", "secret1")
	require.NoError(t, err)

	user, err := svc.ResolveBearer(context.Background(), result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "courier1", user.Username)

	// Deactivation kills the token immediately even though it has not
	// expired.
	repo.users["courier1"].IsActive = false
	_, err = svc.ResolveBearer(context.Background(), result.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))

	delete(repo.users, "courier1")
	_, err = svc.ResolveBearer(context.Background(), result.AccessToken)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestResolveBearerRejectsGarbage(t *testing.T) {
	svc := newService(newStubRepo())
	_, err := svc.ResolveBearer(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestEnsureSuperAdminIdempotent(t *testing.T) {
	repo := newStubRepo()
	svc := newService(repo)

	require.NoError(t, svc.EnsureSuperAdmin(context.Background(), "superadmin", "admin123"))
	require.Len(t, repo.created, 1)
	assert.Equal(t, auth.RoleSuperAdmin, repo.created[0].Role)

	repo.hasSuper = true
	require.NoError(t, svc.EnsureSuperAdmin(context.Background(), "superadmin", "admin123"))
	assert.Len(t, repo.created, 1)
}
