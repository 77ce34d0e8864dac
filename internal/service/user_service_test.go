package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) userService() UserService {
	return NewUserService(
		repository.NewUserRepository(e.db),
		repository.NewCompanyRepository(e.db),
		repository.NewTransactionManager(e.db),
	)
}

func TestRegisterBootstrapsCompanyAndAdmin(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := env.userService()

	user, err := svc.Register(ctx, RegisterRequest{
		CompanyName: "Studio Intérieur",
		Username:    "marc",
		Email:       "marc@studio-interieur.fr",
		Password:    "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)

	var company model.Company
	require.NoError(t, env.db.First(&company, "id = ?", user.CompanyID).Error)
	assert.Equal(t, "Studio Intérieur", company.Name)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := env.userService()

	req := RegisterRequest{
		CompanyName: "Studio A",
		Username:    "anna",
		Email:       "anna@studio.fr",
		Password:    "secret123",
	}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	req.CompanyName = "Studio B"
	req.Username = "anna2"
	_, err = svc.Register(ctx, req)
	require.Error(t, err)
}

func TestLoginAndRefreshRotation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := env.userService()

	_, err := svc.Register(ctx, RegisterRequest{
		CompanyName: "Studio C",
		Username:    "lea",
		Email:       "lea@studio.fr",
		Password:    "secret123",
	})
	require.NoError(t, err)

	pair, err := svc.Login(ctx, LoginUserRequest{Email: "lea@studio.fr", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Token)
	assert.NotEmpty(t, pair.RefreshToken)

	// Rotation hands out a new pair and consumes the old refresh token
	next, err := svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	require.Error(t, err)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := env.userService()

	_, err := svc.Register(ctx, RegisterRequest{
		CompanyName: "Studio D",
		Username:    "paul",
		Email:       "paul@studio.fr",
		Password:    "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginUserRequest{Email: "paul@studio.fr", Password: "wrong"})
	require.Error(t, err)
}

func TestListUsersIsCompanyScoped(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := env.userService()

	a, err := svc.Register(ctx, RegisterRequest{
		CompanyName: "Studio E", Username: "ella", Email: "ella@studio.fr", Password: "secret123",
	})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{
		CompanyName: "Studio F", Username: "felix", Email: "felix@studio.fr", Password: "secret123",
	})
	require.NoError(t, err)

	users, total, err := svc.ListUsers(ctx, a.CompanyID.String(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "ella", users[0].Username)
}
