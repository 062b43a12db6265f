package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/daviddurazo/buho-soporte-digital/internal/config"
	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
	"github.com/daviddurazo/buho-soporte-digital/internal/repository"
	apperrors "github.com/daviddurazo/buho-soporte-digital/pkg/util"
)

type fakeResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	token.ID = fmt.Sprintf("reset-%d", len(r.tokens)+1)
	token.CreatedAt = time.Now()
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return token, nil
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	for _, token := range r.tokens {
		if token.ID == id {
			now := time.Now()
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func newAuthFixture() (*AuthService, *fakeProfileRepo, *fakeResetRepo) {
	profiles := &fakeProfileRepo{profiles: map[string]*domain.Profile{}}
	resets := &fakeResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   60,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              4,
		},
	}
	svc := NewAuthService(cfg, AuthDependencies{
		ProfileRepo:       profiles,
		PasswordResetRepo: resets,
	})
	return svc, profiles, resets
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	svc, _, _ := newAuthFixture()

	profile, token, exp, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Maria",
		LastName:  "Santos",
		Email:     "  Maria.Santos@Universidad.Example  ",
		Password:  "hunter2hunter2",
		Role:      domain.RoleProfessor,
	})
	require.NoError(t, err)
	require.Equal(t, "maria.santos@universidad.example", profile.Email)
	require.Equal(t, domain.RoleProfessor, profile.Role)
	require.NotEmpty(t, token)
	require.True(t, exp.After(time.Now()))

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, profile.ID, claims.ProfileID)
	require.Equal(t, domain.RoleProfessor, claims.Role)

	logged, _, _, err := svc.Login(context.Background(), "maria.santos@universidad.example", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, profile.ID, logged.ID)

	_, _, _, err = svc.Login(context.Background(), "maria.santos@universidad.example", "wrong")
	require.Error(t, err)
	require.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestRegisterRejectsStaffRoleSelfAssignment(t *testing.T) {
	svc, profiles, _ := newAuthFixture()

	for _, role := range []domain.UserRole{domain.RoleTechnician, domain.RoleAdmin} {
		_, _, _, err := svc.Register(context.Background(), RegisterInput{
			Email:    string(role) + "@universidad.example",
			Password: "password123",
			Role:     role,
		})
		require.Error(t, err)
		require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
	}
	require.Empty(t, profiles.profiles)
}

func TestRegisterDefaultsUnknownRoleToStudent(t *testing.T) {
	svc, _, _ := newAuthFixture()

	profile, _, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "nuevo@universidad.example",
		Password: "password123",
		Role:     domain.UserRole("dean"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleStudent, profile.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "dup@universidad.example",
		Password: "password123",
	})
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), RegisterInput{
		Email:    "DUP@universidad.example",
		Password: "password123",
	})
	require.Error(t, err)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, profiles, _ := newAuthFixture()

	profile, _, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "inactivo@universidad.example",
		Password: "password123",
	})
	require.NoError(t, err)
	profiles.profiles[profile.ID].Active = false

	_, _, _, err = svc.Login(context.Background(), "inactivo@universidad.example", "password123")
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "reset@universidad.example",
		Password: "oldpassword",
	})
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(context.Background(), "reset@universidad.example")
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)

	require.NoError(t, svc.ConfirmPasswordReset(context.Background(), token.Token, "newpassword"))

	_, _, _, err = svc.Login(context.Background(), "reset@universidad.example", "newpassword")
	require.NoError(t, err)
	_, _, _, err = svc.Login(context.Background(), "reset@universidad.example", "oldpassword")
	require.Error(t, err)

	// a used token cannot be replayed
	err = svc.ConfirmPasswordReset(context.Background(), token.Token, "anotherpassword")
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}
