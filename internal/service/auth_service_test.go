package service

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
	"github.com/unireg/registrar-api/pkg/config"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

func newAuthFixture() *AuthService {
	st := store.New(models.DefaultRegistrationPolicy())
	cfg := config.JWTConfig{
		Secret:            "test_secret",
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
		Issuer:            "registrar-test",
	}
	return NewAuthService(st, cfg, validator.New(), zap.NewNop())
}

func signupStudent(t *testing.T, svc *AuthService) *models.User {
	t.Helper()
	user, err := svc.RegisterStudent(RegisterStudentRequest{
		Email:    "ada@example.com",
		Password: "changeme123",
		FullName: "Ada Lovelace",
		Level:    1,
		Major:    "Computer Science",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterStudentAndLogin(t *testing.T) {
	svc := newAuthFixture()
	user := signupStudent(t, svc)
	assert.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, user.Student)
	assert.Equal(t, "Computer Science", user.Student.Major)

	result, err := svc.Login(models.LoginRequest{Email: "ada@example.com", Password: "changeme123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, user.ID, result.User.ID)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture()
	signupStudent(t, svc)

	_, err := svc.Login(models.LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, errCode(t, err))
}

func TestDuplicateEmailRejected(t *testing.T) {
	svc := newAuthFixture()
	signupStudent(t, svc)

	_, err := svc.RegisterStudent(RegisterStudentRequest{
		Email:    "ADA@example.com",
		Password: "changeme123",
		FullName: "Another Ada",
		Level:    1,
		Major:    "Mathematics",
	})
	assert.Equal(t, appErrors.ErrConflict.Code, errCode(t, err))
}

func TestRefreshRotation(t *testing.T) {
	svc := newAuthFixture()
	signupStudent(t, svc)

	login, err := svc.Login(models.LoginRequest{Email: "ada@example.com", Password: "changeme123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = svc.Refresh(models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errCode(t, err),
		"a rotated token cannot be replayed")
}

func TestLogoutRevokesTokens(t *testing.T) {
	svc := newAuthFixture()
	user := signupStudent(t, svc)

	login, err := svc.Login(models.LoginRequest{Email: "ada@example.com", Password: "changeme123"})
	require.NoError(t, err)

	svc.Logout(user.ID)

	_, err = svc.Refresh(models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errCode(t, err))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture()
	_, err := svc.ValidateToken("not-a-token")
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errCode(t, err))
}

func TestListUsersFilterAndPagination(t *testing.T) {
	svc := newAuthFixture()
	signupStudent(t, svc)
	_, err := svc.RegisterInstructor(RegisterInstructorRequest{
		Email:      "turing@example.com",
		Password:   "changeme123",
		FullName:   "Alan Turing",
		Department: "Computer Science",
	})
	require.NoError(t, err)

	students, pagination := svc.ListUsers(ListUsersFilter{Role: models.RoleStudent, Page: 1, PageSize: 10})
	require.Len(t, students, 1)
	assert.Equal(t, 1, pagination.TotalCount)

	all, pagination := svc.ListUsers(ListUsersFilter{Page: 1, PageSize: 1})
	require.Len(t, all, 1)
	assert.Equal(t, 2, pagination.TotalCount)
}

func TestRemoveUserSelfForbidden(t *testing.T) {
	svc := newAuthFixture()
	user := signupStudent(t, svc)

	err := svc.RemoveUser(user.ID, user.ID)
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))

	err = svc.RemoveUser(user.ID+1, user.ID)
	require.NoError(t, err)

	_, err = svc.Login(models.LoginRequest{Email: "ada@example.com", Password: "changeme123"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, errCode(t, err))
}
