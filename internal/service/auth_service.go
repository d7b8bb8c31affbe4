package service

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
	"github.com/unireg/registrar-api/pkg/config"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

// RegisterStudentRequest is the self-service signup payload.
type RegisterStudentRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Level    int    `json:"level" validate:"required,gte=1"`
	Major    string `json:"major" validate:"required"`
}

// RegisterInstructorRequest creates an instructor account (admin only).
type RegisterInstructorRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FullName   string `json:"full_name" validate:"required"`
	Department string `json:"department" validate:"required"`
}

// ListUsersFilter narrows and pages the account listing.
type ListUsersFilter struct {
	Role     models.UserRole
	Page     int
	PageSize int
}

// AuthService handles authentication, token lifecycle and account
// administration.
type AuthService struct {
	store     *store.Store
	jwtCfg    config.JWTConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(st *store.Store, jwtCfg config.JWTConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{store: st, jwtCfg: jwtCfg, validator: validate, logger: logger}
}

// Login verifies credentials and issues an access and refresh token pair.
func (s *AuthService) Login(req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	var (
		user    models.User
		authErr *appErrors.Error
	)
	s.store.View(func(st *store.State) {
		found, ok := st.UserByEmail(req.Email)
		if !ok {
			authErr = appErrors.Clone(appErrors.ErrInvalidCredentials, "")
			return
		}
		user = *found
	})
	if authErr != nil {
		return nil, authErr
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "")
	}

	accessToken, err := s.generateAccessToken(&user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign access token")
	}

	refreshValue, err := generateRefreshTokenValue()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate refresh token")
	}

	now := time.Now().UTC()
	s.store.Update(func(st *store.State) {
		st.PutRefreshToken(models.RefreshToken{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Token:     refreshValue,
			ExpiresAt: now.Add(s.jwtCfg.RefreshExpiration),
			CreatedAt: now,
		})
	})

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshValue,
		ExpiresIn:    int64(s.jwtCfg.Expiration.Seconds()),
		IssuedAt:     now,
		User: models.UserInfo{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refresh payload")
	}

	var (
		user     models.User
		newValue string
		authErr  *appErrors.Error
	)

	value, err := generateRefreshTokenValue()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate refresh token")
	}

	now := time.Now().UTC()
	s.store.Update(func(st *store.State) {
		token, ok := st.RefreshTokenByValue(req.RefreshToken)
		if !ok || token.Revoked || now.After(token.ExpiresAt) {
			authErr = appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is invalid or expired")
			return
		}
		account, ok := st.UserByID(token.UserID)
		if !ok || !account.Active {
			authErr = appErrors.Clone(appErrors.ErrUnauthorized, "account is no longer active")
			return
		}

		token.Revoked = true
		st.PutRefreshToken(models.RefreshToken{
			ID:        uuid.NewString(),
			UserID:    account.ID,
			Token:     value,
			ExpiresAt: now.Add(s.jwtCfg.RefreshExpiration),
			CreatedAt: now,
		})

		user = *account
		newValue = value
	})
	if authErr != nil {
		return nil, authErr
	}

	accessToken, err := s.generateAccessToken(&user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign access token")
	}

	return &models.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newValue,
		ExpiresIn:    int64(s.jwtCfg.Expiration.Seconds()),
		IssuedAt:     now,
	}, nil
}

// Logout revokes every refresh token held by the user.
func (s *AuthService) Logout(userID int64) {
	s.store.Update(func(st *store.State) {
		st.RevokeUserRefreshTokens(userID)
	})
	s.logger.Info("user logged out", zap.Int64("user_id", userID))
}

// RegisterStudent creates an active student account.
func (s *AuthService) RegisterStudent(req RegisterStudentRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signup payload")
	}
	return s.createUser(req.Email, req.Password, req.FullName, models.RoleStudent, func(u *models.User) {
		u.Student = &models.StudentProfile{Level: req.Level, Major: req.Major}
	})
}

// RegisterInstructor creates an active instructor account.
func (s *AuthService) RegisterInstructor(req RegisterInstructorRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	return s.createUser(req.Email, req.Password, req.FullName, models.RoleInstructor, func(u *models.User) {
		u.Instructor = &models.InstructorProfile{Department: req.Department}
	})
}

func (s *AuthService) createUser(email, password, fullName string, role models.UserRole, profile func(*models.User)) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         role,
		Active:       true,
	}
	profile(&user)

	var (
		created *models.User
		addErr  error
	)
	s.store.Update(func(st *store.State) {
		stored, err := st.AddUser(user)
		if err != nil {
			addErr = err
			return
		}
		copied := *stored
		created = &copied
	})
	if addErr != nil {
		return nil, addErr
	}

	s.logger.Info("account created", zap.Int64("user_id", created.ID), zap.String("role", string(role)))
	return created, nil
}

// ListUsers returns accounts filtered by role, paginated in creation order.
func (s *AuthService) ListUsers(filter ListUsersFilter) ([]models.User, models.Pagination) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	var matched []models.User
	s.store.View(func(st *store.State) {
		for _, user := range st.Users() {
			if filter.Role != "" && user.Role != filter.Role {
				continue
			}
			matched = append(matched, user)
		}
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}

	return matched[start:end], models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
}

// RemoveUser deletes an account and revokes its tokens. Self-removal is not
// allowed.
func (s *AuthService) RemoveUser(actorID, targetID int64) error {
	if actorID == targetID {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot remove your own account")
	}

	var remErr error
	s.store.Update(func(st *store.State) {
		if err := st.RemoveUser(targetID); err != nil {
			remErr = err
			return
		}
		st.RevokeUserRefreshTokens(targetID)
	})
	if remErr != nil {
		return remErr
	}

	s.logger.Info("account removed", zap.Int64("user_id", targetID), zap.Int64("actor_id", actorID))
	return nil
}

// ValidateToken parses and validates an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiration)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

func generateRefreshTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
