package service

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/metrics"
	"alcyxob/team-training/internal/repository"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "team-training"

// AuthConfig carries the settings the auth service needs from config.
type AuthConfig struct {
	JWTSecret         string
	JWTExpiration     time.Duration
	AdminPassword     string
	AdminPasswordHash string
}

type AuthService interface {
	// SignUp always creates a new user, even when the name is already taken.
	SignUp(ctx context.Context, fullName string, team domain.Team) (token string, user *domain.User, err error)
	// Login resolves a name to the earliest-created user carrying it.
	Login(ctx context.Context, fullName string) (token string, user *domain.User, err error)
	Logout(ctx context.Context, session *domain.Session) error
	AdminLogin(ctx context.Context, password string) (token string, err error)
	AdminEnabled() bool
	// ParseToken validates a bearer token and returns the session it carries.
	ParseToken(ctx context.Context, token string) (*domain.Session, error)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo repository.UserRepository
	denylist SessionDenylist
	cfg      AuthConfig
	log      zerolog.Logger
}

// NewAuthService creates a new instance of authService. denylist may be nil.
func NewAuthService(userRepo repository.UserRepository, denylist SessionDenylist, cfg AuthConfig, log zerolog.Logger) AuthService {
	if cfg.JWTSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if cfg.JWTExpiration <= 0 {
		cfg.JWTExpiration = 720 * time.Hour
	}
	if denylist == nil {
		denylist = noopDenylist{}
	}
	return &authService{
		userRepo: userRepo,
		denylist: denylist,
		cfg:      cfg,
		log:      log,
	}
}

func (s *authService) SignUp(ctx context.Context, fullName string, team domain.Team) (string, *domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return "", nil, validationError("full name is required")
	}
	if !team.Valid() {
		return "", nil, validationError("unknown team")
	}

	user := &domain.User{FullName: fullName, Team: team}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		return "", nil, fmt.Errorf("sign up: %w", err)
	}

	token, err := s.generateJWT(user.ID, domain.RoleMember)
	if err != nil {
		return "", nil, err
	}

	metrics.UsersSignedUpTotal.WithLabelValues(string(team)).Inc()
	s.log.Info().Str("user_id", user.ID.Hex()).Str("team", string(team)).Msg("user signed up")
	return token, user, nil
}

func (s *authService) Login(ctx context.Context, fullName string) (string, *domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return "", nil, validationError("full name is required")
	}

	user, err := s.userRepo.FindFirstByFullName(ctx, fullName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.LoginsTotal.WithLabelValues("member", "not_found").Inc()
			return "", nil, ErrUserNotFound
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	token, err := s.generateJWT(user.ID, domain.RoleMember)
	if err != nil {
		return "", nil, err
	}

	metrics.LoginsTotal.WithLabelValues("member", "ok").Inc()
	return token, user, nil
}

// Logout is a no-op without a denylist; the client simply drops the token.
func (s *authService) Logout(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return nil
	}
	if err := s.denylist.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *authService) AdminEnabled() bool {
	return s.cfg.AdminPassword != "" || s.cfg.AdminPasswordHash != ""
}

// AdminLogin checks the shared admin password. A configured bcrypt hash takes
// precedence over the plain password.
func (s *authService) AdminLogin(ctx context.Context, password string) (string, error) {
	if !s.AdminEnabled() {
		metrics.LoginsTotal.WithLabelValues("admin", "disabled").Inc()
		return "", ErrAdminDisabled
	}

	var ok bool
	if s.cfg.AdminPasswordHash != "" {
		ok = bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) == nil
	} else {
		ok = subtle.ConstantTimeCompare([]byte(s.cfg.AdminPassword), []byte(password)) == 1
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("admin", "wrong_password").Inc()
		return "", ErrWrongAdminPassword
	}

	metrics.LoginsTotal.WithLabelValues("admin", "ok").Inc()
	return s.generateJWT(primitive.NilObjectID, domain.RoleAdmin)
}

func (s *authService) ParseToken(ctx context.Context, tokenString string) (*domain.Session, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	session := &domain.Session{Role: claims.Role, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	switch claims.Role {
	case domain.RoleAdmin:
	case domain.RoleMember:
		session.UserID, err = primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return nil, ErrInvalidToken
		}
	default:
		return nil, ErrInvalidToken
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return session, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid,omitempty"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(userID primitive.ObjectID, role domain.Role) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	if !userID.IsZero() {
		claims.UserID = userID.Hex()
		claims.Subject = userID.Hex()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.log.Error().Err(err).Msg("sign token")
		return "", ErrTokenGeneration
	}
	return signed, nil
}
