package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"groundtruth/internal/crypto"
	"groundtruth/internal/models"
	"groundtruth/internal/nlc"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrMissingUser        = errors.New("session claims carry no user")
)

// SessionUser is the deserialized identity attached to a request. The
// password comes back decrypted so downstream calls can re-authenticate
// against the classifier service.
type SessionUser struct {
	Username string
	Tenants  []string
	Password string
}

// AuthService validates credentials against the classifier service and
// serializes sessions as signed tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, *models.Profile, error)
	Verify(ctx context.Context, username, password string) (*SessionUser, error)
	Deserialize(tokenString string) (*SessionUser, error)
	Logout(username string)
}

type authService struct {
	classifier *nlc.Client
	tenant     string
	jwtSecret  []byte
	sessionKey []byte
	tokenTTL   time.Duration
	logger     *zap.Logger
}

// NewAuthService creates an auth service bound to one tenant. The session
// secret feeds both the token signature and the password transform key.
func NewAuthService(classifier *nlc.Client, tenant, secret string, tokenTTL time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		classifier: classifier,
		tenant:     tenant,
		jwtSecret:  []byte(secret),
		sessionKey: crypto.DeriveKey(secret),
		tokenTTL:   tokenTTL,
		logger:     logger,
	}
}

// Login forwards the credentials to the classifier service; a 200 there is
// the only thing that makes them valid. On success it returns a signed
// session token whose claims hold the password encrypted at rest.
func (s *authService) Login(ctx context.Context, username, password string) (string, time.Time, *models.Profile, error) {
	user, err := s.Verify(ctx, username, password)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	encrypted, err := crypto.Encrypt(password, s.sessionKey)
	if err != nil {
		s.logger.Error("Failed to encrypt session password", zap.Error(err))
		return "", time.Time{}, nil, fmt.Errorf("failed to serialize session: %w", err)
	}

	expirationTime := time.Now().Add(s.tokenTTL)
	claims := &models.Claims{
		Username:          user.Username,
		Tenants:           user.Tenants,
		EncryptedPassword: encrypted,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("Failed to sign session token", zap.Error(err))
		return "", time.Time{}, nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("User logged in successfully.", zap.String("username", user.Username))
	profile := &models.Profile{Username: user.Username, Tenants: user.Tenants}
	return tokenString, expirationTime, profile, nil
}

// Verify checks a username/password pair against the classifier service
// without issuing a token. The Basic auth strategy goes through here.
func (s *authService) Verify(ctx context.Context, username, password string) (*SessionUser, error) {
	valid, err := s.classifier.CheckCredentials(ctx, username, password)
	if err != nil {
		s.logger.Error("Credential check against classifier service failed", zap.Error(err))
		return nil, fmt.Errorf("credential check failed: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}
	return &SessionUser{
		Username: username,
		Tenants:  []string{s.tenant},
		Password: password,
	}, nil
}

// Deserialize parses and verifies a session token and decrypts the password
// held in its claims. A token without a user is a hard error, returned, not
// panicked.
func (s *authService) Deserialize(tokenString string) (*SessionUser, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Username == "" {
		return nil, ErrMissingUser
	}

	password := ""
	if claims.EncryptedPassword != "" {
		password, err = crypto.Decrypt(claims.EncryptedPassword, s.sessionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize session: %w", err)
		}
	}

	return &SessionUser{
		Username: claims.Username,
		Tenants:  claims.Tenants,
		Password: password,
	}, nil
}

// Logout is stateless: tokens are discarded by the client. Logged so session
// ends show up next to the logins.
func (s *authService) Logout(username string) {
	s.logger.Info("User logged out successfully.", zap.String("username", username))
}
