package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"railway-backend/internal/domain"
	"railway-backend/internal/domain/models"
	"railway-backend/internal/utils"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	ByEmail(ctx context.Context, email string) (models.User, error)
}

// AuthService registers users and issues HS256 bearer tokens.
type AuthService struct {
	Users     UserStore
	Secret    []byte
	TTL       time.Duration
	Now       func() time.Time
	RequestID string
}

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var errInvalidCredentials = domain.UnauthorizedError{Msg: "invalid email or password"}

func (s AuthService) Register(ctx context.Context, username, email, password string) (models.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || len(username) > 50 {
		return models.User{}, "", domain.ValidationError{Field: "username", Msg: "required, at most 50 characters"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, "", domain.ValidationError{Field: "email", Msg: "invalid address", Err: err}
	}
	if len(password) < 6 {
		return models.User{}, "", domain.ValidationError{Field: "password", Msg: "at least 6 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", domain.InternalError{Msg: "hash password", Err: err}
	}
	u := models.User{Username: username, Email: email, PasswordHash: string(hash), CreatedAt: s.now()}
	if err := s.Users.Create(ctx, &u); err != nil {
		return models.User{}, "", err
	}

	token, err := s.Issue(u)
	if err != nil {
		return models.User{}, "", err
	}
	utils.LogEvent(s.RequestID, "auth", "register", fmt.Sprintf("user_id=%d", u.ID))
	return u, token, nil
}

func (s AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, "", errInvalidCredentials
		}
		return models.User{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", errInvalidCredentials
	}

	token, err := s.Issue(u)
	if err != nil {
		return models.User{}, "", err
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d", u.ID))
	return u, token, nil
}

// Issue signs a token for u.
func (s AuthService) Issue(u models.User) (string, error) {
	if len(s.Secret) == 0 {
		return "", domain.InternalError{Msg: "jwt secret not configured"}
	}
	now := s.now()
	claims := tokenClaims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl())),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", domain.InternalError{Msg: "sign token", Err: err}
	}
	return token, nil
}

// Verify parses a bearer token into the caller identity.
func (s AuthService) Verify(raw string) (domain.RequestContext, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "token expired"
		}
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: msg, Err: err}
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "invalid token subject", Err: err}
	}
	return domain.RequestContext{UserID: domain.ID(id), Username: claims.Username}, nil
}

func (s AuthService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return 24 * time.Hour
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
