package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
)

const issuer = "match-bid-platform"

var (
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrInvalidUsername = errors.New("username must be 3-50 characters")
	ErrWeakPassword    = errors.New("password must be at least 6 characters")
)

// Session é o token emitido no registro/login
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      ledger.User
}

type Service struct {
	store      *repo.Store
	secret     []byte
	ttl        time.Duration
	adminNames []string // minúsculos
	log        *zap.Logger
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store *repo.Store, secret string, ttl time.Duration, adminNames []string, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:      store,
		secret:     []byte(secret),
		ttl:        ttl,
		adminNames: adminNames,
		log:        log,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) isAdminName(username string) bool {
	u := strings.ToLower(username)
	for _, a := range s.adminNames {
		if a == u {
			return true
		}
	}
	return false
}

// Register cria o usuário; o papel de admin vem da lista configurada
func (s *Service) Register(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if n := len(username); n < 3 || n > 50 {
		return Session{}, ErrInvalidUsername
	}
	if len(password) < 6 {
		return Session{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	u := ledger.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      s.isAdminName(username),
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return Session{}, err
	}

	s.log.Info("user registered", zap.String("userId", u.ID), zap.Bool("admin", u.IsAdmin))
	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ledger.ErrUserNotFound) {
		return Session{}, ledger.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !u.IsActive {
		return Session{}, ledger.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, ledger.ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *Service) issue(u ledger.User) (Session, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// Authenticate valida o token e devolve o id do usuário (claim sub)
func (s *Service) Authenticate(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// CurrentUser carrega o usuário autenticado
func (s *Service) CurrentUser(ctx context.Context, userID string) (ledger.User, error) {
	return s.store.GetUser(ctx, userID)
}

// IsAdmin lê o papel persistido; usuário inativo nunca é admin
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, ledger.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsActive && u.IsAdmin, nil
}

// SyncAdmins alinha o papel persistido com a lista configurada (startup)
func (s *Service) SyncAdmins(ctx context.Context) error {
	if err := s.store.SyncAdmins(ctx, s.adminNames); err != nil {
		return fmt.Errorf("sync admins: %w", err)
	}
	s.log.Info("admin roles synced", zap.Strings("admins", s.adminNames))
	return nil
}
