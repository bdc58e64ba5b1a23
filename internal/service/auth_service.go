package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"task_manager/internal/models"
	"task_manager/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL = 24 * time.Hour
	tokenName       = "auth_token"
	emailDomain     = "example.com"
)

// Transactor runs fn against repositories bound to one transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *repository.Repository) error) error
}

type AuthOptions struct {
	SigningKey string
	TokenTTL   time.Duration
	BcryptCost int
}

// Session is an authenticated principal together with the token it used.
type Session struct {
	User    models.User
	TokenID string
}

type RegisterInput struct {
	FullName string      `json:"fullName" validate:"required,notblank,max=255"`
	Username string      `json:"username" validate:"required,notblank,max=255"`
	Password string      `json:"password" validate:"required,notblank,min=6"`
	Role     models.Role `json:"role" validate:"required,oneof=admin user"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthService handles user auth logic
type AuthService struct {
	users  repository.UserRepo
	tokens repository.TokenRepo
	tx     Transactor

	signingKey []byte
	ttl        time.Duration
	cost       int
	now        func() time.Time
}

func NewAuthService(users repository.UserRepo, tokens repository.TokenRepo, tx Transactor, opts AuthOptions) *AuthService {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		tx:         tx,
		signingKey: []byte(opts.SigningKey),
		ttl:        ttl,
		cost:       cost,
		now:        time.Now,
	}
}

// Claims defines JWT claims. ID (jti) names the stored token row.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// Register creates the user and its first token in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if err := check(MsgMissingRequiredFields, in); err != nil {
		return nil, "", err
	}

	switch _, err := s.users.GetByUsername(ctx, in.Username); {
	case err == nil:
		return nil, "", ErrConflict
	case !errors.Is(err, repository.ErrNotFound):
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	hash, err := hashPassword(in.Password, s.cost)
	if err != nil {
		return nil, "", err
	}

	first, last := splitFullName(in.FullName)
	u := &models.User{
		Username:     in.Username,
		FirstName:    first,
		LastName:     last,
		Email:        placeholderEmail(in.Username),
		PasswordHash: hash,
		Role:         in.Role,
	}

	var token string
	err = s.tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Users.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrConflict
			}
			return err
		}
		token, err = s.issueToken(ctx, tx.Tokens, u.ID)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies credentials and issues a fresh token.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	if err := check(MsgMissingRequiredFields, in); err != nil {
		return nil, "", err
	}

	u, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if err := verifyPassword(u.PasswordHash, in.Password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, s.tokens, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout revokes exactly the given token.
func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	if err := s.tokens.Delete(ctx, tokenID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to its session. Any failure other
// than a storage error is ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*Session, error) {
	claims, err := s.parseToken(accessToken)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	row, err := s.tokens.Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	if row.UserID != claims.UserID || row.Expired(s.now()) {
		return nil, ErrUnauthenticated
	}

	u, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &Session{User: *u, TokenID: row.ID}, nil
}

// EnsureAdmin creates an admin account unless the username already exists.
// It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password, fullName string) (bool, error) {
	in := RegisterInput{FullName: fullName, Username: username, Password: password, Role: models.RoleAdmin}
	if err := check(MsgMissingRequiredFields, in); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	switch _, err := s.users.GetByUsername(ctx, username); {
	case err == nil:
		return false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return false, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := hashPassword(password, s.cost)
	if err != nil {
		return false, err
	}
	first, last := splitFullName(fullName)
	_, err = s.users.Create(ctx, &models.User{
		Username:     username,
		FirstName:    first,
		LastName:     last,
		Email:        placeholderEmail(username),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}

// issueToken stores a token row and returns the signed JWT naming it.
func (s *AuthService) issueToken(ctx context.Context, tokens repository.TokenRepo, userID int) (string, error) {
	now := s.now().UTC().Truncate(time.Second)
	row := models.AuthToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      tokenName,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        row.ID,
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(row.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(row.ExpiresAt),
		},
		UserID: userID,
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := tokens.Create(ctx, row); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parseToken(accessToken string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrUnauthenticated
	}
	if claims.Subject != strconv.Itoa(claims.UserID) {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// splitFullName splits on the first space; the remainder is the last name.
func splitFullName(fullName string) (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(fullName), " ")
	return first, last
}

func placeholderEmail(username string) string {
	return username + "@" + emailDomain
}

// helper: hash password safely
func hashPassword(password string, cost int) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", fieldError(MsgMissingRequiredFields, "password", "The password field is required.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
