package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vibe-social-backend/internal/models"
	"vibe-social-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the lightweight caller identity carried by a session
// token. Subject is the user's UUID when the token was minted after a
// store round trip, or the wallet address as a fallback.
type Identity struct {
	Subject       string `json:"id"`
	WalletAddress string `json:"wallet_address"`
}

// SessionService handles session tokens and caller materialization
type SessionService struct {
	users     UserStore
	jwtSecret string
	ttl       time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(users UserStore, jwtSecret string, ttl time.Duration) *SessionService {
	return &SessionService{
		users:     users,
		jwtSecret: jwtSecret,
		ttl:       ttl,
	}
}

// TTL returns the session lifetime
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// CreateToken mints a signed session token for a wallet address.
// subject should be the user's UUID when known, else the wallet
// address itself.
func (s *SessionService) CreateToken(subject, walletAddress string) (string, error) {
	claims := jwt.MapClaims{
		"sub":            subject,
		"wallet_address": walletAddress,
		"exp":            time.Now().Add(s.ttl).Unix(),
		"iat":            time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken checks a token's signature and expiry and returns the
// identity it carries. No database access.
func (s *SessionService) VerifyToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthenticated)
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: sub not found in token", ErrUnauthenticated)
	}
	wallet, ok := claims["wallet_address"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: wallet_address not found in token", ErrUnauthenticated)
	}

	return &Identity{Subject: sub, WalletAddress: wallet}, nil
}

// GetOrCreateUser returns the user for a wallet address, creating it
// on first contact. Safe under concurrent first contacts: the insert
// loser hits the unique wallet index and re-reads the winner's row.
func (s *SessionService) GetOrCreateUser(ctx context.Context, walletAddress string) (*models.User, error) {
	user, err := s.users.GetByWallet(ctx, walletAddress)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	user = &models.User{
		ID:            uuid.New().String(),
		WalletAddress: walletAddress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.users.GetByWallet(ctx, walletAddress)
		}
		return nil, err
	}
	return user, nil
}

// MaterializeCaller turns a token identity into a database user. A
// UUID subject is re-verified against the store (the row may have
// been deleted); a wallet-address subject goes through get-or-create.
func (s *SessionService) MaterializeCaller(ctx context.Context, ident *Identity) (*models.User, error) {
	if uuid.Validate(ident.Subject) == nil {
		user, err := s.users.GetByID(ctx, ident.Subject)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: user no longer exists", ErrStoreUnavailable)
			}
			return nil, err
		}
		return user, nil
	}
	return s.GetOrCreateUser(ctx, ident.WalletAddress)
}

// RequireCaller verifies a token and materializes the caller. Returns
// ErrUnauthenticated for a missing or invalid token and
// ErrStoreUnavailable when the token is fine but no user could be
// materialized.
func (s *SessionService) RequireCaller(ctx context.Context, tokenString string) (*models.User, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: no session token", ErrUnauthenticated)
	}
	ident, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.MaterializeCaller(ctx, ident)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return user, nil
}

// ResolveUserID maps a caller-supplied identifier, either a UUID or a
// wallet address, to a canonical user ID. A UUID-shaped identifier is
// trusted on shape alone; existence is checked at the point of use.
func (s *SessionService) ResolveUserID(ctx context.Context, idOrWallet string) (string, error) {
	if uuid.Validate(idOrWallet) == nil {
		return idOrWallet, nil
	}
	user, err := s.users.GetByWallet(ctx, idOrWallet)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// GetUser retrieves a user by canonical ID
func (s *SessionService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile updates the caller's display name, bio and avatar
func (s *SessionService) UpdateProfile(ctx context.Context, caller *models.User, displayName, bio, avatarURL *string) (*models.User, error) {
	if displayName != nil && len(*displayName) > 50 {
		return nil, fmt.Errorf("%w: display name too long", ErrInvalid)
	}
	if bio != nil && len(*bio) > 160 {
		return nil, fmt.Errorf("%w: bio too long", ErrInvalid)
	}

	caller.DisplayName = displayName
	caller.Bio = bio
	caller.AvatarURL = avatarURL
	caller.UpdatedAt = time.Now()

	if err := s.users.UpdateProfile(ctx, caller); err != nil {
		return nil, err
	}
	return caller, nil
}
