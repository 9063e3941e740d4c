package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/pearls-backend/internal/data/repos"
	types "github.com/yungbote/pearls-backend/internal/domain"
	"github.com/yungbote/pearls-backend/internal/pkg/ctxutil"
	"github.com/yungbote/pearls-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/pearls-backend/internal/pkg/errors"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

type AuthService interface {
	// SignIn records an identity asserted by the upstream provider and issues a
	// session token for it.
	SignIn(ctx context.Context, identity Identity) (*types.User, string, error)
	IssueToken(user *types.User) (string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	Me(ctx context.Context) (*types.User, error)
	GrantAdmin(ctx context.Context, openID string) (bool, error)
	GetAccessTTL() time.Duration
}

// Identity is what the external sign-in provider tells us about a caller.
type Identity struct {
	OpenID      string
	Name        string
	Email       string
	LoginMethod string
}

type JWTClaims struct {
	OpenID string `json:"oid,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
	ownerOpenID  string
	now          func() time.Time
}

func NewAuthService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	ownerOpenID string,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	if accessTTL <= 0 {
		accessTTL = 30 * 24 * time.Hour
	}
	return &authService{
		log:          serviceLog,
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		ownerOpenID:  strings.TrimSpace(ownerOpenID),
		now:          time.Now,
	}
}

func (as *authService) SignIn(ctx context.Context, identity Identity) (*types.User, string, error) {
	openID := strings.TrimSpace(identity.OpenID)
	if openID == "" {
		return nil, "", fmt.Errorf("sign in: open id required: %w", pkgerrors.ErrInvalidArgument)
	}
	role := types.RoleUser
	if as.ownerOpenID != "" && openID == as.ownerOpenID {
		role = types.RoleAdmin
	}
	saved, err := as.userRepo.Upsert(dbctx.Context{Ctx: ctx}, &types.User{
		OpenID:       openID,
		Name:         strings.TrimSpace(identity.Name),
		Email:        strings.TrimSpace(identity.Email),
		LoginMethod:  strings.TrimSpace(identity.LoginMethod),
		Role:         role,
		LastSignedIn: as.now().UTC(),
	})
	if err != nil {
		as.log.Warn("Upsert user failed", "error", err)
		return nil, "", fmt.Errorf("sign in: %w: %w", pkgerrors.ErrUnavailable, err)
	}
	tok, err := as.IssueToken(saved)
	if err != nil {
		return nil, "", err
	}
	return saved, tok, nil
}

func (as *authService) IssueToken(user *types.User) (string, error) {
	if user == nil || user.ID == 0 {
		return "", fmt.Errorf("issue token: user required: %w", pkgerrors.ErrInvalidArgument)
	}
	if as.jwtSecretKey == "" {
		return "", fmt.Errorf("issue token: JWT secret not configured")
	}
	now := as.now()
	claims := JWTClaims{
		OpenID: user.OpenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken attaches the caller's principal. The role always comes
// from the users table so a demotion takes effect before the token expires.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w: %w", pkgerrors.ErrUnauthorized, err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token: %w", pkgerrors.ErrUnauthorized)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return ctx, fmt.Errorf("invalid user id in token: %w", pkgerrors.ErrUnauthorized)
	}
	user, err := as.userRepo.GetByID(dbctx.Context{Ctx: ctx}, uint(id))
	if err != nil {
		return ctx, fmt.Errorf("load user: %w: %w", pkgerrors.ErrUnavailable, err)
	}
	if user == nil {
		return ctx, fmt.Errorf("unknown user: %w", pkgerrors.ErrUnauthorized)
	}
	return ctxutil.WithPrincipal(ctx, &ctxutil.Principal{
		UserID: user.ID,
		OpenID: user.OpenID,
		Name:   user.Name,
		Role:   user.Role,
	}), nil
}

// Me returns nil for anonymous callers.
func (as *authService) Me(ctx context.Context) (*types.User, error) {
	p := ctxutil.GetPrincipal(ctx)
	if p == nil {
		return nil, nil
	}
	user, err := as.userRepo.GetByID(dbctx.Context{Ctx: ctx}, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w: %w", pkgerrors.ErrUnavailable, err)
	}
	return user, nil
}

func (as *authService) GrantAdmin(ctx context.Context, openID string) (bool, error) {
	openID = strings.TrimSpace(openID)
	if openID == "" {
		return false, fmt.Errorf("grant admin: open id required: %w", pkgerrors.ErrInvalidArgument)
	}
	ok, err := as.userRepo.SetRole(dbctx.Context{Ctx: ctx}, openID, types.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("grant admin: %w: %w", pkgerrors.ErrUnavailable, err)
	}
	if ok {
		as.log.Info("Granted admin", "open_id", openID)
	}
	return ok, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
