package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/book-lending/internal/model"
	"github.com/iliyamo/book-lending/internal/repository"
	"github.com/iliyamo/book-lending/internal/utils"
)

// Session is returned by Register and Login.
type Session struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// ProfileUpdate carries a self-service account change.  Empty fields are
// left unchanged.
type ProfileUpdate struct {
	Username string
	Email    string
	Password string
}

// UserUpdate carries an administrative account change.  Empty fields are
// left unchanged.
type UserUpdate struct {
	Username string
	Email    string
	Role     string
}

// AuthService owns accounts and session tokens.
type AuthService struct {
	Users       UserStore
	Revocations RevocationStore
	Secret      string
	TTL         time.Duration
	BcryptCost  int
}

func NewAuthService(users UserStore, revocations RevocationStore, secret string, ttl time.Duration, cost int) *AuthService {
	return &AuthService{Users: users, Revocations: revocations, Secret: secret, TTL: ttl, BcryptCost: cost}
}

// Register creates a user account with the default role and opens a session.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (Session, error) {
	u, err := s.createAccount(ctx, username, email, password, model.RoleUser)
	if err != nil {
		return Session{}, err
	}
	return s.session(u)
}

// CreateAdmin bootstraps an administrator account from the command line.
func (s *AuthService) CreateAdmin(ctx context.Context, username, email, password string) (model.PublicUser, error) {
	u, err := s.createAccount(ctx, username, email, password, model.RoleAdmin)
	if err != nil {
		return model.PublicUser{}, err
	}
	return u.Public(), nil
}

func (s *AuthService) createAccount(ctx context.Context, username, email, password, role string) (model.User, error) {
	username = strings.TrimSpace(username)
	email = repository.NormalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return model.User{}, newError(KindValidation, MsgRegisterFields)
	}
	taken, err := s.Users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, newError(KindConflict, MsgCredentialsTaken)
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{Username: username, Email: email, PasswordHash: hash, Role: role}
	if err := s.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, newError(KindConflict, MsgCredentialsTaken)
		}
		return model.User{}, err
	}
	return u, nil
}

// Login checks the credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Session{}, newError(KindValidation, MsgLoginFields)
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, newError(KindNotFound, MsgUserNotFound)
		}
		return Session{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, newError(KindUnauthorized, MsgInvalidCredentials)
	}
	return s.session(u)
}

func (s *AuthService) session(u model.User) (Session, error) {
	tok, err := utils.NewAccessToken(s.Secret, u.ID, u.Role, s.TTL)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: tok.Token, User: u.Public()}, nil
}

// Logout revokes token until it would have expired.  Logging out an already
// revoked token succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return newError(KindValidation, MsgTokenRequired)
	}
	claims, err := utils.ParseAccessToken(s.Secret, token)
	if err != nil {
		return wrapError(KindInvalidToken, MsgInvalidToken, err)
	}
	uid, _ := claims.UserID()
	return s.Revocations.Revoke(ctx, claims.ID, uid, claims.ExpiresAt.Time)
}

// Authenticate resolves a bearer token to the caller.  The role is read from
// the account, so promotions and deletions take effect immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Identity, error) {
	claims, err := utils.ParseAccessToken(s.Secret, token)
	if err != nil {
		return model.Identity{}, wrapError(KindInvalidToken, MsgInvalidToken, err)
	}
	revoked, err := s.Revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return model.Identity{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return model.Identity{}, newError(KindInvalidToken, MsgInvalidToken)
	}
	uid, _ := claims.UserID()
	u, err := s.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Identity{}, newError(KindInvalidToken, MsgInvalidToken)
		}
		return model.Identity{}, err
	}
	return model.Identity{UserID: u.ID, Role: u.Role, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uint64) (model.Profile, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	return model.Profile{Username: u.Username, Email: u.Email}, nil
}

// UpdateProfile changes the caller's own username, email or password.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, in ProfileUpdate) (model.PublicUser, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}
	// hash first so a rejected password leaves the account untouched
	var hash string
	if in.Password != "" {
		if hash, err = s.hashPassword(in.Password); err != nil {
			return model.PublicUser{}, err
		}
	}
	if err := s.applyIdentityChange(ctx, &u, in.Username, in.Email); err != nil {
		return model.PublicUser{}, err
	}
	if err := s.save(ctx, &u); err != nil {
		return model.PublicUser{}, err
	}
	if hash != "" {
		if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
			return model.PublicUser{}, err
		}
	}
	return u.Public(), nil
}

// UpdateUser lets an administrator change another account, including its
// role.
func (s *AuthService) UpdateUser(ctx context.Context, caller model.Identity, userID uint64, in UserUpdate) (model.PublicUser, error) {
	if err := requireRole(caller, model.RoleAdmin); err != nil {
		return model.PublicUser{}, err
	}
	if in.Role != "" && !model.ValidRole(in.Role) {
		return model.PublicUser{}, newError(KindValidation, MsgInvalidRole)
	}
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}
	if err := s.applyIdentityChange(ctx, &u, in.Username, in.Email); err != nil {
		return model.PublicUser{}, err
	}
	if in.Role != "" {
		u.Role = in.Role
	}
	if err := s.save(ctx, &u); err != nil {
		return model.PublicUser{}, err
	}
	return u.Public(), nil
}

// applyIdentityChange sets a new username or email on u after checking that
// no other account holds it.
func (s *AuthService) applyIdentityChange(ctx context.Context, u *model.User, username, email string) error {
	if username = strings.TrimSpace(username); username != "" && username != u.Username {
		taken, err := s.Users.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return newError(KindConflict, MsgUsernameTaken)
		}
		u.Username = username
	}
	if email = repository.NormalizeEmail(email); email != "" && email != u.Email {
		taken, err := s.Users.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return newError(KindConflict, MsgEmailTaken)
		}
		u.Email = email
	}
	return nil
}

// hashPassword rejects passwords bcrypt cannot take before hashing.
func (s *AuthService) hashPassword(password string) (string, error) {
	if len(password) > utils.MaxPasswordBytes {
		return "", newError(KindValidation, MsgPasswordTooLong)
	}
	hash, err := utils.HashPassword(password, s.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", wrapError(KindValidation, MsgPasswordTooLong, err)
	}
	return hash, err
}

func (s *AuthService) save(ctx context.Context, u *model.User) error {
	if err := s.Users.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return newError(KindConflict, MsgCredentialsTaken)
		case errors.Is(err, repository.ErrNotFound):
			return newError(KindNotFound, MsgUserNotFound)
		}
		return err
	}
	return nil
}

func (s *AuthService) getUser(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, newError(KindNotFound, MsgUserNotFound)
		}
		return model.User{}, err
	}
	return u, nil
}

func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.Users.ExistsByEmail(ctx, email)
}

func (s *AuthService) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.Users.ExistsByUsername(ctx, strings.TrimSpace(username))
}

// PruneRevocations drops revocation entries whose tokens have expired.
func (s *AuthService) PruneRevocations(ctx context.Context) (int64, error) {
	return s.Revocations.DeleteExpired(ctx, time.Now().UTC())
}

// requireRole fails with Forbidden unless the caller holds role.
func requireRole(caller model.Identity, role string) error {
	if caller.Role != role {
		return newError(KindForbidden, MsgAdminRequired)
	}
	return nil
}
