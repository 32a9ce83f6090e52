// Package service contains the application services behind the auth API:
// session management, password resets, and the gateway tying them together.
package service

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/scamshield/authcore/internal/audit"
	pkgcrypto "github.com/scamshield/authcore/internal/crypto"
	"github.com/scamshield/authcore/internal/errs"
	"github.com/scamshield/authcore/internal/limiter"
	"github.com/scamshield/authcore/internal/model"
	"github.com/scamshield/authcore/internal/repository"
)

// AuthResult is a successful authentication: a bearer token and its user.
type AuthResult struct {
	Token string
	User  model.User
}

// ResetRequestResult is the outcome of a reset request. DemoCode carries the
// issued code only when out-of-band delivery is disabled; production callers
// always see it empty.
type ResetRequestResult struct {
	DemoCode string
}

// AuthGateway is the public authentication surface. Implementations collapse
// internal failure detail into the generic sentinels in errs, so callers
// cannot probe which accounts exist.
type AuthGateway interface {
	// SignUp registers a new account, or claims a pre-existing passwordless
	// one, and signs the caller in.
	SignUp(ctx context.Context, email, name, password string) (*AuthResult, error)
	// SignIn authenticates an email and password.
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	// SignOut revokes the session. Unknown tokens are a silent no-op.
	SignOut(ctx context.Context, token string) error
	// ChangePassword replaces the caller's password and revokes every other
	// session of the account.
	ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error
	// RequestPasswordReset issues a reset code. The response is identical
	// for known and unknown addresses.
	RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResult, error)
	// ResetPasswordWithCode redeems a code and replaces the password. The
	// returned session is a short-lived internal handoff; transports report
	// only success and let the user sign in with the new password.
	ResetPasswordWithCode(ctx context.Context, email, code, newPassword string) (*AuthResult, error)
	// GetCurrentUser resolves a token to its user. Missing or expired
	// sessions yield (nil, nil), not an error.
	GetCurrentUser(ctx context.Context, token string) (*model.User, error)
	// BootstrapAdminIfNeeded promotes the caller to admin if the system has
	// no admin at all. Reports whether a promotion happened.
	BootstrapAdminIfNeeded(ctx context.Context, token string) (bool, error)
}

// GatewayDeps lists the collaborators of the gateway.
type GatewayDeps struct {
	Users       repository.UserRepository
	Credentials repository.CredentialRepository
	Sessions    *Sessions
	Resets      *PasswordResets
	Limiter     limiter.Limiter
	Audit       *audit.Log
	Logger      *zap.Logger

	// SessionTTL overrides the regular session lifetime. Zero means
	// DefaultSessionTTL.
	SessionTTL time.Duration

	// ExposeResetCode returns reset codes in API responses instead of
	// delivering them out of band. Demo environments only.
	ExposeResetCode bool
}

type Gateway struct {
	users       repository.UserRepository
	credentials repository.CredentialRepository
	sessions    *Sessions
	resets      *PasswordResets
	lim         limiter.Limiter
	audit       *audit.Log
	logger      *zap.Logger

	sessionTTL      time.Duration
	exposeResetCode bool

	// dummy credential for verifying against unknown accounts, so the
	// unknown-user path costs the same as a wrong password.
	dummySalt []byte
	dummyHash string
}

// NewGateway constructs the gateway.
func NewGateway(d GatewayDeps) (*Gateway, error) {
	dummySalt, err := pkgcrypto.NewSalt()
	if err != nil {
		return nil, err
	}
	if d.SessionTTL <= 0 {
		d.SessionTTL = DefaultSessionTTL
	}
	return &Gateway{
		users:           d.Users,
		credentials:     d.Credentials,
		sessions:        d.Sessions,
		resets:          d.Resets,
		lim:             d.Limiter,
		audit:           d.Audit,
		logger:          d.Logger,
		sessionTTL:      d.SessionTTL,
		exposeResetCode: d.ExposeResetCode,
		dummySalt:       dummySalt,
		dummyHash:       pkgcrypto.HashPassword("dummy-password-for-timing", dummySalt),
	}, nil
}

// checkLimit gates one endpoint attempt. A denied attempt is itself recorded
// as a security event but is not counted against the window again.
func (g *Gateway) checkLimit(ctx context.Context, identifier, endpoint string) error {
	allowed, _, err := g.lim.Check(ctx, identifier, endpoint)
	if err != nil {
		return err
	}
	if !allowed {
		rateLimitDenialsTotal.WithLabelValues(endpoint).Inc()
		g.audit.Record(ctx, audit.EventRateLimitExceeded, nil,
			endpoint+" attempt denied by rate limit", false)
		return errs.ErrRateLimited
	}
	return nil
}

// recordAttempt counts one attempt against the window and appends exactly
// one security event for it.
func (g *Gateway) recordAttempt(ctx context.Context, identifier, endpoint, eventType string, userID *uuid.UUID, desc string, success bool) {
	if _, err := g.lim.Record(ctx, identifier, endpoint); err != nil {
		g.logger.Error("rate limit record failed",
			zap.String("endpoint", endpoint), zap.Error(err))
	}
	g.audit.Record(ctx, eventType, userID, desc, success)

	outcome := "failure"
	if success {
		outcome = "success"
	}
	authAttemptsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// SignUp registers or claims an account and signs the caller in. Malformed
// input is rejected before the rate limiter; only attempts that name a
// syntactically valid account count toward the window or the audit log.
func (g *Gateway) SignUp(ctx context.Context, email, name, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := g.checkLimit(ctx, email, limiter.EndpointSignup); err != nil {
		return nil, err
	}

	desc := "account registered"
	u, err := g.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Account exists. It is claimable only while passwordless.
		_, cerr := g.credentials.GetByUserID(ctx, u.ID)
		if cerr == nil {
			g.recordAttempt(ctx, email, limiter.EndpointSignup, audit.EventSignupFailed,
				&u.ID, "signup against existing account", false)
			return nil, errs.ErrAccountExists
		}
		if !errors.Is(cerr, errs.ErrNotFound) {
			return nil, cerr
		}
		desc = "passwordless account claimed"
	case errors.Is(err, errs.ErrNotFound):
		uid, err := uuid.NewV4()
		if err != nil {
			return nil, err
		}
		nu := &model.User{ID: uid, Email: email, Name: name}
		if err := g.users.Create(ctx, nu); err != nil {
			if errors.Is(err, errs.ErrAlreadyExists) {
				// Lost a race with a concurrent signup for the same email.
				g.recordAttempt(ctx, email, limiter.EndpointSignup, audit.EventSignupFailed,
					nil, "signup against existing account", false)
				return nil, errs.ErrAccountExists
			}
			return nil, err
		}
		u = nu
	default:
		return nil, err
	}

	if err := g.setPassword(ctx, u.ID, password); err != nil {
		return nil, err
	}

	token, err := g.sessions.Create(ctx, u.ID, g.sessionTTL, false)
	if err != nil {
		return nil, err
	}
	g.recordAttempt(ctx, email, limiter.EndpointSignup, audit.EventSignupSuccess,
		&u.ID, desc, true)
	return &AuthResult{Token: token, User: *u}, nil
}

// SignIn authenticates an email and password.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if err := g.checkLimit(ctx, email, limiter.EndpointLogin); err != nil {
		return nil, err
	}

	u, err := g.users.GetByEmail(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		// Burn a hash so unknown accounts are not distinguishable by timing.
		pkgcrypto.VerifyPassword(password, g.dummyHash, g.dummySalt)
		return nil, g.failLogin(ctx, email, nil, "unknown account")
	}
	if err != nil {
		return nil, err
	}

	cred, err := g.credentials.GetByUserID(ctx, u.ID)
	if errors.Is(err, errs.ErrNotFound) {
		g.recordAttempt(ctx, email, limiter.EndpointLogin, audit.EventLoginFailed,
			&u.ID, "login to passwordless account", false)
		return nil, errs.ErrPasswordNotSet
	}
	if err != nil {
		return nil, err
	}

	ok, legacy, err := verifyCredential(password, cred)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, g.failLogin(ctx, email, &u.ID, "wrong password")
	}
	if legacy {
		// Re-hash under the salted scheme now that we hold the plaintext.
		// Login already succeeded, so a failed upgrade only delays the
		// migration until the next one.
		if err := g.setPassword(ctx, u.ID, password); err != nil {
			g.logger.Error("legacy hash upgrade failed",
				zap.String("user_id", u.ID.String()), zap.Error(err))
		}
	}

	token, err := g.sessions.Create(ctx, u.ID, g.sessionTTL, false)
	if err != nil {
		return nil, err
	}
	g.recordAttempt(ctx, email, limiter.EndpointLogin, audit.EventLoginSuccess,
		&u.ID, "login succeeded", true)
	return &AuthResult{Token: token, User: *u}, nil
}

// failLogin records a failed login attempt. The caller always gets the
// generic credentials error, even when this attempt fills the window; rate
// limiting surfaces only on the next attempt, when checkLimit denies it.
func (g *Gateway) failLogin(ctx context.Context, email string, userID *uuid.UUID, desc string) error {
	g.recordAttempt(ctx, email, limiter.EndpointLogin, audit.EventLoginFailed,
		userID, desc, false)
	return errs.ErrInvalidCredentials
}

// SignOut revokes the session.
func (g *Gateway) SignOut(ctx context.Context, token string) error {
	return g.sessions.Revoke(ctx, token)
}

// ChangePassword replaces the caller's password, keeping only the calling
// session alive.
func (g *Gateway) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	u, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if u == nil {
		return errs.ErrSessionExpired
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	cred, err := g.credentials.GetByUserID(ctx, u.ID)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	ok, _, err := verifyCredential(currentPassword, cred)
	if err != nil {
		return err
	}
	if !ok {
		g.audit.Record(ctx, audit.EventLoginFailed, &u.ID,
			"password change with wrong current password", false)
		return errs.ErrInvalidCredentials
	}

	if err := g.setPassword(ctx, u.ID, newPassword); err != nil {
		return err
	}
	if err := g.sessions.RevokeAllForUser(ctx, u.ID, token); err != nil {
		return err
	}
	g.audit.Record(ctx, audit.EventPasswordChanged, &u.ID, "password changed", true)
	return nil
}

// RequestPasswordReset issues a reset code for the address.
func (g *Gateway) RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResult, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	code, err := g.resets.Request(ctx, email)
	if err != nil {
		return nil, err
	}
	g.audit.Record(ctx, audit.EventPasswordResetRequest, nil,
		"password reset requested", true)

	res := &ResetRequestResult{}
	if code == "" {
		// Unknown address. The response stays indistinguishable.
		return res, nil
	}
	if g.exposeResetCode {
		res.DemoCode = code
	} else {
		// Delivery is owned by the surrounding application; this core only
		// logs that a code exists, never the code itself.
		g.logger.Info("password reset code issued", zap.String("email", email))
	}
	return res, nil
}

// ResetPasswordWithCode redeems a code and signs the user in with a
// short-lived handoff session.
func (g *Gateway) ResetPasswordWithCode(ctx context.Context, email, code, newPassword string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	userID, err := g.resets.Redeem(ctx, email, code, newPassword)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidResetCode) {
			g.audit.Record(ctx, audit.EventPasswordReset, nil,
				"reset code rejected", false)
		}
		return nil, err
	}

	u, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	token, err := g.sessions.Create(ctx, userID, TemporarySessionTTL, true)
	if err != nil {
		return nil, err
	}
	g.audit.Record(ctx, audit.EventPasswordReset, &userID, "password reset via code", true)
	return &AuthResult{Token: token, User: *u}, nil
}

// GetCurrentUser resolves a token to its user.
func (g *Gateway) GetCurrentUser(ctx context.Context, token string) (*model.User, error) {
	return g.sessions.Resolve(ctx, token)
}

// BootstrapAdminIfNeeded promotes the caller when the system has no admin.
func (g *Gateway) BootstrapAdminIfNeeded(ctx context.Context, token string) (bool, error) {
	u, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, errs.ErrSessionExpired
	}
	promoted, err := g.users.PromoteIfNoAdmin(ctx, u.ID)
	if err != nil {
		return false, err
	}
	if promoted {
		g.audit.Record(ctx, audit.EventAdminBootstrap, &u.ID,
			"promoted to admin during bootstrap", true)
	}
	return promoted, nil
}

// setPassword writes a fresh salted credential for the user.
func (g *Gateway) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		return err
	}
	return g.credentials.Upsert(ctx, &model.Credential{
		UserID:       userID,
		PasswordHash: pkgcrypto.HashPassword(password, salt),
		Salt:         hex.EncodeToString(salt),
		CreatedAt:    time.Now(),
	})
}

// verifyCredential checks a password against a stored credential under
// whichever scheme the row was written with. Reports whether it matched and
// whether the row still uses the legacy scheme.
func verifyCredential(password string, cred *model.Credential) (ok, legacy bool, err error) {
	if cred.Legacy() {
		return pkgcrypto.VerifyLegacy(password, cred.PasswordHash), true, nil
	}
	salt, err := hex.DecodeString(cred.Salt)
	if err != nil {
		return false, false, err
	}
	return pkgcrypto.VerifyPassword(password, cred.PasswordHash, salt), false, nil
}
