package service

import (
	"context"
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/scamshield/authcore/internal/audit"
	"github.com/scamshield/authcore/internal/errs"
	"github.com/scamshield/authcore/internal/model"
)

/************ in-memory fakes ************/

type fakeUsers struct {
	byID map[uuid.UUID]*model.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uuid.UUID]*model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	for _, e := range f.byID {
		if e.Email == u.Email {
			return errs.ErrAlreadyExists
		}
	}
	u.Role = model.RoleUser
	if len(f.byID) == 0 {
		u.Role = model.RoleAdmin
	}
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok || u.DeletedAt != nil {
		return nil, errs.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.byID {
		if u.Email == email && u.DeletedAt == nil {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) PromoteIfNoAdmin(_ context.Context, id uuid.UUID) (bool, error) {
	for _, u := range f.byID {
		if u.Role.Elevated() && u.DeletedAt == nil {
			return false, nil
		}
	}
	u, ok := f.byID[id]
	if !ok || u.DeletedAt != nil {
		return false, errs.ErrNotFound
	}
	u.Role = model.RoleAdmin
	return true, nil
}

type fakeCreds struct {
	byUser map[uuid.UUID]*model.Credential
}

func newFakeCreds() *fakeCreds { return &fakeCreds{byUser: map[uuid.UUID]*model.Credential{}} }

func (f *fakeCreds) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Credential, error) {
	c, ok := f.byUser[userID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCreds) Upsert(_ context.Context, c *model.Credential) error {
	cp := *c
	f.byUser[c.UserID] = &cp
	return nil
}

type fakeSessionRepo struct {
	byToken map[string]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byToken: map[string]*model.Session{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *model.Session) error {
	cp := *s
	f.byToken[s.Token] = &cp
	return nil
}

func (f *fakeSessionRepo) GetByToken(_ context.Context, token string) (*model.Session, error) {
	s, ok := f.byToken[token]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, token string) error {
	delete(f.byToken, token)
	return nil
}

func (f *fakeSessionRepo) DeleteAllForUser(_ context.Context, userID uuid.UUID, exceptToken string) error {
	for tok, s := range f.byToken {
		if s.UserID == userID && tok != exceptToken {
			delete(f.byToken, tok)
		}
	}
	return nil
}

type fakeResetRepo struct {
	tokens []model.PasswordResetToken
}

func (f *fakeResetRepo) Create(_ context.Context, t *model.PasswordResetToken) error {
	f.tokens = append(f.tokens, *t)
	return nil
}

func (f *fakeResetRepo) RecentByEmail(_ context.Context, email string, limit int) ([]model.PasswordResetToken, error) {
	var out []model.PasswordResetToken
	for _, t := range f.tokens {
		if t.Email == email {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	for i := range f.tokens {
		if f.tokens[i].ID == id {
			if f.tokens[i].UsedAt != nil {
				return errs.ErrNotFound
			}
			now := time.Now()
			f.tokens[i].UsedAt = &now
			return nil
		}
	}
	return errs.ErrNotFound
}

type fakeEventRepo struct {
	events []model.SecurityEvent
}

func (f *fakeEventRepo) Append(_ context.Context, e *model.SecurityEvent) error {
	f.events = append(f.events, *e)
	return nil
}

type fakeLimiter struct {
	allowed       bool
	retryAfter    time.Duration
	recordedCount int
	lastEndpoint  string
}

func (f *fakeLimiter) Check(_ context.Context, _, _ string) (bool, time.Duration, error) {
	return f.allowed, f.retryAfter, nil
}

func (f *fakeLimiter) Record(_ context.Context, _, endpoint string) (bool, error) {
	f.recordedCount++
	f.lastEndpoint = endpoint
	return false, nil
}

func userFixture(id uuid.UUID, email string) *model.User {
	return &model.User{
		ID:        id,
		Email:     email,
		Name:      "Test User",
		Role:      model.RoleUser,
		CreatedAt: time.Now(),
	}
}

/************ assembly ************/

type testEnv struct {
	users    *fakeUsers
	creds    *fakeCreds
	sessRepo *fakeSessionRepo
	resets   *fakeResetRepo
	events   *fakeEventRepo
	lim      *fakeLimiter

	sessions *Sessions
	resetSvc *PasswordResets
	gw       *Gateway
}

func newTestEnv(exposeResetCode bool) (*testEnv, error) {
	env := &testEnv{
		users:    newFakeUsers(),
		creds:    newFakeCreds(),
		sessRepo: newFakeSessionRepo(),
		resets:   &fakeResetRepo{},
		events:   &fakeEventRepo{},
		lim:      &fakeLimiter{allowed: true},
	}
	env.sessions = NewSessions(env.sessRepo, env.users)
	env.resetSvc = NewPasswordResets(env.resets, env.users, env.creds, env.sessions, 0)

	gw, err := NewGateway(GatewayDeps{
		Users:           env.users,
		Credentials:     env.creds,
		Sessions:        env.sessions,
		Resets:          env.resetSvc,
		Limiter:         env.lim,
		Audit:           audit.NewLog(env.events, zap.NewNop()),
		Logger:          zap.NewNop(),
		ExposeResetCode: exposeResetCode,
	})
	if err != nil {
		return nil, err
	}
	env.gw = gw
	return env, nil
}
