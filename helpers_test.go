package goLogin

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var testCookieSecret = []byte("0123456789abcdef0123456789abcdef")

func errUnavailable() error {
	return &APIError{Code: CodeUnavailable, Message: "not wired in this test"}
}

// mockIdentityAPI implements IdentityAPI with per-call function fields.
// Calls without a configured function fail with CodeUnavailable so a test
// only has to wire the calls it expects.
type mockIdentityAPI struct {
	createSession      func(ctx context.Context, checks SessionChecks, lifetime time.Duration) (*CreatedSession, error)
	getSession         func(ctx context.Context, id, token string) (*AuthSession, error)
	setSessionChecks   func(ctx context.Context, id, token string, checks SessionChecks) (*CreatedSession, error)
	getUserByID        func(ctx context.Context, id string) (*User, error)
	listUsers          func(ctx context.Context, loginName, organization string) ([]User, error)
	getLoginSettings   func(ctx context.Context, organization string) (*LoginSettings, error)
	getLockout         func(ctx context.Context, organization string) (*LockoutSettings, error)
	getPasswordExpiry  func(ctx context.Context, organization string) (*PasswordExpirySettings, error)
	getAuthMethods     func(ctx context.Context, userID string) ([]AuthMethod, error)
	setPassword        func(ctx context.Context, userID, password string) error
	addHumanUser       func(ctx context.Context, user NewHumanUser) (*User, error)
	addIDPLink         func(ctx context.Context, userID string, link IDPLink) error
	startIDPFlow       func(ctx context.Context, idpID, successURL, failureURL string) (string, error)
	getIDPIntent       func(ctx context.Context, intentID, token string) (*IDPIntent, error)
}

func (m *mockIdentityAPI) CreateSession(ctx context.Context, checks SessionChecks, lifetime time.Duration) (*CreatedSession, error) {
	if m.createSession == nil {
		return nil, errUnavailable()
	}
	return m.createSession(ctx, checks, lifetime)
}

func (m *mockIdentityAPI) GetSession(ctx context.Context, id, token string) (*AuthSession, error) {
	if m.getSession == nil {
		return nil, errUnavailable()
	}
	return m.getSession(ctx, id, token)
}

func (m *mockIdentityAPI) SetSessionChecks(ctx context.Context, id, token string, checks SessionChecks) (*CreatedSession, error) {
	if m.setSessionChecks == nil {
		return nil, errUnavailable()
	}
	return m.setSessionChecks(ctx, id, token, checks)
}

func (m *mockIdentityAPI) GetUserByID(ctx context.Context, id string) (*User, error) {
	if m.getUserByID == nil {
		return nil, errUnavailable()
	}
	return m.getUserByID(ctx, id)
}

func (m *mockIdentityAPI) ListUsersByLoginName(ctx context.Context, loginName, organization string) ([]User, error) {
	if m.listUsers == nil {
		return nil, errUnavailable()
	}
	return m.listUsers(ctx, loginName, organization)
}

func (m *mockIdentityAPI) GetLoginSettings(ctx context.Context, organization string) (*LoginSettings, error) {
	if m.getLoginSettings == nil {
		return nil, errUnavailable()
	}
	return m.getLoginSettings(ctx, organization)
}

func (m *mockIdentityAPI) GetLockoutSettings(ctx context.Context, organization string) (*LockoutSettings, error) {
	if m.getLockout == nil {
		return nil, errUnavailable()
	}
	return m.getLockout(ctx, organization)
}

func (m *mockIdentityAPI) GetPasswordExpirySettings(ctx context.Context, organization string) (*PasswordExpirySettings, error) {
	if m.getPasswordExpiry == nil {
		return nil, errUnavailable()
	}
	return m.getPasswordExpiry(ctx, organization)
}

func (m *mockIdentityAPI) GetActiveAuthMethods(ctx context.Context, userID string) ([]AuthMethod, error) {
	if m.getAuthMethods == nil {
		return nil, errUnavailable()
	}
	return m.getAuthMethods(ctx, userID)
}

func (m *mockIdentityAPI) SetPassword(ctx context.Context, userID, password string) error {
	if m.setPassword == nil {
		return errUnavailable()
	}
	return m.setPassword(ctx, userID, password)
}

func (m *mockIdentityAPI) AddHumanUser(ctx context.Context, user NewHumanUser) (*User, error) {
	if m.addHumanUser == nil {
		return nil, errUnavailable()
	}
	return m.addHumanUser(ctx, user)
}

func (m *mockIdentityAPI) AddIDPLink(ctx context.Context, userID string, link IDPLink) error {
	if m.addIDPLink == nil {
		return errUnavailable()
	}
	return m.addIDPLink(ctx, userID, link)
}

func (m *mockIdentityAPI) StartIDPFlow(ctx context.Context, idpID, successURL, failureURL string) (string, error) {
	if m.startIDPFlow == nil {
		return "", errUnavailable()
	}
	return m.startIDPFlow(ctx, idpID, successURL, failureURL)
}

func (m *mockIdentityAPI) GetIDPIntent(ctx context.Context, intentID, token string) (*IDPIntent, error) {
	if m.getIDPIntent == nil {
		return nil, errUnavailable()
	}
	return m.getIDPIntent(ctx, intentID, token)
}

// plainSettings wires the settings and catalog fetches for a user with no
// MFA enrolled and permissive tenant policy.
func plainSettings(m *mockIdentityAPI, user *User, methods ...AuthMethod) {
	if len(methods) == 0 {
		methods = []AuthMethod{MethodPassword}
	}
	m.getUserByID = func(ctx context.Context, id string) (*User, error) {
		if id != user.ID {
			return nil, &APIError{Code: CodeNotFound, Message: "no such user"}
		}
		return user, nil
	}
	m.getLoginSettings = func(ctx context.Context, organization string) (*LoginSettings, error) {
		return &LoginSettings{MFAInitSkipLifetime: 30 * 24 * time.Hour}, nil
	}
	m.getPasswordExpiry = func(ctx context.Context, organization string) (*PasswordExpirySettings, error) {
		return &PasswordExpirySettings{}, nil
	}
	m.getAuthMethods = func(ctx context.Context, userID string) ([]AuthMethod, error) {
		return methods, nil
	}
}

func newTestEngine(t *testing.T, api IdentityAPI) *Engine {
	t.Helper()

	engine, err := New().
		WithIdentityAPI(api).
		WithCookieSecret(testCookieSecret).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testSession(id, userID, loginName string, change time.Time) *AuthSession {
	return &AuthSession{
		ID: id,
		Factors: SessionFactors{
			User: &UserFactor{
				VerifiedAt:     change,
				ID:             userID,
				LoginName:      loginName,
				OrganizationID: "org1",
			},
			Password: &Factor{VerifiedAt: change},
		},
		CreationDate: change,
		ChangeDate:   change,
	}
}

func testCreated(s *AuthSession) *CreatedSession {
	return &CreatedSession{ID: s.ID, Token: "tok-" + s.ID, Session: s}
}
