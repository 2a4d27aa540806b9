package goLogin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goLogin/cookie"
)

func passkeyFactors(s *AuthSession) *AuthSession {
	s.Factors.WebAuthN = &WebAuthNFactor{VerifiedAt: s.ChangeDate, UserVerified: true}
	return s
}

func TestSelectValidSessionHintBeatsRecency(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	older := passkeyFactors(testSession("s1", "u1", "alice@acme", t1))
	newer := passkeyFactors(testSession("s2", "u2", "bob@acme", t2))

	api := &mockIdentityAPI{}
	plainSettings(api, &User{ID: "u1", LoginName: "alice@acme", OrganizationID: "org1"})
	engine := newTestEngine(t, api)

	got, err := engine.SelectValidSession(context.Background(), []*AuthSession{newer, older}, SessionHints{UserID: "u1"})
	if err != nil {
		t.Fatalf("SelectValidSession failed: %v", err)
	}
	if got == nil || got.ID != "s1" {
		t.Fatalf("hint filter must precede ranking, got %+v", got)
	}
}

func TestSelectValidSessionLoginHint(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := passkeyFactors(testSession("s1", "u1", "alice@acme", t1))

	api := &mockIdentityAPI{}
	plainSettings(api, &User{ID: "u1", LoginName: "alice@acme", OrganizationID: "org1"})
	engine := newTestEngine(t, api)

	got, err := engine.SelectValidSession(context.Background(), []*AuthSession{s}, SessionHints{LoginName: "alice@acme"})
	if err != nil {
		t.Fatalf("SelectValidSession failed: %v", err)
	}
	if got == nil || got.ID != "s1" {
		t.Fatalf("login hint should match, got %+v", got)
	}

	got, err = engine.SelectValidSession(context.Background(), []*AuthSession{s}, SessionHints{LoginName: "carol@acme"})
	if err != nil {
		t.Fatalf("SelectValidSession failed: %v", err)
	}
	if got != nil {
		t.Fatalf("mismatched hint must yield no session, got %+v", got)
	}
}

func TestSelectValidSessionPrefersMostRecent(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	older := passkeyFactors(testSession("s1", "u1", "alice@acme", t1))
	newer := passkeyFactors(testSession("s2", "u1", "alice@acme", t1.Add(time.Hour)))

	api := &mockIdentityAPI{}
	plainSettings(api, &User{ID: "u1", LoginName: "alice@acme", OrganizationID: "org1"})
	engine := newTestEngine(t, api)

	got, err := engine.SelectValidSession(context.Background(), []*AuthSession{older, newer}, SessionHints{})
	if err != nil {
		t.Fatalf("SelectValidSession failed: %v", err)
	}
	if got == nil || got.ID != "s2" {
		t.Fatalf("expected most recent session, got %+v", got)
	}
}

func TestSelectValidSessionSkipsInvalid(t *testing.T) {
	// The newest session requires a second factor and must be skipped; the
	// older passkey session is returned instead.
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	passkey := passkeyFactors(testSession("s1", "u1", "alice@acme", t1))
	passwordOnly := testSession("s2", "u2", "bob@acme", t1.Add(time.Hour))

	api := &mockIdentityAPI{
		getUserByID: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: id, OrganizationID: "org1"}, nil
		},
		getLoginSettings: func(ctx context.Context, organization string) (*LoginSettings, error) {
			return &LoginSettings{}, nil
		},
		getAuthMethods: func(ctx context.Context, userID string) ([]AuthMethod, error) {
			if userID == "u2" {
				return []AuthMethod{MethodPassword, MethodTOTP}, nil
			}
			return []AuthMethod{MethodPasskey}, nil
		},
	}
	engine := newTestEngine(t, api)

	got, err := engine.SelectValidSession(context.Background(), []*AuthSession{passkey, passwordOnly}, SessionHints{})
	if err != nil {
		t.Fatalf("SelectValidSession failed: %v", err)
	}
	if got == nil || got.ID != "s1" {
		t.Fatalf("invalid session must be skipped, got %+v", got)
	}
}

func TestSelectValidSessionEmptyCandidates(t *testing.T) {
	engine := newTestEngine(t, &mockIdentityAPI{})

	got, err := engine.SelectValidSession(context.Background(), nil, SessionHints{})
	if err != nil {
		t.Fatalf("SelectValidSession failed: %v", err)
	}
	if got != nil {
		t.Fatalf("no candidates must mean no session, got %+v", got)
	}
}

func TestIsSessionValid(t *testing.T) {
	now := time.Now()

	api := &mockIdentityAPI{}
	plainSettings(api, &User{ID: "u1", LoginName: "alice@acme", OrganizationID: "org1"})
	engine := newTestEngine(t, api)
	ctx := context.Background()

	t.Run("nil session", func(t *testing.T) {
		valid, err := engine.IsSessionValid(ctx, nil)
		if err != nil || valid {
			t.Fatalf("nil session must be invalid: valid=%v err=%v", valid, err)
		}
	})

	t.Run("no user factor", func(t *testing.T) {
		valid, err := engine.IsSessionValid(ctx, &AuthSession{ID: "s1"})
		if err != nil || valid {
			t.Fatalf("session without user must be invalid: valid=%v err=%v", valid, err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		s := passkeyFactors(testSession("s1", "u1", "alice@acme", now.Add(-2*time.Hour)))
		s.ExpirationDate = now.Add(-time.Hour)
		valid, err := engine.IsSessionValid(ctx, s)
		if err != nil || valid {
			t.Fatalf("expired session must be invalid: valid=%v err=%v", valid, err)
		}
	})

	t.Run("no primary factor", func(t *testing.T) {
		s := testSession("s1", "u1", "alice@acme", now)
		s.Factors.Password = nil
		valid, err := engine.IsSessionValid(ctx, s)
		if err != nil || valid {
			t.Fatalf("session without primary factor must be invalid: valid=%v err=%v", valid, err)
		}
	})

	t.Run("passkey session valid", func(t *testing.T) {
		s := passkeyFactors(testSession("s1", "u1", "alice@acme", now))
		valid, err := engine.IsSessionValid(ctx, s)
		if err != nil {
			t.Fatalf("IsSessionValid failed: %v", err)
		}
		if !valid {
			t.Fatal("passkey session should be valid")
		}
	})

	t.Run("dependency failure propagates", func(t *testing.T) {
		broken := &mockIdentityAPI{}
		plainSettings(broken, &User{ID: "u1", OrganizationID: "org1"})
		broken.getAuthMethods = func(ctx context.Context, userID string) ([]AuthMethod, error) {
			return nil, &APIError{Code: CodeUnavailable, Message: "down"}
		}
		eng := newTestEngine(t, broken)

		s := passkeyFactors(testSession("s1", "u1", "alice@acme", now))
		if _, err := eng.IsSessionValid(ctx, s); !errors.Is(err, ErrDependencyUnavailable) {
			t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
		}
	})
}

func TestLoadSessionByLoginName(t *testing.T) {
	now := time.Now()
	session := passkeyFactors(testSession("s1", "u1", "alice@acme", now))

	api := &mockIdentityAPI{
		getSession: func(ctx context.Context, id, token string) (*AuthSession, error) {
			if id != "s1" || token != "tok-s1" {
				return nil, &APIError{Code: CodeInvalidSessionToken, Message: "bad token"}
			}
			return session, nil
		},
	}
	engine := newTestEngine(t, api)
	jar := cookie.NewMemJar()

	store := engine.Sessions(jar)
	if err := store.Add(cookie.Record{
		ID:         "s1",
		Token:      "tok-s1",
		LoginName:  "alice@acme",
		CreationTS: now.Unix(),
		ChangeTS:   now.Unix(),
	}, false, 0); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, record, err := engine.LoadSession(context.Background(), jar, LoaderParams{LoginName: "alice@acme"})
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if got.ID != "s1" || record.ID != "s1" {
		t.Fatalf("unexpected session: %+v record %+v", got, record)
	}
}

func TestLoadSessionInvalidTokenCleansRecord(t *testing.T) {
	now := time.Now()

	api := &mockIdentityAPI{
		getSession: func(ctx context.Context, id, token string) (*AuthSession, error) {
			return nil, &APIError{Code: CodeInvalidSessionToken, Message: "rejected"}
		},
	}
	engine := newTestEngine(t, api)
	jar := cookie.NewMemJar()

	store := engine.Sessions(jar)
	if err := store.Add(cookie.Record{
		ID:         "s1",
		Token:      "stale",
		LoginName:  "alice@acme",
		CreationTS: now.Unix(),
		ChangeTS:   now.Unix(),
	}, false, 0); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	_, _, err := engine.LoadSession(context.Background(), jar, LoaderParams{SessionID: "s1"})
	if !errors.Is(err, ErrInvalidSessionToken) {
		t.Fatalf("expected ErrInvalidSessionToken, got %v", err)
	}

	if _, err := engine.Sessions(jar).GetByID("s1", ""); !errors.Is(err, cookie.ErrNotFound) {
		t.Fatalf("stale record should have been removed, got %v", err)
	}
}

func TestLoadSessionMissingRecord(t *testing.T) {
	engine := newTestEngine(t, &mockIdentityAPI{})

	_, _, err := engine.LoadSession(context.Background(), cookie.NewMemJar(), LoaderParams{LoginName: "nobody@acme"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindValidSessionDropsStaleRecords(t *testing.T) {
	now := time.Now()
	valid := passkeyFactors(testSession("s2", "u1", "alice@acme", now))

	api := &mockIdentityAPI{
		getSession: func(ctx context.Context, id, token string) (*AuthSession, error) {
			if id == "s1" {
				return nil, &APIError{Code: CodeInvalidSessionToken, Message: "stale"}
			}
			return valid, nil
		},
	}
	plainSettings(api, &User{ID: "u1", LoginName: "alice@acme", OrganizationID: "org1"})
	engine := newTestEngine(t, api)
	jar := cookie.NewMemJar()

	store := engine.Sessions(jar)
	for _, rec := range []cookie.Record{
		{ID: "s1", Token: "stale", LoginName: "old@acme", CreationTS: now.Unix() - 100, ChangeTS: now.Unix() - 100},
		{ID: "s2", Token: "tok-s2", LoginName: "alice@acme", CreationTS: now.Unix(), ChangeTS: now.Unix()},
	} {
		if err := store.Add(rec, false, 0); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	got, err := engine.FindValidSession(context.Background(), jar, SessionHints{})
	if err != nil {
		t.Fatalf("FindValidSession failed: %v", err)
	}
	if got == nil || got.ID != "s2" {
		t.Fatalf("expected s2, got %+v", got)
	}
	if _, err := engine.Sessions(jar).GetByID("s1", ""); !errors.Is(err, cookie.ErrNotFound) {
		t.Fatalf("stale record should have been dropped, got %v", err)
	}
}
