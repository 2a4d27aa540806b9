package goLogin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/MrEthical07/goLogin/cookie"
)

// LoaderParams selects which cached session to load: an explicit session id
// wins, then a login name, then the most recently touched record matching
// the optional organization.
type LoaderParams struct {
	SessionID    string
	LoginName    string
	Organization string
}

// SessionHints carries the reuse hints from an inbound authorization
// request. UserID takes priority over LoginName when both are set.
type SessionHints struct {
	UserID    string
	LoginName string
}

// mapAPIError folds an identity-API failure into the module's taxonomy.
func mapAPIError(err error) error {
	switch apiCode(err) {
	case CodeNotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case CodeInvalidSessionToken:
		return fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	case CodeFailedPrecondition:
		return fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
	case CodeInvalidArgument:
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	case CodeResourceExhausted:
		return fmt.Errorf("%w: %v", ErrLockedOut, err)
	default:
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
}

// LoadSession resolves the cookie record selected by p and fetches the
// authoritative session from the identity API. A rejected session token
// removes the stale record before the error is returned, so the next
// attempt starts a fresh flow.
//
// LoadSession may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) LoadSession(ctx context.Context, jar cookie.Jar, p LoaderParams) (*AuthSession, cookie.Record, error) {
	if e == nil || e.api == nil {
		return nil, cookie.Record{}, ErrEngineNotReady
	}

	store := e.Sessions(jar)

	var record cookie.Record
	var err error
	switch {
	case p.SessionID != "":
		record, err = store.GetByID(p.SessionID, p.Organization)
	case p.LoginName != "":
		record, err = store.GetByLoginName(p.LoginName, p.Organization)
	default:
		record, err = store.GetMostRecentMatching("", p.Organization)
	}
	if err != nil {
		return nil, cookie.Record{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	session, err := e.api.GetSession(ctx, record.ID, record.Token)
	if err != nil {
		mapped := mapAPIError(err)
		if errors.Is(mapped, ErrInvalidSessionToken) || errors.Is(mapped, ErrNotFound) {
			_ = store.Remove(record, true, 0)
			e.metricInc(MetricSessionTokenRejected)
			e.emitAudit(ctx, auditEventSessionTokenReject, false,
				"", record.LoginName, record.Organization, record.ID, mapped, nil)
		}
		return nil, cookie.Record{}, mapped
	}

	return session, record, nil
}

// FindValidSession loads every cached session and returns the most recently
// touched one that matches the hints and passes IsSessionValid, or nil when
// none does. A nil result with a nil error is a legitimate outcome meaning a
// fresh login is required.
//
// FindValidSession may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) FindValidSession(ctx context.Context, jar cookie.Jar, hints SessionHints) (*AuthSession, error) {
	if e == nil || e.api == nil {
		return nil, ErrEngineNotReady
	}

	store := e.Sessions(jar)
	candidates := []*AuthSession{}
	for _, record := range store.GetAll(true) {
		session, err := e.api.GetSession(ctx, record.ID, record.Token)
		if err != nil {
			mapped := mapAPIError(err)
			if errors.Is(mapped, ErrInvalidSessionToken) || errors.Is(mapped, ErrNotFound) {
				// Stale record; drop it and keep scanning.
				_ = store.Remove(record, true, 0)
				e.metricInc(MetricSessionTokenRejected)
				continue
			}
			return nil, mapped
		}
		candidates = append(candidates, session)
	}

	return e.SelectValidSession(ctx, candidates, hints)
}

// SelectValidSession filters candidates by the hints, ranks by recency, and
// returns the first session that passes IsSessionValid. Filtering happens
// before ranking: a hinted user's older session beats another user's newer
// one. Ties on ChangeDate keep insertion order.
//
// SelectValidSession may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) SelectValidSession(ctx context.Context, candidates []*AuthSession, hints SessionHints) (*AuthSession, error) {
	filtered := []*AuthSession{}
	for _, s := range candidates {
		if s == nil {
			continue
		}
		switch {
		case hints.UserID != "":
			if s.Factors.User != nil && s.Factors.User.ID == hints.UserID {
				filtered = append(filtered, s)
			}
		case hints.LoginName != "":
			if s.Factors.User != nil && s.Factors.User.LoginName == hints.LoginName {
				filtered = append(filtered, s)
			}
		default:
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return nil, nil
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ChangeDate.After(filtered[j].ChangeDate)
	})

	for _, s := range filtered {
		valid, err := e.IsSessionValid(ctx, s)
		if err != nil {
			return nil, err
		}
		if valid {
			e.metricInc(MetricSessionReused)
			e.emitAudit(ctx, auditEventSessionReused, true, userIDOf(s),
				loginNameOf(s), "", s.ID, nil, nil)
			return s, nil
		}
	}

	return nil, nil
}

// IsSessionValid decides whether a previously issued session can be reused
// without re-prompting. This is stricter than an active login flow: a
// session that would require any second factor is not silently reusable.
//
// IsSessionValid may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) IsSessionValid(ctx context.Context, s *AuthSession) (bool, error) {
	if e == nil || e.api == nil {
		return false, ErrEngineNotReady
	}
	if s == nil || s.Factors.User == nil {
		return false, nil
	}
	if s.Expired(time.Now()) {
		return false, nil
	}

	primary := s.Factors.Password.Verified() ||
		s.Factors.WebAuthN.Verified() ||
		s.Factors.Intent.Verified()
	if !primary {
		return false, nil
	}

	user, err := e.api.GetUserByID(ctx, s.Factors.User.ID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	settings, err := e.api.GetLoginSettings(ctx, user.OrganizationID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	methods, err := e.api.GetActiveAuthMethods(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	action := checkMFAFactors(EvalInput{
		Session:       s,
		User:          user,
		LoginSettings: settings,
		AuthMethods:   methods,
		Organization:  user.OrganizationID,
	})
	return action == nil, nil
}
