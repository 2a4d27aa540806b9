package goLogin

import "time"

// ActionKind enumerates the remediation steps the evaluator can require.
// The set is closed so callers cannot silently ignore a required step.
type ActionKind uint8

const (
	// ActionPasswordChange is an exported constant or variable used by the login orchestrator.
	ActionPasswordChange ActionKind = iota + 1
	// ActionEmailVerification is an exported constant or variable used by the login orchestrator.
	ActionEmailVerification
	// ActionSecondFactor is an exported constant or variable used by the login orchestrator.
	ActionSecondFactor
	// ActionMFAEnrollment is an exported constant or variable used by the login orchestrator.
	ActionMFAEnrollment
)

// String describes the string operation and its observable behavior.
func (k ActionKind) String() string {
	switch k {
	case ActionPasswordChange:
		return "password_change"
	case ActionEmailVerification:
		return "email_verification"
	case ActionSecondFactor:
		return "second_factor"
	case ActionMFAEnrollment:
		return "mfa_enrollment"
	default:
		return "unknown"
	}
}

// Action is one required step-up. Method is set for ActionSecondFactor with
// exactly one enrolled multi-factor method; MethodUnspecified routes to the
// method-selection step. Forced and CheckAfter qualify ActionMFAEnrollment.
// Params carries everything the caller needs to build the redirect.
type Action struct {
	Kind       ActionKind
	Method     AuthMethod
	Forced     bool
	CheckAfter bool
	Params     RedirectParams
}

// EvalInput is everything one step-up evaluation reads. All fields are
// request-scoped: nothing here survives the request, so policy changes take
// effect on the next evaluation.
//
// EvalInput instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EvalInput struct {
	Session        *AuthSession
	User           *User
	LoginSettings  *LoginSettings
	PasswordExpiry *PasswordExpirySettings
	AuthMethods    []AuthMethod

	RequireEmailVerification bool

	Organization string
	RequestID    string
	Now          time.Time
}

func (in EvalInput) now() time.Time {
	if in.Now.IsZero() {
		return time.Now()
	}
	return in.Now
}

func (in EvalInput) params() RedirectParams {
	p := RedirectParams{
		Organization: in.Organization,
		RequestID:    in.RequestID,
	}
	if in.User != nil {
		p.LoginName = in.User.LoginName
	}
	if in.Session != nil {
		p.SessionID = in.Session.ID
		if p.LoginName == "" && in.Session.Factors.User != nil {
			p.LoginName = in.Session.Factors.User.LoginName
		}
	}
	return p
}

// A stepUpRule inspects the input and returns the action it requires, or nil
// when its concern is satisfied. Rules are evaluated top to bottom and the
// first non-nil action wins, so precedence is the slice order.
type stepUpRule func(in EvalInput) *Action

var stepUpRules = []stepUpRule{
	checkPasswordChange,
	checkEmailVerification,
	checkMFAFactors,
}

// EvaluateStepUp computes the single next required action for the session,
// or nil when the login may proceed. Callers must resolve every input fetch
// before evaluating; a failed settings or auth-methods fetch is a hard error
// upstream, never a default pass.
func EvaluateStepUp(in EvalInput) *Action {
	for _, rule := range stepUpRules {
		if action := rule(in); action != nil {
			return action
		}
	}
	return nil
}

func checkPasswordChange(in EvalInput) *Action {
	if in.User == nil {
		return nil
	}

	required := in.User.PasswordChangeRequired
	if !required && in.PasswordExpiry != nil && in.PasswordExpiry.MaxAgeDays > 0 && !in.User.PasswordChangedAt.IsZero() {
		maxAge := time.Duration(in.PasswordExpiry.MaxAgeDays) * 24 * time.Hour
		required = in.now().Sub(in.User.PasswordChangedAt) > maxAge
	}
	if !required {
		return nil
	}

	return &Action{Kind: ActionPasswordChange, Params: in.params()}
}

func checkEmailVerification(in EvalInput) *Action {
	if !in.RequireEmailVerification || in.User == nil || in.User.EmailVerified {
		return nil
	}

	params := in.params()
	params.Send = true
	if in.User != nil {
		params.UserID = in.User.ID
	}
	return &Action{Kind: ActionEmailVerification, Params: params}
}

// checkMFAFactors is the MFA sub-check. It is also what decides whether a
// cached session may be silently reused, so it must stay free of any state
// beyond its input.
func checkMFAFactors(in EvalInput) *Action {
	// A user-verified WebAuthn assertion is a true passkey ceremony and
	// already multi-factor. A bare security-key assertion is not.
	if in.Session != nil {
		if wa := in.Session.Factors.WebAuthN; wa.Verified() && wa.UserVerified {
			return nil
		}
	}

	available := multiFactorMethods(in.AuthMethods)

	switch {
	case len(available) == 1:
		action := &Action{Kind: ActionSecondFactor, Method: available[0], Params: in.params()}
		if available[0] == MethodOTPEmail || available[0] == MethodOTPSMS {
			action.Params.Send = true
		}
		return action

	case len(available) > 1:
		return &Action{Kind: ActionSecondFactor, Method: MethodUnspecified, Params: in.params()}
	}

	// Zero enrolled multi-factor methods: enrollment policy decides.
	forced := false
	if ls := in.LoginSettings; ls != nil {
		forced = ls.ForceMFA || (ls.ForceMFALocalOnly && !localOnlyExempt(in.Session))
	}
	if forced {
		params := in.params()
		params.Force = true
		params.CheckAfter = true
		return &Action{Kind: ActionMFAEnrollment, Forced: true, CheckAfter: true, Params: params}
	}

	if in.LoginSettings != nil && in.LoginSettings.MFAInitSkipLifetime > 0 &&
		in.User != nil && !in.User.MFAInitSkippedAt.IsZero() &&
		in.now().Sub(in.User.MFAInitSkippedAt) < in.LoginSettings.MFAInitSkipLifetime {
		return nil
	}

	params := in.params()
	params.CheckAfter = true
	return &Action{Kind: ActionMFAEnrollment, Forced: false, CheckAfter: true, Params: params}
}

// localOnlyExempt reports whether the session authenticated through an
// external IdP, which ForceMFALocalOnly does not cover.
func localOnlyExempt(s *AuthSession) bool {
	return s != nil && s.Factors.Intent.Verified()
}

// multiFactorMethods strips the primary methods from the enrolled set,
// leaving the methods usable as a second factor.
func multiFactorMethods(methods []AuthMethod) []AuthMethod {
	out := []AuthMethod{}
	for _, m := range methods {
		if m == MethodPassword || m == MethodPasskey || m == MethodUnspecified {
			continue
		}
		out = append(out, m)
	}
	return out
}
