package goLogin

import (
	"net/url"
	"strings"
)

// Login UI paths the orchestrator can redirect to. The UI layer owns the
// pages; this tier only names them and supplies the query parameters.
const (
	PathLogin          = "/login"
	PathPasswordChange = "/password/change"
	PathVerify         = "/verify"
	PathMFA            = "/mfa"
	PathMFASet         = "/mfa/set"
	PathOTPTime        = "/otp/time-based"
	PathOTPSMS         = "/otp/sms"
	PathOTPEmail       = "/otp/email"
	PathU2F            = "/u2f"
	PathPasskey        = "/passkey"
	PathSignedIn       = "/signedin"
)

// RedirectParams is the full query-parameter contract surfaced to the UI
// layer. Zero values are omitted from the rendered URL.
//
// RedirectParams instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedirectParams struct {
	LoginName          string
	Organization       string
	RequestID          string
	SessionID          string
	UserID             string
	Force              bool
	CheckAfter         bool
	Send               bool
	PromptPasswordless bool
}

// Values renders the parameters as URL query values, omitting zero values.
func (p RedirectParams) Values() url.Values {
	v := url.Values{}
	if p.LoginName != "" {
		v.Set("loginName", p.LoginName)
	}
	if p.Organization != "" {
		v.Set("organization", p.Organization)
	}
	if p.RequestID != "" {
		v.Set("requestId", p.RequestID)
	}
	if p.SessionID != "" {
		v.Set("sessionId", p.SessionID)
	}
	if p.UserID != "" {
		v.Set("userId", p.UserID)
	}
	if p.Force {
		v.Set("force", "true")
	}
	if p.CheckAfter {
		v.Set("checkAfter", "true")
	}
	if p.Send {
		v.Set("send", "true")
	}
	if p.PromptPasswordless {
		v.Set("promptPasswordless", "true")
	}
	return v
}

// Redirect is a structured redirect decision: a path (or absolute URI) plus
// its parameters. URL renders it; callers needing only the structured form
// read the fields directly.
type Redirect struct {
	Path   string
	Params RedirectParams
}

// URL renders the redirect as a relative or absolute URL string.
func (r Redirect) URL() string {
	query := r.Params.Values().Encode()
	if query == "" {
		return r.Path
	}
	sep := "?"
	if strings.Contains(r.Path, "?") {
		sep = "&"
	}
	return r.Path + sep + query
}

// actionRedirect maps a required step-up action to the UI page that collects
// it.
func actionRedirect(a *Action) Redirect {
	switch a.Kind {
	case ActionPasswordChange:
		return Redirect{Path: PathPasswordChange, Params: a.Params}
	case ActionEmailVerification:
		return Redirect{Path: PathVerify, Params: a.Params}
	case ActionSecondFactor:
		switch a.Method {
		case MethodTOTP:
			return Redirect{Path: PathOTPTime, Params: a.Params}
		case MethodOTPSMS:
			return Redirect{Path: PathOTPSMS, Params: a.Params}
		case MethodOTPEmail:
			return Redirect{Path: PathOTPEmail, Params: a.Params}
		case MethodU2F:
			return Redirect{Path: PathU2F, Params: a.Params}
		default:
			return Redirect{Path: PathMFA, Params: a.Params}
		}
	case ActionMFAEnrollment:
		return Redirect{Path: PathMFASet, Params: a.Params}
	default:
		return Redirect{Path: PathLogin, Params: a.Params}
	}
}
