package auth

import (
	"context"

	"go.uber.org/zap"

	applog "github.com/janisto/company-admin/internal/platform/logging"
)

// State is the visitor's position relative to the single administrator.
type State int

const (
	Unauthenticated State = iota
	NonAdmin
	Admin
)

func (s State) String() string {
	switch s {
	case NonAdmin:
		return "non_admin"
	case Admin:
		return "admin"
	default:
		return "unauthenticated"
	}
}

// Session is the resolved gate state. User is set for NonAdmin and Admin.
type Session struct {
	State State
	User  *FirebaseUser
}

// Authorized reports whether the session may reach the dashboard.
// A NonAdmin session routes exactly like an unauthenticated one.
func (s Session) Authorized() bool {
	return s.State == Admin && s.User != nil
}

// Gate compares authenticated identities against the configured administrator UID.
type Gate struct {
	adminUID  string
	signOuter SignOuter
}

// NewGate creates a gate for adminUID. signOuter may be nil, in which case
// non-admin identities are rejected without revoking their sessions.
func NewGate(adminUID string, signOuter SignOuter) *Gate {
	return &Gate{adminUID: adminUID, signOuter: signOuter}
}

// Classify returns the state for user without side effects.
func (g *Gate) Classify(user *FirebaseUser) State {
	switch {
	case user == nil || user.UID == "":
		return Unauthenticated
	case g.adminUID != "" && user.UID == g.adminUID:
		return Admin
	default:
		return NonAdmin
	}
}

// Resolve classifies user and forces a sign-out for any non-admin identity.
// Sign-out failures are logged; the session is rejected either way.
func (g *Gate) Resolve(ctx context.Context, user *FirebaseUser) Session {
	state := g.Classify(user)
	if state == Unauthenticated {
		return Session{State: Unauthenticated}
	}
	if state == NonAdmin {
		g.signOut(ctx, user.UID)
	}
	return Session{State: state, User: user}
}

// SignOut revokes uid's sessions. It is a no-op without a SignOuter.
func (g *Gate) SignOut(ctx context.Context, uid string) error {
	if g.signOuter == nil {
		return nil
	}
	return g.signOuter.SignOut(ctx, uid)
}

func (g *Gate) signOut(ctx context.Context, uid string) {
	if g.signOuter == nil {
		return
	}
	if err := g.SignOut(ctx, uid); err != nil {
		applog.LogWarn(ctx, "forced sign-out failed", zap.String("uid", uid), zap.Error(err))
		return
	}
	applog.LogAuditEvent(ctx, "sign_out", uid, "session", uid, applog.AuditSuccess,
		map[string]any{"reason": "not_admin"})
}
