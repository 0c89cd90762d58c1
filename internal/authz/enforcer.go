// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package authz

import (
	"fmt"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/tomtom215/foottraffic/internal/auth"
)

// ViewClass groups routes with the same access rule.
type ViewClass string

// View classes.
const (
	ClassGuest     ViewClass = "guest"
	ClassVerify    ViewClass = "verify"
	ClassProtected ViewClass = "protected"
	ClassPublic    ViewClass = "public"
)

// Redirect targets.
const (
	LoginPath     = "/login"
	VerifyPath    = "/verify"
	DashboardPath = "/dashboard"
)

const actionView = "view"

const guardModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (p.sub == "*" || r.sub == p.sub) && r.obj == p.obj && r.act == p.act
`

const guardPolicy = `
# status, view class, action
p, anonymous, guest, view
p, pending_verification, verify, view
p, authenticated, protected, view
p, *, public, view
`

// Decision is the outcome of a guard check. Redirect is set when denied.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

// Guard evaluates the view policy.
type Guard struct {
	enforcer *casbin.SyncedEnforcer
}

// NewGuard builds a guard from the built-in model and policy.
func NewGuard() (*Guard, error) {
	m, err := model.NewModelFromString(guardModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := loadPolicy(enforcer, guardPolicy); err != nil {
		return nil, err
	}
	return &Guard{enforcer: enforcer}, nil
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) != 4 || parts[0] != "p" {
			return fmt.Errorf("malformed policy line %q", line)
		}
		if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
			return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
		}
	}
	return nil
}

// Decide checks whether status may reach class.
func (g *Guard) Decide(status auth.Status, class ViewClass) (Decision, error) {
	start := time.Now()
	allowed, err := g.enforcer.Enforce(string(status), string(class), actionView)
	if err != nil {
		return Decision{}, fmt.Errorf("enforcement failed: %w", err)
	}
	recordDecision(status, class, allowed, time.Since(start))
	if allowed {
		return Decision{Allowed: true}, nil
	}
	return Decision{Redirect: HomeFor(status)}, nil
}

// HomeFor is where a session with status belongs.
func HomeFor(status auth.Status) string {
	switch status {
	case auth.StatusPendingVerification:
		return VerifyPath
	case auth.StatusAuthenticated:
		return DashboardPath
	default:
		return LoginPath
	}
}

// ClassifyPath maps a frontend route to its view class. Unknown routes are
// protected.
func ClassifyPath(path string) ViewClass {
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	switch path {
	case LoginPath, "/signup", "/register":
		return ClassGuest
	case VerifyPath:
		return ClassVerify
	case "/health", "/about":
		return ClassPublic
	default:
		return ClassProtected
	}
}
