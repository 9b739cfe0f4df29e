package auth

import (
	"context"
	"errors"
	"time"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

// ErrNoValidRole means a profile exists but carries a role with no landing
// route. An operator has to fix the profile row.
var ErrNoValidRole = apperr.New(apperr.KindForbidden, "profile has no valid role")

// LandingRoute maps a role to the dashboard it lands on after sign-in.
func LandingRoute(role string) (string, error) {
	switch role {
	case RoleAdmin:
		return "/admin", nil
	case RoleNGO:
		return "/ngo", nil
	case RoleTemple:
		return "/temple", nil
	default:
		return "", ErrNoValidRole
	}
}

type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 6, Delay: 400 * time.Millisecond}

// fetchProfileWithRetry waits out the lag between a signup's credential write
// and its profile write. Only NotFound is retried.
func fetchProfileWithRetry(ctx context.Context, repo Repository, id string, policy RetryPolicy) (*Profile, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		p, err := repo.FindProfile(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, apperr.Wrap(apperr.KindTransient, ctx.Err(), "profile not visible yet")
		case <-time.After(policy.Delay):
		}
	}
	return nil, apperr.New(apperr.KindTransient, "profile not visible yet")
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
