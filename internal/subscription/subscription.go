package subscription

import (
	"context"
	"log"
	"strings"
)

// Resolver answers whether a user currently has a premium subscription
type Resolver interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

var premiumStatuses = []string{"active_premium", "premium_monthly", "premium_yearly", "active"}

// Statuses that contain a premium marker but mean the opposite
var lapsedStatuses = []string{"inactive", "canceled", "cancelled", "expired"}

// IsPremiumStatus reports whether a profile subscription status grants premium.
// Matching is case-insensitive on substrings; an empty status means "free".
func IsPremiumStatus(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return false
	}
	for _, lapsed := range lapsedStatuses {
		if strings.Contains(s, lapsed) {
			return false
		}
	}
	for _, p := range premiumStatuses {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// Resolve never blocks an analysis: unknown users and lookup errors are free
func Resolve(ctx context.Context, r Resolver, userID string) bool {
	if r == nil || strings.TrimSpace(userID) == "" {
		return false
	}
	premium, err := r.IsPremium(ctx, userID)
	if err != nil {
		log.Printf("⚠️ Subscription lookup failed for %s, treating as free: %v", userID, err)
		return false
	}
	return premium
}

// StaticResolver grants premium to a fixed list of user IDs
type StaticResolver struct {
	users map[string]struct{}
}

func NewStaticResolver(userIDs []string) *StaticResolver {
	users := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id = strings.TrimSpace(id); id != "" {
			users[id] = struct{}{}
		}
	}
	return &StaticResolver{users: users}
}

func (s *StaticResolver) IsPremium(_ context.Context, userID string) (bool, error) {
	_, ok := s.users[userID]
	return ok, nil
}

// ChainResolver returns premium as soon as one resolver grants it.
// Errors are returned only when no resolver answered.
type ChainResolver []Resolver

func (c ChainResolver) IsPremium(ctx context.Context, userID string) (bool, error) {
	var firstErr error
	answered := false
	for _, r := range c {
		premium, err := r.IsPremium(ctx, userID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		answered = true
		if premium {
			return true, nil
		}
	}
	if !answered && firstErr != nil {
		return false, firstErr
	}
	return false, nil
}
