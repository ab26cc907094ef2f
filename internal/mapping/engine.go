package mapping

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// RuleSource loads the persisted rule set for a tenant
//
//go:generate mockgen -source=engine.go -destination=../mocks/rule_source.go -package=mocks -mock_names=RuleSource=MockRuleSource
type RuleSource interface {
	// ListActiveRules returns the tenant's active field mapping rules
	ListActiveRules(ctx context.Context, tenant string) ([]Rule, error)
}

// Engine caches per-tenant rule sets in front of a RuleSource. The cache
// is advisory: size-bounded with LRU eviction and entry TTL, and every
// path stays correct when it is empty.
type Engine struct {
	source RuleSource
	cache  *expirable.LRU[string, []Rule]
}

// DefaultRuleCacheTTL bounds how stale a cached rule set may be
const DefaultRuleCacheTTL = 30 * time.Second

// NewEngine creates a rule engine with a bounded TTL cache
func NewEngine(source RuleSource, cacheSize int, cacheTTL time.Duration) *Engine {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultRuleCacheTTL
	}
	return &Engine{
		source: source,
		cache:  expirable.NewLRU[string, []Rule](cacheSize, nil, cacheTTL),
	}
}

// RulesFor returns the tenant's active rules, serving from cache when fresh
func (e *Engine) RulesFor(ctx context.Context, tenant string) ([]Rule, error) {
	if rules, ok := e.cache.Get(tenant); ok {
		return rules, nil
	}
	return e.ReloadRules(ctx, tenant)
}

// ReloadRules bypasses the cache, loads from the source, and re-caches
func (e *Engine) ReloadRules(ctx context.Context, tenant string) ([]Rule, error) {
	rules, err := e.source.ListActiveRules(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping rules: %w", err)
	}
	e.cache.Add(tenant, rules)
	return rules, nil
}

// InvalidateRules drops a tenant's cached rule set. Must be called after
// any mutation of the tenant's rules.
func (e *Engine) InvalidateRules(tenant string) {
	e.cache.Remove(tenant)
}

// Purge clears the whole cache; used by tests for deterministic state
func (e *Engine) Purge() {
	e.cache.Purge()
}
