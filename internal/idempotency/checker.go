package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/logger"
)

// HashStore persists content hashes of the last synced contact state
type HashStore interface {
	GetContactHash(ctx context.Context, tenant, contactID string, side domain.Side) (string, error)
	SetContactHash(ctx context.Context, tenant, contactID string, side domain.Side, hash string) error
}

// ComputeHash produces a canonical content hash of a flattened contact.
// Keys are sorted, values trimmed and lowercased, and empty values
// dropped, so cosmetic differences in casing, whitespace, or field
// ordering hash identically. Dropping empties (rather than joining a
// bare "key=") is what makes an empty-string field and an absent field
// canonicalize to the same hash.
func ComputeHash(fields domain.FlatFields) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.ToLower(strings.TrimSpace(fields[k]))
		parts = append(parts, k+"="+v)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Checker skips writes whose content already matches the last synced
// state, breaking ping-pong loops that echo suppression alone misses.
type Checker struct {
	store HashStore
}

func NewChecker(store HashStore) *Checker {
	return &Checker{store: store}
}

// ShouldSkipWrite reports whether the mapped fields match the stored
// hash for the target contact. Lookup failures fail open: a redundant
// write is harmless, a dropped change is not.
func (c *Checker) ShouldSkipWrite(ctx context.Context, tenant, contactID string, side domain.Side, fields domain.FlatFields) (bool, error) {
	stored, err := c.store.GetContactHash(ctx, tenant, contactID, side)
	if err != nil {
		logger.WarnCtx(ctx, "hash lookup failed, proceeding with write",
			zap.String("tenant", tenant),
			zap.String("contact_id", contactID),
			zap.String("side", string(side)),
			zap.Error(err))
		return false, nil
	}
	if stored == "" {
		return false, nil
	}
	return stored == ComputeHash(fields), nil
}

// UpdateHash records the content hash after a successful write. Failure
// here is non-fatal: the write already happened, a stale hash only
// costs one redundant write later.
func (c *Checker) UpdateHash(ctx context.Context, tenant, contactID string, side domain.Side, fields domain.FlatFields) {
	if err := c.store.SetContactHash(ctx, tenant, contactID, side, ComputeHash(fields)); err != nil {
		logger.WarnCtx(ctx, "failed to store contact hash",
			zap.String("tenant", tenant),
			zap.String("contact_id", contactID),
			zap.String("side", string(side)),
			zap.Error(err))
	}
}
