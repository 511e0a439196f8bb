package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"regdesk-be/internal/pkg/logger"
	"regdesk-be/pkg/admin/notify"

	"github.com/redis/go-redis/v9"
)

const (
	digestKeyPrefix = "regdesk:expiry_digest:"
	digestClaimTTL  = 24 * time.Hour
)

// DigestGate decides whether this instance sends the digest for an alert set
type DigestGate interface {
	Claim(ctx context.Context, alerts []notify.Alert) bool
}

// RedisDigestGate claims an alert set with SET NX. Instances surfacing the
// same set within the TTL share one claim; a changed set gets a new key.
type RedisDigestGate struct {
	rdb    *redis.Client
	origin string
	ttl    time.Duration
	logger logger.ILogger
}

func NewRedisDigestGate(rdb *redis.Client, origin string, log logger.ILogger) *RedisDigestGate {
	return &RedisDigestGate{rdb: rdb, origin: origin, ttl: digestClaimTTL, logger: log}
}

// Claim always succeeds without redis. A redis failure also succeeds:
// a duplicate mail beats a missing one.
func (g *RedisDigestGate) Claim(ctx context.Context, alerts []notify.Alert) bool {
	if g == nil || g.rdb == nil {
		return true
	}
	ok, err := g.rdb.SetNX(ctx, digestKey(alerts), g.origin, g.ttl).Result()
	if err != nil {
		g.logger.Warn("ALERTS", "Digest claim failed, sending anyway", map[string]interface{}{"error": err.Error()})
		return true
	}
	return ok
}

func digestKey(alerts []notify.Alert) string {
	ids := make([]string, 0, len(alerts))
	for _, a := range alerts {
		ids = append(ids, a.RegistrationId.String()+"|"+string(a.Bucket))
	}
	sort.Strings(ids)

	h := fnv.New64a()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%s%x", digestKeyPrefix, h.Sum64())
}
