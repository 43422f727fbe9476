package policy

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DBRoleResolver resolves a user ID to the permission profile of the role
// stored on its Profile row.
type DBRoleResolver struct {
	DB *gorm.DB
}

func NewDBRoleResolver(db *gorm.DB) *DBRoleResolver {
	return &DBRoleResolver{DB: db}
}

// Resolve returns nil when the user does not exist.
func (r *DBRoleResolver) Resolve(ctx context.Context, userID string) (gate.Profile, error) {
	var p models.Profile
	err := r.DB.WithContext(ctx).Select("id", "role").First(&p, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ProfileFor(p.Role), nil
}

const roleKeyPrefix = "lessons:role:"

// RedisRoleResolver shares resolved roles between server instances. Redis
// failures fall through to the inner resolver.
type RedisRoleResolver struct {
	inner gate.ProfileResolver[string]
	rdb   *redis.Client
	ttl   time.Duration
}

func NewRedisRoleResolver(inner gate.ProfileResolver[string], rdb *redis.Client, ttl time.Duration) *RedisRoleResolver {
	return &RedisRoleResolver{inner: inner, rdb: rdb, ttl: ttl}
}

func (r *RedisRoleResolver) Resolve(ctx context.Context, userID string) (gate.Profile, error) {
	key := roleKeyPrefix + userID
	role, err := r.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if p := ProfileFor(models.Role(role)); p != nil {
			return p, nil
		}
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("policy: redis get %s: %v", key, err)
	}

	p, err := r.inner.Resolve(ctx, userID)
	if err != nil || p == nil {
		return p, err
	}
	if err := r.rdb.Set(ctx, key, p.Name(), r.ttl).Err(); err != nil {
		log.Printf("policy: redis set %s: %v", key, err)
	}
	return p, nil
}
