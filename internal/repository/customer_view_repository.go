package repository

import (
	"context"
	"time"

	"github.com/abpira/accounts/shared/models"
	sharedredis "github.com/abpira/accounts/shared/redis"
	goredis "github.com/redis/go-redis/v9"
)

const customerViewKeyPrefix = "customer:view:"

// CustomerViewRepository is the Redis read model of combined customer+account
// views, keyed by mobile number. PostgreSQL stays the source of truth; the
// read model only ever holds copies.
type CustomerViewRepository struct {
	cache *sharedredis.ViewCache[models.CustomerView]
}

func NewCustomerViewRepository(redisClient *goredis.Client, ttl time.Duration) *CustomerViewRepository {
	return &CustomerViewRepository{
		cache: sharedredis.NewViewCache[models.CustomerView](redisClient, customerViewKeyPrefix, ttl),
	}
}

// GetByMobileNumber returns the cached view, if any.
func (r *CustomerViewRepository) GetByMobileNumber(ctx context.Context, mobileNumber string) (*models.CustomerView, bool) {
	return r.cache.Get(ctx, mobileNumber)
}

// CustomerViewVersion returns the version to hand to CacheCustomerView for a
// view about to be loaded from the store. ok is false when Redis is unreadable.
func (r *CustomerViewRepository) CustomerViewVersion(ctx context.Context, mobileNumber string) (int64, bool) {
	return r.cache.Version(ctx, mobileNumber)
}

// CacheCustomerView stores the view under its mobile number unless the entry
// was invalidated after version was read.
func (r *CustomerViewRepository) CacheCustomerView(ctx context.Context, view *models.CustomerView, version int64) bool {
	return r.cache.SetIfVersion(ctx, view.MobileNumber, version, view)
}

// InvalidateCustomerView drops the views cached under the given mobile numbers.
func (r *CustomerViewRepository) InvalidateCustomerView(ctx context.Context, mobileNumbers ...string) {
	r.cache.Delete(ctx, mobileNumbers...)
}
