package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

const (
	defaultCacheTTL = 5 * time.Minute

	// genKey is bumped by every write. A fill only lands if it is
	// unchanged since the fill started reading the store.
	genKey = "user:gen"
)

var errStaleFill = errors.New("cache fill raced a write")

// CachedUserRepository is a read-through cache in front of a UserRepository.
// Lookups by id and username are served from Redis when present; every write
// goes to the store first and then evicts the affected keys.
//
// Key format: user:id:<id> and user:name:<username>, plus the user:gen
// write counter.
type CachedUserRepository struct {
	next   ports.UserRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

var _ ports.UserRepository = (*CachedUserRepository)(nil)

// NewCachedUserRepository wraps next. A non-positive ttl uses defaultCacheTTL.
func NewCachedUserRepository(next ports.UserRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedUserRepository {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedUserRepository{next: next, client: client, ttl: ttl, log: log}
}

// cachedUser mirrors domain.User including the hash, which domain.User
// keeps out of JSON.
type cachedUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func idKey(id int64) string {
	return fmt.Sprintf("user:id:%d", id)
}

func nameKey(username string) string {
	return "user:name:" + username
}

func (c *CachedUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := c.get(ctx, idKey(id)); ok {
		return u, nil
	}
	gen, genOK := c.generation(ctx)
	u, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if genOK {
		c.set(ctx, u, gen)
	}
	return u, nil
}

func (c *CachedUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u, ok := c.get(ctx, nameKey(username)); ok {
		return u, nil
	}
	gen, genOK := c.generation(ctx)
	u, err := c.next.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if genOK {
		c.set(ctx, u, gen)
	}
	return u, nil
}

func (c *CachedUserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	return c.next.FindAll(ctx)
}

func (c *CachedUserRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	return c.next.Insert(ctx, user)
}

func (c *CachedUserRepository) Update(ctx context.Context, id int64, changes domain.UserChanges) error {
	if err := c.next.Update(ctx, id, changes); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *CachedUserRepository) Delete(ctx context.Context, id int64) error {
	// Resolve the username before the record is gone.
	current, lookupErr := c.next.FindByID(ctx, id)
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	keys := []string{idKey(id)}
	if lookupErr == nil {
		keys = append(keys, nameKey(current.Username))
	}
	c.del(ctx, keys...)
	return nil
}

func (c *CachedUserRepository) evict(ctx context.Context, id int64) {
	keys := []string{idKey(id)}
	if u, err := c.next.FindByID(ctx, id); err == nil {
		keys = append(keys, nameKey(u.Username))
	}
	c.del(ctx, keys...)
}

// del bumps the write counter and drops keys in one transaction, so a fill
// that read the store before this write can no longer land.
func (c *CachedUserRepository) del(ctx context.Context, keys ...string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("cache eviction failed")
	}
}

func (c *CachedUserRepository) generation(ctx context.Context) (int64, bool) {
	gen, err := c.client.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("cache generation read failed, skipping fill")
		return 0, false
	}
	return gen, true
}

func (c *CachedUserRepository) get(ctx context.Context, key string) (*domain.User, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("cache read failed, falling back to store")
		}
		return nil, false
	}

	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("discarding corrupt cache entry")
		c.del(ctx, key)
		return nil, false
	}
	return &domain.User{
		ID:           cu.ID,
		Username:     cu.Username,
		Email:        cu.Email,
		PasswordHash: cu.PasswordHash,
		FirstName:    cu.FirstName,
		LastName:     cu.LastName,
		Role:         domain.Role(cu.Role),
		Status:       domain.Status(cu.Status),
		CreatedAt:    cu.CreatedAt,
		UpdatedAt:    cu.UpdatedAt,
	}, true
}

// set writes u under both keys unless a write bumped genKey after gen was
// read.
func (c *CachedUserRepository) set(ctx context.Context, u *domain.User, gen int64) {
	raw, err := json.Marshal(cachedUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         string(u.Role),
		Status:       string(u.Status),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
	if err != nil {
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, idKey(u.ID), raw, c.ttl)
			pipe.Set(ctx, nameKey(u.Username), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		c.log.Debug().Int64("user_id", u.ID).Msg("cache fill skipped after concurrent write")
	default:
		c.log.Warn().Err(err).Int64("user_id", u.ID).Msg("cache write failed")
	}
}
