package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoWorkset indicates a save or export was requested with no upload
// pending for the user.
var ErrNoWorkset = errors.New("ledger: no uploaded table pending")

// Cache keeps the working table of each user's latest upload in Redis, so
// the follow-up save and export actions operate on the same rows. Entries
// expire on their own; a new upload overwrites the previous one.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs the workset cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Put stores the workset for a user, replacing any previous upload.
func (c *Cache) Put(ctx context.Context, username string, ws *Workset) error {
	data, err := json.Marshal(ws)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, worksetKey(username), data, c.ttl).Err()
}

// Get loads the pending workset for a user, ErrNoWorkset when absent.
func (c *Cache) Get(ctx context.Context, username string) (*Workset, error) {
	payload, err := c.client.Get(ctx, worksetKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoWorkset
		}
		return nil, err
	}
	var ws Workset
	if err := json.Unmarshal(payload, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// Drop removes the pending workset, if any.
func (c *Cache) Drop(ctx context.Context, username string) error {
	err := c.client.Del(ctx, worksetKey(username)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// PutTable parks a parsed upload that still needs a rate choice.
func (c *Cache) PutTable(ctx context.Context, username string, t Table) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, uploadKey(username), data, c.ttl).Err()
}

// GetTable loads the parked upload, ErrNoWorkset when absent.
func (c *Cache) GetTable(ctx context.Context, username string) (Table, error) {
	payload, err := c.client.Get(ctx, uploadKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Table{}, ErrNoWorkset
		}
		return Table{}, err
	}
	var t Table
	if err := json.Unmarshal(payload, &t); err != nil {
		return Table{}, err
	}
	return t, nil
}

// DropTable removes the parked upload, if any.
func (c *Cache) DropTable(ctx context.Context, username string) error {
	err := c.client.Del(ctx, uploadKey(username)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func worksetKey(username string) string {
	return "workset:" + username
}

func uploadKey(username string) string {
	return "upload:" + username
}
