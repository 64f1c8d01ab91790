package client

import (
	"time"

	"github.com/andresvm/email-autosend/service/dto"
	"github.com/asdine/storm/v3"
	bolt "go.etcd.io/bbolt"
)

const (
	cacheBucket = "cache"
	snapshotKey = "userData"
	lastSyncKey = "lastSync"
)

// Cache is the durable store for the last successfully fetched page.
type Cache interface {
	//SaveSnapshot overwrites the stored snapshot and stamps the sync time.
	//Pages without the success flag are not trusted and are dropped.
	SaveSnapshot(page dto.Page) error
	//LoadSnapshot returns the stored snapshot and whether one exists
	LoadSnapshot() (dto.Page, bool, error)
	//LastSync returns the time of the last stored snapshot
	LastSync() (time.Time, bool, error)
	//Clear removes the snapshot and sync time
	Clear() error
	Close() error
}

type stormCache struct {
	db *storm.DB
}

// OpenCache opens the bolt-backed snapshot store at the given path.
func OpenCache(path string) (Cache, error) {
	db, err := storm.Open(path, storm.BoltOptions(0600, &bolt.Options{Timeout: 10 * time.Second}))
	if err != nil {
		return nil, err
	}
	return &stormCache{db: db}, nil
}

func (c *stormCache) SaveSnapshot(page dto.Page) error {
	if !page.Success {
		return nil
	}

	if err := c.db.Set(cacheBucket, snapshotKey, &page); err != nil {
		return err
	}
	return c.db.Set(cacheBucket, lastSyncKey, time.Now().UTC().Format(time.RFC3339))
}

func (c *stormCache) LoadSnapshot() (dto.Page, bool, error) {
	var page dto.Page
	err := c.db.Get(cacheBucket, snapshotKey, &page)
	if err == storm.ErrNotFound {
		return dto.Page{}, false, nil
	}
	if err != nil {
		return dto.Page{}, false, err
	}
	return page, true, nil
}

func (c *stormCache) LastSync() (time.Time, bool, error) {
	var stamp string
	err := c.db.Get(cacheBucket, lastSyncKey, &stamp)
	if err == storm.ErrNotFound {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	ts, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}, false, err
	}
	return ts, true, nil
}

func (c *stormCache) Clear() error {
	if err := c.db.Delete(cacheBucket, snapshotKey); err != nil && err != storm.ErrNotFound {
		return err
	}
	if err := c.db.Delete(cacheBucket, lastSyncKey); err != nil && err != storm.ErrNotFound {
		return err
	}
	return nil
}

func (c *stormCache) Close() error {
	return c.db.Close()
}
