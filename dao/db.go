package dao

import (
	"sync"
	"time"

	"github.com/andresvm/email-autosend/model"
	"github.com/andresvm/email-autosend/util"
	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/index"
	"github.com/asdine/storm/v3/q"
	bolt "go.etcd.io/bbolt"
)

type Db interface {
	Init(data interface{}) error
	One(fieldName string, value interface{}, to interface{}) error
	Save(data interface{}) error
	Select(matchers ...q.Matcher) storm.Query
	All(to interface{}, options ...func(*index.Options)) error
	Count(data interface{}) (int, error)
	Close() error
}

var (
	once     sync.Once
	instance Db
)

// GetClient opens the backing bolt file and initializes buckets on first use.
// Subsequent calls return the same client.
func GetClient(dbFilePath string) (Db, error) {
	var err error

	once.Do(func() {
		fresh := !util.FileExists(dbFilePath)

		instance, err = storm.Open(dbFilePath, storm.BoltOptions(0600, &bolt.Options{Timeout: 10 * time.Second, ReadOnly: false}))
		if err != nil {
			return
		}
		if fresh {
			err = instance.Init(&model.Entry{})
		}
	})

	return instance, err
}
