package dao

import (
	"time"

	"github.com/andresvm/email-autosend/model"
	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
)

type EntryDao interface {
	//Create appends an entry holding the uploaded payload and returns it
	Create(data map[string]string) (model.Entry, error)
	//GetOneById returns entry by id
	GetOneById(id uint32) (model.Entry, error)
	//GetPage returns one page of entries in insertion order plus the total count
	GetPage(page, limit int) ([]model.Entry, int, error)
	//Clear removes all entries
	Clear() error
}

func NewEntryDao(db Db) EntryDao {
	return &entryDao{db: db}
}

type entryDao struct {
	db Db
}

func (d entryDao) Create(data map[string]string) (model.Entry, error) {
	entry := &model.Entry{CreatedAt: time.Now().UTC(), Data: data}
	err := d.db.Save(entry)
	return *entry, err
}

func (d entryDao) GetOneById(id uint32) (entry model.Entry, err error) {
	err = d.db.One("Id", id, &entry)
	return
}

func (d entryDao) GetPage(page, limit int) ([]model.Entry, int, error) {
	total, err := d.db.Count(&model.Entry{})
	if err != nil {
		return nil, 0, err
	}

	entries := []model.Entry{}
	err = d.db.All(&entries, storm.Skip((page-1)*limit), storm.Limit(limit))
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (d entryDao) Clear() error {
	err := d.db.Select(q.True()).Delete(&model.Entry{})
	if err != nil && err.Error() != "not found" {
		return err
	}
	return nil
}
