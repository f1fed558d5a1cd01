package cache

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore keeps cache entries in a single local file, the default
// backend. Stale rows are overwritten in place on refetch.
type SQLiteStore struct {
	db *gorm.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(url string) (*Entry, bool, error) {
	var e Entry
	err := s.db.Where("url = ?", url).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &e, true, nil
}

func (s *SQLiteStore) Set(e *Entry) error {
	// Save upserts on the URL primary key, so a refetch after expiry
	// replaces the old row.
	return s.db.Save(e).Error
}

func (s *SQLiteStore) URLs() ([]string, error) {
	var urls []string
	err := s.db.Model(&Entry{}).Order("url ASC").Pluck("url", &urls).Error
	return urls, err
}

func (s *SQLiteStore) Count() (int64, error) {
	var n int64
	err := s.db.Model(&Entry{}).Count(&n).Error
	return n, err
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
