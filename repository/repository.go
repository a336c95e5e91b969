package repository

import (
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/go-ringdht/config"
)

var db *gorm.DB
var once sync.Once

func GetDB() *gorm.DB {
	return db
}

// InitDB opens the node-local sqlite store and migrates the given models.
func InitDB(config *config.Config, dst ...interface{}) error {
	var retErr error = nil
	once.Do(func() {
		path := config.Storage.DbPath
		if path == "" {
			path = "./ring.db"
		}
		// use a tempDB variable so the shared variable is only set if there are no errors
		tempDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			retErr = err
			return
		}
		if err := tempDB.AutoMigrate(dst...); err != nil {
			retErr = err
			return
		}
		db = tempDB
	})
	return retErr
}
