package db

import (
	migrate "github.com/rubenv/sql-migrate"

	"github.com/optimistiq/go-rolluptree/log"
)

// RunMigrations applies every pending up migration to the sqlite file at
// dbPath
func RunMigrations(dbPath string, migrations migrate.MigrationSource) error {
	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	nMigrations, err := migrate.Exec(db, "sqlite3", migrations, migrate.Up)
	if err != nil {
		return err
	}
	log.Infof("successfully ran %d migrations on %s", nMigrations, dbPath)
	return nil
}
