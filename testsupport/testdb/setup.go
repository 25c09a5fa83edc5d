package testdb

import (
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	tcpg "github.com/tinyracing/race-manager-go/testsupport/tcpostgres"
)

// InitTestDb returns a pool against a migrated, empty test database.
func InitTestDb() *pgxpool.Pool {
	var pool *pgxpool.Pool

	if os.Getenv("TESTDB_URL") != "" {
		pool = tcpg.SetupExternalTestDb()
	} else {
		pool = tcpg.SetupTestDb()
	}
	if pool == nil {
		log.Fatal("could not init test database")
	}
	tcpg.ClearAllTables(pool)
	return pool
}
