//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tinyracing/race-manager-go/pkg/db/migrate"
	database "github.com/tinyracing/race-manager-go/pkg/db/postgres"
)

// SetupTestDb starts (or reuses) the test container, applies the
// migrations and returns a connection pool.
func SetupTestDb() *pgxpool.Pool {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		log.Fatal(err)
	}
	container, err := SetupPostgres(ctx,
		WithPort(port.Port()),
		WithInitialDatabase("postgres", "password", "postgres"),
		WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
		WithName("race-manager-test"),
	)
	if err != nil {
		log.Fatal(err)
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbURL := fmt.Sprintf("postgresql://postgres:password@%s:%s/postgres",
		host, containerPort.Port())

	return initPool(ctx, dbURL)
}

// SetupExternalTestDb connects to the database given by TESTDB_URL
// instead of starting a container. Used on CI runners with a service
// database.
func SetupExternalTestDb() *pgxpool.Pool {
	return initPool(context.Background(), os.Getenv("TESTDB_URL"))
}

func initPool(ctx context.Context, dbURL string) *pgxpool.Pool {
	if err := migrate.MigrateDb(dbURL); err != nil {
		log.Fatal(err)
	}
	pool, err := database.InitWithURL(ctx, dbURL)
	if err != nil {
		log.Fatal(err)
	}
	return pool
}

func ClearResultTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from race_result")
}

func ClearEventTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from event")
}

func ClearRaceTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from registration")
	pool.Exec(context.Background(), "delete from race")
}

func ClearTeamTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from car")
	pool.Exec(context.Background(), "delete from driver")
	pool.Exec(context.Background(), "delete from team")
}

func ClearTrackTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from track")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearResultTable(pool)
	ClearEventTable(pool)
	ClearRaceTable(pool)
	ClearTeamTable(pool)
	ClearTrackTable(pool)
}
