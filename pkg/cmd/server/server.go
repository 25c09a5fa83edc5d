package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/tinyracing/race-manager-go/log"
	"github.com/tinyracing/race-manager-go/pkg/config"
	"github.com/tinyracing/race-manager-go/pkg/db/postgres"
	"github.com/tinyracing/race-manager-go/pkg/endpoints/public"
	"github.com/tinyracing/race-manager-go/pkg/fixture"
	"github.com/tinyracing/race-manager-go/pkg/model"
	raceRepo "github.com/tinyracing/race-manager-go/pkg/repository/race"
	"github.com/tinyracing/race-manager-go/pkg/service/recorder"
	"github.com/tinyracing/race-manager-go/pkg/service/results"
	"github.com/tinyracing/race-manager-go/pkg/simulation"
	"github.com/tinyracing/race-manager-go/pkg/utils"
	"github.com/tinyracing/race-manager-go/pkg/utils/certs/traefik"
	"github.com/tinyracing/race-manager-go/pkg/ws"
)

var (
	raceSeed     int64
	traefikCerts string
	tlsDomain    string
)

func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the race server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer()
		},
	}
	cmd.Flags().StringVar(&config.ListenAddr,
		"listen-addr",
		":8080",
		"listen address for the HTTP/WebSocket server")
	cmd.Flags().StringVar(&config.RaceFixture,
		"race-fixture",
		"race.yml",
		"path to the race fixture file (track, teams, drivers)")
	cmd.Flags().StringVar(&config.TickInterval,
		"tick-interval",
		"100ms",
		"duration of one simulation tick")
	cmd.Flags().StringVar(&config.FuelPolicy,
		"fuel-policy",
		string(simulation.FuelPolicyDNF),
		"what happens when a tank runs dry (dnf, force-pit)")
	cmd.Flags().IntVar(&config.CommandBuffer,
		"command-buffer",
		64,
		"capacity of the command inbox")
	cmd.Flags().IntVar(&config.EventBuffer,
		"event-buffer",
		256,
		"capacity of the event recorder queue")
	cmd.Flags().IntVar(&config.EventWorkers,
		"event-workers",
		2,
		"number of event recorder workers")
	cmd.Flags().StringVar(&config.WatchdogInterval,
		"watchdog-interval",
		"5s",
		"how often scheduled races are checked")
	cmd.Flags().Int64Var(&raceSeed,
		"race-seed",
		time.Now().UnixNano(),
		"seed for the per-car performance spread")
	cmd.Flags().StringVar(&traefikCerts,
		"traefik-certs",
		"",
		"path to a traefik acme.json to serve TLS from")
	cmd.Flags().StringVar(&tlsDomain,
		"tls-domain",
		"",
		"domain whose certificate is used for TLS")
	cmd.Flags().StringVar(&config.LogLevel,
		"logLevel",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.SQLLogLevel,
		"sqlLogLevel",
		"info",
		"controls the log level for sql methods")
	cmd.Flags().StringVar(&config.LogFormat,
		"logFormat",
		"json",
		"controls the log output format")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

//nolint:funlen // wiring
func startServer() error {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting server")

	waitTimeout := parseDuration(config.WaitForServices, 15*time.Second)
	if err := utils.WaitForTCP(utils.ExtractFromDBURL(config.DB), waitTimeout); err != nil {
		return err
	}
	var poolOpts []postgres.PoolConfigOption
	if parseLogLevel(config.SQLLogLevel, log.InfoLevel) == log.DebugLevel {
		poolOpts = append(poolOpts, postgres.WithTracer(logger.Named("sql")))
	}
	pool, err := postgres.InitWithURL(ctx, config.DB, poolOpts...)
	if err != nil {
		return err
	}
	defer pool.Close()

	fix, err := fixture.Load(config.RaceFixture)
	if err != nil {
		return err
	}
	track := fix.BuildTrack()
	cars := fix.BuildCars(raceSeed)
	race, err := seedRace(ctx, pool, fix, track, cars)
	if err != nil {
		return err
	}
	log.Info("Race loaded",
		log.String("raceId", race.ID.String()),
		log.String("track", track.Name),
		log.Int("laps", race.Laps),
		log.Int("cars", len(cars)))

	rec := recorder.New(pool,
		recorder.WithLogger(logger.Named("recorder")),
		recorder.WithWorkers(config.EventWorkers),
		recorder.WithBuffer(config.EventBuffer))
	rec.Start()

	writer := results.New(pool, results.WithLogger(logger.Named("results")))

	engine := simulation.NewEngine(race.ID, track, cars,
		simulation.WithTickSeconds(parseDuration(config.TickInterval, 100*time.Millisecond).Seconds()),
		simulation.WithFuelPolicy(simulation.FuelPolicy(config.FuelPolicy)),
		simulation.WithEventSink(rec.Enqueue),
		simulation.WithRandSeed(raceSeed))

	hub := ws.NewHub(ws.WithLogger(logger.Named("ws")))
	var manager *public.Manager

	sched := simulation.NewScheduler(engine,
		simulation.WithInterval(parseDuration(config.TickInterval, 100*time.Millisecond)),
		simulation.WithLogger(logger.Named("sched")),
		simulation.WithCommandBuffer(config.CommandBuffer),
		simulation.WithSnapshotFunc(func(snap *simulation.Snapshot) {
			hub.Publish(snap)
			manager.UpdateSnapshot(snap)
		}),
		simulation.WithFinishedFunc(func(res []model.RaceResult) {
			// Off the tick goroutine; Persist retries with backoff.
			go func() {
				//nolint:errcheck // logged inside, race stays ONGOING on failure
				writer.Persist(context.Background(), race.ID, res)
			}()
		}))

	manager = public.NewManager(sched, race,
		public.WithLogger(logger.Named("api")),
		public.WithStatusUpdater(func(ctx context.Context, status model.RaceStatus) error {
			_, err := raceRepo.UpdateStatus(ctx, pool, race.ID, status)
			return err
		}))

	go func() {
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("race loop failed", log.ErrorField(err))
		}
	}()
	go runWatchdog(ctx, pool, race, manager, sched,
		parseDuration(config.WatchdogInterval, 5*time.Second))

	router := chi.NewRouter()
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // best effort
		w.Write([]byte("ok"))
	})
	router.Get("/ws", hub.Handler)
	router.Mount("/", manager.Router())

	srv := &http.Server{
		Addr:              config.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if traefikCerts != "" && tlsDomain != "" {
		cert, certErr := traefik.GetCertFromTraefik(traefikCerts, tlsDomain)
		if certErr != nil {
			return certErr
		}
		srv.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}
	go func() {
		log.Info("Server listening",
			log.String("addr", config.ListenAddr),
			log.Bool("tls", srv.TLSConfig != nil))
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", log.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	//nolint:errcheck // shutting down anyway
	srv.Shutdown(shutdownCtx)
	hub.Close()
	rec.Close()

	log.Info("Server terminated")
	return nil
}

// seedRace persists the fixture so events and results have their
// foreign keys in place, and fills the generated ids back into the
// in-memory state.
func seedRace(
	ctx context.Context, pool *pgxpool.Pool,
	fix *fixture.Fixture, track *model.Track, cars []*model.Car,
) (*model.Race, error) {
	if err := ensureTrack(ctx, pool, track); err != nil {
		return nil, err
	}

	race := &model.Race{
		TrackID:   track.ID,
		Laps:      fix.Race.Laps,
		Status:    model.RaceRegistrationClosed,
		StartTime: fix.Race.StartTime,
	}
	if err := raceRepo.Create(ctx, pool, race); err != nil {
		return nil, err
	}

	for _, car := range cars {
		if err := seedEntrant(ctx, pool, race, car); err != nil {
			return nil, err
		}
	}
	return race, nil
}
