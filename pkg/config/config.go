package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB               string // connection string for the database
	WaitForServices  string // duration to wait for other services to be ready
	LogLevel         string // sets the log level (zap log level values)
	SQLLogLevel      string // sets the log level for sql subsystem
	LogFormat        string // text vs json
	ListenAddr       string // listen addr for the HTTP/WebSocket server
	RaceFixture      string // path to the race fixture file (track, teams, drivers)
	TickInterval     string // duration of one simulation tick
	FuelPolicy       string // fuel exhaustion policy (dnf, force-pit)
	CommandBuffer    int    // capacity of the command inbox
	EventBuffer      int    // capacity of the event recorder queue
	EventWorkers     int    // number of event recorder workers
	WatchdogInterval string // how often scheduled races are checked
)
