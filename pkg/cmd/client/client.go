package client

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/tinyracing/race-manager-go/log"
	"github.com/tinyracing/race-manager-go/pkg/simulation"
)

var addr string

// NewWatchCmd is a terminal viewer for the live broadcast, mainly used
// during development to eyeball a running race.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "follows the live race broadcast",
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchRace()
		},
	}
	cmd.Flags().StringVar(&addr,
		"addr",
		"ws://localhost:8080/ws",
		"websocket address of the race server")
	return cmd
}

func watchRace() error {
	logger := log.DevLogger(
		os.Stderr,
		log.DebugLevel,
		log.WithCaller(true),
		log.AddCallerSkip(1))
	log.ResetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	log.Info("connected", log.String("addr", addr))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				log.Info("done")
				return nil
			}
			return err
		}
		var snap simulation.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			log.Warn("unreadable frame", log.ErrorField(err))
			continue
		}
		printSnapshot(&snap)
	}
}

func printSnapshot(snap *simulation.Snapshot) {
	leader := "-"
	for i := range snap.Cars {
		if snap.Cars[i].RacePosition == 1 {
			leader = snap.Cars[i].Driver.Name
			break
		}
	}
	log.Info("race state",
		log.String("status", string(snap.RaceStatus)),
		log.Int("lap", snap.CurrentLap),
		log.Int("totalLaps", snap.TotalLaps),
		log.String("weather", string(snap.Track.CurrentWeather)),
		log.String("leader", leader))
}
