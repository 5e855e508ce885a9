package main

import (
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"trip_planner/pkg/bussystem"
	"trip_planner/pkg/config"
	"trip_planner/pkg/dsv"
	"trip_planner/pkg/planner"
	"trip_planner/pkg/shell"
	"trip_planner/pkg/streetmap"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("loading config", zap.Error(err))
		os.Exit(1)
	}

	p, err := buildPlanner(cfg, log)
	if err != nil {
		log.Error("building planner", zap.Error(err))
		os.Exit(1)
	}

	sh := shell.New(p, os.Stdin, os.Stdout, os.Stderr, shell.NewDirFactory(cfg.ResultsDir), log)
	if err := sh.Run(); err != nil {
		log.Error("command shell failed", zap.Error(err))
		os.Exit(1)
	}
}

// buildPlanner loads the street map and bus system and constructs the
// planner.
func buildPlanner(cfg *config.Config, log *zap.Logger) (*planner.Planner, error) {
	start := time.Now()

	mapFile, err := os.Open(cfg.MapPath)
	if err != nil {
		return nil, err
	}
	defer mapFile.Close()

	sm, err := streetmap.Load(mapFile)
	if err != nil {
		return nil, err
	}
	log.Info("street map loaded",
		zap.Int("nodes", sm.NodeCount()),
		zap.Int("ways", sm.WayCount()),
		zap.Int("dropped", sm.DroppedEntities()))

	stopsFile, err := os.Open(cfg.StopsPath)
	if err != nil {
		return nil, err
	}
	defer stopsFile.Close()
	routesFile, err := os.Open(cfg.RoutesPath)
	if err != nil {
		return nil, err
	}
	defer routesFile.Close()

	bs, err := bussystem.Load(
		dsv.NewReader(stopsFile, ','),
		dsv.NewReader(routesFile, ','),
	)
	if err != nil {
		return nil, err
	}

	p := planner.New(planner.Config{
		StreetMap:       sm,
		BusSystem:       bs,
		WalkSpeedMPH:    cfg.WalkSpeedMPH,
		BikeSpeedMPH:    cfg.BikeSpeedMPH,
		DefaultSpeedMPH: cfg.DefaultSpeedMPH,
		BusStopTimeSec:  cfg.BusStopTimeSec,
	}, log)

	log.Info("ready", zap.Duration("took", time.Since(start).Round(time.Millisecond)))
	return p, nil
}
