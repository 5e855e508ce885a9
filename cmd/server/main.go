package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"trip_planner/pkg/api"
	"trip_planner/pkg/bussystem"
	"trip_planner/pkg/config"
	"trip_planner/pkg/dsv"
	"trip_planner/pkg/planner"
	"trip_planner/pkg/spatial"
	"trip_planner/pkg/streetmap"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
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
	if *port != 0 {
		cfg.APIPort = *port
	}

	mapFile, err := os.Open(cfg.MapPath)
	if err != nil {
		log.Error("opening street map", zap.Error(err))
		os.Exit(1)
	}
	sm, err := streetmap.Load(mapFile)
	mapFile.Close()
	if err != nil {
		log.Error("loading street map", zap.Error(err))
		os.Exit(1)
	}

	stopsFile, err := os.Open(cfg.StopsPath)
	if err != nil {
		log.Error("opening stops", zap.Error(err))
		os.Exit(1)
	}
	routesFile, err := os.Open(cfg.RoutesPath)
	if err != nil {
		stopsFile.Close()
		log.Error("opening routes", zap.Error(err))
		os.Exit(1)
	}
	bs, err := bussystem.Load(
		dsv.NewReader(stopsFile, ','),
		dsv.NewReader(routesFile, ','),
	)
	stopsFile.Close()
	routesFile.Close()
	if err != nil {
		log.Error("loading bus system", zap.Error(err))
		os.Exit(1)
	}

	p := planner.New(planner.Config{
		StreetMap:       sm,
		BusSystem:       bs,
		WalkSpeedMPH:    cfg.WalkSpeedMPH,
		BikeSpeedMPH:    cfg.BikeSpeedMPH,
		DefaultSpeedMPH: cfg.DefaultSpeedMPH,
		BusStopTimeSec:  cfg.BusStopTimeSec,
	}, log)

	index := spatial.NewNodeIndex(sm, log)

	serverCfg := api.DefaultServerConfig(cfg.APIPort)
	serverCfg.CORSOrigin = cfg.CORSOrigin

	srv := api.NewServer(serverCfg, api.NewHandlers(p, index), log)
	if err := api.ListenAndServe(srv, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
