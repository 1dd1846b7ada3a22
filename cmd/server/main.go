package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"dungeon-server/internal/config"
	"dungeon-server/internal/engine"
	"dungeon-server/internal/network"
	"dungeon-server/internal/server"
	"dungeon-server/internal/version"
	"dungeon-server/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var seed int64
	var configDir string
	// Читаем флаг -seed. По умолчанию 0 (значит сгенерировать случайно).
	flag.Int64Var(&seed, "seed", 0, "Initial world seed (0 for random)")
	flag.StringVar(&configDir, "config", "data", "Directory with game data JSON files")
	flag.Parse()

	logger.Log.Info("Starting Dungeon Server...")
	logger.Log.Info(version.String())

	// Формируем конфиг
	cfg := engine.NewConfig()
	if seed != 0 {
		cfg.Seed = seed
		logger.Log.Infof("Using explicit world seed: %d", seed)
	} else {
		logger.Log.Infof("Using random world seed: %d", cfg.Seed)
	}

	data, err := config.Load(configDir)
	if err != nil {
		logger.Log.Fatal("Failed to load game data: ", err)
	}

	port := os.Getenv("DS_PORT")
	if port == "" {
		port = "8080"
	}

	// 2. Инициализация ядра
	hub := network.NewBroadcaster()
	session := engine.NewSession(cfg, data, hub)

	ctx, cancel := context.WithCancel(context.Background())
	go session.Run(ctx)

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 3. Запуск сервера
	srv := server.NewServer(session, port)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("Server start error: ", err)
		}
	}()

	<-stop
	logger.Log.Info("Shutting down...")
	cancel()
	logger.Log.Info("Done.")
}
