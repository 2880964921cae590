package main

import (
	"flag"
	"log"
	"os"

	"DrawPulse/internal/di"
	"DrawPulse/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s backend=%s feed=%s game=%s", cfg.Environment, cfg.Backend.Type, cfg.Feed.Mode, cfg.Feed.Game)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("clickhouse: connected and schema ready - db: %s", cfg.ClickHouse.Database)
	log.Printf("kafka: brokers=%v decision_topic=%s outcome_topic=%s", cfg.Kafka.Brokers, cfg.Kafka.DecisionTopic, cfg.Kafka.OutcomeTopic)

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
