// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"DrawPulse/pkg/config"
	"DrawPulse/pkg/server"
)

// Injectors from wire.go:

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	drawStream := ProvideDrawStream(cfg)
	engine := ProvideEngine(cfg)
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	publisher := ProvidePublisher(producer, cfg)
	client, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	clickHouseStorage, err := ProvideStorage(client)
	if err != nil {
		return nil, err
	}
	storage := ProvideStorageIface(clickHouseStorage)
	metrics := ProvideMetrics()
	outcomeProcessor := ProvideOutcomeProcessor(publisher, storage, metrics, cfg)
	outcomeStore := ProvideOutcomeStore(clickHouseStorage)
	bytesCache := ProvideBytesCache(cfg)
	predictionService := ProvidePredictionService(engine, outcomeProcessor, outcomeStore, bytesCache, metrics, logger, cfg)
	drawCollector := ProvideDrawCollector(drawStream, predictionService, metrics)
	consumer, err := ProvideKafkaConsumer(cfg)
	if err != nil {
		return nil, err
	}
	kafkaOutcomesHandler := ProvideKafkaOutcomesHandler(storage, metrics, cfg)
	historyUseCase := ProvideHistoryUseCase(outcomeStore)
	handler := ProvideHTTPHandler(logger, predictionService, historyUseCase, drawCollector, storage)
	app := ProvideApp(cfg, logger, drawCollector, consumer, kafkaOutcomesHandler, client, handler, outcomeProcessor, producer)
	return app, nil
}
