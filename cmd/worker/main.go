package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/MerciDanke/SurveyMoonbear-APP/internal/config"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/database"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/mq"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/response"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.Connect("response-worker", cfg.PostgresDSN)
	if err := db.AutoMigrate(&response.StoredResponse{}); err != nil {
		log.Fatalf("response worker: failed to run migrations: %v", err)
	}

	store := response.NewGormRecordStore(db)
	worker := response.NewWorker(store)

	consumer, err := mq.NewConsumer(mq.ConsumerConfig{
		Brokers:  cfg.KafkaBrokerList(),
		Topic:    cfg.ResponseQueueTopic,
		GroupID:  cfg.ResponseQueueGroup,
		ClientID: fmt.Sprintf("%s-response-worker", cfg.ServiceName),
	}, worker.HandleMessage)
	if err != nil {
		log.Fatalf("response worker: failed to create consumer: %v", err)
	}
	defer consumer.Close()

	log.Printf("response worker consuming topic=%s group=%s", cfg.ResponseQueueTopic, cfg.ResponseQueueGroup)

	if err := worker.RunConsumer(ctx, consumer); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("response worker stopped: %v", err)
	}

	log.Println("response worker stopped")
}
