package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/MerciDanke/SurveyMoonbear-APP/internal/config"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/database"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/httpx"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/mq"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/observability"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/response"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/spreadsheet"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/survey"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.Connect("api", cfg.PostgresDSN)
	if err := db.AutoMigrate(&survey.Record{}, &response.StoredResponse{}); err != nil {
		log.Fatalf("api: failed to run migrations: %v", err)
	}

	producer, err := mq.NewProducer(mq.ProducerConfig{
		Brokers:  cfg.KafkaBrokerList(),
		Topic:    cfg.ResponseQueueTopic,
		ClientID: fmt.Sprintf("%s-api", cfg.ServiceName),
	})
	if err != nil {
		log.Fatalf("api: failed to create producer: %v", err)
	}
	defer producer.Close()

	gateway := spreadsheet.NewGateway(cfg.SpreadsheetAPIURL, nil)
	repo := survey.NewGormRepository(db)
	surveys := survey.NewService(repo, gateway)
	collector := response.NewCollector(surveys, producer)

	server := httpx.New()
	survey.NewHandler(surveys, repo).Mount(server.Router, "")
	response.NewHandler(collector).Mount(server.Router, "")
	observability.RegisterMetricsEndpoint(server.Router)

	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Printf("api listening on %s", addr)

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			log.Printf("api: shutdown error: %v", err)
		}
	}()

	if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("api stopped: %v", err)
	}

	log.Println("api stopped")
}
