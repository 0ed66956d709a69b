package mq

import (
	"errors"
	"strings"
	"time"
)

// ProducerConfig describes how to connect to a Kafka topic for publishing.
type ProducerConfig struct {
	Brokers   []string
	Topic     string
	ClientID  string
	BatchSize int
	Timeout   time.Duration
}

// Validate ensures the producer configuration is usable.
func (cfg ProducerConfig) Validate() error {
	if len(cfg.Brokers) == 0 {
		return errors.New("mq: at least one broker must be configured")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return errors.New("mq: topic must be provided")
	}
	return nil
}

// ConsumerConfig defines how to consume messages from Kafka.
type ConsumerConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	ClientID string
	MinBytes int
	MaxBytes int
}

// Validate ensures the consumer configuration is usable.
func (cfg ConsumerConfig) Validate() error {
	if len(cfg.Brokers) == 0 {
		return errors.New("mq: at least one broker must be configured")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return errors.New("mq: topic must be provided")
	}
	if strings.TrimSpace(cfg.GroupID) == "" {
		return errors.New("mq: group id must be provided")
	}
	return nil
}

func (cfg ProducerConfig) normalize() ProducerConfig {
	normalized := cfg
	normalized.Topic = strings.TrimSpace(normalized.Topic)
	normalized.ClientID = strings.TrimSpace(normalized.ClientID)
	normalized.Brokers = trimBrokers(normalized.Brokers)
	if normalized.Timeout <= 0 {
		normalized.Timeout = 5 * time.Second
	}
	if normalized.BatchSize <= 0 {
		normalized.BatchSize = 1
	}
	return normalized
}

func (cfg ConsumerConfig) normalize() ConsumerConfig {
	normalized := cfg
	normalized.Topic = strings.TrimSpace(normalized.Topic)
	normalized.GroupID = strings.TrimSpace(normalized.GroupID)
	normalized.ClientID = strings.TrimSpace(normalized.ClientID)
	normalized.Brokers = trimBrokers(normalized.Brokers)
	if normalized.MinBytes <= 0 {
		normalized.MinBytes = 1e3
	}
	if normalized.MaxBytes <= 0 {
		normalized.MaxBytes = 10e6
	}
	return normalized
}

func trimBrokers(brokers []string) []string {
	trimmed := make([]string, 0, len(brokers))
	for _, broker := range brokers {
		broker = strings.TrimSpace(broker)
		if broker == "" {
			continue
		}
		trimmed = append(trimmed, broker)
	}
	return trimmed
}
