package response

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/MerciDanke/SurveyMoonbear-APP/internal/mq"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/observability"
)

// Worker drains the response queue and persists delivered record batches.
type Worker struct {
	store RecordStore
}

// NewWorker constructs a queue worker.
func NewWorker(store RecordStore) *Worker {
	return &Worker{store: store}
}

// HandleMessage consumes one queue message: a JSON array of flattened
// response records produced by the collector. Unreadable payloads are
// discarded; storage failures are returned so the batch is redelivered
// once consumption resumes.
func (w *Worker) HandleMessage(ctx context.Context, msg mq.Message) error {
	if w == nil || w.store == nil {
		return fmt.Errorf("response worker not initialised")
	}

	var records []Record
	if err := json.Unmarshal(msg.Value, &records); err != nil {
		// The payload will never become readable, so retrying is pointless.
		return mq.Discard(fmt.Errorf("decode response batch: %w", err))
	}
	if len(records) == 0 {
		log.Printf("response worker: empty batch, skipping")
		return nil
	}

	stored, err := w.store.StoreBatch(ctx, records)
	if err != nil {
		return fmt.Errorf("store response batch: %w", err)
	}

	observability.ResponseRecordsStored.Add(float64(stored))
	log.Printf("response worker: stored %d/%d records for respondent %s",
		stored, len(records), records[0].RespondentID)
	return nil
}

// RunConsumer starts the provided consumer using the worker handler.
func (w *Worker) RunConsumer(ctx context.Context, consumer *mq.Consumer) error {
	if consumer == nil {
		return fmt.Errorf("consumer is nil")
	}
	return consumer.Run(ctx)
}
