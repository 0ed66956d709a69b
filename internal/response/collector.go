// Package response turns a raw survey submission into the ordered, flattened
// record list that is handed to the response queue, and hosts the worker that
// drains that queue into storage.
package response

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/MerciDanke/SurveyMoonbear-APP/internal/entity"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/errs"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/observability"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/pipeline"
)

// Reserved submission keys carried alongside the item answers.
const (
	StartTimeKey = "moonbear_start_time"
	EndTimeKey   = "moonbear_end_time"
	URLParamsKey = "moonbear_url_params"
	UpdatedAtKey = "responses_updated_at"
)

// Submission is the raw answer payload for one respondent's pass: item name
// to submitted value, plus the reserved keys above.
type Submission map[string]string

// Input identifies one submission against one launched survey.
type Input struct {
	SurveyID     string
	LaunchID     string
	RespondentID string
	Submission   Submission
}

// Record is one flattened, storage-ready response fact as it travels through
// the queue.
type Record struct {
	SurveyID     string     `json:"surveyId"`
	LaunchID     string     `json:"launchId"`
	RespondentID string     `json:"respondentId"`
	PageIndex    int        `json:"pageIndex"`
	ItemOrder    int        `json:"itemOrder"`
	Response     *string    `json:"response"`
	UpdatedAt    *time.Time `json:"updatedAt"`
	ItemData     *string    `json:"itemData"`
}

// SurveyLookup resolves the persisted page layout for a survey.
type SurveyLookup interface {
	GetFromDatabase(ctx context.Context, surveyID string) (entity.Survey, error)
}

// Publisher hands a serialized payload to the queue gateway.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte, headers map[string]string) error
}

// Collector is the response-ingestion pipeline. One Collect call is one
// respondent's single pass through one survey; concurrent calls are
// independent and only read the survey layout.
type Collector struct {
	surveys SurveyLookup
	queue   Publisher
}

// NewCollector constructs the collector from its two collaborators.
func NewCollector(surveys SurveyLookup, queue Publisher) *Collector {
	return &Collector{surveys: surveys, queue: queue}
}

// collectContext is the progressively-extended state threaded through the
// pipeline steps.
type collectContext struct {
	in Input

	pages         []entity.Page
	metaPageIndex int // one past the last real page; home of the reserved rows
	entities      []entity.Response
	records       []Record
}

// Collect runs the ingestion pipeline. On success the flattened records have
// been handed to the queue and there is nothing to return; on failure the
// first failing step's error surfaces and the queue is never contacted by
// any later step.
func (c *Collector) Collect(ctx context.Context, in Input) error {
	_, err := pipeline.Run(ctx, collectContext{in: in},
		pipeline.Step[collectContext]{Name: "fetch_survey_items", Run: c.fetchSurveyItems},
		pipeline.Step[collectContext]{Name: "build_response_entities", Run: c.buildResponseEntities},
		pipeline.Step[collectContext]{Name: "append_time_records", Run: c.appendTimeRecords},
		pipeline.Step[collectContext]{Name: "append_url_params", Run: c.appendURLParams},
		pipeline.Step[collectContext]{Name: "flatten_for_storing", Run: c.flattenForStoring},
		pipeline.Step[collectContext]{Name: "send_to_queue", Run: c.sendToQueue},
	)
	if err != nil {
		observability.PipelineFailures.WithLabelValues(kindLabel(err)).Inc()
		return err
	}
	return nil
}

func (c *Collector) fetchSurveyItems(ctx context.Context, cc collectContext) (collectContext, error) {
	survey, err := c.surveys.GetFromDatabase(ctx, cc.in.SurveyID)
	if err != nil {
		return cc, errs.Wrap(errs.KindLookup, "failed to fetch survey items with survey id", err)
	}
	cc.pages = survey.Pages
	cc.metaPageIndex = len(survey.Pages)
	return cc, nil
}

func (c *Collector) buildResponseEntities(ctx context.Context, cc collectContext) (collectContext, error) {
	updatedAt, err := parseUpdatedAtMap(cc.in.Submission)
	if err != nil {
		return cc, err
	}

	for _, page := range cc.pages {
		for _, item := range page.Items {
			if !item.Interactive() {
				continue
			}

			snapshot, err := snapshotItem(item)
			if err != nil {
				return cc, errs.Wrap(errs.KindSerialization, "failed to create response entities", err)
			}

			cc.entities = append(cc.entities, entity.Response{
				RespondentID: cc.in.RespondentID,
				PageIndex:    page.Index,
				ItemOrder:    item.Order,
				Response:     submittedValue(cc.in.Submission, item.Name),
				UpdatedAt:    updatedAt[item.Name],
				ItemData:     &snapshot,
			})
		}
	}
	return cc, nil
}

func (c *Collector) appendTimeRecords(ctx context.Context, cc collectContext) (collectContext, error) {
	for _, slot := range []struct {
		order int
		key   string
	}{
		{entity.StartTimeOrder, StartTimeKey},
		{entity.EndTimeOrder, EndTimeKey},
	} {
		cc.entities = append(cc.entities, entity.Response{
			RespondentID: cc.in.RespondentID,
			PageIndex:    cc.metaPageIndex,
			ItemOrder:    slot.order,
			Response:     submittedValue(cc.in.Submission, slot.key),
		})
	}
	return cc, nil
}

func (c *Collector) appendURLParams(ctx context.Context, cc collectContext) (collectContext, error) {
	value, ok := cc.in.Submission[URLParamsKey]
	if !ok {
		// Absence is expected and never fails the pipeline.
		return cc, nil
	}
	cc.entities = append(cc.entities, entity.Response{
		RespondentID: cc.in.RespondentID,
		PageIndex:    cc.metaPageIndex,
		ItemOrder:    entity.URLParamsOrder,
		Response:     &value,
	})
	return cc, nil
}

func (c *Collector) flattenForStoring(ctx context.Context, cc collectContext) (collectContext, error) {
	cc.records = make([]Record, 0, len(cc.entities))
	for _, resp := range cc.entities {
		cc.records = append(cc.records, Record{
			SurveyID:     cc.in.SurveyID,
			LaunchID:     cc.in.LaunchID,
			RespondentID: resp.RespondentID,
			PageIndex:    resp.PageIndex,
			ItemOrder:    resp.ItemOrder,
			Response:     resp.Response,
			UpdatedAt:    resp.UpdatedAt,
			ItemData:     resp.ItemData,
		})
	}
	return cc, nil
}

func (c *Collector) sendToQueue(ctx context.Context, cc collectContext) (collectContext, error) {
	payload, err := json.Marshal(cc.records)
	if err != nil {
		return cc, errs.Wrap(errs.KindSerialization, "failed to encode responses for storing", err)
	}
	if err := c.queue.Publish(ctx, cc.in.RespondentID, payload, nil); err != nil {
		return cc, errs.Wrap(errs.KindTransport, "failed to add new responses to queues", err)
	}
	observability.ResponseBatchesEnqueued.Inc()
	return cc, nil
}

// itemSnapshot is the serialized static view of an item captured at
// submission time, detached from the live entity.
type itemSnapshot struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Options     []string `json:"options"`
}

func snapshotItem(item entity.Item) (string, error) {
	data, err := json.Marshal(itemSnapshot{
		Type:        item.Type,
		Name:        item.Name,
		Description: item.Description,
		Required:    item.Required,
		Options:     item.Options,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func submittedValue(sub Submission, key string) *string {
	value, ok := sub[key]
	if !ok {
		return nil
	}
	return &value
}

// parseUpdatedAtMap decodes the auxiliary per-field timestamp map. A missing
// auxiliary field yields an empty map; a present but malformed one fails the
// build step.
func parseUpdatedAtMap(sub Submission) (map[string]*time.Time, error) {
	raw, ok := sub[UpdatedAtKey]
	if !ok || strings.TrimSpace(raw) == "" {
		return map[string]*time.Time{}, nil
	}

	var byName map[string]string
	if err := json.Unmarshal([]byte(raw), &byName); err != nil {
		return nil, errs.Wrap(errs.KindSerialization, "failed to create response entities", err)
	}

	parsed := make(map[string]*time.Time, len(byName))
	for name, value := range byName {
		ts, err := parseTimestamp(value)
		if err != nil {
			return nil, errs.Wrap(errs.KindSerialization, "failed to create response entities", err)
		}
		parsed[name] = &ts
	}
	return parsed, nil
}

// timestampLayouts covers RFC 3339 plus the browser Date#toString format the
// survey front end submits, e.g. "Mon Apr 29 2019 20:39:05 GMT+0800".
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"2006-01-02 15:04:05",
}

func parseTimestamp(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	// Drop a trailing "(Zone Name)" annotation if present.
	if idx := strings.Index(trimmed, " ("); idx > 0 && strings.HasSuffix(trimmed, ")") {
		trimmed = trimmed[:idx]
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, trimmed)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func kindLabel(err error) string {
	switch errs.KindOf(err) {
	case errs.KindLookup:
		return "lookup"
	case errs.KindMapping:
		return "mapping"
	case errs.KindSerialization:
		return "serialization"
	case errs.KindTransport:
		return "transport"
	}
	return "unknown"
}
