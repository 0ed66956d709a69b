package spreadsheet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MerciDanke/SurveyMoonbear-APP/internal/errs"
)

// Gateway is an HTTP client for the external spreadsheet API. Requests are
// authorized with the owner's bearer access token.
type Gateway struct {
	baseURL string
	client  *http.Client
}

// NewGateway constructs a gateway against the given API base URL. A nil
// client falls back to a default with a request timeout.
func NewGateway(baseURL string, client *http.Client) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Document fetches the raw document for a spreadsheet id.
func (g *Gateway) Document(ctx context.Context, spreadsheetID, accessToken string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.documentURL(spreadsheetID), nil)
	if err != nil {
		return Document{}, errs.Wrap(errs.KindLookup, "failed to read spreadsheet survey", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return Document{}, errs.Wrap(errs.KindLookup, "failed to read spreadsheet survey", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, errs.Wrap(errs.KindLookup, "failed to read spreadsheet survey",
			fmt.Errorf("spreadsheet api returned status %d", resp.StatusCode))
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Document{}, errs.Wrap(errs.KindMapping, "failed to decode spreadsheet document", err)
	}
	return doc, nil
}

// DeleteDocument removes the external document backing a survey.
func (g *Gateway) DeleteDocument(ctx context.Context, spreadsheetID, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, g.documentURL(spreadsheetID), nil)
	if err != nil {
		return errs.Wrap(errs.KindTransport, "failed to delete spreadsheet", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return errs.Wrap(errs.KindTransport, "failed to delete spreadsheet", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errs.Wrap(errs.KindTransport, "failed to delete spreadsheet",
			fmt.Errorf("spreadsheet api returned status %d", resp.StatusCode))
	}
	return nil
}

func (g *Gateway) documentURL(spreadsheetID string) string {
	return fmt.Sprintf("%s/spreadsheets/%s", g.baseURL, spreadsheetID)
}
