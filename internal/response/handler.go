package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MerciDanke/SurveyMoonbear-APP/internal/errs"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/httpx"
)

// Handler exposes the submission endpoint for launched surveys.
type Handler struct {
	collector *Collector
}

// NewHandler constructs a Handler backed by the collector.
func NewHandler(collector *Collector) *Handler {
	return &Handler{collector: collector}
}

// Mount registers the response routes on the provided router under the
// supplied base path.
func (h *Handler) Mount(router chi.Router, basePath string) {
	path := strings.TrimSpace(basePath)
	if path == "" {
		path = "/responses"
	}

	router.Route(path, func(r chi.Router) {
		r.Post("/{surveyID}/{launchID}", h.submit)
	})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var submission Submission
	if err := decodeJSON(r, &submission); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	// Respondents are not authenticated; an id is minted per pass unless the
	// client already carries one.
	respondentID := strings.TrimSpace(r.URL.Query().Get("respondent"))
	if respondentID == "" {
		respondentID = uuid.NewString()
	}

	in := Input{
		SurveyID:     chi.URLParam(r, "surveyID"),
		LaunchID:     chi.URLParam(r, "launchID"),
		RespondentID: respondentID,
		Submission:   submission,
	}

	if err := h.collector.Collect(r.Context(), in); err != nil {
		httpx.Error(w, statusFor(err), err.Error())
		return
	}

	httpx.Data(w, http.StatusAccepted, map[string]any{
		"respondentId": respondentID,
	})
}

func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindLookup:
		return http.StatusNotFound
	case errs.KindMapping, errs.KindSerialization:
		return http.StatusUnprocessableEntity
	case errs.KindTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}
