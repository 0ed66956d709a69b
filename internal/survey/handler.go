package survey

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MerciDanke/SurveyMoonbear-APP/internal/errs"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/httpx"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/spreadsheet"
)

// Handler exposes the survey management endpoints.
type Handler struct {
	service *Service
	repo    Repository
}

// NewHandler constructs a Handler backed by the survey service.
func NewHandler(service *Service, repo Repository) *Handler {
	return &Handler{service: service, repo: repo}
}

// Mount registers the survey routes on the provided router under the
// supplied base path.
func (h *Handler) Mount(router chi.Router, basePath string) {
	path := strings.TrimSpace(basePath)
	if path == "" {
		path = "/surveys"
	}

	router.Route(path, func(r chi.Router) {
		r.Get("/", h.listSurveys)
		r.Post("/", h.createSurvey)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getSurvey)
			r.Post("/start", h.startSurvey)
			r.Delete("/", h.deleteSurvey)
		})
	})
}

type createSurveyRequest struct {
	SpreadsheetID string              `json:"spreadsheetId"`
	Owner         spreadsheet.Profile `json:"owner"`
}

func (h *Handler) listSurveys(w http.ResponseWriter, r *http.Request) {
	ownerID := strings.TrimSpace(r.URL.Query().Get("owner"))
	if ownerID == "" {
		httpx.Error(w, http.StatusBadRequest, "owner is required")
		return
	}

	records, err := h.repo.FindByOwner(r.Context(), ownerID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]map[string]any, 0, len(records))
	for _, record := range records {
		items = append(items, record.ToDTO())
	}
	httpx.Data(w, http.StatusOK, items)
}

func (h *Handler) createSurvey(w http.ResponseWriter, r *http.Request) {
	var payload createSurveyRequest
	if err := decodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(payload.SpreadsheetID) == "" {
		httpx.Error(w, http.StatusBadRequest, "spreadsheetId is required")
		return
	}
	if strings.TrimSpace(payload.Owner.ID) == "" {
		httpx.Error(w, http.StatusBadRequest, "owner is required")
		return
	}

	owner := spreadsheet.MapAccount(payload.Owner)
	survey, err := h.service.Create(r.Context(), owner, payload.SpreadsheetID)
	if err != nil {
		httpx.Error(w, statusFor(err), err.Error())
		return
	}

	httpx.Data(w, http.StatusCreated, map[string]any{
		"id":       survey.ID,
		"originId": survey.OriginID,
		"title":    survey.Title,
		"pages":    len(survey.Pages),
	})
}

func (h *Handler) getSurvey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if IsNotFound(err) {
			httpx.Error(w, http.StatusNotFound, "survey not found")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.Data(w, http.StatusOK, record.ToDTO())
}

func (h *Handler) startSurvey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	survey, err := h.service.Start(r.Context(), id)
	if err != nil {
		httpx.Error(w, statusFor(err), err.Error())
		return
	}
	httpx.Data(w, http.StatusOK, map[string]any{
		"id":       survey.ID,
		"launchId": survey.LaunchID,
	})
}

func (h *Handler) deleteSurvey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	token := bearerToken(r)
	if _, err := h.service.Delete(r.Context(), id, token); err != nil {
		httpx.Error(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
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

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}
