package survey

import (
	"context"

	"github.com/google/uuid"

	"github.com/MerciDanke/SurveyMoonbear-APP/internal/entity"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/errs"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/pipeline"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/spreadsheet"
)

// DocumentGateway is the slice of the spreadsheet gateway the services need.
type DocumentGateway interface {
	Document(ctx context.Context, spreadsheetID, accessToken string) (spreadsheet.Document, error)
	DeleteDocument(ctx context.Context, spreadsheetID, accessToken string) error
}

// Service bundles the survey use cases. Each use case is an ordered pipeline
// of fallible steps with forward-only failure semantics: steps that reach an
// external collaborator are ordered so that irreversible actions happen last.
type Service struct {
	repo    Repository
	gateway DocumentGateway
}

// NewService constructs the survey service.
func NewService(repo Repository, gateway DocumentGateway) *Service {
	return &Service{repo: repo, gateway: gateway}
}

// GetFromSpreadsheet loads the live external document and maps it into a
// survey entity owned by the given account. Nothing is persisted.
func (s *Service) GetFromSpreadsheet(ctx context.Context, spreadsheetID string, owner entity.Account) (entity.Survey, error) {
	doc, err := s.gateway.Document(ctx, spreadsheetID, owner.AccessToken)
	if err != nil {
		return entity.Survey{}, err
	}
	return spreadsheet.MapSurvey(doc, owner)
}

// GetFromDatabase returns the persisted survey entity tree by id.
func (s *Service) GetFromDatabase(ctx context.Context, surveyID string) (entity.Survey, error) {
	record, err := s.repo.FindByID(ctx, surveyID)
	if err != nil {
		return entity.Survey{}, errs.Wrap(errs.KindLookup, "failed to get survey from database", err)
	}
	survey, err := record.ToEntity()
	if err != nil {
		return entity.Survey{}, errs.Wrap(errs.KindSerialization, "failed to decode stored survey pages", err)
	}
	return survey, nil
}

type createContext struct {
	spreadsheetID string
	owner         entity.Account
	survey        entity.Survey
}

// Create maps the external document and persists the resulting survey. The
// read-and-map step runs first so that a malformed document never produces a
// database row.
func (s *Service) Create(ctx context.Context, owner entity.Account, spreadsheetID string) (entity.Survey, error) {
	out, err := pipeline.Run(ctx, createContext{spreadsheetID: spreadsheetID, owner: owner},
		pipeline.Step[createContext]{Name: "read_spreadsheet", Run: s.readSpreadsheet},
		pipeline.Step[createContext]{Name: "persist_survey", Run: s.persistSurvey},
	)
	if err != nil {
		return entity.Survey{}, err
	}
	return out.survey, nil
}

func (s *Service) readSpreadsheet(ctx context.Context, c createContext) (createContext, error) {
	survey, err := s.GetFromSpreadsheet(ctx, c.spreadsheetID, c.owner)
	if err != nil {
		return c, err
	}
	c.survey = survey
	return c, nil
}

func (s *Service) persistSurvey(ctx context.Context, c createContext) (createContext, error) {
	record, err := FromEntity(c.survey)
	if err != nil {
		return c, errs.Wrap(errs.KindSerialization, "failed to encode survey pages for storing", err)
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return c, errs.Wrap(errs.KindTransport, "failed to store survey in database", err)
	}
	c.survey.ID = record.ID
	return c, nil
}

// Start assigns a fresh launch id to a survey and returns the updated entity.
// Responses can only be collected against a started survey.
func (s *Service) Start(ctx context.Context, surveyID string) (entity.Survey, error) {
	survey, err := s.GetFromDatabase(ctx, surveyID)
	if err != nil {
		return entity.Survey{}, err
	}

	launchID := uuid.NewString()
	if err := s.repo.SetLaunch(ctx, surveyID, launchID); err != nil {
		return entity.Survey{}, errs.Wrap(errs.KindTransport, "failed to start survey", err)
	}
	survey.LaunchID = launchID
	return survey, nil
}

type deleteContext struct {
	surveyID    string
	accessToken string
	deleted     *Record
}

// Delete removes the survey record and then the external document. The order
// follows the forward-only failure model: if the external delete fails the
// database row is already gone and is not restored.
func (s *Service) Delete(ctx context.Context, surveyID, accessToken string) (entity.Survey, error) {
	out, err := pipeline.Run(ctx, deleteContext{surveyID: surveyID, accessToken: accessToken},
		pipeline.Step[deleteContext]{Name: "delete_record", Run: s.deleteRecord},
		pipeline.Step[deleteContext]{Name: "delete_spreadsheet", Run: s.deleteSpreadsheet},
	)
	if err != nil {
		return entity.Survey{}, err
	}
	return out.deleted.ToEntity()
}

func (s *Service) deleteRecord(ctx context.Context, c deleteContext) (deleteContext, error) {
	record, err := s.repo.Delete(ctx, c.surveyID)
	if err != nil {
		if IsNotFound(err) {
			return c, errs.Wrap(errs.KindLookup, "failed to get survey from database", err)
		}
		return c, errs.Wrap(errs.KindTransport, "failed to delete record in database", err)
	}
	c.deleted = record
	return c, nil
}

func (s *Service) deleteSpreadsheet(ctx context.Context, c deleteContext) (deleteContext, error) {
	if err := s.gateway.DeleteDocument(ctx, c.deleted.OriginID, c.accessToken); err != nil {
		return c, err
	}
	return c, nil
}
