package survey

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MerciDanke/SurveyMoonbear-APP/internal/entity"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/errs"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/spreadsheet"
)

type fakeRepo struct {
	records map[string]*Record
	created []*Record
	deleted []string
	failOn  string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[string]*Record{}}
}

func (f *fakeRepo) Create(_ context.Context, record *Record) error {
	if f.failOn == "create" {
		return errors.New("insert failed")
	}
	if record.ID == "" {
		record.ID = "generated-id"
	}
	f.created = append(f.created, record)
	f.records[record.ID] = record
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*Record, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeRepo) FindByOwner(_ context.Context, ownerID string) ([]Record, error) {
	var out []Record
	for _, record := range f.records {
		if record.OwnerID == ownerID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (f *fakeRepo) SetLaunch(_ context.Context, id, launchID string) error {
	record, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.LaunchID = &launchID
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) (*Record, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	delete(f.records, id)
	f.deleted = append(f.deleted, id)
	return record, nil
}

type fakeGateway struct {
	doc         spreadsheet.Document
	docErr      error
	deleteErr   error
	deleteCalls int
	deletedIDs  []string
}

func (f *fakeGateway) Document(_ context.Context, spreadsheetID, _ string) (spreadsheet.Document, error) {
	if f.docErr != nil {
		return spreadsheet.Document{}, f.docErr
	}
	return f.doc, nil
}

func (f *fakeGateway) DeleteDocument(_ context.Context, spreadsheetID, _ string) error {
	f.deleteCalls++
	f.deletedIDs = append(f.deletedIDs, spreadsheetID)
	return f.deleteErr
}

func intp(v int) *int { return &v }

func remoteDocument() spreadsheet.Document {
	return spreadsheet.Document{
		SpreadsheetID: "sheet-7",
		Properties:    spreadsheet.DocumentProperties{Title: "Remote"},
		Sheets: []spreadsheet.Sheet{
			{Rows: []spreadsheet.Row{
				{Type: entity.TypeTextInput, Name: "name", Order: intp(0)},
				{Type: entity.TypeRadio, Name: "color", Options: []string{"red", "blue"}, Order: intp(1)},
			}},
		},
	}
}

func TestCreateMapsAndPersists(t *testing.T) {
	repo := newFakeRepo()
	gateway := &fakeGateway{doc: remoteDocument()}
	service := NewService(repo, gateway)
	owner := entity.Account{ID: "acc-1", Username: "tester", AccessToken: "tok"}

	survey, err := service.Create(context.Background(), owner, "sheet-7")
	require.NoError(t, err)
	require.Equal(t, "generated-id", survey.ID)
	require.Equal(t, "sheet-7", survey.OriginID)
	require.Len(t, repo.created, 1)
	require.Equal(t, "acc-1", repo.created[0].OwnerID)

	// The stored page tree round-trips into the same entity layout.
	stored, err := repo.created[0].ToEntity()
	require.NoError(t, err)
	require.Len(t, stored.Pages, 1)
	require.Equal(t, survey.Pages[0].Items, stored.Pages[0].Items)
}

func TestCreateDoesNotPersistOnMappingFailure(t *testing.T) {
	doc := remoteDocument()
	doc.Sheets = nil
	repo := newFakeRepo()
	service := NewService(repo, &fakeGateway{doc: doc})

	_, err := service.Create(context.Background(), entity.Account{ID: "acc-1"}, "sheet-7")
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindMapping))
	require.Empty(t, repo.created, "a malformed document must never produce a database row")
}

func TestGetFromDatabaseReportsLookupFailure(t *testing.T) {
	service := NewService(newFakeRepo(), &fakeGateway{})

	_, err := service.GetFromDatabase(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, "failed to get survey from database", err.Error())
	require.True(t, errs.IsKind(err, errs.KindLookup))
}

func TestStartAssignsLaunchID(t *testing.T) {
	repo := newFakeRepo()
	gateway := &fakeGateway{doc: remoteDocument()}
	service := NewService(repo, gateway)

	created, err := service.Create(context.Background(), entity.Account{ID: "acc-1"}, "sheet-7")
	require.NoError(t, err)

	started, err := service.Start(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, started.LaunchID)
	require.NotNil(t, repo.records[created.ID].LaunchID)
	require.Equal(t, started.LaunchID, *repo.records[created.ID].LaunchID)
}

func TestDeleteRemovesRecordThenDocument(t *testing.T) {
	repo := newFakeRepo()
	gateway := &fakeGateway{doc: remoteDocument()}
	service := NewService(repo, gateway)

	created, err := service.Create(context.Background(), entity.Account{ID: "acc-1"}, "sheet-7")
	require.NoError(t, err)

	deleted, err := service.Delete(context.Background(), created.ID, "tok")
	require.NoError(t, err)
	require.Equal(t, created.ID, deleted.ID)
	require.Equal(t, []string{created.ID}, repo.deleted)
	require.Equal(t, []string{"sheet-7"}, gateway.deletedIDs)
}

func TestDeleteSkipsDocumentWhenRecordMissing(t *testing.T) {
	gateway := &fakeGateway{}
	service := NewService(newFakeRepo(), gateway)

	_, err := service.Delete(context.Background(), "missing", "tok")
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindLookup))
	require.Equal(t, 0, gateway.deleteCalls, "external delete must not run after a failed step")
}

func TestDeleteSurfacesGatewayFailureAfterRecordGone(t *testing.T) {
	repo := newFakeRepo()
	gateway := &fakeGateway{doc: remoteDocument(), deleteErr: errs.New(errs.KindTransport, "failed to delete spreadsheet")}
	service := NewService(repo, gateway)

	created, err := service.Create(context.Background(), entity.Account{ID: "acc-1"}, "sheet-7")
	require.NoError(t, err)

	_, err = service.Delete(context.Background(), created.ID, "tok")
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindTransport))
	// Forward-only failure model: the database row stays deleted.
	require.Empty(t, repo.records)
}
