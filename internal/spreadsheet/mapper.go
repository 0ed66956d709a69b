package spreadsheet

import (
	"strings"

	"github.com/MerciDanke/SurveyMoonbear-APP/internal/entity"
	"github.com/MerciDanke/SurveyMoonbear-APP/internal/errs"
)

// Mapping is all-or-nothing: a missing identifier, title or sheet collection,
// or a row that cannot be mapped, fails the whole document and no partial
// survey is returned.

// MapAccount converts an owner profile into an account entity. It is a pure
// transformation and does not depend on document content.
func MapAccount(profile Profile) entity.Account {
	return entity.Account{
		ID:           profile.ID,
		Username:     profile.Username,
		Email:        profile.Email,
		AccessToken:  profile.AccessToken,
		RefreshToken: profile.RefreshToken,
	}
}

// MapSurvey converts a raw document into a survey entity owned by the given
// account. Sheet order becomes page order; row order within a sheet becomes
// item order within the page.
func MapSurvey(doc Document, owner entity.Account) (entity.Survey, error) {
	if strings.TrimSpace(doc.SpreadsheetID) == "" {
		return entity.Survey{}, errs.New(errs.KindMapping, "spreadsheet document is missing its identifier")
	}
	if strings.TrimSpace(doc.Properties.Title) == "" {
		return entity.Survey{}, errs.New(errs.KindMapping, "spreadsheet document is missing a title")
	}
	if doc.Sheets == nil {
		return entity.Survey{}, errs.New(errs.KindMapping, "spreadsheet document is missing its sheet collection")
	}

	pages := make([]entity.Page, 0, len(doc.Sheets))
	for index, sheet := range doc.Sheets {
		page, err := mapPage(index, sheet)
		if err != nil {
			return entity.Survey{}, err
		}
		pages = append(pages, page)
	}

	return entity.Survey{
		Owner:    owner,
		OriginID: doc.SpreadsheetID,
		Title:    doc.Properties.Title,
		Pages:    pages,
	}, nil
}

func mapPage(index int, sheet Sheet) (entity.Page, error) {
	items := make([]entity.Item, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		item, err := mapItem(row)
		if err != nil {
			return entity.Page{}, err
		}
		items = append(items, item)
	}
	return entity.Page{Index: index, Items: items}, nil
}

func mapItem(row Row) (entity.Item, error) {
	if strings.TrimSpace(row.Type) == "" || row.Order == nil {
		return entity.Item{}, errs.New(errs.KindMapping, "spreadsheet row cannot be mapped to an item")
	}

	item := entity.Item{
		Type:        row.Type,
		Name:        row.Name,
		Description: row.Description,
		Required:    row.Required,
		Options:     row.Options,
		Order:       *row.Order,
	}
	if item.Interactive() && strings.TrimSpace(item.Name) == "" {
		return entity.Item{}, errs.New(errs.KindMapping, "spreadsheet row cannot be mapped to an item")
	}
	return item, nil
}
