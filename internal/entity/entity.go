// Package entity defines the domain model shared by the mapper, the
// repositories and the response pipeline. Surveys, pages and items are built
// once per mapping pass and read-only afterwards; responses are point-in-time
// facts that are flattened and forwarded, never mutated.
package entity

import "time"

// Item types as they appear in the external document.
const (
	TypeTextInput    = "Text Input"
	TypeParagraph    = "Paragraph"
	TypeRadio        = "Radio"
	TypeCheckbox     = "Checkbox"
	TypeDescription  = "Description"
	TypeSectionTitle = "Section Title"
	TypeDivider      = "Divider"
)

// Account is the owner profile produced by the authentication collaborator.
type Account struct {
	ID           string
	Username     string
	Email        string
	AccessToken  string
	RefreshToken string
}

// Survey is the typed representation of one external document.
type Survey struct {
	ID       string // empty until persisted
	Owner    Account
	OriginID string // external document identifier
	Title    string
	LaunchID string // set when the survey is started
	Pages    []Page
}

// Page is one ordered section of a survey, corresponding to one sheet.
type Page struct {
	Index int
	Items []Item
}

// Item is one question or layout element within a page.
type Item struct {
	Type        string
	Name        string
	Description string
	Required    bool
	Options     []string
	Order       int
}

// Interactive reports whether the item carries a respondent answer.
// Description, section title and divider rows are layout only.
func (i Item) Interactive() bool {
	switch i.Type {
	case TypeDescription, TypeSectionTitle, TypeDivider:
		return false
	}
	return true
}

// Response pairs a respondent with one answered position of a survey.
// ItemData is a serialized snapshot of the originating item, nil for the
// reserved metadata entries.
type Response struct {
	RespondentID string
	PageIndex    int
	ItemOrder    int
	Response     *string
	UpdatedAt    *time.Time
	ItemData     *string
}

// Reserved item orders for the metadata entries appended one page past the
// last real page of a survey.
const (
	StartTimeOrder = 0
	EndTimeOrder   = 1
	URLParamsOrder = 2
)
