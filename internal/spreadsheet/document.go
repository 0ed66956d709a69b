// Package spreadsheet talks to the external spreadsheet API and maps its raw
// documents into the domain entity graph.
package spreadsheet

// Document is the raw external document as returned by the spreadsheet API.
type Document struct {
	SpreadsheetID string             `json:"spreadsheetId"`
	Properties    DocumentProperties `json:"properties"`
	Sheets        []Sheet            `json:"sheets"`
}

// DocumentProperties carries document-level metadata.
type DocumentProperties struct {
	Title string `json:"title"`
}

// Sheet is one tab of the document; each row describes one survey item.
type Sheet struct {
	Properties SheetProperties `json:"properties"`
	Rows       []Row           `json:"rows"`
}

// SheetProperties carries sheet-level metadata.
type SheetProperties struct {
	Title string `json:"title"`
}

// Row is one item definition within a sheet. Order is a pointer so that an
// absent value can be told apart from a legitimate zero.
type Row struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Options     []string `json:"options"`
	Order       *int     `json:"order"`
}

// Profile is the owner payload produced by the authentication collaborator.
type Profile struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
