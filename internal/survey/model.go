// Package survey persists mapped surveys and exposes the survey services
// built on top of the spreadsheet gateway and the repository.
package survey

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MerciDanke/SurveyMoonbear-APP/internal/entity"
)

// Record is the persisted form of a mapped survey. The page/item tree is
// stored as one JSON document; uniqueness of the external document is
// enforced by the origin_id index.
type Record struct {
	ID        string         `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID   string         `json:"ownerId" gorm:"type:varchar(64);not null;index"`
	OwnerName string         `json:"ownerName"`
	OriginID  string         `json:"originId" gorm:"type:varchar(128);not null;uniqueIndex"`
	Title     string         `json:"title" gorm:"not null"`
	LaunchID  *string        `json:"launchId" gorm:"type:uuid;index"`
	Pages     datatypes.JSON `json:"pages" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when missing.
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type pageDoc struct {
	Index int       `json:"index"`
	Items []itemDoc `json:"items"`
}

type itemDoc struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Options     []string `json:"options"`
	Order       int      `json:"order"`
}

// FromEntity converts a mapped survey into its persisted form.
func FromEntity(s entity.Survey) (*Record, error) {
	docs := make([]pageDoc, 0, len(s.Pages))
	for _, page := range s.Pages {
		items := make([]itemDoc, 0, len(page.Items))
		for _, item := range page.Items {
			items = append(items, itemDoc{
				Type:        item.Type,
				Name:        item.Name,
				Description: item.Description,
				Required:    item.Required,
				Options:     item.Options,
				Order:       item.Order,
			})
		}
		docs = append(docs, pageDoc{Index: page.Index, Items: items})
	}

	pages, err := json.Marshal(docs)
	if err != nil {
		return nil, err
	}

	record := &Record{
		ID:        s.ID,
		OwnerID:   s.Owner.ID,
		OwnerName: s.Owner.Username,
		OriginID:  s.OriginID,
		Title:     s.Title,
		Pages:     datatypes.JSON(pages),
	}
	if s.LaunchID != "" {
		launch := s.LaunchID
		record.LaunchID = &launch
	}
	return record, nil
}

// ToEntity reconstructs the survey entity tree from the stored record.
func (r Record) ToEntity() (entity.Survey, error) {
	var docs []pageDoc
	if len(r.Pages) > 0 {
		if err := json.Unmarshal(r.Pages, &docs); err != nil {
			return entity.Survey{}, err
		}
	}

	pages := make([]entity.Page, 0, len(docs))
	for _, doc := range docs {
		items := make([]entity.Item, 0, len(doc.Items))
		for _, item := range doc.Items {
			items = append(items, entity.Item{
				Type:        item.Type,
				Name:        item.Name,
				Description: item.Description,
				Required:    item.Required,
				Options:     item.Options,
				Order:       item.Order,
			})
		}
		pages = append(pages, entity.Page{Index: doc.Index, Items: items})
	}

	survey := entity.Survey{
		ID:       r.ID,
		Owner:    entity.Account{ID: r.OwnerID, Username: r.OwnerName},
		OriginID: r.OriginID,
		Title:    r.Title,
		Pages:    pages,
	}
	if r.LaunchID != nil {
		survey.LaunchID = *r.LaunchID
	}
	return survey, nil
}

// ToDTO converts a stored survey into a serialisable map.
func (r Record) ToDTO() map[string]any {
	dto := map[string]any{
		"id":        r.ID,
		"ownerId":   r.OwnerID,
		"ownerName": r.OwnerName,
		"originId":  r.OriginID,
		"title":     r.Title,
		"createdAt": r.CreatedAt,
		"updatedAt": r.UpdatedAt,
	}
	if r.LaunchID != nil {
		dto["launchId"] = *r.LaunchID
	}
	return dto
}
