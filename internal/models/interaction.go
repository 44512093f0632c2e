package models

import "time"

// InteractionType enumerates the kinds of interaction records.
type InteractionType string

const (
	InteractionMeeting InteractionType = "meeting"
	InteractionCall    InteractionType = "call"
	InteractionEmail   InteractionType = "email"
	InteractionOther   InteractionType = "other"
)

// Interaction is the core business record: a timed activity with a lead and
// participants, always scoped to a site.
type Interaction struct {
	ID            int             `json:"id,omitempty"`
	SiteID        int             `json:"site_id" validate:"required,gt=0"`
	Title         string          `json:"title" validate:"required,min=1,max=255"`
	Type          InteractionType `json:"type" validate:"required,oneof=meeting call email other"`
	Lead          string          `json:"lead" validate:"required,max=100"`
	StartDatetime time.Time       `json:"start_datetime" validate:"required"`
	EndDatetime   time.Time       `json:"end_datetime" validate:"required,gtfield=StartDatetime"`
	Timezone      string          `json:"timezone,omitempty"`
	Location      string          `json:"location,omitempty" validate:"max=255"`
	Description   string          `json:"description,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty"`
}

// InteractionPage is one page of interaction results, as returned by the
// list and search endpoints.
type InteractionPage struct {
	Interactions []Interaction `json:"interactions"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
}
