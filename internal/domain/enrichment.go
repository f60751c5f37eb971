package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContentType identifies what kind of catalog item a record points at.
type ContentType string

const (
	ContentModule            ContentType = "MODULE"
	ContentTopic             ContentType = "TOPIC"
	ContentInterviewQuestion ContentType = "INTERVIEW_QUESTION"
	ContentNote              ContentType = "NOTE"
)

// ParseContentType maps free text to a ContentType, defaulting to ContentTopic.
func ParseContentType(s string) (ContentType, bool) {
	switch t := ContentType(normalizeEnum(s)); t {
	case ContentModule, ContentTopic, ContentInterviewQuestion, ContentNote:
		return t, true
	case "QUESTION":
		return ContentInterviewQuestion, true
	default:
		return ContentTopic, false
	}
}

// EnrichmentKind is the learning technique an enrichment row supports.
type EnrichmentKind string

const (
	EnrichmentVisual      EnrichmentKind = "VISUAL"
	EnrichmentMultiModal  EnrichmentKind = "MULTI_MODAL"
	EnrichmentFeynman     EnrichmentKind = "FEYNMAN"
	EnrichmentDualCoding  EnrichmentKind = "DUAL_CODING"
	EnrichmentCognitive   EnrichmentKind = "COGNITIVE"
	EnrichmentMethodology EnrichmentKind = "METHODOLOGY"
)

// ParseEnrichmentKind maps free text to an EnrichmentKind, defaulting to visual.
func ParseEnrichmentKind(s string) (EnrichmentKind, bool) {
	switch k := EnrichmentKind(normalizeEnum(s)); k {
	case EnrichmentVisual, EnrichmentMultiModal, EnrichmentFeynman,
		EnrichmentDualCoding, EnrichmentCognitive, EnrichmentMethodology:
		return k, true
	default:
		return EnrichmentVisual, false
	}
}

// ContentEnrichment is descriptive material (diagrams, analogies, plain
// language explanations) attached to a catalog item. Enrichments are
// written at seed time and read thereafter.
type ContentEnrichment struct {
	ID          uuid.UUID       `json:"id"`
	ContentID   uuid.UUID       `json:"content_id"`
	ContentType ContentType     `json:"content_type"`
	Kind        EnrichmentKind  `json:"kind"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate checks if the enrichment has valid data.
func (e *ContentEnrichment) Validate() error {
	if e.ID == uuid.Nil || e.ContentID == uuid.Nil || e.Kind == "" || e.ContentType == "" {
		return ErrInvalidEnrichment
	}
	if len(e.Metadata) > 0 && !json.Valid(e.Metadata) {
		return NewValidationError("metadata", "must be valid JSON", ErrValidation)
	}
	return nil
}
