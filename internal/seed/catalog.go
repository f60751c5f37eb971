package seed

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/validation"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultCatalog []byte

// Question defaults applied when the catalog leaves a field out.
const (
	DefaultQuestionDifficulty = domain.QuestionMedium
	DefaultFrequencyScore     = 8
)

// Catalog is the parsed content file.
type Catalog struct {
	AnswerTemplate string       `yaml:"answer_template"`
	Modules        []ModuleSpec `yaml:"modules"`
}

// ModuleSpec describes a module and everything under it. Subject names the
// module in generated answers and default tags.
type ModuleSpec struct {
	Name           string           `yaml:"name"`
	Subject        string           `yaml:"subject"`
	Description    string           `yaml:"description"`
	Category       string           `yaml:"category"`
	Difficulty     string           `yaml:"difficulty"`
	EstimatedHours int              `yaml:"estimated_hours"`
	Topics         []TopicSpec      `yaml:"topics"`
	Questions      []QuestionSpec   `yaml:"questions"`
	Enrichments    []EnrichmentSpec `yaml:"enrichments"`
}

// TopicSpec describes a topic. Its questions are linked to both the topic
// and the enclosing module.
type TopicSpec struct {
	Title            string           `yaml:"title"`
	Description      string           `yaml:"description"`
	Type             string           `yaml:"type"`
	Content          string           `yaml:"content"`
	CodeExamples     string           `yaml:"code_examples"`
	EstimatedMinutes int              `yaml:"estimated_minutes"`
	Questions        []QuestionSpec   `yaml:"questions"`
	Enrichments      []EnrichmentSpec `yaml:"enrichments"`
}

// QuestionSpec describes an interview question.
type QuestionSpec struct {
	Question    string   `yaml:"question"`
	Description string   `yaml:"description"`
	Answer      string   `yaml:"answer"`
	Difficulty  string   `yaml:"difficulty"`
	Company     string   `yaml:"company"`
	Tags        []string `yaml:"tags"`
	Frequency   int      `yaml:"frequency"`
}

// EnrichmentSpec describes descriptive material attached to a module or topic.
type EnrichmentSpec struct {
	Kind     string         `yaml:"kind"`
	Title    string         `yaml:"title"`
	Body     string         `yaml:"body"`
	Metadata map[string]any `yaml:"metadata"`
}

// LoadDefault parses the embedded catalog.
func LoadDefault() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a catalog. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse content catalog: %w", err)
	}
	if strings.TrimSpace(c.AnswerTemplate) == "" {
		return nil, fmt.Errorf("content catalog has no answer_template")
	}
	return &c, nil
}

// ModuleTree is one module with everything seeded under it.
type ModuleTree struct {
	Module      *domain.LearningModule
	Topics      []*domain.Topic
	Questions   []*domain.InterviewQuestion
	Enrichments []*domain.ContentEnrichment
}

// Tree is the fully built content ready to persist.
type Tree struct {
	Modules []*ModuleTree
}

// Counts totals the tree.
func (t *Tree) Counts() Counts {
	var c Counts
	for _, m := range t.Modules {
		c.Modules++
		c.Topics += len(m.Topics)
		c.Questions += len(m.Questions)
		c.Enrichments += len(m.Enrichments)
	}
	return c
}

// ByCategory counts modules per category.
func (t *Tree) ByCategory() map[domain.Category]int {
	out := make(map[domain.Category]int)
	for _, m := range t.Modules {
		out[m.Module.Category]++
	}
	return out
}

// Counts is the number of rows of each kind.
type Counts struct {
	Modules     int `json:"modules"`
	Topics      int `json:"topics"`
	Questions   int `json:"questions"`
	Enrichments int `json:"enrichments"`
}

type answerData struct {
	Question string
	Company  string
	Subject  string
}

// Build turns the catalog into domain entities with fresh IDs. Enum values
// the catalog spells wrong are an error rather than a silent default.
func (c *Catalog) Build(now time.Time) (*Tree, error) {
	now = now.UTC()
	tmpl, err := template.New("answer").Option("missingkey=error").Parse(c.AnswerTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid answer template: %w", err)
	}

	b := &builder{now: now, answer: tmpl}
	tree := &Tree{}
	seen := make(map[string]bool)
	for i, ms := range c.Modules {
		key := strings.ToLower(strings.TrimSpace(ms.Name))
		if seen[key] {
			return nil, fmt.Errorf("module %q appears twice", ms.Name)
		}
		seen[key] = true

		mt, err := b.module(ms, i+1)
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", ms.Name, err)
		}
		tree.Modules = append(tree.Modules, mt)
	}
	return tree, nil
}

type builder struct {
	now    time.Time
	answer *template.Template
}

func (b *builder) module(ms ModuleSpec, order int) (*ModuleTree, error) {
	missing := validation.ValidateRequired(map[string]string{
		"name":       ms.Name,
		"category":   ms.Category,
		"difficulty": ms.Difficulty,
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("incomplete module: %s", strings.Join(missing, "; "))
	}

	category, ok := domain.ParseCategory(ms.Category)
	if !ok {
		return nil, fmt.Errorf("unknown category %q", ms.Category)
	}
	difficulty, ok := domain.ParseDifficultyLevel(ms.Difficulty)
	if !ok {
		return nil, fmt.Errorf("unknown difficulty %q", ms.Difficulty)
	}

	m, err := domain.NewLearningModule(ms.Name, ms.Description, category, difficulty)
	if err != nil {
		return nil, err
	}
	m.EstimatedHours = ms.EstimatedHours
	m.SortOrder = order
	m.CreatedAt, m.UpdatedAt = b.now, b.now
	if err := m.Validate(); err != nil {
		return nil, err
	}

	subject := ms.Subject
	if subject == "" {
		subject = ms.Name
	}

	mt := &ModuleTree{Module: m}
	if mt.Enrichments, err = b.enrichments(ms.Enrichments, m.ID, domain.ContentModule); err != nil {
		return nil, err
	}

	for i, ts := range ms.Topics {
		t, err := b.topic(ts, m.ID, i+1)
		if err != nil {
			return nil, fmt.Errorf("topic %q: %w", ts.Title, err)
		}
		mt.Topics = append(mt.Topics, t)

		es, err := b.enrichments(ts.Enrichments, t.ID, domain.ContentTopic)
		if err != nil {
			return nil, fmt.Errorf("topic %q: %w", ts.Title, err)
		}
		mt.Enrichments = append(mt.Enrichments, es...)

		for _, qs := range ts.Questions {
			q, err := b.question(qs, m.ID, &t.ID, subject)
			if err != nil {
				return nil, fmt.Errorf("question %q: %w", qs.Question, err)
			}
			mt.Questions = append(mt.Questions, q)
		}
	}

	for _, qs := range ms.Questions {
		q, err := b.question(qs, m.ID, nil, subject)
		if err != nil {
			return nil, fmt.Errorf("question %q: %w", qs.Question, err)
		}
		mt.Questions = append(mt.Questions, q)
	}
	return mt, nil
}

func (b *builder) topic(ts TopicSpec, moduleID uuid.UUID, order int) (*domain.Topic, error) {
	topicType := domain.TopicLearningContent
	if ts.Type != "" {
		var ok bool
		if topicType, ok = domain.ParseTopicType(ts.Type); !ok {
			return nil, fmt.Errorf("unknown topic type %q", ts.Type)
		}
	}
	t := &domain.Topic{
		ID:               uuid.New(),
		ModuleID:         moduleID,
		Title:            strings.TrimSpace(ts.Title),
		Description:      ts.Description,
		Content:          ts.Content,
		CodeExamples:     ts.CodeExamples,
		Type:             topicType,
		EstimatedMinutes: ts.EstimatedMinutes,
		SortOrder:        order,
		CreatedAt:        b.now,
		UpdatedAt:        b.now,
	}
	return t, t.Validate()
}

func (b *builder) question(
	qs QuestionSpec,
	moduleID uuid.UUID,
	topicID *uuid.UUID,
	subject string,
) (*domain.InterviewQuestion, error) {
	difficulty := DefaultQuestionDifficulty
	if qs.Difficulty != "" {
		var ok bool
		if difficulty, ok = domain.ParseQuestionDifficulty(qs.Difficulty); !ok {
			return nil, fmt.Errorf("unknown difficulty %q", qs.Difficulty)
		}
	}

	// Companies outside the known set are kept as GENERAL; the answer text
	// still names them as written.
	company, _ := domain.ParseCompany(qs.Company)
	companyName := qs.Company
	if companyName == "" {
		companyName = company.DisplayName()
	}

	answer := qs.Answer
	if answer == "" {
		var buf bytes.Buffer
		data := answerData{Question: strings.TrimSpace(qs.Question), Company: companyName, Subject: subject}
		if err := b.answer.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("failed to render answer: %w", err)
		}
		answer = buf.String()
		if qs.Description != "" {
			answer = qs.Description + "\n\n" + answer
		}
	}

	tags := qs.Tags
	if len(tags) == 0 {
		tags = []string{strings.ToLower(subject), "interview", "faang"}
	}

	frequency := qs.Frequency
	if frequency == 0 {
		frequency = DefaultFrequencyScore
	}

	q := &domain.InterviewQuestion{
		ID:             uuid.New(),
		ModuleID:       moduleID,
		TopicID:        topicID,
		Question:       strings.TrimSpace(qs.Question),
		Answer:         answer,
		Difficulty:     difficulty,
		Company:        company,
		Tags:           tags,
		FrequencyScore: frequency,
		CreatedAt:      b.now,
		UpdatedAt:      b.now,
	}
	return q, q.Validate()
}

func (b *builder) enrichments(
	specs []EnrichmentSpec,
	contentID uuid.UUID,
	contentType domain.ContentType,
) ([]*domain.ContentEnrichment, error) {
	out := make([]*domain.ContentEnrichment, 0, len(specs))
	for _, es := range specs {
		kind, ok := domain.ParseEnrichmentKind(es.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown enrichment kind %q", es.Kind)
		}
		var metadata json.RawMessage
		if len(es.Metadata) > 0 {
			raw, err := json.Marshal(es.Metadata)
			if err != nil {
				return nil, fmt.Errorf("enrichment %q metadata: %w", es.Title, err)
			}
			metadata = raw
		}
		e := &domain.ContentEnrichment{
			ID:          uuid.New(),
			ContentID:   contentID,
			ContentType: contentType,
			Kind:        kind,
			Title:       es.Title,
			Body:        es.Body,
			Metadata:    metadata,
			CreatedAt:   b.now,
		}
		if err := e.Validate(); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
