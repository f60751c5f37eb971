package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/store"
)

// ModuleDetail is a module with its topics and enrichments.
type ModuleDetail struct {
	*domain.LearningModule
	Topics      []*domain.Topic             `json:"topics"`
	Enrichments []*domain.ContentEnrichment `json:"enrichments"`
}

// ContentService reads the seeded catalog.
type ContentService struct {
	content store.ContentStore
	logger  *slog.Logger
}

// NewContentService creates a ContentService.
func NewContentService(content store.ContentStore, logger *slog.Logger) (*ContentService, error) {
	if content == nil {
		return nil, &ServiceError{Service: "content", Op: "create_service", Err: errors.New("content store cannot be nil")}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{content: content, logger: logger.With(slog.String("component", "content_service"))}, nil
}

// Modules lists active modules, optionally filtered by category.
func (s *ContentService) Modules(ctx context.Context, category *domain.Category) ([]*domain.LearningModule, error) {
	modules, err := s.content.ListModules(ctx)
	if err != nil {
		return nil, NewServiceError("content", "list_modules", err)
	}
	out := make([]*domain.LearningModule, 0, len(modules))
	for _, m := range modules {
		if !m.Active || (category != nil && m.Category != *category) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Module returns a module with its topics and enrichments.
func (s *ContentService) Module(ctx context.Context, id uuid.UUID) (*ModuleDetail, error) {
	m, err := s.content.GetModule(ctx, id)
	if err != nil {
		return nil, s.notFound("get_module", err)
	}
	topics, err := s.content.ListTopicsByModule(ctx, id)
	if err != nil {
		return nil, NewServiceError("content", "get_module", err)
	}
	enrichments, err := s.content.ListEnrichments(ctx, id, domain.ContentModule)
	if err != nil {
		return nil, NewServiceError("content", "get_module", err)
	}
	return &ModuleDetail{LearningModule: m, Topics: topics, Enrichments: enrichments}, nil
}

// Topics lists a module's topics in order.
func (s *ContentService) Topics(ctx context.Context, moduleID uuid.UUID) ([]*domain.Topic, error) {
	if _, err := s.content.GetModule(ctx, moduleID); err != nil {
		return nil, s.notFound("list_topics", err)
	}
	topics, err := s.content.ListTopicsByModule(ctx, moduleID)
	if err != nil {
		return nil, NewServiceError("content", "list_topics", err)
	}
	return topics, nil
}

// Questions lists a module's interview questions, optionally only one company's.
func (s *ContentService) Questions(
	ctx context.Context,
	moduleID uuid.UUID,
	company *domain.Company,
) ([]*domain.InterviewQuestion, error) {
	if _, err := s.content.GetModule(ctx, moduleID); err != nil {
		return nil, s.notFound("list_questions", err)
	}
	questions, err := s.content.ListQuestionsByModule(ctx, moduleID)
	if err != nil {
		return nil, NewServiceError("content", "list_questions", err)
	}
	if company == nil {
		return questions, nil
	}
	out := questions[:0]
	for _, q := range questions {
		if q.Company == *company {
			out = append(out, q)
		}
	}
	return out, nil
}

// CatalogCounts is the size of the seeded catalog.
type CatalogCounts struct {
	Modules    int                     `json:"modules"`
	Topics     int                     `json:"topics"`
	Questions  int                     `json:"questions"`
	ByCategory map[domain.Category]int `json:"by_category"`
}

// Counts sizes the catalog.
func (s *ContentService) Counts(ctx context.Context) (*CatalogCounts, error) {
	var c CatalogCounts
	var err error
	if c.Modules, err = s.content.CountModules(ctx); err != nil {
		return nil, NewServiceError("content", "counts", err)
	}
	if c.Topics, err = s.content.CountTopics(ctx); err != nil {
		return nil, NewServiceError("content", "counts", err)
	}
	if c.Questions, err = s.content.CountQuestions(ctx); err != nil {
		return nil, NewServiceError("content", "counts", err)
	}
	if c.ByCategory, err = s.content.CountModulesByCategory(ctx); err != nil {
		return nil, NewServiceError("content", "counts", err)
	}
	return &c, nil
}

func (s *ContentService) notFound(op string, err error) error {
	if store.IsNotFoundError(err) {
		return fmt.Errorf("%w: %w", ErrContentNotFound, err)
	}
	return NewServiceError("content", op, err)
}
