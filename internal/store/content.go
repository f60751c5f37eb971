package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
)

// ContentStore persists the learning catalog: modules, their topics, the
// interview questions attached to them, and enrichment rows.
// The catalog is written once by the seeder and read-mostly afterwards.
type ContentStore interface {
	// CreateModule saves a new learning module.
	// Returns ErrModuleExists when the name is taken.
	CreateModule(ctx context.Context, module *domain.LearningModule) error

	// CreateTopic saves a new topic under an existing module.
	CreateTopic(ctx context.Context, topic *domain.Topic) error

	// CreateQuestion saves a new interview question.
	CreateQuestion(ctx context.Context, question *domain.InterviewQuestion) error

	// CreateEnrichment saves an enrichment row for a content item.
	CreateEnrichment(ctx context.Context, enrichment *domain.ContentEnrichment) error

	// GetModule retrieves a module by ID.
	// Returns ErrModuleNotFound if the module does not exist.
	GetModule(ctx context.Context, id uuid.UUID) (*domain.LearningModule, error)

	// GetTopic retrieves a topic by ID.
	// Returns ErrTopicNotFound if the topic does not exist.
	GetTopic(ctx context.Context, id uuid.UUID) (*domain.Topic, error)

	// GetQuestion retrieves an interview question by ID.
	// Returns ErrQuestionNotFound if it does not exist.
	GetQuestion(ctx context.Context, id uuid.UUID) (*domain.InterviewQuestion, error)

	// ListModules returns active modules ordered by sort order then name.
	ListModules(ctx context.Context) ([]*domain.LearningModule, error)

	// ListTopicsByModule returns a module's topics ordered by sort order.
	ListTopicsByModule(ctx context.Context, moduleID uuid.UUID) ([]*domain.Topic, error)

	// ListQuestionsByModule returns a module's questions, most frequently
	// asked first.
	ListQuestionsByModule(ctx context.Context, moduleID uuid.UUID) ([]*domain.InterviewQuestion, error)

	// ListEnrichments returns the enrichment rows of one content item.
	ListEnrichments(
		ctx context.Context,
		contentID uuid.UUID,
		contentType domain.ContentType,
	) ([]*domain.ContentEnrichment, error)

	// CountModules returns the number of modules. The seeder uses it as its
	// existence predicate.
	CountModules(ctx context.Context) (int, error)

	// CountTopics returns the number of topics.
	CountTopics(ctx context.Context) (int, error)

	// CountQuestions returns the number of interview questions.
	CountQuestions(ctx context.Context) (int, error)

	// CountModulesByCategory returns the module count per category.
	CountModulesByCategory(ctx context.Context) (map[domain.Category]int, error)

	// WithTx returns a new ContentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ContentStore
}
