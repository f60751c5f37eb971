package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/store"
)

const (
	moduleColumns = `id, name, description, category, difficulty, estimated_hours, sort_order, active,
		created_at, updated_at`
	topicColumns = `id, module_id, title, description, content, code_examples, topic_type,
		estimated_minutes, sort_order, created_at, updated_at`
	questionColumns = `id, module_id, topic_id, question, answer, difficulty, company, tags,
		frequency_score, created_at, updated_at`
	enrichmentColumns = `id, content_id, content_type, kind, title, body, metadata, created_at`
)

var moduleUniqueConstraints = map[string]error{
	"learning_modules_name_key": store.ErrModuleExists,
}

// PostgresContentStore implements the store.ContentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresContentStore creates a new PostgreSQL implementation of the ContentStore interface.
func NewPostgresContentStore(db store.DBTX, logger *slog.Logger) *PostgresContentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresContentStore{
		db:     db,
		logger: logger.With(slog.String("component", "content_store")),
	}
}

// Ensure PostgresContentStore implements store.ContentStore interface
var _ store.ContentStore = (*PostgresContentStore)(nil)

// CreateModule implements store.ContentStore.CreateModule
func (s *PostgresContentStore) CreateModule(ctx context.Context, m *domain.LearningModule) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := m.Validate(); err != nil {
		log.Warn("module validation failed during create",
			slog.String("error", err.Error()),
			slog.String("module_name", m.Name))
		return err
	}

	query := `
		INSERT INTO learning_modules (` + moduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Description, m.Category, m.Difficulty,
		m.EstimatedHours, m.SortOrder, m.Active, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create module",
			slog.String("error", err.Error()),
			slog.String("module_name", m.Name))
		return MapUniqueViolation(err, moduleUniqueConstraints)
	}

	log.Debug("module created", slog.String("module_id", m.ID.String()))
	return nil
}

// CreateTopic implements store.ContentStore.CreateTopic
func (s *PostgresContentStore) CreateTopic(ctx context.Context, t *domain.Topic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := t.Validate(); err != nil {
		log.Warn("topic validation failed during create",
			slog.String("error", err.Error()),
			slog.String("topic_title", t.Title))
		return err
	}

	query := `
		INSERT INTO topics (` + topicColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.ModuleID, t.Title, t.Description, t.Content, t.CodeExamples, t.Type,
		t.EstimatedMinutes, t.SortOrder, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: module with ID %s not found", store.ErrInvalidEntity, t.ModuleID)
		}
		log.Error("failed to create topic",
			slog.String("error", err.Error()),
			slog.String("topic_title", t.Title))
		return MapError(err)
	}

	log.Debug("topic created", slog.String("topic_id", t.ID.String()))
	return nil
}

// CreateQuestion implements store.ContentStore.CreateQuestion
func (s *PostgresContentStore) CreateQuestion(ctx context.Context, q *domain.InterviewQuestion) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := q.Validate(); err != nil {
		log.Warn("question validation failed during create",
			slog.String("error", err.Error()),
			slog.String("question_id", q.ID.String()))
		return err
	}

	query := `
		INSERT INTO interview_questions (` + questionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		q.ID, q.ModuleID, q.TopicID, q.Question, q.Answer, q.Difficulty, q.Company,
		joinTags(q.Tags), q.FrequencyScore, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: module or topic for question %s not found", store.ErrInvalidEntity, q.ID)
		}
		log.Error("failed to create question",
			slog.String("error", err.Error()),
			slog.String("question_id", q.ID.String()))
		return MapError(err)
	}
	return nil
}

// CreateEnrichment implements store.ContentStore.CreateEnrichment
func (s *PostgresContentStore) CreateEnrichment(ctx context.Context, e *domain.ContentEnrichment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := e.Validate(); err != nil {
		log.Warn("enrichment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("content_id", e.ContentID.String()))
		return err
	}

	metadata := []byte(e.Metadata)
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}

	query := `
		INSERT INTO content_enrichments (` + enrichmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.ContentID, e.ContentType, e.Kind, e.Title, e.Body, metadata, e.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create enrichment",
			slog.String("error", err.Error()),
			slog.String("content_id", e.ContentID.String()),
			slog.String("kind", string(e.Kind)))
		return MapError(err)
	}
	return nil
}

// GetModule implements store.ContentStore.GetModule
func (s *PostgresContentStore) GetModule(ctx context.Context, id uuid.UUID) (*domain.LearningModule, error) {
	query := `SELECT ` + moduleColumns + ` FROM learning_modules WHERE id = $1`
	m, err := scanModule(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, s.lookupError(ctx, err, store.ErrModuleNotFound, id)
	}
	return m, nil
}

// GetTopic implements store.ContentStore.GetTopic
func (s *PostgresContentStore) GetTopic(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topics WHERE id = $1`
	t, err := scanTopic(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, s.lookupError(ctx, err, store.ErrTopicNotFound, id)
	}
	return t, nil
}

// GetQuestion implements store.ContentStore.GetQuestion
func (s *PostgresContentStore) GetQuestion(ctx context.Context, id uuid.UUID) (*domain.InterviewQuestion, error) {
	query := `SELECT ` + questionColumns + ` FROM interview_questions WHERE id = $1`
	q, err := scanQuestion(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, s.lookupError(ctx, err, store.ErrQuestionNotFound, id)
	}
	return q, nil
}

func (s *PostgresContentStore) lookupError(ctx context.Context, err, notFound error, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("content lookup failed",
		slog.String("error", err.Error()),
		slog.String("id", id.String()))
	return MapError(err)
}

// ListModules implements store.ContentStore.ListModules
func (s *PostgresContentStore) ListModules(ctx context.Context) ([]*domain.LearningModule, error) {
	query := `
		SELECT ` + moduleColumns + `
		FROM learning_modules
		WHERE active
		ORDER BY sort_order, name
	`
	return queryAll(ctx, s.db, s.logger, "modules", scanModule, query)
}

// ListTopicsByModule implements store.ContentStore.ListTopicsByModule
func (s *PostgresContentStore) ListTopicsByModule(ctx context.Context, moduleID uuid.UUID) ([]*domain.Topic, error) {
	query := `
		SELECT ` + topicColumns + `
		FROM topics
		WHERE module_id = $1
		ORDER BY sort_order, title
	`
	return queryAll(ctx, s.db, s.logger, "topics", scanTopic, query, moduleID)
}

// ListQuestionsByModule implements store.ContentStore.ListQuestionsByModule
func (s *PostgresContentStore) ListQuestionsByModule(
	ctx context.Context,
	moduleID uuid.UUID,
) ([]*domain.InterviewQuestion, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM interview_questions
		WHERE module_id = $1
		ORDER BY frequency_score DESC, question
	`
	return queryAll(ctx, s.db, s.logger, "questions", scanQuestion, query, moduleID)
}

// ListEnrichments implements store.ContentStore.ListEnrichments
func (s *PostgresContentStore) ListEnrichments(
	ctx context.Context,
	contentID uuid.UUID,
	contentType domain.ContentType,
) ([]*domain.ContentEnrichment, error) {
	query := `
		SELECT ` + enrichmentColumns + `
		FROM content_enrichments
		WHERE content_id = $1 AND content_type = $2
		ORDER BY kind, created_at
	`
	return queryAll(ctx, s.db, s.logger, "enrichments", scanEnrichment, query, contentID, contentType)
}

// CountModules implements store.ContentStore.CountModules
func (s *PostgresContentStore) CountModules(ctx context.Context) (int, error) {
	return s.count(ctx, "learning_modules")
}

// CountTopics implements store.ContentStore.CountTopics
func (s *PostgresContentStore) CountTopics(ctx context.Context) (int, error) {
	return s.count(ctx, "topics")
}

// CountQuestions implements store.ContentStore.CountQuestions
func (s *PostgresContentStore) CountQuestions(ctx context.Context) (int, error) {
	return s.count(ctx, "interview_questions")
}

// count only ever receives one of the constant table names above.
func (s *PostgresContentStore) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count rows",
			slog.String("error", err.Error()),
			slog.String("table", table))
		return 0, MapError(err)
	}
	return n, nil
}

// CountModulesByCategory implements store.ContentStore.CountModulesByCategory
func (s *PostgresContentStore) CountModulesByCategory(ctx context.Context) (map[domain.Category]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM learning_modules GROUP BY category`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[domain.Category]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		c, _ := domain.ParseCategory(category)
		counts[c] += n
	}
	return counts, rows.Err()
}

// WithTx implements store.ContentStore.WithTx
func (s *PostgresContentStore) WithTx(tx *sql.Tx) store.ContentStore {
	return &PostgresContentStore{db: tx, logger: s.logger}
}

func scanModule(row rowScanner) (*domain.LearningModule, error) {
	var m domain.LearningModule
	var category, difficulty string
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &category, &difficulty,
		&m.EstimatedHours, &m.SortOrder, &m.Active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Category, _ = domain.ParseCategory(category)
	m.Difficulty, _ = domain.ParseDifficultyLevel(difficulty)
	return &m, nil
}

func scanTopic(row rowScanner) (*domain.Topic, error) {
	var t domain.Topic
	var topicType string
	err := row.Scan(
		&t.ID, &t.ModuleID, &t.Title, &t.Description, &t.Content, &t.CodeExamples, &topicType,
		&t.EstimatedMinutes, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Type, _ = domain.ParseTopicType(topicType)
	return &t, nil
}

func scanQuestion(row rowScanner) (*domain.InterviewQuestion, error) {
	var q domain.InterviewQuestion
	var topicID uuid.NullUUID
	var difficulty, company, tags string
	err := row.Scan(
		&q.ID, &q.ModuleID, &topicID, &q.Question, &q.Answer, &difficulty, &company, &tags,
		&q.FrequencyScore, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	q.TopicID = uuidPtr(topicID)
	q.Difficulty, _ = domain.ParseQuestionDifficulty(difficulty)
	q.Company, _ = domain.ParseCompany(company)
	q.Tags = splitTags(tags)
	return &q, nil
}

func scanEnrichment(row rowScanner) (*domain.ContentEnrichment, error) {
	var e domain.ContentEnrichment
	var contentType, kind string
	var metadata []byte
	err := row.Scan(&e.ID, &e.ContentID, &contentType, &kind, &e.Title, &e.Body, &metadata, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.ContentType, _ = domain.ParseContentType(contentType)
	e.Kind, _ = domain.ParseEnrichmentKind(kind)
	e.Metadata = metadata
	return &e, nil
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
