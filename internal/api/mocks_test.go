package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/service"
	"github.com/phrazzld/academy-api/internal/service/auth"
	"github.com/phrazzld/academy-api/internal/service/review"
	"github.com/phrazzld/academy-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// get returns args.Get(i) as T, or the zero T when it is nil.
func get[T any](args mock.Arguments, i int) T {
	var zero T
	if v := args.Get(i); v != nil {
		return v.(T)
	}
	return zero
}

type mockAuthenticator struct{ mock.Mock }

var _ Authenticator = (*mockAuthenticator)(nil)

func (m *mockAuthenticator) Register(ctx context.Context, r auth.Registration) (*domain.User, *auth.TokenPair, error) {
	args := m.Called(ctx, r)
	return get[*domain.User](args, 0), get[*auth.TokenPair](args, 1), args.Error(2)
}

func (m *mockAuthenticator) Login(ctx context.Context, identifier, password string) (*domain.User, *auth.TokenPair, error) {
	args := m.Called(ctx, identifier, password)
	return get[*domain.User](args, 0), get[*auth.TokenPair](args, 1), args.Error(2)
}

func (m *mockAuthenticator) Refresh(ctx context.Context, token string) (*auth.TokenPair, error) {
	args := m.Called(ctx, token)
	return get[*auth.TokenPair](args, 0), args.Error(1)
}

type mockContent struct{ mock.Mock }

var _ ContentReader = (*mockContent)(nil)
var _ CatalogCounter = (*mockContent)(nil)

func (m *mockContent) Modules(ctx context.Context, c *domain.Category) ([]*domain.LearningModule, error) {
	args := m.Called(ctx, c)
	return get[[]*domain.LearningModule](args, 0), args.Error(1)
}

func (m *mockContent) Module(ctx context.Context, id uuid.UUID) (*service.ModuleDetail, error) {
	args := m.Called(ctx, id)
	return get[*service.ModuleDetail](args, 0), args.Error(1)
}

func (m *mockContent) Topics(ctx context.Context, id uuid.UUID) ([]*domain.Topic, error) {
	args := m.Called(ctx, id)
	return get[[]*domain.Topic](args, 0), args.Error(1)
}

func (m *mockContent) Questions(ctx context.Context, id uuid.UUID, c *domain.Company) ([]*domain.InterviewQuestion, error) {
	args := m.Called(ctx, id, c)
	return get[[]*domain.InterviewQuestion](args, 0), args.Error(1)
}

func (m *mockContent) Counts(ctx context.Context) (*service.CatalogCounts, error) {
	args := m.Called(ctx)
	return get[*service.CatalogCounts](args, 0), args.Error(1)
}

type mockProgress struct{ mock.Mock }

var _ ProgressTracker = (*mockProgress)(nil)
var _ ModuleStatsReader = (*mockProgress)(nil)

func (m *mockProgress) RecordActivity(ctx context.Context, u uuid.UUID, a service.Activity) (*domain.UserProgress, error) {
	args := m.Called(ctx, u, a)
	return get[*domain.UserProgress](args, 0), args.Error(1)
}

func (m *mockProgress) Get(ctx context.Context, u uuid.UUID, t service.Target) (*domain.UserProgress, error) {
	args := m.Called(ctx, u, t)
	return get[*domain.UserProgress](args, 0), args.Error(1)
}

func (m *mockProgress) List(ctx context.Context, u uuid.UUID, p service.Page) ([]*domain.UserProgress, service.PageInfo, error) {
	args := m.Called(ctx, u, p)
	return get[[]*domain.UserProgress](args, 0), get[service.PageInfo](args, 1), args.Error(2)
}

func (m *mockProgress) ListByStatus(ctx context.Context, u uuid.UUID, s domain.ProgressStatus) ([]*domain.UserProgress, error) {
	args := m.Called(ctx, u, s)
	return get[[]*domain.UserProgress](args, 0), args.Error(1)
}

func (m *mockProgress) RecentlyActive(ctx context.Context, u uuid.UUID) ([]*domain.UserProgress, error) {
	args := m.Called(ctx, u)
	return get[[]*domain.UserProgress](args, 0), args.Error(1)
}

func (m *mockProgress) ModulesNeedingReview(
	ctx context.Context,
	u uuid.UUID,
	olderThan time.Duration,
) ([]*domain.UserProgress, error) {
	args := m.Called(ctx, u, olderThan)
	return get[[]*domain.UserProgress](args, 0), args.Error(1)
}

func (m *mockProgress) Statistics(ctx context.Context, u uuid.UUID) (*store.UserProgressStats, error) {
	args := m.Called(ctx, u)
	return get[*store.UserProgressStats](args, 0), args.Error(1)
}

func (m *mockProgress) ModuleStatistics(ctx context.Context, id uuid.UUID) (*store.ModuleProgressStats, error) {
	args := m.Called(ctx, id)
	return get[*store.ModuleProgressStats](args, 0), args.Error(1)
}

type mockReviewer struct{ mock.Mock }

var _ Reviewer = (*mockReviewer)(nil)

func (m *mockReviewer) Schedule(
	ctx context.Context,
	u, c uuid.UUID,
	ct domain.ContentType,
	priority bool,
) (*domain.SpacedRepetitionSchedule, bool, error) {
	args := m.Called(ctx, u, c, ct, priority)
	return get[*domain.SpacedRepetitionSchedule](args, 0), args.Bool(1), args.Error(2)
}

func (m *mockReviewer) SubmitReview(ctx context.Context, u, id uuid.UUID, s review.Submission) (*review.Result, error) {
	args := m.Called(ctx, u, id, s)
	return get[*review.Result](args, 0), args.Error(1)
}

func (m *mockReviewer) Postpone(ctx context.Context, u, id uuid.UUID, days int) (*domain.SpacedRepetitionSchedule, error) {
	args := m.Called(ctx, u, id, days)
	return get[*domain.SpacedRepetitionSchedule](args, 0), args.Error(1)
}

func (m *mockReviewer) Get(ctx context.Context, u, id uuid.UUID) (*domain.SpacedRepetitionSchedule, error) {
	args := m.Called(ctx, u, id)
	return get[*domain.SpacedRepetitionSchedule](args, 0), args.Error(1)
}

func (m *mockReviewer) List(ctx context.Context, u uuid.UUID, p service.Page) ([]*domain.SpacedRepetitionSchedule, error) {
	args := m.Called(ctx, u, p)
	return get[[]*domain.SpacedRepetitionSchedule](args, 0), args.Error(1)
}

func (m *mockReviewer) Due(ctx context.Context, u uuid.UUID, limit int) ([]*domain.SpacedRepetitionSchedule, error) {
	args := m.Called(ctx, u, limit)
	return get[[]*domain.SpacedRepetitionSchedule](args, 0), args.Error(1)
}

func (m *mockReviewer) Overdue(ctx context.Context, u uuid.UUID) ([]*domain.SpacedRepetitionSchedule, error) {
	args := m.Called(ctx, u)
	return get[[]*domain.SpacedRepetitionSchedule](args, 0), args.Error(1)
}

func (m *mockReviewer) PriorityDue(ctx context.Context, u uuid.UUID) ([]*domain.SpacedRepetitionSchedule, error) {
	args := m.Called(ctx, u)
	return get[[]*domain.SpacedRepetitionSchedule](args, 0), args.Error(1)
}

func (m *mockReviewer) LowRetention(ctx context.Context, u uuid.UUID) ([]*domain.SpacedRepetitionSchedule, error) {
	args := m.Called(ctx, u)
	return get[[]*domain.SpacedRepetitionSchedule](args, 0), args.Error(1)
}

func (m *mockReviewer) Statistics(ctx context.Context, u uuid.UUID) (*review.Stats, error) {
	args := m.Called(ctx, u)
	return get[*review.Stats](args, 0), args.Error(1)
}

type mockMastery struct{ mock.Mock }

var _ MasteryTracker = (*mockMastery)(nil)
var _ CohortReporter = (*mockMastery)(nil)

func (m *mockMastery) Blooms(ctx context.Context, u, c uuid.UUID) (*domain.BloomsTaxonomyProgression, error) {
	args := m.Called(ctx, u, c)
	return get[*domain.BloomsTaxonomyProgression](args, 0), args.Error(1)
}

func (m *mockMastery) RecordBlooms(
	ctx context.Context,
	u, c uuid.UUID,
	up service.BloomsUpdate,
) (*domain.BloomsTaxonomyProgression, error) {
	args := m.Called(ctx, u, c, up)
	return get[*domain.BloomsTaxonomyProgression](args, 0), args.Error(1)
}

func (m *mockMastery) ListBlooms(ctx context.Context, u uuid.UUID) ([]*domain.BloomsTaxonomyProgression, error) {
	args := m.Called(ctx, u)
	return get[[]*domain.BloomsTaxonomyProgression](args, 0), args.Error(1)
}

func (m *mockMastery) SummarizeBlooms(ctx context.Context, u uuid.UUID) (*service.BloomsSummary, error) {
	args := m.Called(ctx, u)
	return get[*service.BloomsSummary](args, 0), args.Error(1)
}

func (m *mockMastery) Competency(ctx context.Context, u uuid.UUID) (*domain.CompetencyProgression, error) {
	args := m.Called(ctx, u)
	return get[*domain.CompetencyProgression](args, 0), args.Error(1)
}

func (m *mockMastery) Assess(ctx context.Context, u uuid.UUID, a service.CompetencyAssessment) (*domain.CompetencyProgression, error) {
	args := m.Called(ctx, u, a)
	return get[*domain.CompetencyProgression](args, 0), args.Error(1)
}

func (m *mockMastery) PromotionCandidates(ctx context.Context, limit int) ([]*domain.CompetencyProgression, error) {
	args := m.Called(ctx, limit)
	return get[[]*domain.CompetencyProgression](args, 0), args.Error(1)
}

func (m *mockMastery) HiringBands(ctx context.Context) (map[domain.HiringBand]int, error) {
	args := m.Called(ctx)
	return get[map[domain.HiringBand]int](args, 0), args.Error(1)
}

type mockNotes struct{ mock.Mock }

var _ NoteKeeper = (*mockNotes)(nil)

func (m *mockNotes) Create(ctx context.Context, u uuid.UUID, in service.NoteInput) (*domain.UserNote, error) {
	args := m.Called(ctx, u, in)
	return get[*domain.UserNote](args, 0), args.Error(1)
}

func (m *mockNotes) Get(ctx context.Context, u, id uuid.UUID) (*domain.UserNote, error) {
	args := m.Called(ctx, u, id)
	return get[*domain.UserNote](args, 0), args.Error(1)
}

func (m *mockNotes) List(ctx context.Context, u uuid.UUID, moduleID *uuid.UUID) ([]*domain.UserNote, error) {
	args := m.Called(ctx, u, moduleID)
	return get[[]*domain.UserNote](args, 0), args.Error(1)
}

func (m *mockNotes) Delete(ctx context.Context, u, id uuid.UUID) error {
	return m.Called(ctx, u, id).Error(0)
}
