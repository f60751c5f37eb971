package review

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// passthroughTx runs fn without a transaction.
type passthroughTx struct{ calls int }

func (p *passthroughTx) WithinTx(ctx context.Context, fn store.TxFn) error {
	p.calls++
	return fn(ctx, nil)
}

// MockScheduleStore mocks store.ScheduleStore
type MockScheduleStore struct {
	mock.Mock
}

var _ store.ScheduleStore = (*MockScheduleStore)(nil)

func (m *MockScheduleStore) schedule(args mock.Arguments) (*domain.SpacedRepetitionSchedule, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpacedRepetitionSchedule), args.Error(1)
}

func (m *MockScheduleStore) schedules(args mock.Arguments) ([]*domain.SpacedRepetitionSchedule, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SpacedRepetitionSchedule), args.Error(1)
}

func (m *MockScheduleStore) Create(ctx context.Context, s *domain.SpacedRepetitionSchedule) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockScheduleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SpacedRepetitionSchedule, error) {
	return m.schedule(m.Called(ctx, id))
}

func (m *MockScheduleStore) GetByIDForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*domain.SpacedRepetitionSchedule, error) {
	return m.schedule(m.Called(ctx, id))
}

func (m *MockScheduleStore) GetByContent(
	ctx context.Context,
	userID, contentID uuid.UUID,
	contentType domain.ContentType,
) (*domain.SpacedRepetitionSchedule, error) {
	return m.schedule(m.Called(ctx, userID, contentID, contentType))
}

func (m *MockScheduleStore) Update(ctx context.Context, s *domain.SpacedRepetitionSchedule, expectedCount int) error {
	return m.Called(ctx, s, expectedCount).Error(0)
}

func (m *MockScheduleStore) RecordReviewEvent(ctx context.Context, e *domain.ReviewEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockScheduleStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.SpacedRepetitionSchedule, error) {
	return m.schedules(m.Called(ctx, userID, limit, offset))
}

func (m *MockScheduleStore) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.SpacedRepetitionSchedule, error) {
	return m.schedules(m.Called(ctx, now, limit))
}

func (m *MockScheduleStore) ListDueByUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.SpacedRepetitionSchedule, error) {
	return m.schedules(m.Called(ctx, userID, now, limit))
}

func (m *MockScheduleStore) ListOverdueByUser(
	ctx context.Context,
	userID uuid.UUID,
	before time.Time,
) ([]*domain.SpacedRepetitionSchedule, error) {
	return m.schedules(m.Called(ctx, userID, before))
}

func (m *MockScheduleStore) ListPriorityDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.SpacedRepetitionSchedule, error) {
	return m.schedules(m.Called(ctx, userID, now))
}

func (m *MockScheduleStore) ListLowRetention(
	ctx context.Context,
	userID uuid.UUID,
	threshold int,
) ([]*domain.SpacedRepetitionSchedule, error) {
	return m.schedules(m.Called(ctx, userID, threshold))
}

func (m *MockScheduleStore) CountDue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockScheduleStore) CountOverdue(ctx context.Context, before time.Time) (int, error) {
	args := m.Called(ctx, before)
	return args.Int(0), args.Error(1)
}

func (m *MockScheduleStore) CountDueByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	args := m.Called(ctx, userID, now)
	return args.Int(0), args.Error(1)
}

func (m *MockScheduleStore) CountOverdueByUser(
	ctx context.Context,
	userID uuid.UUID,
	before time.Time,
) (int, error) {
	args := m.Called(ctx, userID, before)
	return args.Int(0), args.Error(1)
}

func (m *MockScheduleStore) RetentionStatistics(ctx context.Context, userID uuid.UUID) (*store.RetentionStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.RetentionStats), args.Error(1)
}

func (m *MockScheduleStore) WithTx(*sql.Tx) store.ScheduleStore {
	return m
}
