package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func newProgressFixture(t *testing.T) (*ProgressService, *memoryProgress, *memoryContent) {
	t.Helper()
	progress, content := &memoryProgress{}, newMemoryContent()
	svc, err := NewProgressService(passthroughTx{}, progress, content, nil)
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow }
	return svc, progress, content
}

func intPtr(v int) *int { return &v }

func TestGetWithoutProgressIsNotStarted(t *testing.T) {
	svc, progress, content := newProgressFixture(t)
	mod := content.addModule("Java Fundamentals", domain.CategoryProgrammingLanguages)
	userID := uuid.New()

	p, err := svc.Get(context.Background(), userID, ModuleTarget(mod.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, p.Status)
	assert.Zero(t, p.ProgressPercentage)
	assert.Equal(t, mod.ID, *p.ModuleID)
	assert.Zero(t, progress.upserts, "reading does not persist")
}

func TestRecordActivity(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		activities []Activity
		wantStatus domain.ProgressStatus
		wantPct    int
		wantTime   int
		wantAccess int
	}{
		{
			name:       "first access starts",
			activities: []Activity{{TimeSpentMinutes: 15}},
			wantStatus: domain.StatusInProgress,
			wantPct:    1,
			wantTime:   15,
			wantAccess: 1,
		},
		{
			name: "percentage accumulates with time",
			activities: []Activity{
				{ProgressPercentage: intPtr(40), TimeSpentMinutes: 30},
				{ProgressPercentage: intPtr(70), TimeSpentMinutes: 45},
			},
			wantStatus: domain.StatusInProgress,
			wantPct:    70,
			wantTime:   75,
			wantAccess: 2,
		},
		{
			name:       "100 percent completes",
			activities: []Activity{{ProgressPercentage: intPtr(100)}},
			wantStatus: domain.StatusCompleted,
			wantPct:    100,
			wantAccess: 1,
		},
		{
			name:       "out of range percentage is clamped",
			activities: []Activity{{ProgressPercentage: intPtr(140)}},
			wantStatus: domain.StatusCompleted,
			wantPct:    100,
			wantAccess: 1,
		},
		{
			name: "dropping below 100 reopens",
			activities: []Activity{
				{Complete: true},
				{ProgressPercentage: intPtr(80)},
			},
			wantStatus: domain.StatusInProgress,
			wantPct:    80,
			wantAccess: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, progress, content := newProgressFixture(t)
			topic := content.addTopic(content.addModule("Java", domain.CategoryProgrammingLanguages).ID, "Basics")

			var p *domain.UserProgress
			for _, a := range tt.activities {
				a.Target = TopicTarget(topic.ID)
				var err error
				p, err = svc.RecordActivity(context.Background(), userID, a)
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantPct, p.ProgressPercentage)
			assert.Equal(t, tt.wantTime, p.TimeSpentMinutes)
			assert.Equal(t, tt.wantAccess, p.AccessCount)
			assert.Len(t, progress.rows, 1, "one row per user and topic")
			assert.NoError(t, p.Validate())
		})
	}
}

func TestRecordActivityRejects(t *testing.T) {
	svc, progress, content := newProgressFixture(t)
	mod := content.addModule("SQL", domain.CategoryDatabases)
	userID := uuid.New()

	tests := []struct {
		name string
		a    Activity
		want error
	}{
		{name: "no target", a: Activity{}, want: domain.ErrProgressTarget},
		{
			name: "both targets",
			a:    Activity{Target: Target{ModuleID: &mod.ID, TopicID: &mod.ID}},
			want: domain.ErrProgressTarget,
		},
		{name: "unknown module", a: Activity{Target: ModuleTarget(uuid.New())}, want: ErrContentNotFound},
		{name: "negative time", a: Activity{Target: ModuleTarget(mod.ID), TimeSpentMinutes: -5}, want: domain.ErrNegativeTimeSpent},
		{name: "bad rating", a: Activity{Target: ModuleTarget(mod.ID), Rating: intPtr(9)}, want: domain.ErrInvalidRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordActivity(context.Background(), userID, tt.a)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, progress.rows)
}

func TestCompleteAndRate(t *testing.T) {
	svc, _, content := newProgressFixture(t)
	mod := content.addModule("React", domain.CategoryFrameworks)
	userID := uuid.New()
	ctx := context.Background()

	p, err := svc.Complete(ctx, userID, ModuleTarget(mod.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, p.Status)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, fixedNow, *p.CompletedAt)

	p, err = svc.Rate(ctx, userID, ModuleTarget(mod.ID), 5)
	require.NoError(t, err)
	require.NotNil(t, p.UserRating)
	assert.Equal(t, 5, *p.UserRating)
	assert.Equal(t, domain.StatusCompleted, p.Status)

	_, err = svc.Rate(ctx, userID, ModuleTarget(mod.ID), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
}

func TestListPages(t *testing.T) {
	svc, _, content := newProgressFixture(t)
	userID := uuid.New()
	for i := 0; i < 3; i++ {
		mod := content.addModule(uuid.NewString(), domain.CategoryDatabases)
		_, err := svc.RecordActivity(context.Background(), userID, Activity{Target: ModuleTarget(mod.ID)})
		require.NoError(t, err)
	}

	page, err := NewPage(1, 2)
	require.NoError(t, err)
	rows, info, err := svc.List(context.Background(), userID, page)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, PageInfo{Number: 1, Size: 2, Total: 3, TotalPages: 2}, info)
}

func TestRecentlyActiveUsesWindow(t *testing.T) {
	svc, progress, content := newProgressFixture(t)
	userID := uuid.New()
	mod := content.addModule("Node", domain.CategoryBackend)

	_, err := svc.RecordActivity(context.Background(), userID, Activity{Target: ModuleTarget(mod.ID)})
	require.NoError(t, err)
	stale := fixedNow.Add(-domain.ActiveLearningWindow - time.Hour)
	progress.rows = append(progress.rows, &domain.UserProgress{ID: uuid.New(), UserID: userID, LastAccessedAt: &stale})

	rows, err := svc.RecentlyActive(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name    string
		number  int
		size    int
		want    Page
		wantErr bool
	}{
		{name: "default size", number: 0, size: 0, want: Page{Number: 0, Size: DefaultPageSize}},
		{name: "explicit", number: 3, size: 10, want: Page{Number: 3, Size: 10}},
		{name: "negative page", number: -1, size: 10, wantErr: true},
		{name: "size too large", number: 0, size: MaxPageSize + 1, wantErr: true},
		{name: "negative size", number: 0, size: -3, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPage(tt.number, tt.size)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, 30, Page{Number: 3, Size: 10}.Offset())
}
