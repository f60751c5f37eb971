package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/service"
	"github.com/phrazzld/academy-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestProgressRequiresUser(t *testing.T) {
	t.Parallel()

	h := NewProgressHandler(&mockProgress{})
	w := httptest.NewRecorder()
	h.Stats(w, request(t, http.MethodGet, "/api/progress/stats", nil, nil, nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProgressList(t *testing.T) {
	t.Parallel()

	user := uuid.New()

	t.Run("paged", func(t *testing.T) {
		t.Parallel()
		m := &mockProgress{}
		m.On("List", mock.Anything, user, service.Page{Number: 1, Size: 2}).
			Return([]*domain.UserProgress{domain.NewModuleProgress(user, uuid.New())},
				service.PageInfo{Number: 1, Size: 2, Total: 3, TotalPages: 2}, nil)

		w := httptest.NewRecorder()
		NewProgressHandler(m).List(w, request(t, http.MethodGet, "/api/progress?page=1&size=2", nil, &user, nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total_pages":2`)
		m.AssertExpectations(t)
	})

	t.Run("size above maximum", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		NewProgressHandler(&mockProgress{}).List(w, request(t, http.MethodGet, "/api/progress?size=500", nil, &user, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non numeric page", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		NewProgressHandler(&mockProgress{}).List(w, request(t, http.MethodGet, "/api/progress?page=two", nil, &user, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("by status", func(t *testing.T) {
		t.Parallel()
		m := &mockProgress{}
		m.On("ListByStatus", mock.Anything, user, domain.StatusInProgress).Return([]*domain.UserProgress{}, nil)

		w := httptest.NewRecorder()
		NewProgressHandler(m).List(w, request(t, http.MethodGet, "/api/progress?status=in%20progress", nil, &user, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		m.AssertExpectations(t)
	})
}

func TestGetModuleProgressWithoutRow(t *testing.T) {
	t.Parallel()

	user, module := uuid.New(), uuid.New()
	m := &mockProgress{}
	m.On("Get", mock.Anything, user, service.ModuleTarget(module)).
		Return(domain.NewModuleProgress(user, module), nil)

	w := httptest.NewRecorder()
	NewProgressHandler(m).GetModule(w, request(t, http.MethodGet, "/api/progress/modules/"+module.String(), nil, &user,
		map[string]string{"moduleId": module.String()}))

	require.Equal(t, http.StatusOK, w.Code)
	var got domain.UserProgress
	decodeData(t, w, &got)
	assert.Equal(t, domain.StatusNotStarted, got.Status)
	assert.Equal(t, 0, got.ProgressPercentage)
}

func TestPutTopicProgress(t *testing.T) {
	t.Parallel()

	user, topic := uuid.New(), uuid.New()
	params := map[string]string{"topicId": topic.String()}

	tests := []struct {
		name       string
		body       any
		err        error
		wantStatus int
	}{
		{
			name:       "records activity",
			body:       ProgressRequest{ProgressPercentage: intPtr(40), TimeSpentMinutes: 25, Rating: intPtr(4)},
			wantStatus: http.StatusOK,
		},
		{
			name:       "percentage above 100",
			body:       ProgressRequest{ProgressPercentage: intPtr(140)},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "rating zero",
			body:       ProgressRequest{Rating: intPtr(0)},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative time",
			body:       `{"time_spent_minutes":-5}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown topic",
			body:       ProgressRequest{TimeSpentMinutes: 5},
			err:        errors.Join(service.ErrContentNotFound, store.ErrTopicNotFound),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := &mockProgress{}
			if tt.wantStatus != http.StatusBadRequest {
				call := m.On("RecordActivity", mock.Anything, user, mock.MatchedBy(func(a service.Activity) bool {
					return a.TopicID != nil && *a.TopicID == topic && a.ModuleID == nil
				}))
				if tt.err != nil {
					call.Return(nil, tt.err)
				} else {
					p := domain.NewTopicProgress(user, topic)
					p.Status = domain.StatusInProgress
					p.ProgressPercentage = 40
					call.Return(p, nil)
				}
			}

			w := httptest.NewRecorder()
			NewProgressHandler(m).PutTopic(w, request(t, http.MethodPut, "/api/progress/topics/"+topic.String(), tt.body, &user, params))

			assert.Equal(t, tt.wantStatus, w.Code)
			m.AssertExpectations(t)
		})
	}
}

func TestProgressStats(t *testing.T) {
	t.Parallel()

	user := uuid.New()
	m := &mockProgress{}
	m.On("Statistics", mock.Anything, user).Return(&store.UserProgressStats{Total: 5, Completed: 2, TotalTimeMinutes: 300}, nil)

	w := httptest.NewRecorder()
	NewProgressHandler(m).Stats(w, request(t, http.MethodGet, "/api/progress/stats", nil, &user, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got store.UserProgressStats
	decodeData(t, w, &got)
	assert.Equal(t, 2, got.Completed)
	assert.Equal(t, 300, got.TotalTimeMinutes)
}

func TestModulesNeedingReview(t *testing.T) {
	t.Parallel()

	user := uuid.New()
	tests := []struct {
		name       string
		query      string
		want       time.Duration
		wantStatus int
	}{
		{name: "default window", want: 30 * 24 * time.Hour, wantStatus: http.StatusOK},
		{name: "explicit window", query: "?days=7", want: 7 * 24 * time.Hour, wantStatus: http.StatusOK},
		{name: "zero days", query: "?days=0", wantStatus: http.StatusBadRequest},
		{name: "not a number", query: "?days=week", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := &mockProgress{}
			if tt.wantStatus == http.StatusOK {
				m.On("ModulesNeedingReview", mock.Anything, user, tt.want).Return([]*domain.UserProgress{}, nil)
			}

			w := httptest.NewRecorder()
			NewProgressHandler(m).NeedingReview(w,
				request(t, http.MethodGet, "/api/progress/needing-review"+tt.query, nil, &user, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			m.AssertExpectations(t)
		})
	}
}
