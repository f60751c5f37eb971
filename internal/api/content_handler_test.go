package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/service"
	"github.com/phrazzld/academy-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListModules(t *testing.T) {
	t.Parallel()

	languages := domain.CategoryProgrammingLanguages

	tests := []struct {
		name       string
		query      string
		filter     *domain.Category
		wantStatus int
	}{
		{name: "all", query: "", filter: nil, wantStatus: http.StatusOK},
		{name: "by category", query: "?category=programming%20languages", filter: &languages, wantStatus: http.StatusOK},
		{name: "unknown category", query: "?category=basket-weaving", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			content := &mockContent{}
			if tt.wantStatus == http.StatusOK {
				content.On("Modules", mock.Anything, tt.filter).
					Return([]*domain.LearningModule{{ID: uuid.New(), Name: "Java Fundamentals"}}, nil)
			}
			w := httptest.NewRecorder()
			NewContentHandler(content, &mockProgress{}).ListModules(w,
				request(t, http.MethodGet, "/api/modules"+tt.query, nil, nil, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			content.AssertExpectations(t)
		})
	}
}

func TestGetModule(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		content := &mockContent{}
		content.On("Module", mock.Anything, id).Return(&service.ModuleDetail{
			LearningModule: &domain.LearningModule{ID: id, Name: "Java Fundamentals"},
			Topics:         []*domain.Topic{{ID: uuid.New(), ModuleID: id, Title: "Generics"}},
		}, nil)

		w := httptest.NewRecorder()
		NewContentHandler(content, &mockProgress{}).GetModule(w,
			request(t, http.MethodGet, "/api/modules/"+id.String(), nil, nil, map[string]string{"moduleId": id.String()}))

		assert.Equal(t, http.StatusOK, w.Code)
		var got map[string]any
		decodeData(t, w, &got)
		assert.Equal(t, "Java Fundamentals", got["name"])
		assert.Len(t, got["topics"], 1)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		content := &mockContent{}
		content.On("Module", mock.Anything, id).
			Return(nil, errors.Join(service.ErrContentNotFound, store.ErrModuleNotFound))

		w := httptest.NewRecorder()
		NewContentHandler(content, &mockProgress{}).GetModule(w,
			request(t, http.MethodGet, "/api/modules/"+id.String(), nil, nil, map[string]string{"moduleId": id.String()}))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Learning module not found", decodeError(t, w))
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		NewContentHandler(&mockContent{}, &mockProgress{}).GetModule(w,
			request(t, http.MethodGet, "/api/modules/nope", nil, nil, map[string]string{"moduleId": "nope"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid moduleId: has invalid format", decodeError(t, w))
	})
}

func TestListQuestionsFiltersByCompany(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	content := &mockContent{}
	content.On("Questions", mock.Anything, id, mock.MatchedBy(func(c *domain.Company) bool {
		return c != nil && *c == domain.CompanyAmazon
	})).Return([]*domain.InterviewQuestion{{ID: uuid.New(), Question: "What is a HashMap?"}}, nil)

	w := httptest.NewRecorder()
	NewContentHandler(content, &mockProgress{}).ListQuestions(w,
		request(t, http.MethodGet, "/api/modules/"+id.String()+"/questions?company=amazon", nil, nil,
			map[string]string{"moduleId": id.String()}))

	assert.Equal(t, http.StatusOK, w.Code)
	content.AssertExpectations(t)
}

func TestModuleStats(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	content := &mockContent{}
	content.On("Module", mock.Anything, id).Return(&service.ModuleDetail{LearningModule: &domain.LearningModule{ID: id}}, nil)
	progress := &mockProgress{}
	progress.On("ModuleStatistics", mock.Anything, id).
		Return(&store.ModuleProgressStats{Learners: 4, Completed: 1, AverageProgress: 37.5}, nil)

	w := httptest.NewRecorder()
	NewContentHandler(content, progress).ModuleStats(w,
		request(t, http.MethodGet, "/api/modules/"+id.String()+"/stats", nil, nil, map[string]string{"moduleId": id.String()}))

	assert.Equal(t, http.StatusOK, w.Code)
	var got store.ModuleProgressStats
	decodeData(t, w, &got)
	assert.Equal(t, 4, got.Learners)
	assert.InDelta(t, 37.5, got.AverageProgress, 0.001)
}
