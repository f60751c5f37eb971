package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/store"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn store.TxFn) error { return fn(ctx, nil) }

type memoryContent struct {
	store.ContentStore
	modules map[uuid.UUID]*domain.LearningModule
	topics  map[uuid.UUID]*domain.Topic
}

func newMemoryContent() *memoryContent {
	return &memoryContent{
		modules: make(map[uuid.UUID]*domain.LearningModule),
		topics:  make(map[uuid.UUID]*domain.Topic),
	}
}

func (m *memoryContent) addModule(name string, category domain.Category) *domain.LearningModule {
	mod, _ := domain.NewLearningModule(name, name+" course", category, domain.DifficultyBeginner)
	mod.SortOrder = len(m.modules) + 1
	m.modules[mod.ID] = mod
	return mod
}

func (m *memoryContent) addTopic(moduleID uuid.UUID, title string) *domain.Topic {
	t := &domain.Topic{ID: uuid.New(), ModuleID: moduleID, Title: title, Type: domain.TopicLearningContent}
	t.SortOrder = len(m.topics) + 1
	m.topics[t.ID] = t
	return t
}

func (m *memoryContent) GetModule(_ context.Context, id uuid.UUID) (*domain.LearningModule, error) {
	if mod, ok := m.modules[id]; ok {
		return mod, nil
	}
	return nil, store.ErrModuleNotFound
}

func (m *memoryContent) GetTopic(_ context.Context, id uuid.UUID) (*domain.Topic, error) {
	if t, ok := m.topics[id]; ok {
		return t, nil
	}
	return nil, store.ErrTopicNotFound
}

func (m *memoryContent) ListModules(context.Context) ([]*domain.LearningModule, error) {
	out := make([]*domain.LearningModule, 0, len(m.modules))
	for _, mod := range m.modules {
		out = append(out, mod)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *memoryContent) ListTopicsByModule(_ context.Context, id uuid.UUID) ([]*domain.Topic, error) {
	var out []*domain.Topic
	for _, t := range m.topics {
		if t.ModuleID == id {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *memoryContent) ListEnrichments(context.Context, uuid.UUID, domain.ContentType) ([]*domain.ContentEnrichment, error) {
	return []*domain.ContentEnrichment{}, nil
}

func (m *memoryContent) WithTx(*sql.Tx) store.ContentStore { return m }

type memoryProgress struct {
	store.ProgressStore
	rows    []*domain.UserProgress
	upserts int
}

func (m *memoryProgress) find(userID uuid.UUID, match func(*domain.UserProgress) bool) (*domain.UserProgress, error) {
	for _, p := range m.rows {
		if p.UserID == userID && match(p) {
			c := *p
			return &c, nil
		}
	}
	return nil, store.ErrProgressNotFound
}

func (m *memoryProgress) GetByUserAndModule(_ context.Context, userID, moduleID uuid.UUID) (*domain.UserProgress, error) {
	return m.find(userID, func(p *domain.UserProgress) bool { return p.ModuleID != nil && *p.ModuleID == moduleID })
}

func (m *memoryProgress) GetByUserAndTopic(_ context.Context, userID, topicID uuid.UUID) (*domain.UserProgress, error) {
	return m.find(userID, func(p *domain.UserProgress) bool { return p.TopicID != nil && *p.TopicID == topicID })
}

func (m *memoryProgress) Upsert(_ context.Context, p *domain.UserProgress) error {
	m.upserts++
	for i, existing := range m.rows {
		sameModule := p.ModuleID != nil && existing.ModuleID != nil && *p.ModuleID == *existing.ModuleID
		sameTopic := p.TopicID != nil && existing.TopicID != nil && *p.TopicID == *existing.TopicID
		if existing.UserID == p.UserID && (sameModule || sameTopic) {
			p.ID, p.CreatedAt = existing.ID, existing.CreatedAt
			c := *p
			m.rows[i] = &c
			return nil
		}
	}
	c := *p
	m.rows = append(m.rows, &c)
	return nil
}

func (m *memoryProgress) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*domain.UserProgress, error) {
	var out []*domain.UserProgress
	for _, p := range m.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	if offset >= len(out) {
		return []*domain.UserProgress{}, nil
	}
	return out[offset:min(len(out), offset+limit)], nil
}

func (m *memoryProgress) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, p := range m.rows {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memoryProgress) ListRecentlyAccessed(_ context.Context, userID uuid.UUID, since time.Time) ([]*domain.UserProgress, error) {
	var out []*domain.UserProgress
	for _, p := range m.rows {
		if p.UserID == userID && p.LastAccessedAt != nil && !p.LastAccessedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryProgress) WithTx(*sql.Tx) store.ProgressStore { return m }

type memoryNotes struct {
	store.NoteStore
	notes map[uuid.UUID]*domain.UserNote
}

func (m *memoryNotes) Create(_ context.Context, n *domain.UserNote) error {
	m.notes[n.ID] = n
	return nil
}

func (m *memoryNotes) GetByID(_ context.Context, id uuid.UUID) (*domain.UserNote, error) {
	if n, ok := m.notes[id]; ok {
		return n, nil
	}
	return nil, store.ErrNoteNotFound
}

func (m *memoryNotes) Delete(_ context.Context, userID, id uuid.UUID) error {
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return store.ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

type memoryBlooms struct {
	store.BloomsStore
	rows map[[2]uuid.UUID]*domain.BloomsTaxonomyProgression
}

func (m *memoryBlooms) Get(_ context.Context, userID, contentID uuid.UUID) (*domain.BloomsTaxonomyProgression, error) {
	if p, ok := m.rows[[2]uuid.UUID{userID, contentID}]; ok {
		c := *p
		return &c, nil
	}
	return nil, store.ErrBloomsNotFound
}

func (m *memoryBlooms) Upsert(_ context.Context, p *domain.BloomsTaxonomyProgression) error {
	p.SyncAlignment()
	if err := p.Validate(); err != nil {
		return err
	}
	c := *p
	m.rows[[2]uuid.UUID{p.UserID, p.ContentID}] = &c
	return nil
}

type memoryCompetency struct {
	store.CompetencyStore
	rows map[uuid.UUID]*domain.CompetencyProgression
}

func (m *memoryCompetency) GetByUser(_ context.Context, userID uuid.UUID) (*domain.CompetencyProgression, error) {
	if c, ok := m.rows[userID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, store.ErrCompetencyNotFound
}

func (m *memoryCompetency) Upsert(_ context.Context, c *domain.CompetencyProgression) error {
	cp := *c
	m.rows[c.UserID] = &cp
	return nil
}
