package seed_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/store"
)

// fakeTx runs the function without a real transaction. Like a database it
// discards writes when fn fails, via the rollback hooks of the fakes.
type fakeTx struct {
	calls     int
	rollbacks []func()
}

func (f *fakeTx) WithinTx(ctx context.Context, fn store.TxFn) error {
	f.calls++
	if err := fn(ctx, nil); err != nil {
		for _, rb := range f.rollbacks {
			rb()
		}
		return err
	}
	return nil
}

type fakeContent struct {
	mu          sync.Mutex
	modules     []*domain.LearningModule
	topics      []*domain.Topic
	questions   []*domain.InterviewQuestion
	enrichments []*domain.ContentEnrichment
	failTopic   error
}

var _ store.ContentStore = (*fakeContent)(nil)

func (f *fakeContent) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modules, f.topics, f.questions, f.enrichments = nil, nil, nil, nil
}

func (f *fakeContent) CreateModule(_ context.Context, m *domain.LearningModule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.modules {
		if strings.EqualFold(existing.Name, m.Name) {
			return store.ErrModuleExists
		}
	}
	f.modules = append(f.modules, m)
	return nil
}

func (f *fakeContent) CreateTopic(_ context.Context, t *domain.Topic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTopic != nil {
		return f.failTopic
	}
	f.topics = append(f.topics, t)
	return nil
}

func (f *fakeContent) CreateQuestion(_ context.Context, q *domain.InterviewQuestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, q)
	return nil
}

func (f *fakeContent) CreateEnrichment(_ context.Context, e *domain.ContentEnrichment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enrichments = append(f.enrichments, e)
	return nil
}

func (f *fakeContent) GetModule(_ context.Context, id uuid.UUID) (*domain.LearningModule, error) {
	for _, m := range f.modules {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, store.ErrModuleNotFound
}

func (f *fakeContent) GetTopic(context.Context, uuid.UUID) (*domain.Topic, error) {
	return nil, store.ErrTopicNotFound
}

func (f *fakeContent) GetQuestion(context.Context, uuid.UUID) (*domain.InterviewQuestion, error) {
	return nil, store.ErrQuestionNotFound
}

func (f *fakeContent) ListModules(context.Context) ([]*domain.LearningModule, error) {
	return f.modules, nil
}

func (f *fakeContent) ListTopicsByModule(_ context.Context, id uuid.UUID) ([]*domain.Topic, error) {
	var out []*domain.Topic
	for _, t := range f.topics {
		if t.ModuleID == id {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeContent) ListQuestionsByModule(_ context.Context, id uuid.UUID) ([]*domain.InterviewQuestion, error) {
	var out []*domain.InterviewQuestion
	for _, q := range f.questions {
		if q.ModuleID == id {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeContent) ListEnrichments(
	_ context.Context,
	id uuid.UUID,
	ct domain.ContentType,
) ([]*domain.ContentEnrichment, error) {
	var out []*domain.ContentEnrichment
	for _, e := range f.enrichments {
		if e.ContentID == id && e.ContentType == ct {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeContent) CountModules(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.modules), nil
}

func (f *fakeContent) CountTopics(context.Context) (int, error) { return len(f.topics), nil }

func (f *fakeContent) CountQuestions(context.Context) (int, error) { return len(f.questions), nil }

func (f *fakeContent) CountModulesByCategory(context.Context) (map[domain.Category]int, error) {
	out := make(map[domain.Category]int)
	for _, m := range f.modules {
		out[m.Category]++
	}
	return out, nil
}

func (f *fakeContent) WithTx(*sql.Tx) store.ContentStore { return f }

type fakeUsers struct {
	users []*domain.User
}

var _ store.UserStore = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	u.HashedPassword = "hashed:" + u.Password
	u.Password = ""
	f.users = append(f.users, u)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, name string) (*domain.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, name) {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUsers) WithTx(*sql.Tx) store.UserStore { return f }

func noLock(context.Context, store.DBTX) error { return nil }

var errBoom = errors.New("boom")
