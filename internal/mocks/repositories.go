package mocks

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/help-workstation-api/internal/models"
	"github.com/help-workstation-api/internal/repository"
)

// Store bundles the in-memory repositories so tests can assert on every one
// of them, including how many calls reached the store.
type Store struct {
	Article  *MockArticleRepository
	Version  *MockVersionRepository
	Taxonomy *MockTaxonomyRepository
	Message  *MockMessageRepository
	Tx       *MockTransactor
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	s := &Store{
		Version:  NewMockVersionRepository(),
		Taxonomy: NewMockTaxonomyRepository(),
		Message:  NewMockMessageRepository(),
	}
	s.Article = NewMockArticleRepository(s.Version)
	s.Tx = &MockTransactor{store: s}
	return s
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Article:  s.Article,
		Version:  s.Version,
		Taxonomy: s.Taxonomy,
		Message:  s.Message,
		Tx:       s.Tx,
	}
}

// Calls returns the total number of repository calls made
func (s *Store) Calls() int {
	return s.Article.Calls + s.Version.Calls + s.Taxonomy.Calls + s.Message.Calls + s.Tx.Begins
}

// MockTransactor runs fn against the same in-memory repositories and restores
// the article and version maps when fn fails, mimicking a rollback.
type MockTransactor struct {
	store     *Store
	Begins    int
	Commits   int
	Rollbacks int
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(tx *repository.Repositories) error) error {
	m.Begins++
	articles := copyMap(m.store.Article.Articles)
	versions := copyMap(m.store.Version.Versions)
	terms := copyMap(m.store.Taxonomy.Terms)

	if err := fn(m.store.Repositories()); err != nil {
		m.store.Article.Articles = articles
		m.store.Version.Versions = versions
		m.store.Taxonomy.Terms = terms
		m.Rollbacks++
		return err
	}
	m.Commits++
	return nil
}

func copyMap[T any](src map[string]T) map[string]T {
	dst := make(map[string]T, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// MockArticleRepository is a mock implementation of ArticleRepository. It
// stores copies so callers cannot mutate persisted state by accident.
type MockArticleRepository struct {
	Articles    map[string]*models.Article
	Versions    *MockVersionRepository
	InsertError error
	UpdateError error
	DeleteError error
	Calls       int
	UpdateCalls int
}

func NewMockArticleRepository(versions *MockVersionRepository) *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
		Versions: versions,
	}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	m.Calls++
	if m.InsertError != nil {
		return m.InsertError
	}
	if m.slugTaken(article.Slug, article.ID) {
		return repository.ErrDuplicate
	}
	m.Articles[article.ID] = article.Clone()
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	m.Calls++
	m.UpdateCalls++
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Articles[article.ID]; !ok {
		return repository.ErrNotFound
	}
	if m.slugTaken(article.Slug, article.ID) {
		return repository.ErrDuplicate
	}

	// Like the SQL update, only content and the current version pointer move.
	src := article.Clone()
	stored := m.Articles[article.ID].Clone()
	stored.ApplyContent(src.Content())
	stored.CurrentVersionID = src.CurrentVersionID
	stored.UpdatedAt = src.UpdatedAt
	m.Articles[article.ID] = stored
	return nil
}

func (m *MockArticleRepository) UpdateLifecycle(ctx context.Context, article *models.Article) error {
	m.Calls++
	m.UpdateCalls++
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Articles[article.ID]; !ok {
		return repository.ErrNotFound
	}

	src := article.Clone()
	stored := m.Articles[article.ID].Clone()
	stored.Status = src.Status
	stored.PublishedVersionID = src.PublishedVersionID
	stored.PublishedAt = src.PublishedAt
	stored.UpdatedAt = src.UpdatedAt
	m.Articles[article.ID] = stored
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	m.Calls++
	if a, ok := m.Articles[id]; ok {
		return a.Clone(), nil
	}
	return nil, nil
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	m.Calls++
	return m.slugTaken(slug, excludeID), nil
}

func (m *MockArticleRepository) slugTaken(slug, excludeID string) bool {
	for _, a := range m.Articles {
		if a.Slug == slug && a.ID != excludeID {
			return true
		}
	}
	return false
}

// Delete removes the article and, like ON DELETE CASCADE, its versions
func (m *MockArticleRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.Calls++
	if m.DeleteError != nil {
		return false, m.DeleteError
	}
	if _, ok := m.Articles[id]; !ok {
		return false, nil
	}
	delete(m.Articles, id)
	if m.Versions != nil {
		for vid, v := range m.Versions.Versions {
			if v.ArticleID == id {
				delete(m.Versions.Versions, vid)
			}
		}
	}
	return true, nil
}

func (m *MockArticleRepository) List(ctx context.Context, q models.ArticleQuery) ([]*models.Article, int, error) {
	m.Calls++
	matched := make([]*models.Article, 0)
	for _, a := range m.Articles {
		if matchesAll(a, q.Filters) {
			matched = append(matched, a.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		less := matched[i].UpdatedAt.Before(matched[j].UpdatedAt)
		if q.Sort == models.SortTitle {
			less = matched[i].Title < matched[j].Title
		}
		if q.Desc {
			return !less
		}
		return less
	})

	total := len(matched)
	if q.Offset >= total {
		return []*models.Article{}, total, nil
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < total {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], total, nil
}

func matchesAll(a *models.Article, filters []models.ArticleFilter) bool {
	for _, f := range filters {
		switch f := f.(type) {
		case models.StatusFilter:
			ok := false
			for _, s := range f.Statuses {
				ok = ok || a.Status == s
			}
			if !ok {
				return false
			}
		case models.CategoryFilter:
			if a.CategoryID == nil || *a.CategoryID != f.CategoryID {
				return false
			}
		case models.VisibilityFilter:
			if a.Visibility != f.Visibility {
				return false
			}
		case models.TagFilter:
			found := false
			for _, t := range a.Tags {
				found = found || t == f.Tag
			}
			if !found {
				return false
			}
		case models.TextSearch:
			haystack := strings.ToLower(a.Title + " " + a.Summary + " " + a.Slug)
			for _, w := range strings.Fields(strings.ToLower(f.Text)) {
				if !strings.Contains(haystack, w) {
					return false
				}
			}
		case models.DateRange:
			if f.From != nil && a.UpdatedAt.Before(*f.From) {
				return false
			}
			if f.To != nil && a.UpdatedAt.After(*f.To) {
				return false
			}
		}
	}
	return true
}

func (m *MockArticleRepository) CountByStatus(ctx context.Context) (map[models.ArticleStatus]int, error) {
	m.Calls++
	counts := make(map[models.ArticleStatus]int)
	for _, s := range models.ArticleStatuses {
		counts[s] = 0
	}
	for _, a := range m.Articles {
		counts[a.Status]++
	}
	return counts, nil
}

func (m *MockArticleRepository) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	m.Calls++
	all := make([]*models.Article, 0, len(m.Articles))
	for _, a := range m.Articles {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	for _, a := range all {
		if err := callback(a.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// MockVersionRepository is a mock implementation of VersionRepository
type MockVersionRepository struct {
	Versions    map[string]*models.ArticleVersion
	InsertError error
	Calls       int
	InsertCalls int
}

func NewMockVersionRepository() *MockVersionRepository {
	return &MockVersionRepository{
		Versions: make(map[string]*models.ArticleVersion),
	}
}

func (m *MockVersionRepository) Create(ctx context.Context, version *models.ArticleVersion) error {
	m.Calls++
	m.InsertCalls++
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Versions[version.ID] = version.Clone()
	return nil
}

func (m *MockVersionRepository) GetByID(ctx context.Context, id string) (*models.ArticleVersion, error) {
	m.Calls++
	if v, ok := m.Versions[id]; ok {
		return v.Clone(), nil
	}
	return nil, nil
}

func (m *MockVersionRepository) ListByArticle(ctx context.Context, articleID string) ([]*models.ArticleVersion, error) {
	m.Calls++
	versions := make([]*models.ArticleVersion, 0)
	for _, v := range m.Versions {
		if v.ArticleID == articleID {
			versions = append(versions, v.Clone())
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		if versions[i].CreatedAt.Equal(versions[j].CreatedAt) {
			return versions[i].ID > versions[j].ID
		}
		return versions[i].CreatedAt.After(versions[j].CreatedAt)
	})
	return versions, nil
}

// MockTaxonomyRepository is a mock implementation of TaxonomyRepository
type MockTaxonomyRepository struct {
	Terms       map[string]*models.Term
	Audiences   map[string][]string
	InsertError error
	Calls       int
}

func NewMockTaxonomyRepository() *MockTaxonomyRepository {
	return &MockTaxonomyRepository{
		Terms:     make(map[string]*models.Term),
		Audiences: make(map[string][]string),
	}
}

func (m *MockTaxonomyRepository) Create(ctx context.Context, term *models.Term) error {
	m.Calls++
	if m.InsertError != nil {
		return m.InsertError
	}
	if m.slugTaken(term) {
		return repository.ErrDuplicate
	}
	t := *term
	m.Terms[term.ID] = &t
	return nil
}

func (m *MockTaxonomyRepository) Update(ctx context.Context, term *models.Term) error {
	m.Calls++
	existing, ok := m.Terms[term.ID]
	if !ok || existing.Kind != term.Kind {
		return repository.ErrNotFound
	}
	if m.slugTaken(term) {
		return repository.ErrDuplicate
	}
	t := *term
	t.Position = existing.Position
	m.Terms[term.ID] = &t
	return nil
}

func (m *MockTaxonomyRepository) slugTaken(term *models.Term) bool {
	for _, t := range m.Terms {
		if t.Kind == term.Kind && t.Slug == term.Slug && t.ID != term.ID {
			return true
		}
	}
	return false
}

func (m *MockTaxonomyRepository) GetByID(ctx context.Context, kind models.TermKind, id string) (*models.Term, error) {
	m.Calls++
	if t, ok := m.Terms[id]; ok && t.Kind == kind {
		c := *t
		return &c, nil
	}
	return nil, nil
}

func (m *MockTaxonomyRepository) List(ctx context.Context, kind models.TermKind) ([]*models.Term, error) {
	m.Calls++
	terms := make([]*models.Term, 0)
	for _, t := range m.Terms {
		if t.Kind == kind {
			c := *t
			terms = append(terms, &c)
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Position == terms[j].Position {
			return terms[i].Name < terms[j].Name
		}
		return terms[i].Position < terms[j].Position
	})
	return terms, nil
}

func (m *MockTaxonomyRepository) Delete(ctx context.Context, kind models.TermKind, id string) (bool, error) {
	m.Calls++
	t, ok := m.Terms[id]
	if !ok || t.Kind != kind {
		return false, nil
	}
	delete(m.Terms, id)
	delete(m.Audiences, id)
	return true, nil
}

func (m *MockTaxonomyRepository) NextPosition(ctx context.Context, kind models.TermKind) (int, error) {
	m.Calls++
	next := 0
	for _, t := range m.Terms {
		if t.Kind == kind && t.Position >= next {
			next = t.Position + 1
		}
	}
	return next, nil
}

func (m *MockTaxonomyRepository) SetPosition(ctx context.Context, kind models.TermKind, id string, position int) error {
	m.Calls++
	t, ok := m.Terms[id]
	if !ok || t.Kind != kind {
		return repository.ErrNotFound
	}
	c := *t
	c.Position = position
	m.Terms[id] = &c
	return nil
}

func (m *MockTaxonomyRepository) SetCategoryAudiences(ctx context.Context, categoryID string, audienceIDs []string) error {
	m.Calls++
	ids := make([]string, 0, len(audienceIDs))
	for _, id := range audienceIDs {
		if t, ok := m.Terms[id]; ok && t.Kind == models.KindAudience {
			ids = append(ids, id)
		}
	}
	m.Audiences[categoryID] = ids
	return nil
}

func (m *MockTaxonomyRepository) CategoryAudiences(ctx context.Context, categoryID string) ([]string, error) {
	m.Calls++
	return append([]string{}, m.Audiences[categoryID]...), nil
}

// MockMessageRepository is a mock implementation of MessageRepository
type MockMessageRepository struct {
	Messages    map[string]*models.Message
	InsertError error
	Calls       int
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		Messages: make(map[string]*models.Message),
	}
}

func (m *MockMessageRepository) Create(ctx context.Context, message *models.Message) error {
	m.Calls++
	if m.InsertError != nil {
		return m.InsertError
	}
	c := *message
	m.Messages[message.ID] = &c
	return nil
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	m.Calls++
	if msg, ok := m.Messages[id]; ok {
		c := *msg
		return &c, nil
	}
	return nil, nil
}

func (m *MockMessageRepository) List(ctx context.Context, q models.MessageQuery) ([]*models.Message, int, error) {
	m.Calls++
	text := strings.ToLower(strings.TrimSpace(q.Text))
	matched := make([]*models.Message, 0)
	for _, msg := range m.Messages {
		if q.Status != "" && msg.Status != q.Status {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(msg.Subject+" "+msg.Body+" "+msg.Email), text) {
			continue
		}
		c := *msg
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if q.Offset >= total {
		return []*models.Message{}, total, nil
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < total {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], total, nil
}

func (m *MockMessageRepository) UpdateStatus(ctx context.Context, id string, status models.MessageStatus, at time.Time) (bool, error) {
	m.Calls++
	msg, ok := m.Messages[id]
	if !ok {
		return false, nil
	}
	c := *msg
	c.Status = status
	c.UpdatedAt = at
	m.Messages[id] = &c
	return true, nil
}

func (m *MockMessageRepository) CountByStatus(ctx context.Context) (map[models.MessageStatus]int, error) {
	m.Calls++
	counts := make(map[models.MessageStatus]int)
	for _, s := range models.MessageStatuses {
		counts[s] = 0
	}
	for _, msg := range m.Messages {
		counts[msg.Status]++
	}
	return counts, nil
}

func (m *MockMessageRepository) TopSearchQueries(ctx context.Context, limit int) ([]models.SearchQueryCount, error) {
	m.Calls++
	counts := make(map[string]int)
	for _, msg := range m.Messages {
		if msg.SearchQuery != "" {
			counts[strings.ToLower(msg.SearchQuery)]++
		}
	}
	out := make([]models.SearchQueryCount, 0, len(counts))
	for q, n := range counts {
		out = append(out, models.SearchQueryCount{Query: q, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Query < out[j].Query
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Verify interface compliance
var (
	_ repository.ArticleRepository  = (*MockArticleRepository)(nil)
	_ repository.VersionRepository  = (*MockVersionRepository)(nil)
	_ repository.TaxonomyRepository = (*MockTaxonomyRepository)(nil)
	_ repository.MessageRepository  = (*MockMessageRepository)(nil)
	_ repository.Transactor         = (*MockTransactor)(nil)
)
