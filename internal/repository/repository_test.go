package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/help-workstation-api/internal/database"
	"github.com/help-workstation-api/internal/models"
	"github.com/help-workstation-api/internal/repository"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

var articleCols = []string{
	"id", "slug", "title", "summary", "body", "category_id", "visibility", "tags", "status",
	"current_version_id", "published_version_id", "published_at", "created_at", "updated_at",
}

var versionCols = []string{
	"id", "article_id", "title", "summary", "body", "category_id", "visibility", "tags", "created_by", "created_at",
}

func strPtr(s string) *string { return &s }

func TestArticleRepo_GetByID(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	want := &models.Article{
		ID: "a-1", Slug: "billing-faq", Title: "Billing FAQ", Summary: "", Body: "...",
		Visibility: models.VisibilityPublic, Tags: []string{"billing", "faq"},
		Status: models.StatusPublished, CurrentVersionID: strPtr("v-2"), PublishedVersionID: strPtr("v-2"),
		PublishedAt: &now, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM articles WHERE id = $1")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows(articleCols).AddRow(
			"a-1", "billing-faq", "Billing FAQ", "", "...", nil, "public", []byte(`["billing","faq"]`), "published",
			"v-2", "v-2", now, now, now,
		))

	got, err := repository.NewArticleRepo(db).GetByID(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("GetByID err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_GetByID_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("FROM articles").WithArgs("missing").WillReturnRows(sqlmock.NewRows(articleCols))

	got, err := repository.NewArticleRepo(db).GetByID(context.Background(), "missing")
	if err != nil || got != nil {
		t.Fatalf("Expected (nil, nil), got (%v, %v)", got, err)
	}
}

func TestArticleRepo_Create_DuplicateSlug(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectExec("INSERT INTO articles").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "articles_slug_key"})

	err := repository.NewArticleRepo(db).Create(context.Background(), &models.Article{ID: "a-1", Slug: "dup"})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate, got %v", err)
	}
}

func TestArticleRepo_Update_NoRows(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectExec("UPDATE articles SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repository.NewArticleRepo(db).Update(context.Background(), &models.Article{ID: "gone"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestArticleRepo_Update_ContentOnly(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`(?s)UPDATE articles SET\s+slug = \$2, .* current_version_id = \$9, updated_at = \$10\s+WHERE id = \$1`).
		WithArgs("a-1", "billing-faq", "Billing FAQ", "", "...", nil, models.VisibilityPublic, "[]", strPtr("v-2"), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repository.NewArticleRepo(db).Update(context.Background(), &models.Article{
		ID: "a-1", Slug: "billing-faq", Title: "Billing FAQ", Body: "...", Visibility: models.VisibilityPublic,
		Status: models.StatusArchived, CurrentVersionID: strPtr("v-2"), UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Update err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_UpdateLifecycle(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`(?s)UPDATE articles SET\s+status = \$2, published_version_id = \$3, published_at = \$4, updated_at = \$5\s+WHERE id = \$1`).
		WithArgs("a-1", models.StatusPublished, strPtr("v-1"), &now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repository.NewArticleRepo(db).UpdateLifecycle(context.Background(), &models.Article{
		ID: "a-1", Title: "stale title", Status: models.StatusPublished,
		CurrentVersionID: strPtr("v-1"), PublishedVersionID: strPtr("v-1"), PublishedAt: &now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("UpdateLifecycle err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Create_UnknownCategory(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectExec("INSERT INTO articles").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "articles_category_id_fkey"})

	err := repository.NewArticleRepo(db).Create(context.Background(), &models.Article{ID: "a-1", Slug: "orphan"})
	if !errors.Is(err, repository.ErrReference) {
		t.Fatalf("Expected ErrReference, got %v", err)
	}
}

func TestArticleRepo_List(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles WHERE status = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY title ASC, id ASC LIMIT $2 OFFSET $3")).
		WithArgs(sqlmock.AnyArg(), 1, 2).
		WillReturnRows(sqlmock.NewRows(articleCols).AddRow(
			"a-3", "c", "C", "", "b", "cat-1", "internal", []byte(`[]`), "draft",
			"v-1", nil, nil, now, now,
		))

	q := models.ArticleQuery{
		Filters: []models.ArticleFilter{models.StatusFilter{Statuses: []models.ArticleStatus{models.StatusDraft}}},
		Sort:    models.SortTitle,
		Limit:   1,
		Offset:  2,
	}
	got, total, err := repository.NewArticleRepo(db).List(context.Background(), q)
	if err != nil {
		t.Fatalf("List err=%v", err)
	}
	if total != 3 || len(got) != 1 {
		t.Fatalf("Expected total=3 len=1, got total=%d len=%d", total, len(got))
	}
	if got[0].CategoryID == nil || *got[0].CategoryID != "cat-1" {
		t.Errorf("Expected category cat-1, got %v", got[0].CategoryID)
	}
	if got[0].PublishedVersionID != nil {
		t.Errorf("Expected nil published version, got %v", *got[0].PublishedVersionID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_CountByStatus(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("GROUP BY status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("draft", 4).AddRow("published", 2))

	got, err := repository.NewArticleRepo(db).CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("CountByStatus err=%v", err)
	}
	want := map[models.ArticleStatus]int{models.StatusDraft: 4, models.StatusPublished: 2, models.StatusArchived: 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestVersionRepo_ListByArticle(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE article_id = $1 ORDER BY created_at DESC")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows(versionCols).
			AddRow("v-2", "a-1", "T2", "", "B2", nil, "public", []byte(`["x"]`), "editor", t2).
			AddRow("v-1", "a-1", "T1", "", "B1", nil, "public", nil, "editor", t1))

	got, err := repository.NewVersionRepo(db).ListByArticle(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("ListByArticle err=%v", err)
	}
	want := []*models.ArticleVersion{
		{ID: "v-2", ArticleID: "a-1", Title: "T2", Body: "B2", Visibility: models.VisibilityPublic, Tags: []string{"x"}, CreatedBy: "editor", CreatedAt: t2},
		{ID: "v-1", ArticleID: "a-1", Title: "T1", Body: "B1", Visibility: models.VisibilityPublic, Tags: []string{}, CreatedBy: "editor", CreatedAt: t1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRepositories_WithinTx_Commits(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO article_versions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE articles SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repos := repository.New(database.Wrap(db, zerolog.Nop()))
	err := repos.Tx.WithinTx(context.Background(), func(tx *repository.Repositories) error {
		if err := tx.Version.Create(context.Background(), &models.ArticleVersion{ID: "v-2", ArticleID: "a-1"}); err != nil {
			return err
		}
		return tx.Article.Update(context.Background(), &models.Article{ID: "a-1", CurrentVersionID: strPtr("v-2")})
	})
	if err != nil {
		t.Fatalf("WithinTx err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRepositories_WithinTx_RollsBackOnError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO article_versions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE articles SET").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	repos := repository.New(database.Wrap(db, zerolog.Nop()))
	err := repos.Tx.WithinTx(context.Background(), func(tx *repository.Repositories) error {
		if err := tx.Version.Create(context.Background(), &models.ArticleVersion{ID: "v-2", ArticleID: "a-1"}); err != nil {
			return err
		}
		return tx.Article.Update(context.Background(), &models.Article{ID: "a-1"})
	})
	if err == nil {
		t.Fatal("Expected error from failed pointer update")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTaxonomyRepo_NextPosition(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(position) + 1, 0) FROM terms WHERE kind = $1")).
		WithArgs(models.KindTag).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(7))

	got, err := repository.NewTaxonomyRepo(db).NextPosition(context.Background(), models.KindTag)
	if err != nil || got != 7 {
		t.Fatalf("Expected 7, got %d (err=%v)", got, err)
	}
}

func TestMessageRepo_UpdateStatus(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	at := time.Now()
	mock.ExpectExec("UPDATE messages SET status").
		WithArgs("m-1", models.MessageResolved, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repository.NewMessageRepo(db).UpdateStatus(context.Background(), "m-1", models.MessageResolved, at)
	if err != nil || !ok {
		t.Fatalf("Expected update, got ok=%v err=%v", ok, err)
	}
}
