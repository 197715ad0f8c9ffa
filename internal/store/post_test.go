package store

import (
	"context"
	"errors"
	"testing"

	"inkpress/internal/models"
)

func TestPostStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	author := testUser(t, db, "post-create@test.local")
	cat := testCategory(t, db, "Store Test", "store-test-create")
	cleanPosts(t, db, "store-create-post")

	s := NewPostStore(db)
	created, err := s.Create(ctx, &models.Post{
		Title:      "Store Create Post",
		Slug:       "store-create-post",
		Content:    "body",
		AuthorID:   author.ID,
		CategoryID: cat.ID,
		Tags:       []string{"go", "testing"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", created.ID) })

	if created.Author == nil || created.Author.Name != "Test User" {
		t.Errorf("author not populated: %+v", created.Author)
	}
	if created.Category == nil || created.Category.Slug != "store-test-create" {
		t.Errorf("category not populated: %+v", created.Category)
	}
	if len(created.Tags) != 2 {
		t.Errorf("tags = %v, want 2 entries", created.Tags)
	}
	if created.Published {
		t.Error("new post should default to draft")
	}

	found, err := s.FindBySlug(ctx, "store-create-post")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Errorf("FindBySlug returned %+v, want id %s", found, created.ID)
	}
}

// TestPostStoreSlugConflict verifies that the unique index converts a
// duplicate-slug insert into ErrConflict.
func TestPostStoreSlugConflict(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	author := testUser(t, db, "post-conflict@test.local")
	cat := testCategory(t, db, "Conflict Test", "store-test-conflict")
	cleanPosts(t, db, "store-conflict-post")

	s := NewPostStore(db)
	first, err := s.Create(ctx, &models.Post{
		Title: "Conflict", Slug: "store-conflict-post", Content: "a",
		AuthorID: author.ID, CategoryID: cat.ID, Tags: []string{},
	})
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", first.ID) })

	_, err = s.Create(ctx, &models.Post{
		Title: "Conflict Again", Slug: "store-conflict-post", Content: "b",
		AuthorID: author.ID, CategoryID: cat.ID, Tags: []string{},
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("second Create err = %v, want ErrConflict", err)
	}
}

func TestPostStoreListFilters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	author := testUser(t, db, "post-list@test.local")
	cat := testCategory(t, db, "List Test", "store-test-list")
	cleanPosts(t, db, "store-list-draft", "store-list-published")

	s := NewPostStore(db)
	draft, err := s.Create(ctx, &models.Post{
		Title: "List Draft", Slug: "store-list-draft", Content: "d",
		AuthorID: author.ID, CategoryID: cat.ID, Tags: []string{},
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", draft.ID) })

	pub, err := s.Create(ctx, &models.Post{
		Title: "List Published", Slug: "store-list-published", Content: "p",
		AuthorID: author.ID, CategoryID: cat.ID, Tags: []string{}, Published: true,
	})
	if err != nil {
		t.Fatalf("create published: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", pub.ID) })

	published := true
	items, total, err := s.List(ctx, PostFilter{
		Published:  &published,
		CategoryID: &cat.ID,
		Page:       1,
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("List returned %d items (total %d), want 1", len(items), total)
	}
	if items[0].Slug != "store-list-published" {
		t.Errorf("List returned %q, want the published post", items[0].Slug)
	}
}
