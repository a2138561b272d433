package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

func TestCategoryStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	c := testCategory(t, db, "Store Test")
	if c.ID == uuid.Nil || c.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at, got %+v", c)
	}

	got, err := s.FindByID(ctx, c.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID: %v, %v", got, err)
	}
	if got.Name != "Store Test" || got.Slug != c.Slug {
		t.Errorf("unexpected category: %+v", got)
	}

	bySlug, err := s.FindBySlug(ctx, c.Slug)
	if err != nil || bySlug == nil || bySlug.ID != c.ID {
		t.Fatalf("FindBySlug: %v, %v", bySlug, err)
	}

	missing, err := s.FindByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Errorf("FindByID (missing): %v, %v", missing, err)
	}
}

func TestCategoryStoreDuplicateSlugAllowed(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	a := testCategory(t, db, "Dup A")
	b := &models.Category{Name: "Dup B", Slug: a.Slug}
	if err := s.Create(ctx, b); err != nil {
		t.Fatalf("second category with same slug: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", b.ID) })
}

func TestCategoryStoreListOrderedByName(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	testCategory(t, db, "zz store test")
	testCategory(t, db, "aa store test")

	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Name > items[i].Name {
			t.Errorf("not ordered by name: %q before %q", items[i-1].Name, items[i].Name)
		}
	}
}
