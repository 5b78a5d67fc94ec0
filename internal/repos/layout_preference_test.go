package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/repos/testutil"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

func seedUser(t *testing.T, tx *gorm.DB, email string) *types.User {
	t.Helper()
	user := &types.User{ID: uuid.New(), Email: email, Password: "pw", FirstName: "A", LastName: "B"}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestLayoutPreferenceUpsertAndGet(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewLayoutPreferenceRepo(db, testutil.Logger(t))
	ctx := context.Background()
	user := seedUser(t, tx, "prefrepo@example.com")

	first := &types.LayoutPreference{
		ID:            uuid.New(),
		UserID:        user.ID,
		PreferenceKey: "organizations",
		Scope:         types.ScopePage,
		Value:         datatypes.JSON(`{"v":1}`),
		Version:       "1.0.0",
	}
	if _, err := repo.Upsert(ctx, tx, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Same tuple again replaces the value instead of growing a second row.
	second := &types.LayoutPreference{
		ID:            uuid.New(),
		UserID:        user.ID,
		PreferenceKey: "organizations",
		Scope:         types.ScopePage,
		Value:         datatypes.JSON(`{"v":2}`),
		Version:       "1.1.0",
	}
	if _, err := repo.Upsert(ctx, tx, second); err != nil {
		t.Fatalf("Upsert (again): %v", err)
	}

	got, err := repo.Get(ctx, tx, user.ID, "organizations", types.ScopePage, "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Value) != `{"v":2}` {
		t.Fatalf("Get: expected updated value, got %s", got.Value)
	}
	if got.Version != "1.1.0" {
		t.Fatalf("Get: expected updated version, got %q", got.Version)
	}

	all, err := repo.ListByUser(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("ListByUser: expected 1 row after upsert, got %d", len(all))
	}
}

func TestLayoutPreferenceScopesAreDistinctRows(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewLayoutPreferenceRepo(db, testutil.Logger(t))
	ctx := context.Background()
	user := seedUser(t, tx, "prefscopes@example.com")

	for _, scope := range []types.PreferenceScope{types.ScopeUser, types.ScopePage, types.ScopeEntity} {
		pref := &types.LayoutPreference{
			ID:            uuid.New(),
			UserID:        user.ID,
			PreferenceKey: "panel",
			Scope:         scope,
			Value:         datatypes.JSON(`{}`),
		}
		if _, err := repo.Upsert(ctx, tx, pref); err != nil {
			t.Fatalf("Upsert (%s): %v", scope, err)
		}
	}

	all, err := repo.ListByUser(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected one row per scope, got %d", len(all))
	}
}

func TestLayoutPreferenceOwnership(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewLayoutPreferenceRepo(db, testutil.Logger(t))
	ctx := context.Background()
	alice := seedUser(t, tx, "alice-pref@example.com")
	bob := seedUser(t, tx, "bob-pref@example.com")

	pref := &types.LayoutPreference{
		ID:            uuid.New(),
		UserID:        alice.ID,
		PreferenceKey: "dashboard",
		Scope:         types.ScopePage,
		Value:         datatypes.JSON(`{"cols":2}`),
	}
	if _, err := repo.Upsert(ctx, tx, pref); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if _, err := repo.Get(ctx, tx, bob.ID, "dashboard", types.ScopePage, ""); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}

	bobRows, err := repo.ListByUser(ctx, tx, bob.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(bobRows) != 0 {
		t.Fatalf("expected no rows for other user, got %d", len(bobRows))
	}
}

func TestLayoutPreferenceDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewLayoutPreferenceRepo(db, testutil.Logger(t))
	ctx := context.Background()
	user := seedUser(t, tx, "prefdelete@example.com")

	pref := &types.LayoutPreference{
		ID:            uuid.New(),
		UserID:        user.ID,
		PreferenceKey: "sidebar",
		Scope:         types.ScopeUser,
		Value:         datatypes.JSON(`{"collapsed":true}`),
	}
	if _, err := repo.Upsert(ctx, tx, pref); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Delete(ctx, tx, user.ID, "sidebar", types.ScopeUser, ""); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, tx, user.ID, "sidebar", types.ScopeUser, ""); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
