package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/masterfoodbrokers/crm-backend/internal/repos/testutil"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

func TestOrganizationListFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewOrganizationRepo(db, testutil.Logger(t))
	ctx := context.Background()

	seed := []*types.Organization{
		{ID: uuid.New(), Name: "Acme Foods", Kind: types.OrgKindPrincipal, Priority: types.OrgPriorityB},
		{ID: uuid.New(), Name: "Valley Distributing", Kind: types.OrgKindDistributor, Priority: types.OrgPriorityA},
		{ID: uuid.New(), Name: "Harbor Grill", Kind: types.OrgKindOperator, Priority: types.OrgPriorityC},
		{ID: uuid.New(), Name: "Acme Distributing", Kind: types.OrgKindDistributor, Priority: types.OrgPriorityB},
	}
	for _, org := range seed {
		if _, err := repo.Create(ctx, tx, org); err != nil {
			t.Fatalf("Create %s: %v", org.Name, err)
		}
	}

	byKind, err := repo.List(ctx, tx, OrganizationFilter{Kind: types.OrgKindDistributor})
	if err != nil {
		t.Fatalf("List by kind: %v", err)
	}
	if len(byKind) != 2 {
		t.Fatalf("List by kind: expected 2, got %d", len(byKind))
	}
	for _, org := range byKind {
		if org.Kind != types.OrgKindDistributor {
			t.Fatalf("List by kind: got %s", org.Kind)
		}
	}

	byPriority, err := repo.List(ctx, tx, OrganizationFilter{Priority: types.OrgPriorityA})
	if err != nil {
		t.Fatalf("List by priority: %v", err)
	}
	if len(byPriority) != 1 || byPriority[0].Name != "Valley Distributing" {
		t.Fatalf("List by priority: unexpected result %+v", byPriority)
	}

	// Name search is case insensitive.
	byQuery, err := repo.List(ctx, tx, OrganizationFilter{Query: "acme"})
	if err != nil {
		t.Fatalf("List by query: %v", err)
	}
	if len(byQuery) != 2 {
		t.Fatalf("List by query: expected 2, got %d", len(byQuery))
	}

	combined, err := repo.List(ctx, tx, OrganizationFilter{Kind: types.OrgKindDistributor, Query: "acme"})
	if err != nil {
		t.Fatalf("List combined: %v", err)
	}
	if len(combined) != 1 || combined[0].Name != "Acme Distributing" {
		t.Fatalf("List combined: unexpected result %+v", combined)
	}
}

func TestOrganizationListOrdering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewOrganizationRepo(db, testutil.Logger(t))
	ctx := context.Background()

	seed := []*types.Organization{
		{ID: uuid.New(), Name: "Zenith", Kind: types.OrgKindOperator, Priority: types.OrgPriorityA},
		{ID: uuid.New(), Name: "Apex", Kind: types.OrgKindOperator, Priority: types.OrgPriorityB},
		{ID: uuid.New(), Name: "Baseline", Kind: types.OrgKindOperator, Priority: types.OrgPriorityA},
	}
	for _, org := range seed {
		if _, err := repo.Create(ctx, tx, org); err != nil {
			t.Fatalf("Create %s: %v", org.Name, err)
		}
	}

	got, err := repo.List(ctx, tx, OrganizationFilter{Kind: types.OrgKindOperator})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"Baseline", "Zenith", "Apex"}
	if len(got) != len(want) {
		t.Fatalf("List: expected %d rows, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("List order: position %d expected %s, got %s", i, name, got[i].Name)
		}
	}
}

func TestOrganizationListPagination(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewOrganizationRepo(db, testutil.Logger(t))
	ctx := context.Background()

	names := []string{"Alpha", "Bravo", "Charlie", "Delta"}
	for _, name := range names {
		org := &types.Organization{ID: uuid.New(), Name: name, Kind: types.OrgKindPrincipal, Priority: types.OrgPriorityC}
		if _, err := repo.Create(ctx, tx, org); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	page, err := repo.List(ctx, tx, OrganizationFilter{Kind: types.OrgKindPrincipal, Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 || page[0].Name != "Bravo" || page[1].Name != "Charlie" {
		t.Fatalf("List pagination: unexpected page %+v", page)
	}
}
