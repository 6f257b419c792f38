package services

import (
	"strings"
	"testing"

	"budgie/internal/pagination"
	"budgie/internal/testutil"
)

func TestAuditService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)

	svc.Log("CREATE_LOG", "log", "log-1", "127.0.0.1", map[string]any{"amount": "12.50"})
	svc.Log("DELETE_LOG", "log", "log-1", "127.0.0.1", nil)
	svc.Log("CLEANUP_CATEGORIES", "category", "", "127.0.0.1", map[string]any{"deleted": 2})

	page, err := svc.List(pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)

	if page.TotalItems != 3 {
		t.Errorf("expected 3 entries, got %d", page.TotalItems)
	}
	if page.TotalPages != 2 {
		t.Errorf("expected 2 pages, got %d", page.TotalPages)
	}
	if len(page.Data) != 2 {
		t.Fatalf("expected 2 entries on the first page, got %d", len(page.Data))
	}
	if page.Data[0].Action != "CLEANUP_CATEGORIES" {
		t.Errorf("expected newest entry first, got %s", page.Data[0].Action)
	}

	last, err := svc.List(pagination.PageRequest{Page: 2, PageSize: 2})
	testutil.AssertNoError(t, err)
	if len(last.Data) != 1 || last.Data[0].Action != "CREATE_LOG" {
		t.Fatalf("expected oldest entry on the last page, got %+v", last.Data)
	}
	if !strings.Contains(last.Data[0].Changes, `"amount":"12.50"`) {
		t.Errorf("expected changes to be recorded as JSON, got %s", last.Data[0].Changes)
	}
}
