package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"budgie/internal/models"
	"budgie/internal/pagination"
)

func TestAuditHandler_ListAuditLogs(t *testing.T) {
	t.Run("passes paging", func(t *testing.T) {
		var got pagination.PageRequest
		audit := &mockAuditService{
			listFn: func(page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
				got = page
				resp := pagination.NewPageResponse([]models.AuditLog{{Action: "CREATE_LOG"}}, page.Page, page.PageSize, 3)
				return &resp, nil
			},
		}
		r := gin.New()
		r.GET("/audit", NewAuditHandler(audit).ListAuditLogs)

		rec := doRequest(r, "GET", "/audit?page=2&page_size=1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Page != 2 || got.PageSize != 1 {
			t.Errorf("expected page 2 size 1, got %+v", got)
		}
		result := parseJSON(t, rec)
		if result["total_pages"] != float64(3) {
			t.Errorf("expected 3 pages, got %v", result["total_pages"])
		}
	})

	t.Run("rejects oversized pages", func(t *testing.T) {
		r := gin.New()
		r.GET("/audit", NewAuditHandler(&mockAuditService{}).ListAuditLogs)

		rec := doRequest(r, "GET", "/audit?page_size=1000", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
