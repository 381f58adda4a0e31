// internal/app/features/dashboard/handler_test.go
package dashboard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/deskhubhq/deskhub/internal/app/features/dashboard"
	loginstore "github.com/deskhubhq/deskhub/internal/app/store/logins"
	projectstore "github.com/deskhubhq/deskhub/internal/app/store/projects"
	ticketstore "github.com/deskhubhq/deskhub/internal/app/store/tickets"
	userstore "github.com/deskhubhq/deskhub/internal/app/store/users"
	"github.com/deskhubhq/deskhub/internal/domain/models"
	"github.com/deskhubhq/deskhub/internal/testutil"
)

func newHandler(t *testing.T) (*dashboard.Handler, *loginstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logins := loginstore.New(db)
	h := dashboard.NewHandler(userstore.New(db), projectstore.New(db), ticketstore.New(db), logins, zap.NewNop())
	return h, logins
}

func TestHandleRecentSignIns(t *testing.T) {
	h, logins := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, outcome := range []string{"invalid_credentials", "success"} {
		rec := models.SignInRecord{Email: "ada@x.com", Outcome: outcome, IP: "10.0.0.1"}
		if err := logins.Create(ctx, rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/dashboard/signins?email=Ada@X.com", nil)
	w := httptest.NewRecorder()
	h.HandleRecentSignIns(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var recs []models.SignInRecord
	if err := json.Unmarshal(w.Body.Bytes(), &recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
}

func TestHandleRecentSignIns_RequiresEmail(t *testing.T) {
	h, _ := newHandler(t)

	r := httptest.NewRequest(http.MethodGet, "/dashboard/signins", nil)
	w := httptest.NewRecorder()
	h.HandleRecentSignIns(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRecentSignIns_UnknownEmailEmptyList(t *testing.T) {
	h, _ := newHandler(t)

	r := httptest.NewRequest(http.MethodGet, "/dashboard/signins?email=none@x.com", nil)
	w := httptest.NewRecorder()
	h.HandleRecentSignIns(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); body != "[]\n" && body != "[]" {
		t.Errorf("expected empty JSON list, got %q", body)
	}
}
