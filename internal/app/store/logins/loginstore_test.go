package loginstore_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	loginstore "github.com/deskhubhq/deskhub/internal/app/store/logins"
	"github.com/deskhubhq/deskhub/internal/domain/models"
	"github.com/deskhubhq/deskhub/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := models.SignInRecord{
		Email:   "Alice@Example.com",
		UserID:  "user-1",
		Outcome: "success",
		IP:      "192.168.1.1",
	}

	err := store.Create(ctx, rec)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var found models.SignInRecord
	err = db.Collection("signin_records").FindOne(ctx, bson.M{"user_id": "user-1"}).Decode(&found)
	if err != nil {
		t.Fatalf("failed to find sign-in record: %v", err)
	}

	if found.Email != "alice@example.com" {
		t.Errorf("Email: got %q, want normalized %q", found.Email, "alice@example.com")
	}
	if found.Outcome != "success" {
		t.Errorf("Outcome: got %q, want %q", found.Outcome, "success")
	}
	if found.IP != "192.168.1.1" {
		t.Errorf("IP: got %q, want %q", found.IP, "192.168.1.1")
	}
	// CreatedAt should be set automatically
	if found.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Record_ExtractsRequestDetails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "10.0.0.9:54321"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.Header.Set("User-Agent", "deskhub-test/1.0")

	if err := store.Record(ctx, r, "bob@example.com", "", "invalid_credentials"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	var found models.SignInRecord
	err := db.Collection("signin_records").FindOne(ctx, bson.M{"email": "bob@example.com"}).Decode(&found)
	if err != nil {
		t.Fatalf("failed to find sign-in record: %v", err)
	}

	if found.IP != "203.0.113.7" {
		t.Errorf("IP: got %q, want first X-Forwarded-For entry %q", found.IP, "203.0.113.7")
	}
	if found.UserAgent != "deskhub-test/1.0" {
		t.Errorf("UserAgent: got %q", found.UserAgent)
	}
	if found.Outcome != "invalid_credentials" {
		t.Errorf("Outcome: got %q", found.Outcome)
	}
}

func TestStore_RecentForEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		rec := models.SignInRecord{
			Email:     "carol@example.com",
			Outcome:   "success",
			IP:        "10.0.0.1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Create(ctx, rec); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	// Attempt by someone else must not appear.
	if err := store.Create(ctx, models.SignInRecord{Email: "dave@example.com", Outcome: "success", IP: "10.0.0.2"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	recs, err := store.RecentForEmail(ctx, "Carol@Example.com", 2)
	if err != nil {
		t.Fatalf("RecentForEmail failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if !recs[0].CreatedAt.After(recs[1].CreatedAt) {
		t.Error("expected newest-first ordering")
	}
}
