package donations

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"project/database"

	"github.com/DATA-DOG/go-sqlmock"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

func deliverWebhook(t *testing.T, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	sig := signPayload(t, "whsec_test", payload)
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", sig)
	rr := httptest.NewRecorder()
	StripeWebhookHandler(rr, req)
	return rr
}

// A delivery whose processing fails must not keep its dedup claim: the
// gateway retry carries the same event id and has to be processed again,
// while a replay after a successful delivery stays a no-op.
func TestStripeWebhookHandler_FailedProcessingIsRetryable(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_x")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	db, mock := newMockDB(t)
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	payload := []byte(`{"id":"evt_retry","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_9","metadata":{"payment_id":"42"}}}}`)

	// First delivery: claim succeeds, completion hits a transient DB error,
	// the whole transaction (claim included) rolls back.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `webhook_events`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT (.+) FROM `payments`(.+)FOR UPDATE").
		WillReturnError(errors.New("driver: bad connection"))
	mock.ExpectRollback()

	if rr := deliverWebhook(t, payload); rr.Code != http.StatusInternalServerError {
		t.Fatalf("failed delivery: status = %d, want 500", rr.Code)
	}

	// Retry of the same event id: the claim inserts again and the pending
	// payment is completed.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `webhook_events`").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery("SELECT (.+) FROM `payments`(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "creator_id", "amount", "currency", "status"}).
			AddRow(42, 7, 5000, "pln", "pending"))
	mock.ExpectExec("UPDATE `payments` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `profiles` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `donation_goals` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if rr := deliverWebhook(t, payload); rr.Code != http.StatusOK {
		t.Fatalf("retry delivery: status = %d, want 200; body %s", rr.Code, rr.Body.String())
	}

	// Replay after success: unique index collides, nothing is reprocessed.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `webhook_events`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	rr := deliverWebhook(t, payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("replay delivery: status = %d, want 200", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("Already processed")) {
		t.Errorf("replay body = %s, want already-processed acknowledgement", rr.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
