package donations

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"project/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
)

func postPaymentInfo(t *testing.T, id string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/donations/"+id+"/payment-info", bytes.NewReader([]byte(body)))
	req = mux.SetURLVars(req, map[string]string{"id": id})
	rr := httptest.NewRecorder()
	UpdatePaymentInfoHandler(rr, req)
	return rr
}

func TestUpdatePaymentInfoHandler_StoresProcessorReference(t *testing.T) {
	db, mock := newMockDB(t)
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	mock.ExpectQuery("SELECT (.+) FROM `payments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "creator_id", "amount", "status"}).
			AddRow(9, 3, 2500, "pending"))
	mock.ExpectExec("UPDATE `payments` SET").
		WithArgs("pi_abc123", sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := postPaymentInfo(t, "9", `{"stripe_payment_id":"pi_abc123","creator_id":3}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rr.Code, rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"recorded":true`)) {
		t.Errorf("body = %s, want recorded:true", rr.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdatePaymentInfoHandler_CreatorMismatch(t *testing.T) {
	db, mock := newMockDB(t)
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	mock.ExpectQuery("SELECT (.+) FROM `payments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "creator_id", "amount", "status"}).
			AddRow(9, 3, 2500, "pending"))

	rr := postPaymentInfo(t, "9", `{"stripe_payment_id":"pi_abc123","creator_id":4}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body %s", rr.Code, rr.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
