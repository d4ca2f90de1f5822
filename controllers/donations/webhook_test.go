package donations

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"project/utils"

	stripe "github.com/stripe/stripe-go/v82"
)

func signPayload(t *testing.T, secret string, payload []byte) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestConstructStripeWebhookEvent_ValidSignature(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_x")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"payment_id":"42"}}}}`)
	sig := signPayload(t, "whsec_test", payload)

	event, err := utils.ConstructStripeWebhookEvent(payload, sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.ID != "evt_1" {
		t.Errorf("event id = %q, want evt_1", event.ID)
	}
	if event.Type != "checkout.session.completed" {
		t.Errorf("event type = %q", event.Type)
	}
}

func TestConstructStripeWebhookEvent_BadSignature(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_x")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	payload := []byte(`{"id":"evt_2","object":"event","type":"checkout.session.completed"}`)
	sig := signPayload(t, "whsec_other", payload)

	if _, err := utils.ConstructStripeWebhookEvent(payload, sig); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestConstructStripeWebhookEvent_OlderAPIVersion(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_x")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	// Endpoints registered on an older Stripe API version stamp it into the
	// event; a valid signature must still verify.
	payload := []byte(`{"id":"evt_4","object":"event","api_version":"2023-10-16","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","metadata":{"payment_id":"7"}}}}`)
	sig := signPayload(t, "whsec_test", payload)

	event, err := utils.ConstructStripeWebhookEvent(payload, sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.APIVersion != "2023-10-16" {
		t.Errorf("api_version = %q", event.APIVersion)
	}
}

func TestConstructStripeWebhookEvent_TamperedPayload(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_x")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	payload := []byte(`{"id":"evt_3","object":"event"}`)
	sig := signPayload(t, "whsec_test", payload)
	tampered := []byte(`{"id":"evt_3","object":"event","amount":999}`)

	if _, err := utils.ConstructStripeWebhookEvent(tampered, sig); err == nil {
		t.Fatal("expected verification of tampered payload to fail")
	}
}

func TestMetadataPaymentID(t *testing.T) {
	cases := []struct {
		md   map[string]string
		want uint
	}{
		{nil, 0},
		{map[string]string{}, 0},
		{map[string]string{"payment_id": "42"}, 42},
		{map[string]string{"payment_id": "not-a-number"}, 0},
		{map[string]string{"creator_id": "7"}, 0},
	}
	for i, c := range cases {
		if got := metadataPaymentID(c.md); got != c.want {
			t.Errorf("case %d: got %d, want %d", i, got, c.want)
		}
	}
}

func TestEventMetadata(t *testing.T) {
	raw := json.RawMessage(`{"id":"cs_1","metadata":{"payment_id":"11","creator_id":"3"}}`)
	event := stripe.Event{Data: &stripe.EventData{Raw: raw}}
	md := eventMetadata(event)
	if md["payment_id"] != "11" || md["creator_id"] != "3" {
		t.Fatalf("unexpected metadata: %#v", md)
	}
}
