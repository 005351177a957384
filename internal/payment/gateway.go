// Package payment wraps the third-party payment processor behind a
// narrow interface.  The core never talks to the processor directly:
// checkout creates an order here, and the webhook handler verifies the
// processor's signature here before trusting the event.
package payment

import (
	"github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// Gateway is the surface the handlers depend on.  Keeping it this small
// makes the processor mockable in tests.
type Gateway interface {
	// CreateOrder opens a processor order for the given amount and
	// returns its id.  Notes travel with the order and come back on the
	// webhook, which is how payments are correlated to bookings.
	CreateOrder(amountCents uint32, currency, receipt string, notes map[string]interface{}) (string, error)
	// VerifyWebhookSignature checks the signature header of a webhook
	// delivery against the raw body.
	VerifyWebhookSignature(body, signature, secret string) bool
}

// RazorpayGateway implements Gateway with the Razorpay SDK.
type RazorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpayGateway builds a gateway from the API key pair.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) CreateOrder(amountCents uint32, currency, receipt string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   amountCents,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", err
	}
	id, _ := order["id"].(string)
	return id, nil
}

func (g *RazorpayGateway) VerifyWebhookSignature(body, signature, secret string) bool {
	return utils.VerifyWebhookSignature(body, signature, secret)
}
