package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rxline/pharmaflow/internal/aws"
	"github.com/rxline/pharmaflow/internal/cart"
	"github.com/rxline/pharmaflow/internal/idempotency"
)

// Gateway is the order-submission boundary. Implementations persist the order
// and hand it to the processing pipeline; the caller only learns the order id
// or a failure.
type Gateway interface {
	Submit(ctx context.Context, payload SubmissionPayload) (orderID string, err error)
}

// SubmitCart validates the cart, submits the resulting payload through the
// gateway and clears the cart on confirmed success. On any failure, validation
// or gateway, the cart is left completely unchanged so the user can retry
// without re-entering data. No retry is attempted here.
func SubmitCart(ctx context.Context, c *cart.Cart, recipientID string, gw Gateway) (string, error) {
	payload, err := ValidateCart(c, recipientID)
	if err != nil {
		return "", err
	}
	orderID, err := gw.Submit(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("gateway: %w", err)
	}
	c.Clear()
	return orderID, nil
}

// DynamoGateway submits orders the way the POST /pharmacy/orders handler does:
// order + idempotency record written in one transaction, then a completion
// message published to SQS for the worker.
type DynamoGateway struct {
	Orders     *Store
	Idemp      *idempotency.Store
	Publisher  *aws.Publisher
	IdempTable string
	PharmacyID string
	TTLWindow  time.Duration
	nowFunc    func() time.Time
	newOrderID func() string
}

// NewDynamoGateway wires the gateway to its stores and queue.
func NewDynamoGateway(ordersStore *Store, idempStore *idempotency.Store, publisher *aws.Publisher, idempTable, pharmacyID string, ttlWindow time.Duration) *DynamoGateway {
	return &DynamoGateway{
		Orders:     ordersStore,
		Idemp:      idempStore,
		Publisher:  publisher,
		IdempTable: idempTable,
		PharmacyID: pharmacyID,
		TTLWindow:  ttlWindow,
		nowFunc:    time.Now,
		newOrderID: uuid.NewString,
	}
}

// Submit persists a PENDING order and enqueues it for completion. A cart
// checkout has no client-supplied idempotency key, so the gateway mints one
// per submission; explicit API submissions carry their own key and go through
// the handler instead.
func (g *DynamoGateway) Submit(ctx context.Context, payload SubmissionPayload) (string, error) {
	now := g.nowFunc().UTC()
	orderID := g.newOrderID()
	idempKey := uuid.NewString()

	idempItem := map[string]interface{}{
		"idempotency_key": idempKey,
		"status":          idempotency.StatusInProgress,
		"created_at":      now.Format(time.RFC3339),
		"updated_at":      now.Format(time.RFC3339),
		"order_id":        orderID,
	}

	order := Order{
		OrderID:     orderID,
		RecipientID: payload.RecipientID,
		PharmacyID:  g.PharmacyID,
		Status:      StatusPending,
		Items:       payload.Items,
		Notes:       payload.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := g.Orders.CreateWithIdempotencyTransaction(ctx, g.IdempTable, idempItem, order, g.TTLWindow); err != nil {
		return "", err
	}

	msgPayload, _ := json.Marshal(map[string]string{
		"order_id":        orderID,
		"idempotency_key": idempKey,
	})
	attrs := map[string]string{
		"idempotency_key": idempKey,
		"order_id":        orderID,
	}
	if err := g.Publisher.SendOrderMessage(ctx, string(msgPayload), attrs); err != nil {
		_ = g.Idemp.MarkFailed(ctx, idempKey, fmt.Sprintf("sqs_send_failed: %v", err))
		return "", err
	}

	responseBody, _ := json.Marshal(map[string]string{"order_id": orderID, "status": StatusPending})
	_ = g.Idemp.MarkDone(ctx, idempKey, string(responseBody), http.StatusCreated)

	return orderID, nil
}
