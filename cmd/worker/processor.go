package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/rxline/pharmaflow/internal/aws"
	"github.com/rxline/pharmaflow/internal/drugs"
	"github.com/rxline/pharmaflow/internal/idempotency"
	"github.com/rxline/pharmaflow/internal/orders"
)

// Processor handles SQS messages and performs order lifecycle transitions:
// PENDING -> PROCESSING -> COMPLETED, decrementing drug stock and resolving
// the authoritative amount from store-side prices along the way.
type Processor struct {
	idempStore *idempotency.Store
	orderStore *orders.Store
	drugStore  *drugs.Store
}

// NewProcessor creates a new worker processor with AWS clients injected.
func NewProcessor(clients *aws.AWSClients, idempTable, ordersTable, drugsTable string) *Processor {
	return &Processor{
		idempStore: idempotency.NewStore(clients.DynamoDB, idempTable, 48*time.Hour),
		orderStore: orders.NewStore(clients.DynamoDB, ordersTable),
		drugStore:  drugs.NewStore(clients.DynamoDB, drugsTable),
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			log.Printf("worker error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg WorkerMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	log.Printf("[worker] received order=%s idempotency_key=%s corr=%s",
		msg.OrderID, msg.IdempotencyKey, msg.CorrelationID)

	order, err := p.orderStore.Get(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("failed to fetch order: %w", err)
	}
	if order == nil {
		// Should never happen — DLQ if it does
		return fmt.Errorf("order not found: %s", msg.OrderID)
	}

	// Move PENDING -> PROCESSING (idempotent)
	err = p.orderStore.UpdateStatus(ctx, msg.OrderID, orders.StatusPending, orders.StatusProcessing)
	if errors.Is(err, orders.ErrStatusMismatch) {
		// Already processed or competing worker:
		// COMPLETED -> success, FAILED -> permanent failure,
		// PROCESSING -> another worker took it, swallow the duplicate.
		o2, _ := p.orderStore.Get(ctx, msg.OrderID)
		switch o2.Status {
		case orders.StatusCompleted:
			log.Printf("[worker] already completed order=%s", msg.OrderID)
			return nil
		case orders.StatusFailed:
			return fmt.Errorf("order=%s is already FAILED", msg.OrderID)
		case orders.StatusProcessing:
			log.Printf("[worker] duplicate processing event for order=%s", msg.OrderID)
			return nil
		default:
			return fmt.Errorf("unexpected status for order=%s: %s", msg.OrderID, o2.Status)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to update status to PROCESSING: %w", err)
	}

	_ = p.orderStore.IncrementAttempts(ctx, msg.OrderID)

	// Fulfil the order: decrement stock per line and sum the authoritative
	// price by drug id. Displayed cart prices were snapshots; the store price
	// at completion time is what the order is charged.
	amount, err := p.fulfil(ctx, order)
	if err != nil {
		if errors.Is(err, drugs.ErrInsufficientStock) {
			// Retrying cannot help; fail the order permanently.
			log.Printf("[worker] order=%s failed: %v", msg.OrderID, err)
			_ = p.orderStore.UpdateStatus(ctx, msg.OrderID, orders.StatusProcessing, orders.StatusFailed)
			_ = p.idempStore.MarkFailed(ctx, msg.IdempotencyKey, err.Error())
			return nil
		}
		return fmt.Errorf("fulfil order=%s: %w", msg.OrderID, err)
	}

	if err := p.orderStore.SetAmount(ctx, msg.OrderID, amount); err != nil {
		return fmt.Errorf("failed to set amount: %w", err)
	}

	// Complete order: PROCESSING -> COMPLETED
	if err := p.orderStore.UpdateStatus(ctx, msg.OrderID, orders.StatusProcessing, orders.StatusCompleted); err != nil {
		return fmt.Errorf("failed to update status to COMPLETED: %w", err)
	}

	// Mark idempotency DONE (API created the record)
	response := fmt.Sprintf(`{"order_id":"%s","status":"COMPLETED"}`, msg.OrderID)
	if err := p.idempStore.MarkDone(ctx, msg.IdempotencyKey, response, 200); err != nil {
		return fmt.Errorf("failed to update idempotency: %w", err)
	}

	log.Printf("[worker] completed order=%s amount=%.2f", msg.OrderID, amount)
	return nil
}

func (p *Processor) fulfil(ctx context.Context, order *orders.Order) (float64, error) {
	var amount float64
	for _, it := range order.Items {
		d, err := p.drugStore.Get(ctx, it.DrugID)
		if err != nil {
			return 0, fmt.Errorf("fetch drug %s: %w", it.DrugID, err)
		}
		if d == nil {
			return 0, fmt.Errorf("drug %s: %w", it.DrugID, drugs.ErrInsufficientStock)
		}
		if err := p.drugStore.DecrementStock(ctx, it.DrugID, it.Quantity); err != nil {
			return 0, fmt.Errorf("drug %s: %w", it.DrugID, err)
		}
		amount += float64(it.Quantity) * d.Price
	}
	return amount, nil
}
