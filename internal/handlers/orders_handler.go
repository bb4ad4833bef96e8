package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rxline/pharmaflow/internal/aws"
	"github.com/rxline/pharmaflow/internal/cart"
	"github.com/rxline/pharmaflow/internal/drugs"
	"github.com/rxline/pharmaflow/internal/idempotency"
	"github.com/rxline/pharmaflow/internal/orders"
	"github.com/rxline/pharmaflow/internal/validation"
)

// HandlerConfig groups dependencies for the API handlers.
type HandlerConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	CloudWatchClient aws.CloudWatchAPI
	IdempotencyTable string
	OrdersTable      string
	DrugsTable       string
	QueueURL         string
	TTLWindow        time.Duration
}

// RegisterRoutes wires every API route group onto the engine.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	idempStore := idempotency.NewStore(cfg.DynamoDBClient, cfg.IdempotencyTable, cfg.TTLWindow)
	ordersStore := orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable)
	drugsStore := drugs.NewStore(cfg.DynamoDBClient, cfg.DrugsTable)
	publisher := aws.NewPublisher(cfg.SQSClient, cfg.QueueURL)
	metrics := aws.NewMetrics(cfg.CloudWatchClient)
	sessions := cart.NewSessions()

	registerOrderRoutes(r, v, ordersStore, idempStore, publisher, metrics, cfg)
	registerDrugRoutes(r, v, drugsStore, metrics)
	registerCartRoutes(r, sessions, drugsStore, ordersStore, idempStore, publisher, metrics, cfg)
}

func registerOrderRoutes(r *gin.Engine, v *validatorv10.Validate, ordersStore *orders.Store, idempStore *idempotency.Store, publisher *aws.Publisher, metrics *aws.Metrics, cfg HandlerConfig) {
	r.POST("/pharmacy/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_idempotency_key"})
			return
		}

		orderID := uuid.NewString()
		now := time.Now().UTC()
		idempItem := map[string]interface{}{
			"idempotency_key": idempKey,
			"status":          idempotency.StatusInProgress,
			"created_at":      now.Format(time.RFC3339),
			"updated_at":      now.Format(time.RFC3339),
			"order_id":        orderID,
		}

		items := make([]orders.Item, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, orders.Item{
				DrugID:   it.DrugID,
				Quantity: it.Quantity,
				Category: it.Category,
			})
		}
		order := orders.Order{
			OrderID:     orderID,
			RecipientID: req.RecipientID,
			PharmacyID:  c.GetHeader("X-Account-Id"),
			Status:      orders.StatusPending,
			Items:       items,
			Notes:       req.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		// Attempt the transact write to create idempotency + order atomically
		err := ordersStore.CreateWithIdempotencyTransaction(ctx, cfg.IdempotencyTable, idempItem, order, cfg.TTLWindow)
		if err != nil {
			// Transaction failed, most likely because the idempotency key
			// exists. Fetch the record and replay or report accordingly.
			rec, getErr := idempStore.Get(ctx, idempKey)
			if getErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": getErr.Error()})
				return
			}
			if rec == nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "transaction_failed_no_idempotency_record", "detail": err.Error()})
				return
			}
			switch rec.Status {
			case idempotency.StatusDone:
				if rec.ResponseBody != "" {
					var body interface{}
					if derr := json.Unmarshal([]byte(rec.ResponseBody), &body); derr == nil {
						c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
						return
					}
					c.JSON(rec.ResponseStatus, gin.H{"response": rec.ResponseBody})
					return
				}
				c.JSON(http.StatusOK, gin.H{"order_id": rec.OrderID})
				return
			case idempotency.StatusInProgress:
				c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "order_id": rec.OrderID})
				return
			case idempotency.StatusFailed:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "previous_attempt_failed", "order_id": rec.OrderID})
				return
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
				return
			}
		}

		// Records created atomically; hand the order to the worker. If the
		// enqueue fails we mark idempotency FAILED so the client can retry.
		msgPayload, _ := json.Marshal(map[string]string{
			"order_id":        orderID,
			"idempotency_key": idempKey,
		})
		attrs := map[string]string{
			"idempotency_key": idempKey,
			"order_id":        orderID,
			"correlation_id":  c.GetHeader("X-Request-Id"),
		}
		if err := publisher.SendOrderMessage(ctx, string(msgPayload), attrs); err != nil {
			_ = idempStore.MarkFailed(ctx, idempKey, fmt.Sprintf("sqs_send_failed: %v", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
			return
		}

		responseBody, _ := json.Marshal(gin.H{"order_id": orderID, "status": orders.StatusPending})
		_ = idempStore.MarkDone(ctx, idempKey, string(responseBody), http.StatusCreated)

		metrics.Count(ctx, "OrdersSubmitted", 1)
		c.Header("Location", fmt.Sprintf("/pharmacy/orders/%s", orderID))
		c.JSON(http.StatusCreated, gin.H{"order_id": orderID, "status": orders.StatusPending})
	})

	r.GET("/pharmacy/orders/history", func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		q := orders.HistoryQuery{
			PharmacyID: c.GetHeader("X-Account-Id"),
			Status:     c.Query("status"),
			Search:     c.Query("search"),
			Page:       page,
			Limit:      limit,
		}
		list, total, err := ordersStore.History(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "history_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"orders": list,
			"total":  total,
			"page":   page,
			"limit":  limit,
		})
	})
}
