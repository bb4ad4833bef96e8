package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rxline/pharmaflow/internal/aws"
	"github.com/rxline/pharmaflow/internal/cart"
	"github.com/rxline/pharmaflow/internal/drugs"
	"github.com/rxline/pharmaflow/internal/idempotency"
	"github.com/rxline/pharmaflow/internal/orders"
)

// round2 applies the 2-decimal presentation rounding; the cart accumulator
// itself is never rounded.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func cartJSON(sessionID string, c *cart.Cart) gin.H {
	return gin.H{
		"session_id": sessionID,
		"lines":      c.Lines(),
		"notes":      c.Notes(),
		"total":      round2(c.Total()),
	}
}

func registerCartRoutes(r *gin.Engine, sessions *cart.Sessions, drugsStore *drugs.Store, ordersStore *orders.Store, idempStore *idempotency.Store, publisher *aws.Publisher, metrics *aws.Metrics, cfg HandlerConfig) {
	// session resolves the caller's exclusively owned cart; a missing header
	// starts a fresh session whose id is echoed back.
	session := func(c *gin.Context) (*cart.Cart, string) {
		ct, sid := sessions.Get(c.GetHeader("X-Session-Id"))
		c.Header("X-Session-Id", sid)
		return ct, sid
	}

	lineIndex := func(c *gin.Context) (int, bool) {
		idx, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_index"})
			return 0, false
		}
		return idx, true
	}

	r.GET("/cart", func(c *gin.Context) {
		ct, sid := session(c)
		c.JSON(http.StatusOK, cartJSON(sid, ct))
	})

	r.POST("/cart/items", func(c *gin.Context) {
		var req struct {
			DrugID string `json:"drug_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.DrugID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_drug_id"})
			return
		}
		d, err := drugsStore.Get(c.Request.Context(), req.DrugID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed", "detail": err.Error()})
			return
		}
		if d == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "drug_not_found"})
			return
		}
		ct, sid := session(c)
		if err := ct.AddItem(*d); err != nil {
			// out-of-stock adds are a no-op with a warning, not a failure
			body := cartJSON(sid, ct)
			body["warning"] = "drug is out of stock"
			c.JSON(http.StatusOK, body)
			return
		}
		c.JSON(http.StatusOK, cartJSON(sid, ct))
	})

	r.DELETE("/cart/items/:index", func(c *gin.Context) {
		idx, ok := lineIndex(c)
		if !ok {
			return
		}
		ct, sid := session(c)
		if err := ct.RemoveItem(idx); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "line_not_found"})
			return
		}
		c.JSON(http.StatusOK, cartJSON(sid, ct))
	})

	r.PUT("/cart/items/:index/quantity", func(c *gin.Context) {
		idx, ok := lineIndex(c)
		if !ok {
			return
		}
		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body"})
			return
		}
		ct, sid := session(c)
		if err := ct.SetQuantity(idx, req.Quantity); err != nil {
			switch {
			case errors.Is(err, cart.ErrOutOfRange):
				c.JSON(http.StatusNotFound, gin.H{"error": "line_not_found"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_quantity"})
			}
			return
		}
		c.JSON(http.StatusOK, cartJSON(sid, ct))
	})

	r.PUT("/cart/items/:index/category", func(c *gin.Context) {
		idx, ok := lineIndex(c)
		if !ok {
			return
		}
		var req struct {
			Category string `json:"category"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body"})
			return
		}
		ct, sid := session(c)
		// any value is accepted here; validity is checked at checkout
		if err := ct.SetCategory(idx, req.Category); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "line_not_found"})
			return
		}
		c.JSON(http.StatusOK, cartJSON(sid, ct))
	})

	r.PUT("/cart/notes", func(c *gin.Context) {
		var req struct {
			Notes string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body"})
			return
		}
		ct, sid := session(c)
		ct.SetNotes(req.Notes)
		c.JSON(http.StatusOK, cartJSON(sid, ct))
	})

	r.POST("/cart/checkout", func(c *gin.Context) {
		ct, sid := session(c)
		recipientID := c.GetHeader("X-Institute-Id")
		gw := orders.NewDynamoGateway(ordersStore, idempStore, publisher, cfg.IdempotencyTable, c.GetHeader("X-Account-Id"), cfg.TTLWindow)

		orderID, err := orders.SubmitCart(c.Request.Context(), ct, recipientID, gw)
		if err != nil {
			switch {
			case errors.Is(err, orders.ErrEmptyCart):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "empty_cart"})
			case errors.Is(err, orders.ErrNoInstitute):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no_institute_linked"})
			case errors.Is(err, orders.ErrInvalidCategory):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_category"})
			default:
				// cart is preserved untouched; the user resubmits explicitly
				c.JSON(http.StatusBadGateway, gin.H{"error": "submission_failed", "detail": err.Error()})
			}
			return
		}

		metrics.Count(c.Request.Context(), "OrdersSubmitted", 1)
		c.JSON(http.StatusCreated, gin.H{
			"order_id":   orderID,
			"status":     orders.StatusPending,
			"session_id": sid,
		})
	})
}
