package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rxline/pharmaflow/internal/aws"
	"github.com/rxline/pharmaflow/internal/bulkimport"
	"github.com/rxline/pharmaflow/internal/drugs"
	"github.com/rxline/pharmaflow/internal/validation"
)

func registerDrugRoutes(r *gin.Engine, v *validatorv10.Validate, drugsStore *drugs.Store, metrics *aws.Metrics) {
	reconciler := bulkimport.NewReconciler(drugsStore)

	// cart population: only records with stock left are offered
	r.GET("/drugs", func(c *gin.Context) {
		ownerID := c.Query("created_by")
		if ownerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_created_by"})
			return
		}
		list, err := drugsStore.ListInStockByOwner(c.Request.Context(), ownerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"drugs": list})
	})

	r.POST("/drugs", func(c *gin.Context) {
		var req validation.CreateDrugRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		d := drugs.Drug{
			DrugID:      uuid.NewString(),
			DrugType:    req.DrugType,
			Name:        req.Name,
			BatchNo:     req.BatchNo,
			Description: req.Description,
			Stock:       req.Stock,
			MfgDate:     req.MfgDate,
			ExpDate:     req.ExpDate,
			Price:       req.Price,
			Category:    req.Category,
			CreatedBy:   c.GetHeader("X-Account-Id"),
			CreatedAt:   time.Now().UTC(),
		}
		if err := drugsStore.Create(c.Request.Context(), d); err != nil {
			if errors.Is(err, drugs.ErrBatchConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": "duplicate_batch_no"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"drug_id": d.DrugID})
	})

	r.POST("/drugs/import", func(c *gin.Context) {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_file", "detail": err.Error()})
			return
		}
		defer file.Close()

		rows, err := bulkimport.ReadRows(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_csv", "detail": err.Error()})
			return
		}

		ctx := c.Request.Context()
		outcome := reconciler.Run(ctx, c.GetHeader("X-Account-Id"), rows)

		metrics.Count(ctx, "ImportRowsAccepted", float64(outcome.SuccessCount))
		metrics.Count(ctx, "ImportRowsRejected", float64(len(outcome.Errors)))

		c.JSON(http.StatusOK, outcome)
	})
}
