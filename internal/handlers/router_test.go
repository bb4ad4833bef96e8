package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/gin-gonic/gin"

	"github.com/rxline/pharmaflow/internal/drugs"
	"github.com/rxline/pharmaflow/internal/orders"
)

func newTestRouter() (*gin.Engine, *mockDynamo, *mockSQS) {
	gin.SetMode(gin.TestMode)
	dynamo := newMockDynamo()
	queue := &mockSQS{}
	r := gin.New()
	RegisterRoutes(r, HandlerConfig{
		DynamoDBClient:   dynamo,
		SQSClient:        queue,
		IdempotencyTable: "idempotency",
		OrdersTable:      "orders",
		DrugsTable:       "drugs",
		QueueURL:         "https://sqs.test/orders",
		TTLWindow:        48 * time.Hour,
	})
	return r, dynamo, queue
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func seedDrug(t *testing.T, m *mockDynamo, d drugs.Drug) {
	t.Helper()
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		t.Fatalf("marshal drug: %v", err)
	}
	m.tables["drugs"][d.DrugID] = item
}

func seedOrder(t *testing.T, m *mockDynamo, o orders.Order) {
	t.Helper()
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}
	m.tables["orders"][o.OrderID] = item
}
