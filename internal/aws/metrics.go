package aws

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const metricNamespace = "PharmaFlow"

// Metrics publishes counters to CloudWatch. Publishing is best-effort:
// a metric failure must never fail the request that produced it, so
// errors are logged and swallowed.
type Metrics struct {
	client CloudWatchAPI
}

// NewMetrics returns a Metrics bound to a CloudWatch client. A nil client
// disables publishing, which keeps tests and local runs quiet.
func NewMetrics(client CloudWatchAPI) *Metrics {
	return &Metrics{client: client}
}

// Count emits a single Count-unit datapoint under the PharmaFlow namespace.
func (m *Metrics) Count(ctx context.Context, name string, value float64) {
	if m == nil || m.client == nil {
		return
	}
	now := time.Now().UTC()
	input := &cloudwatch.PutMetricDataInput{
		Namespace: awsString(metricNamespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString(name),
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
				Value:      &value,
			},
		},
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		log.Printf("WARN: put metric %s: %v", name, err)
	}
}
