package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firestorepb "cloud.google.com/go/firestore/apiv1/firestorepb"
)

const (
	reportsCollection       = "reports"
	reportIndexCollection   = "report_index"
	notificationsCollection = "notifications"
	badgesCollection        = "badges"
	profilesCollection      = "profiles"
)

// countQuery runs a server-side COUNT aggregation.
func countQuery(ctx context.Context, q firestore.Query) (int64, error) {
	results, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	raw, ok := results["all"]
	if !ok {
		return 0, fmt.Errorf("count aggregation returned no value")
	}
	value, ok := raw.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count aggregation type %T", raw)
	}
	return value.GetIntegerValue(), nil
}
