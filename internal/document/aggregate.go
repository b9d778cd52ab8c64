package document

import (
	"strconv"
	"strings"
)

// Aggregation names a reduction over a grouped metric column.
type Aggregation string

const (
	AggCount Aggregation = "count"
	AggSum   Aggregation = "sum"
	AggAvg   Aggregation = "avg"
)

// SeriesPoint is one aggregated group.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Aggregate reduces a document into a {label, value} series grouped by a
// categorical field. groupBy falls back to the first column when absent or
// unknown. When metric is not a real column every row contributes 1 and the
// returned Aggregation is forced to count, so the caller is told which
// reduction actually ran instead of being silently misled.
//
// Groups appear in first-seen row order.
func Aggregate(doc *Structured, groupBy, metric string, agg Aggregation) ([]SeriesPoint, Aggregation) {
	if doc == nil || len(doc.Fields) == 0 {
		return []SeriesPoint{}, AggCount
	}
	groupField := doc.Fields[0]
	if groupBy != "" && fieldExists(doc.Fields, groupBy) {
		groupField = groupBy
	}
	metricField := ""
	if metric != "" && fieldExists(doc.Fields, metric) {
		metricField = metric
	}
	switch agg {
	case AggSum, AggAvg, AggCount:
	default:
		agg = AggCount
	}
	if metricField == "" {
		agg = AggCount
	}

	type bucket struct {
		sum   float64
		count int
	}
	order := []string{}
	buckets := map[string]*bucket{}
	for _, row := range doc.FullData {
		key := labelFor(row[groupField])
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		val := 1.0
		if metricField != "" {
			val = numeric(row[metricField])
		}
		b.sum += val
		b.count++
	}

	out := make([]SeriesPoint, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		var v float64
		switch agg {
		case AggSum:
			v = b.sum
		case AggAvg:
			if b.count > 0 {
				v = b.sum / float64(b.count)
			}
		default:
			v = float64(b.count)
		}
		out = append(out, SeriesPoint{Label: key, Value: v})
	}
	return out, agg
}

func fieldExists(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

func labelFor(v any) string {
	switch x := v.(type) {
	case nil:
		return "Unknown"
	case string:
		if strings.TrimSpace(x) == "" {
			return "Unknown"
		}
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return "Unknown"
	}
}

// numeric coerces a cell to float64; non-numeric cells count as 0.
func numeric(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	}
	return 0
}
