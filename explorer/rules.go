package explorer

import (
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"asset-aggregator/model"
)

// SenderPaths response shapes seen in the wild, first non-empty match wins
var SenderPaths = []string{
	"header.sender_address",
	"sender_address",
	"header.senderAddress",
	"transaction.sender_address",
	"header.contract_address",
}

// TimestampPaths block timestamp in unix seconds
var TimestampPaths = []string{
	"header.timestamp",
	"timestamp",
	"header.block_timestamp",
	"block_timestamp",
}

// Extract builds the enrichment entry for one transaction document.
// Missing timestamps default to now, a missing sender stays nil.
func Extract(body []byte, now time.Time) model.TxnEnrichment {
	out := model.TxnEnrichment{TimestampISO: model.FormatISO(now)}
	if !gjson.ValidBytes(body) {
		return out
	}

	for _, p := range SenderPaths {
		if v := strings.TrimSpace(gjson.GetBytes(body, p).String()); v != "" {
			sender := v
			out.Sender = &sender
			break
		}
	}

	for _, p := range TimestampPaths {
		if ts, ok := unixTime(gjson.GetBytes(body, p)); ok {
			out.TimestampISO = model.FormatISO(ts)
			break
		}
	}
	return out
}

func unixTime(r gjson.Result) (time.Time, bool) {
	var n int64
	switch r.Type {
	case gjson.Number:
		n = r.Int()
	case gjson.String:
		v, err := strconv.ParseInt(strings.TrimSpace(r.Str), 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		n = v
	default:
		return time.Time{}, false
	}
	if n <= 0 {
		return time.Time{}, false
	}
	if n > 1e12 {
		return time.UnixMilli(n), true
	}
	return time.Unix(n, 0), true
}
