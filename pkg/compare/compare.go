package compare

import (
	"github.com/projectdiscovery/pingsweep/pkg/types"
	mapsutil "github.com/projectdiscovery/utils/maps"
)

// Compare joins the pre and post sweep results by address and returns one
// comparison per address seen in pre, in the order addresses first appear.
// When an address occurs more than once in a table the last row wins.
// Addresses only present in post are ignored.
func Compare(pre, post []types.Result) []types.Comparison {
	preByIP := mapsutil.NewOrderedMap[string, types.Result]()
	for _, result := range pre {
		preByIP.Set(result.IP, result)
	}
	postByIP := mapsutil.NewOrderedMap[string, types.Result]()
	for _, result := range post {
		postByIP.Set(result.IP, result)
	}

	keys := preByIP.GetKeys()
	comparisons := make([]types.Comparison, 0, len(keys))
	for _, ip := range keys {
		before, _ := preByIP.Get(ip)
		after, ok := postByIP.Get(ip)
		if !ok {
			after = types.Result{IP: ip, Status: types.NotInPostSweep}
		}
		comparisons = append(comparisons, compareOne(before, after))
	}
	return comparisons
}

func compareOne(pre, post types.Result) types.Comparison {
	comparison := types.Comparison{
		Timestamp:     pre.Timestamp,
		IP:            pre.IP,
		PreLatencyMs:  pre.LatencyMs,
		PostLatencyMs: post.LatencyMs,
	}

	switch {
	case pre.Status == types.Reachable && post.Status == types.Unreachable:
		comparison.Change = types.ChangeNowUnreachable
		// delta carries the last known latency
		comparison.DeltaMs = copyLatency(pre.LatencyMs)
	case pre.Status == types.Unreachable && post.Status == types.Reachable:
		comparison.Change = types.ChangeNowReachable
		comparison.DeltaMs = copyLatency(post.LatencyMs)
	case pre.Status == post.Status:
		comparison.Change = types.StillChange(pre.Status)
		if pre.LatencyMs != nil && post.LatencyMs != nil {
			comparison.DeltaMs = types.Float(*post.LatencyMs - *pre.LatencyMs)
		}
	default:
		comparison.Change = types.ChangeStatusChanged
	}
	return comparison
}

func copyLatency(latency *float64) *float64 {
	if latency == nil {
		return nil
	}
	return types.Float(*latency)
}
