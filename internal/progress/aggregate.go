package progress

import "math"

// DomainStats are the derived summary values for one domain.
type DomainStats struct {
	TotalTopics     int
	CompletedTopics int
	Percentage      int
}

// UserStats are the derived summary values across all of a user's domains.
type UserStats struct {
	TotalTopicsCompleted int
	PerDomainPercentages map[string]int
}

// AggregateDomain derives totals from a topic list. It never trusts cached
// counter fields; recomputing from the array is what keeps completedTopics
// and the topics themselves from drifting apart.
func AggregateDomain(topics []Topic) DomainStats {
	completed := 0
	for _, t := range topics {
		if t.Completed {
			completed++
		}
	}
	return DomainStats{
		TotalTopics:     len(topics),
		CompletedTopics: completed,
		Percentage:      Percentage(completed, len(topics)),
	}
}

// AggregateUser sums completed topics across all domain records and computes
// each domain's percentage independently. Inputs are not mutated.
func AggregateUser(domains []DomainProgress) UserStats {
	stats := UserStats{PerDomainPercentages: make(map[string]int, len(domains))}
	for _, d := range domains {
		ds := AggregateDomain(d.Topics)
		stats.TotalTopicsCompleted += ds.CompletedTopics
		stats.PerDomainPercentages[d.DomainID] = ds.Percentage
	}
	return stats
}

// Percentage computes round-to-nearest completion percent, 0 for an empty
// topic list.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// Milestones are the fixed progress thresholds that trigger a one-time
// notification, in the order they are checked.
var Milestones = [4]int{25, 50, 75, 100}

// FirstMilestoneCrossed returns the first threshold passed when progress
// moves from prev to next percent. Only the first crossing fires even when a
// single update jumps several thresholds; crossing 40% to 80% reports 50, not
// 50 and 75.
func FirstMilestoneCrossed(prev, next int) (int, bool) {
	for _, m := range Milestones {
		if prev < m && next >= m {
			return m, true
		}
	}
	return 0, false
}
