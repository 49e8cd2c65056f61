package submission

import "strings"

// PayoutPerAccount is the fixed payout for each collected account, in rupiah.
const PayoutPerAccount = 4000

// Stats are the aggregate counts and payout totals derived from the current
// submission list.
type Stats struct {
	TotalAccounts     int   `json:"totalAccounts"`
	PaidCount         int   `json:"paidCount"`
	UnpaidCount       int   `json:"unpaidCount"`
	TotalContributors int   `json:"totalContributors"`
	TotalPayout       int64 `json:"totalPayout"`
	PendingPayout     int64 `json:"pendingPayout"`
}

// ComputeStats recomputes the aggregates from the given submissions.
// Contributors are distinct names compared case-insensitively.
func ComputeStats(subs []Submission) Stats {
	paid := 0
	names := make(map[string]struct{}, len(subs))
	for _, s := range subs {
		if s.Paid {
			paid++
		}
		names[strings.ToLower(s.Name)] = struct{}{}
	}

	total := len(subs)
	return Stats{
		TotalAccounts:     total,
		PaidCount:         paid,
		UnpaidCount:       total - paid,
		TotalContributors: len(names),
		TotalPayout:       int64(paid) * PayoutPerAccount,
		PendingPayout:     int64(total-paid) * PayoutPerAccount,
	}
}
