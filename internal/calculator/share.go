package calculator

import (
	"time"

	"github.com/abira1/Academy-Management-System/internal/models"
)

// Share is a partner's estimated cut of net profit. Both figures are
// estimates derived from year-to-date totals, not audited ledger entries.
type Share struct {
	PartnerID       string
	Username        string
	SharePercentage float64

	// MonthlyProfit spreads net profit evenly over the elapsed months.
	MonthlyProfit float64

	// YearlyIncome is the partner's cut of the whole net profit.
	YearlyIncome float64

	// Estimate is always true for a computed share and false for the zero
	// value returned when no share could be computed.
	Estimate bool
}

// ElapsedMonths is the number of calendar months elapsed in ref's year,
// counting ref's own month (January gives 1).
func ElapsedMonths(ref time.Time) int {
	return int(ref.Month())
}

// ShareFor computes one partner's share. It returns the zero Share when
// elapsedMonths is not positive.
func ShareFor(p models.Partner, netProfit float64, elapsedMonths int) Share {
	if elapsedMonths <= 0 {
		return Share{}
	}
	fraction := p.SharePercentage / 100
	return Share{
		PartnerID:       p.ID,
		Username:        p.Username,
		SharePercentage: p.SharePercentage,
		MonthlyProfit:   netProfit / float64(elapsedMonths) * fraction,
		YearlyIncome:    netProfit * fraction,
		Estimate:        true,
	}
}

// PartnerShare finds partnerID among partners and computes its share.
// It returns the zero Share when the partner is unknown or elapsedMonths
// is not positive.
func PartnerShare(partners []models.Partner, partnerID string, netProfit float64, elapsedMonths int) Share {
	for _, p := range partners {
		if p.ID == partnerID {
			return ShareFor(p, netProfit, elapsedMonths)
		}
	}
	return Share{}
}

// AllocatedShare sums every partner's percentage. Values above 100 are not
// rejected; callers surface them so an admin can review the allocation.
func AllocatedShare(partners []models.Partner) float64 {
	var total float64
	for _, p := range partners {
		total += p.SharePercentage
	}
	return total
}
