package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rnleach/satfire/internal/cluster"
	"gonum.org/v1/gonum/stat"
)

// granuleTag formats a human-readable source tag for a ClusterList, used to
// attribute min/max statistics back to the granule that produced them.
func granuleTag(list cluster.ClusterList) string {
	return fmt.Sprintf("%s/%s@%s", list.Satellite, list.Sector, list.MidpointTime().Format("2006-01-02T15:04:05Z"))
}

// ClusterStats is the per-cluster value-typed accumulator from §4.7: the
// single most-powerful cluster observed across the run, plus counts of
// clusters below the 1 MW and 10 MW power thresholds. It is updated by a
// pure fold so the single writer goroutine never needs a lock.
type ClusterStats struct {
	hasData            bool
	mostPowerful       cluster.Cluster
	mostPowerfulSource string
	belowOneMW         int
	belowTenMW         int
}

// Fold returns the accumulator updated with one more observed cluster from
// the granule tagged source.
func (s ClusterStats) Fold(c cluster.Cluster, source string) ClusterStats {
	if c.TotalPowerMW < 1 {
		s.belowOneMW++
	}
	if c.TotalPowerMW < 10 {
		s.belowTenMW++
	}
	if !s.hasData || c.TotalPowerMW > s.mostPowerful.TotalPowerMW {
		s.hasData = true
		s.mostPowerful = c
		s.mostPowerfulSource = source
	}
	return s
}

// MostPowerful returns the single most-powerful cluster observed across the
// run, and false if none were observed yet.
func (s ClusterStats) MostPowerful() (cluster.Cluster, bool) {
	return s.mostPowerful, s.hasData
}

// String renders a printable summary suitable for the writer's shutdown
// report.
func (s ClusterStats) String() string {
	if !s.hasData {
		return "cluster stats: no clusters observed"
	}
	return fmt.Sprintf(
		"cluster stats: most powerful cluster %.3f MW (%s); %d clusters under 1 MW; %d clusters under 10 MW",
		s.mostPowerful.TotalPowerMW, s.mostPowerfulSource, s.belowOneMW, s.belowTenMW,
	)
}

// GranuleStats is the per-granule value-typed accumulator from §4.7: the
// minimum and maximum cluster count and total power observed across
// granules, each tagged with the granule that produced it.
type GranuleStats struct {
	hasData bool

	minCount, maxCount             int
	minCountSource, maxCountSource string

	minPower, maxPower             float64
	minPowerSource, maxPowerSource string

	powers []float64
}

// Fold returns the accumulator updated with one more ingested ClusterList.
// Flagged (decode-failure) lists are not counted.
func (s GranuleStats) Fold(list cluster.ClusterList) GranuleStats {
	if list.Flagged {
		return s
	}

	tag := granuleTag(list)
	count := len(list.Clusters)

	var totalPower float64
	for _, c := range list.Clusters {
		totalPower += c.TotalPowerMW
	}
	s.powers = append(s.powers, totalPower)

	if !s.hasData {
		s.hasData = true
		s.minCount, s.maxCount = count, count
		s.minCountSource, s.maxCountSource = tag, tag
		s.minPower, s.maxPower = totalPower, totalPower
		s.minPowerSource, s.maxPowerSource = tag, tag
		return s
	}

	if count < s.minCount {
		s.minCount, s.minCountSource = count, tag
	}
	if count > s.maxCount {
		s.maxCount, s.maxCountSource = count, tag
	}
	if totalPower < s.minPower {
		s.minPower, s.minPowerSource = totalPower, tag
	}
	if totalPower > s.maxPower {
		s.maxPower, s.maxPowerSource = totalPower, tag
	}

	return s
}

// String renders a printable summary, including the p50/p95 total-power
// quantiles across every ingested granule.
func (s GranuleStats) String() string {
	if !s.hasData {
		return "granule stats: no granules ingested"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "granule stats: cluster count %d..%d (min %s, max %s); total power %.3f..%.3f MW (min %s, max %s)",
		s.minCount, s.maxCount, s.minCountSource, s.maxCountSource,
		s.minPower, s.maxPower, s.minPowerSource, s.maxPowerSource)

	if len(s.powers) > 0 {
		sorted := append([]float64(nil), s.powers...)
		sort.Float64s(sorted)
		p50 := stat.Quantile(0.5, stat.Empirical, sorted, nil)
		p95 := stat.Quantile(0.95, stat.Empirical, sorted, nil)
		fmt.Fprintf(&b, "; total power p50=%.3f MW p95=%.3f MW", p50, p95)
	}

	return b.String()
}
