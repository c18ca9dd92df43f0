package dataprocessing

import (
	"math"

	"hydrocli/pkg/contracts/domain"
)

// CampaignResult reports what one campaign window did to a table
type CampaignResult struct {
	Campaign domain.Campaign
	Rows     int  // rows inside the window
	Outliers int  // rows nulled
	Skipped  bool // no rows fell inside the window
}

// DetectCampaignOutliers returns the row positions inside the campaign window
// where at least one column has |z| > threshold. Mean and sample standard
// deviation are computed per column over the window's non-missing values.
// Missing values, and columns with zero or undefined deviation, score zero.
func DetectCampaignOutliers(t *domain.Table, c domain.Campaign, threshold float64) []int {
	window := campaignRows(t, c)
	if len(window) == 0 {
		return nil
	}

	flagged := make([]bool, len(window))
	for j := range t.Columns {
		mean, std := sampleMeanStd(t, window, j)
		if math.IsNaN(std) || std == 0 {
			continue
		}
		for k, i := range window {
			v := t.Rows[i][j]
			if math.IsNaN(v) {
				continue
			}
			if math.Abs((v-mean)/std) > threshold {
				flagged[k] = true
			}
		}
	}

	var out []int
	for k, i := range window {
		if flagged[k] {
			out = append(out, i)
		}
	}
	return out
}

// MaskRows returns a copy of t with every column of the given rows set to NaN.
// Rows are never removed.
func MaskRows(t *domain.Table, rows []int) *domain.Table {
	out := t.Clone()
	for _, i := range rows {
		for j := range out.Rows[i] {
			out.Rows[i][j] = math.NaN()
		}
	}
	return out
}

// FilterCampaigns folds the campaign list over the table: each campaign is
// evaluated on the output of the previous one. The input table is not modified.
func FilterCampaigns(t *domain.Table, campaigns []domain.Campaign, threshold float64) (*domain.Table, []CampaignResult) {
	current := t.Clone()
	results := make([]CampaignResult, 0, len(campaigns))

	for _, c := range campaigns {
		res := CampaignResult{Campaign: c, Rows: len(campaignRows(current, c))}
		if res.Rows == 0 {
			res.Skipped = true
			results = append(results, res)
			continue
		}
		outliers := DetectCampaignOutliers(current, c, threshold)
		res.Outliers = len(outliers)
		if len(outliers) > 0 {
			current = MaskRows(current, outliers)
		}
		results = append(results, res)
	}

	return current, results
}

// campaignRows returns the positions whose timestamp falls in [Start, End).
// The whole index is scanned so ordering is not required.
func campaignRows(t *domain.Table, c domain.Campaign) []int {
	var rows []int
	for i, ts := range t.Index {
		if c.Contains(ts) {
			rows = append(rows, i)
		}
	}
	return rows
}

// sampleMeanStd returns the mean and the n-1 standard deviation of column j
// over the given rows, skipping NaN. std is NaN when fewer than two values exist.
func sampleMeanStd(t *domain.Table, rows []int, j int) (mean, std float64) {
	var sum float64
	n := 0
	for _, i := range rows {
		if v := t.Rows[i][j]; !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	mean = sum / float64(n)
	if n < 2 {
		return mean, math.NaN()
	}

	var ss float64
	for _, i := range rows {
		if v := t.Rows[i][j]; !math.IsNaN(v) {
			d := v - mean
			ss += d * d
		}
	}
	return mean, math.Sqrt(ss / float64(n-1))
}
