package operations

import (
	"fmt"
	"strings"
	"time"
)

// Pipeline stage identifiers
const (
	StageIDFormatPiezometers = "format_piezometers"
	StageIDFormatSoil        = "format_soil"
	StageIDClean             = "clean_piezometers"
	StageIDDaily             = "aggregate_daily"
)

// Pipeline stage names
const (
	StageNameFormatPiezometers = "Piezometer Formatting"
	StageNameFormatSoil        = "Soil Datalogger Formatting"
	StageNameClean             = "Campaign Outlier Cleaning"
	StageNameDaily             = "Daily Aggregation"
)

// Command groups: the stages each CLI command runs, in order
var (
	FormatStages = []string{StageIDFormatPiezometers, StageIDFormatSoil}
	CleanStages  = []string{StageIDClean}
	DailyStages  = []string{StageIDDaily}
)

// OperationRequest selects the stages to run. An empty Stages list runs every
// registered stage in dependency order.
type OperationRequest struct {
	ID     string
	Stages []string
}

// OperationResponse summarizes a finished operation
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatus       `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Reports  []*StageReport        `json:"reports"`
	Error    string                `json:"error,omitempty"`
}

// Failed returns the number of per-sensor failures across all reports
func (r *OperationResponse) Failed() int {
	n := 0
	for _, rep := range r.Reports {
		n += len(rep.Failures)
	}
	return n
}

// Summary renders the per-stage summary lines printed by the CLI
func (r *OperationResponse) Summary() string {
	var b strings.Builder
	for _, rep := range r.Reports {
		b.WriteString(rep.String())
		b.WriteByte('\n')
		for _, f := range rep.Failures {
			fmt.Fprintf(&b, "  failed %s\n", f.Error())
		}
	}
	fmt.Fprintf(&b, "%s in %s\n", r.Status, r.Duration.Round(time.Millisecond))
	return b.String()
}
