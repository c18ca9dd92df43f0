// Package dataprocessing implements the numeric core of the monitoring pipeline.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Schema normalizer: turns raw piezometer workbooks (NormalizePiezometer)
// and soil datalogger exports (GroupDataloggerFiles, ConcatenateDatalogger,
// NormalizeSoil) into time-indexed tables with canonical column names.
//
// 2. Campaign outlier filter: FilterCampaigns folds a list of campaign windows
// over a table, nulling every row that has a column with |z| above the
// threshold inside the window.
//
// 3. Daily aggregator: AggregateDaily resamples a table to calendar-day means.
//
// Readers (ReadWorkbook, ReadDelimited, ReadTableCSV) hold the file-format
// mechanics; writing lives in the exporter package.
//
// # Usage
//
//	raw, err := dataprocessing.ReadWorkbook(path, dataprocessing.PiezometerWorkbookOptions())
//	table, err := dataprocessing.NormalizePiezometer(raw, rules)
//	cleaned, results := dataprocessing.FilterCampaigns(table, campaigns, 3)
//	daily := dataprocessing.AggregateDaily(cleaned)
package dataprocessing
