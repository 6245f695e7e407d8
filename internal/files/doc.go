// Package files discovers survey exports on disk.
//
// Discovery lists the CSV and Excel files the parsers accept. PairBySource
// groups them per well by the source tag in the file name, so a directory
// holding
//
//	A-12_MWD.xlsx
//	A-12_DD.csv
//	B-3 mwd.xls
//	B-3 dd.xlsx
//
// yields the pairs A-12 and B-3. The sidebyside CLI uses this for
// "batch -dir".
//
// Example usage:
//
//	discovery := files.NewDiscovery("/data/surveys")
//	found, err := discovery.FindSurveyFiles("incoming")
//	pairs, unmatched := files.PairBySource(found, "MWD", "DD")
package files
