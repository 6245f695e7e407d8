// Package dataprocessing reads MWD and DD directional survey exports and
// extracts their MD, INC and AZ columns.
//
// # Architecture
//
// Parsing happens in two steps:
//
// 1. Decode: CSV, XLSX and legacy XLS uploads become a Grid of cell text
// 2. Parse: a cascade of layout strategies locates the header and data block
//
// The cascade tries, in order, a fixed template chosen by the source tag, a
// keyword scan of the first rows, and the Well Seeker Pro fallback layout.
// Row positions count rows after blank rows have been removed from the sheet.
// A strategy that rejects the sheet returns a *LayoutError and the next one
// is tried; when none accepts, Parse returns an *ExhaustedError.
//
// # Usage
//
//	parser := dataprocessing.NewParser(dataprocessing.DefaultAliases(),
//	    dataprocessing.WithLogger(logger))
//	table, err := parser.ParseFile(ctx, "well-7.xlsx", data, "MWD")
//	if err != nil {
//	    var exhausted *dataprocessing.ExhaustedError
//	    if errors.As(err, &exhausted) {
//	        // every layout rejected the sheet
//	    }
//	}
//
// Header cells are matched through an AliasTable, which normalizes case and
// surrounding whitespace before lookup.
package dataprocessing
