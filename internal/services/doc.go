// Package services implements the application layer between the HTTP
// handlers or command line tools and the survey core.
//
// ComparisonService runs one comparison end to end: it validates both
// uploads, parses them through the layout cascade, compares the tables
// and builds the report. Finished runs are pushed to websocket clients and
// written to the run history when those collaborators are configured.
//
//	svc := services.NewComparisonService(parser, logger,
//	    services.WithPublisher(hub),
//	    services.WithHistory(store),
//	)
//	report, err := svc.Compare(ctx, services.CompareRequest{Primary: a, Secondary: b})
//
// When either survey cannot be parsed, Compare returns the error report
// together with a *SurveyError. The report is complete and renderable; the
// error lets transports choose a status code.
//
// BatchRunner compares the pairs of a YAML manifest with bounded
// concurrency. HealthService backs the health and version endpoints.
package services
