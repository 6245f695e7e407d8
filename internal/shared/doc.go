// Package shared holds helpers used across packages that belong to no
// single layer.
//
// The testutil subpackage provides the test helpers:
//
//   - NewTestLogger captures slog output for assertions
//   - TemplateSurveyWorkbook and KeywordSurveyCSV build survey fixtures
//     in the layouts the parser recognizes
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    data := testutil.KeywordSurveyCSV(t, testutil.Station{"100", "1", "10"})
//	    ...
//	    assert.True(t, logs.ContainsMessage("comparison served"))
//	}
//
// Nothing here may import a domain package.
package shared
