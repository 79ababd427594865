// Package model defines the data structures shared by the crawler, the
// scoring engine, the report writers and the database.
//
// This package contains the following main types:
//   - PageRecord: A fetched page with its parsed document
//   - CategoryResult: The scored outcome of one category
//   - ComplianceReport: The aggregated result of an analysis run
//   - Tier: The compliance level derived from the overall percentage
//
// ComplianceReport encodes to the persisted JSON report format.
package model
