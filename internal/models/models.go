// Package models provides the data structures shared by the extractors, the
// categorizer, the stores and the ingestion service.
package models
