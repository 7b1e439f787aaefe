// Package storeutil holds query helpers shared by the Mongo stores.
package storeutil

import "go.mongodb.org/mongo-driver/mongo/options"

// Page size bounds for listing queries.
const (
	DefaultLimit int64 = 20
	MaxLimit     int64 = 200
)

// Paginate returns find options for the 1-based page of limit documents.
// limit falls back to DefaultLimit and is capped at MaxLimit.
func Paginate(limit, page int64) *options.FindOptions {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	page = max(page, 1)
	return options.Find().SetLimit(limit).SetSkip((page - 1) * limit)
}
