package utils

import (
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultPage  = 1
	defaultLimit = 100
)

// comparison operator suffixes recognized on filter keys, e.g. price[gte]=500
var operatorSuffixes = map[string]string{
	"[gte]": "$gte",
	"[gt]":  "$gt",
	"[lte]": "$lte",
	"[lt]":  "$lt",
}

// reserved control parameters, never part of the filter predicate
var reservedParams = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// APIFeatures turns a request's query parameters into a filtered, sorted,
// projected and paginated MongoDB query. Stages are fluent and are applied in
// the order filter, sort, fields, paginate. A scope filter (from route
// nesting) and a visibility predicate (soft delete, secret records) are
// merged into every resulting filter.
type APIFeatures struct {
	queryParams url.Values
	scope       bson.M
	hidden      []string

	filter     bson.M
	sort       bson.D
	projection bson.M
	skip       int64
	limit      int64
}

func NewAPIFeatures(queryParams url.Values, scope bson.M) *APIFeatures {
	f := &APIFeatures{
		queryParams: queryParams,
		scope:       scope,
		skip:        0,
		limit:       defaultLimit,
	}
	if f.scope == nil {
		f.scope = bson.M{}
	}
	return f
}

// Hide marks fields that must never appear in any projection, regardless of
// what the request asks for.
func (f *APIFeatures) Hide(fields ...string) *APIFeatures {
	f.hidden = append(f.hidden, fields...)
	return f
}

// Filter builds the predicate from every non-reserved query parameter.
// Comparison suffixes translate to their mongo operators; everything else is
// an equality check, with repeated keys folded into $in.
func (f *APIFeatures) Filter() *APIFeatures {
	filter := bson.M{}
	for key, values := range f.queryParams {
		if reservedParams[key] || len(values) == 0 {
			continue
		}

		field, operator := splitOperator(key)
		if operator != "" {
			merged, ok := filter[field].(bson.M)
			if !ok {
				merged = bson.M{}
			}
			merged[operator] = coerceValue(values[0])
			filter[field] = merged
			continue
		}

		if len(values) > 1 {
			coerced := make([]interface{}, 0, len(values))
			for _, v := range values {
				coerced = append(coerced, coerceValue(v))
			}
			filter[field] = bson.M{"$in": coerced}
			continue
		}
		filter[field] = coerceValue(values[0])
	}
	f.filter = filter
	return f
}

// Sort parses the comma-separated sort parameter, "-" prefix meaning
// descending. Without one, newest records come first.
func (f *APIFeatures) Sort() *APIFeatures {
	sortParam := f.queryParams.Get("sort")
	if sortParam == "" {
		f.sort = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
		return f
	}

	var sort bson.D
	for _, field := range strings.Split(sortParam, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		direction := 1
		if strings.HasPrefix(field, "-") {
			direction = -1
			field = field[1:]
		}
		sort = append(sort, bson.E{Key: field, Value: direction})
	}
	f.sort = sort
	return f
}

// LimitFields builds the projection: an inclusion set when the fields
// parameter is present, otherwise only the version key is excluded. Hidden
// fields are stripped either way.
func (f *APIFeatures) LimitFields() *APIFeatures {
	fieldsParam := f.queryParams.Get("fields")
	if fieldsParam == "" {
		projection := bson.M{"__v": 0}
		for _, h := range f.hidden {
			projection[h] = 0
		}
		f.projection = projection
		return f
	}

	projection := bson.M{}
	for _, field := range strings.Split(fieldsParam, ",") {
		field = strings.TrimSpace(field)
		if field == "" || isHidden(field, f.hidden) {
			continue
		}
		projection[field] = 1
	}
	if len(projection) == 0 {
		// The request asked only for hidden fields; fall back to the default.
		projection = bson.M{"__v": 0}
		for _, h := range f.hidden {
			projection[h] = 0
		}
	}
	f.projection = projection
	return f
}

// Paginate computes the skip/limit window. Bad input falls back to defaults,
// never errors.
func (f *APIFeatures) Paginate() *APIFeatures {
	page := positiveInt(f.queryParams.Get("page"), defaultPage)
	limit := positiveInt(f.queryParams.Get("limit"), defaultLimit)

	f.skip = int64(page-1) * int64(limit)
	f.limit = int64(limit)
	return f
}

// FilterQuery is the final predicate: request filter merged with the nesting
// scope and the model's visibility rules.
func (f *APIFeatures) FilterQuery() bson.M {
	merged := bson.M{}
	for k, v := range f.filter {
		merged[k] = v
	}
	for k, v := range f.scope {
		merged[k] = v
	}
	return merged
}

func (f *APIFeatures) SortSpec() bson.D   { return f.sort }
func (f *APIFeatures) Projection() bson.M { return f.projection }
func (f *APIFeatures) Skip() int64        { return f.skip }
func (f *APIFeatures) Limit() int64       { return f.limit }

// FindOptions assembles the stages for a driver Find call.
func (f *APIFeatures) FindOptions() *options.FindOptions {
	opts := options.Find().SetSkip(f.skip).SetLimit(f.limit)
	if len(f.sort) > 0 {
		opts.SetSort(f.sort)
	}
	if len(f.projection) > 0 {
		opts.SetProjection(f.projection)
	}
	return opts
}

// Pipeline assembles the equivalent aggregation stages. Join stages run after
// the window so they only touch the returned page, and before the projection
// so the requested field set decides what survives them.
func (f *APIFeatures) Pipeline(joins ...bson.D) []bson.D {
	pipeline := []bson.D{
		{{Key: "$match", Value: f.FilterQuery()}},
	}
	if len(f.sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: f.sort}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$skip", Value: f.skip}},
		bson.D{{Key: "$limit", Value: f.limit}},
	)
	pipeline = append(pipeline, joins...)
	if len(f.projection) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: f.projection}})
	}
	return pipeline
}

func splitOperator(key string) (field, operator string) {
	for suffix, op := range operatorSuffixes {
		if strings.HasSuffix(key, suffix) {
			return strings.TrimSuffix(key, suffix), op
		}
	}
	return key, ""
}

// coerceValue maps a raw query string onto the type mongo stored: numbers and
// booleans compare numerically, everything else stays a string.
func coerceValue(raw string) interface{} {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func isHidden(field string, hidden []string) bool {
	for _, h := range hidden {
		if h == field {
			return true
		}
	}
	return false
}
