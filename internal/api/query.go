package api

import (
	"net/url"
	"strconv"
)

// query assembles a request query string. Only set, non-empty values
// are serialized; boolean filter flags go out as "1"/"0".
type query struct {
	values url.Values
}

func newQuery() *query {
	return &query{values: url.Values{}}
}

func (q *query) setInt(key string, value int) {
	if value > 0 {
		q.values.Set(key, strconv.Itoa(value))
	}
}

func (q *query) setString(key, value string) {
	if value != "" {
		q.values.Set(key, value)
	}
}

// setBool serializes a tri-state flag: nil is omitted.
func (q *query) setBool(key string, value *bool) {
	if value == nil {
		return
	}
	if *value {
		q.values.Set(key, "1")
	} else {
		q.values.Set(key, "0")
	}
}

// setFlag serializes an on/off filter that only means something when on.
func (q *query) setFlag(key string, on bool) {
	if on {
		q.values.Set(key, "1")
	}
}

// encode returns "?k=v&..." or "" when nothing was set.
func (q *query) encode() string {
	if len(q.values) == 0 {
		return ""
	}
	return "?" + q.values.Encode()
}
