package upstream

import (
	"github.com/tidwall/gjson"
)

// The meetings API is not consistent about response envelopes across
// versions: a page of recordings may arrive as a bare array, under "items",
// under "data", or under "data.items"; the continuation cursor and the
// transcript move around similarly. Each lookup below is an ordered strategy
// table tried top to bottom, first match wins. Keeping the tables out of the
// request loop lets them be tested in isolation.

// itemStrategy locates the items of one page inside a response document.
type itemStrategy struct {
	name string
	pick func(doc gjson.Result) (gjson.Result, bool)
}

func arrayAt(doc gjson.Result, path string) (gjson.Result, bool) {
	v := doc.Get(path)
	if v.IsArray() {
		return v, true
	}
	return gjson.Result{}, false
}

// itemStrategies 按优先级排列，命中即止
var itemStrategies = []itemStrategy{
	{"root-array", func(doc gjson.Result) (gjson.Result, bool) {
		if doc.IsArray() {
			return doc, true
		}
		return gjson.Result{}, false
	}},
	{"items", func(doc gjson.Result) (gjson.Result, bool) {
		return arrayAt(doc, "items")
	}},
	{"data-array", func(doc gjson.Result) (gjson.Result, bool) {
		return arrayAt(doc, "data")
	}},
	{"data.items", func(doc gjson.Result) (gjson.Result, bool) {
		return arrayAt(doc, "data.items")
	}},
}

// cursorPaths are the known locations of the continuation cursor, in
// priority order. A missing or null value at every path means the result
// set is exhausted.
var cursorPaths = []string{
	"next_cursor",
	"cursor",
	"pagination.next_cursor",
}

// transcriptPaths are the known locations of the transcript value, in
// priority order. The value itself may be a plain string or a structure.
var transcriptPaths = []string{
	"transcript",
	"data.transcript",
}

// extractItems returns the page's items from a response document. A document
// matching none of the known shapes yields zero items, not an error: one
// odd page must not fail a whole drain.
func extractItems(doc gjson.Result) []gjson.Result {
	for _, s := range itemStrategies {
		if arr, ok := s.pick(doc); ok {
			return arr.Array()
		}
	}
	return nil
}

// extractCursor returns the continuation cursor, or "" when the result set
// is exhausted.
func extractCursor(doc gjson.Result) string {
	for _, path := range cursorPaths {
		v := doc.Get(path)
		if v.Exists() && v.Type != gjson.Null {
			if s := v.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

// extractTranscript returns the transcript value from a response document.
// A bare JSON string body is accepted as the transcript itself.
func extractTranscript(doc gjson.Result) (interface{}, bool) {
	if doc.Type == gjson.String {
		return doc.String(), true
	}
	for _, path := range transcriptPaths {
		v := doc.Get(path)
		if v.Exists() && v.Type != gjson.Null {
			return v.Value(), true
		}
	}
	return nil, false
}
