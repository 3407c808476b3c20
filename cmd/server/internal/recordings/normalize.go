package recordings

import (
	"github.com/tidwall/gjson"
)

// Record is one meeting record as served to clients. Records are loosely
// structured: no field is guaranteed present and unknown upstream fields
// pass through untouched.
type Record = map[string]interface{}

// fieldAlias maps a canonical field name to the alternate names different
// upstream versions have used for it. Aliases are tried in order; the first
// present non-null value fills a missing canonical field.
type fieldAlias struct {
	canonical string
	aliases   []string
}

// fieldAliases 规范字段与其别名，按序回退
var fieldAliases = []fieldAlias{
	{"id", []string{"recording_id", "meeting_id"}},
	{"title", []string{"meeting_title", "name"}},
	{"url", []string{"meeting_url", "recording_url"}},
	{"share_url", []string{"share_link"}},
	{"scheduled_start_time", []string{"scheduled_start"}},
	{"scheduled_end_time", []string{"scheduled_end"}},
	{"start_time", []string{"started_at"}},
	{"end_time", []string{"ended_at"}},
	{"calendar_invitees_domains", []string{"invitee_domains"}},
	{"created_at", []string{"create_time"}},
}

// normalizeItem converts one raw upstream item into a Record. Object items
// pass through with missing canonical fields filled from their aliases.
// Null items and non-object scalars have no fields to extract and are
// dropped; the second return is false for them.
func normalizeItem(item gjson.Result) (Record, bool) {
	if !item.Exists() || item.Type == gjson.Null || !item.IsObject() {
		return nil, false
	}

	rec, ok := item.Value().(map[string]interface{})
	if !ok {
		return nil, false
	}

	for _, fa := range fieldAliases {
		if v, present := rec[fa.canonical]; present && v != nil {
			continue
		}
		for _, alias := range fa.aliases {
			if v, present := rec[alias]; present && v != nil {
				rec[fa.canonical] = v
				break
			}
		}
	}
	return rec, true
}

// normalizeItems normalizes a page of raw items, preserving order and
// skipping items that normalize to absent.
func normalizeItems(items []gjson.Result) []Record {
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if rec, ok := normalizeItem(item); ok {
			out = append(out, rec)
		}
	}
	return out
}
