package recordings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func items(body string) []gjson.Result {
	return gjson.Parse(body).Array()
}

func TestNormalizeItemAliasFallback(t *testing.T) {
	recs := normalizeItems(items(`[{"id": 1, "meeting_title": "Weekly sync"}]`))
	require.Len(t, recs, 1)

	assert.Equal(t, "Weekly sync", recs[0]["title"])
	// 别名字段原样保留
	assert.Equal(t, "Weekly sync", recs[0]["meeting_title"])
}

func TestNormalizeItemKeepsExistingCanonicalField(t *testing.T) {
	recs := normalizeItems(items(`[{"title": "Kept", "meeting_title": "Ignored"}]`))
	require.Len(t, recs, 1)
	assert.Equal(t, "Kept", recs[0]["title"])
}

func TestNormalizeItemNullCanonicalFieldFilledFromAlias(t *testing.T) {
	recs := normalizeItems(items(`[{"title": null, "name": "From name"}]`))
	require.Len(t, recs, 1)
	assert.Equal(t, "From name", recs[0]["title"])
}

func TestNormalizeItemPassesUnknownFieldsThrough(t *testing.T) {
	recs := normalizeItems(items(`[{"id": 5, "custom_vendor_field": {"nested": true}}]`))
	require.Len(t, recs, 1)

	assert.Contains(t, recs[0], "custom_vendor_field")
	assert.EqualValues(t, 5, recs[0]["id"])
}

func TestNormalizeItemsDropsUnusableEntries(t *testing.T) {
	recs := normalizeItems(items(`[{"id": 1}, null, "just a string", 42, {"id": 2}]`))
	require.Len(t, recs, 2)

	assert.EqualValues(t, 1, recs[0]["id"])
	assert.EqualValues(t, 2, recs[1]["id"])
}

func TestNormalizeItemsPreservesOrder(t *testing.T) {
	recs := normalizeItems(items(`[{"id": 3}, {"id": 1}, {"id": 2}]`))
	require.Len(t, recs, 3)

	var ids []int
	for _, r := range recs {
		ids = append(ids, int(r["id"].(float64)))
	}
	assert.Equal(t, []int{3, 1, 2}, ids)
}

func TestNormalizeItemAliasTable(t *testing.T) {
	recs := normalizeItems(items(`[{
		"recording_id": 77,
		"meeting_url": "https://meet.example.com/77",
		"share_link": "https://share.example.com/77",
		"started_at": "2026-03-01T10:00:00Z",
		"ended_at": "2026-03-01T11:00:00Z",
		"invitee_domains": ["acme.com"],
		"create_time": "2026-03-01T09:00:00Z"
	}]`))
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.EqualValues(t, 77, rec["id"])
	assert.Equal(t, "https://meet.example.com/77", rec["url"])
	assert.Equal(t, "https://share.example.com/77", rec["share_url"])
	assert.Equal(t, "2026-03-01T10:00:00Z", rec["start_time"])
	assert.Equal(t, "2026-03-01T11:00:00Z", rec["end_time"])
	assert.Equal(t, "2026-03-01T09:00:00Z", rec["created_at"])
	assert.Contains(t, rec, "calendar_invitees_domains")
}
