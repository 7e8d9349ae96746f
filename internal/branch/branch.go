package branch

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Branch is the public DTO returned by the branch API.
type Branch struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	City *string `json:"city,omitempty"`
}

// FromJSON reads one backend branch item. The display name falls back to
// branchName, then to "Branch #<id>".
func FromJSON(item gjson.Result) Branch {
	id := item.Get("id").Int()
	if id == 0 {
		id = item.Get("branchId").Int()
	}
	b := Branch{ID: id}

	for _, key := range []string{"name", "branchName"} {
		if v := item.Get(key); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			b.Name = strings.TrimSpace(v.Str)
			break
		}
	}
	if b.Name == "" {
		b.Name = "Branch #" + strconv.FormatInt(id, 10)
	}
	if v := item.Get("city"); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
		city := strings.TrimSpace(v.Str)
		b.City = &city
	}
	return b
}
