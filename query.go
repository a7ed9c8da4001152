package calendarlink

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// field is one entry of a provider's parameter table. Absent fields are
// dropped before encoding.
type field struct {
	key     string
	value   string
	present bool
}

// opt is present when v is not empty.
func opt(key, v string) field {
	return field{key: key, value: v, present: v != ""}
}

// always is present even when v is empty.
func always(key, v string) field {
	return field{key: key, value: v, present: true}
}

func optBool(key string, v *bool) field {
	if v == nil {
		return field{key: key}
	}
	return always(key, strconv.FormatBool(*v))
}

// encodeQuery joins the present fields as key=value pairs sorted by key.
// A present field with an empty value is still omitted.
func encodeQuery(fields []field) string {
	kept := make([]field, 0, len(fields))
	for _, f := range fields {
		if f.present && f.value != "" {
			kept = append(kept, f)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].key < kept[j].key })
	parts := make([]string, 0, len(kept))
	for _, f := range kept {
		parts = append(parts, strictEscape(f.key)+"="+strictEscape(f.value))
	}
	return strings.Join(parts, "&")
}

// strictEscape percent-encodes everything but the RFC 3986 unreserved
// characters. Spaces become %20.
func strictEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

var componentUnescaper = strings.NewReplacer("%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

// componentEscape matches JavaScript's encodeURIComponent, which also
// leaves !'()* alone.
func componentEscape(s string) string {
	return componentUnescaper.Replace(strictEscape(s))
}
