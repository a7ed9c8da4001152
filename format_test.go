package calendarlink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimes(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	r := ResolvedEvent{
		StartTime: time.Date(2019, 12, 29, 9, 5, 7, 0, loc),
		EndTime:   time.Date(2019, 12, 29, 11, 5, 7, 0, loc),
	}
	cases := []struct {
		mode FormatMode
		want TimePair
	}{
		{DateTimeUTC, TimePair{"20191229T090507Z", "20191229T110507Z"}},
		{AllDayDate, TimePair{"20191229", "20191229"}},
		{DateTimeLocal, TimePair{"2019-12-29T09:05:07", "2019-12-29T11:05:07"}},
	}
	for _, tc := range cases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			got, err := FormatTimes(r, tc.mode)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := FormatTimes(r, FormatMode(42))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "FormatMode(42)", ve.Value)
}

func TestEscapeText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"plain text stays", "plain text stays"},
		{"a,b;c", `a\,b\;c`},
		{"one\r\ntwo", `one\ntwo`},
		{"one\n  \ttwo\nthree", `one\ntwo\nthree`},
		{"keep  inner  spaces", "keep  inner  spaces"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EscapeText(tc.in), "EscapeText(%q)", tc.in)
	}
}

func TestEncodeQuery(t *testing.T) {
	fields := []field{
		always("zeta", "last"),
		opt("empty", ""),
		always("blank", ""),
		optBool("unset", nil),
		optBool("flag", boolPtr(false)),
		always("alpha", "a b+c/d"),
	}
	assert.Equal(t, "alpha=a%20b%2Bc%2Fd&flag=false&zeta=last", encodeQuery(fields))
}

func TestQueryOrderIgnoresInsertionOrder(t *testing.T) {
	a := encodeQuery([]field{always("b", "2"), always("a", "1"), always("c", "3")})
	b := encodeQuery([]field{always("c", "3"), always("b", "2"), always("a", "1")})
	assert.Equal(t, "a=1&b=2&c=3", a)
	assert.Equal(t, a, b)
}

func TestComponentEscape(t *testing.T) {
	assert.Equal(t, "!'()*%20~-_.", componentEscape("!'()* ~-_."))
	assert.Equal(t, "%2521", componentEscape("%21"))
	assert.Equal(t, "%21%27%28%29%2A", strictEscape("!'()*"))
}
