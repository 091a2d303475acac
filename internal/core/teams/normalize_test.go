package teams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	for in, want := range map[string]string{
		"BOS":                   "BOS",
		"  Los Angeles  Lakers": "LAL",
		"LA Clippers":           "LAC",
		"BRK":                   "BKN",
		"PHO":                   "PHX",
		"CHO":                   "CHA",
		"Trail Blazers":         "POR",
		"Phoenix Suns":          "PHX",
		"76ers":                 "PHI",
		"N.Y.":                  "NYK",
		"Montréal":              "",
	} {
		got, ok := Resolve(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, want != "", ok, in)
	}
}

func TestAbbrs(t *testing.T) {
	all := Abbrs()
	assert.Len(t, all, 30)
	assert.Equal(t, "ATL", all[0])
	assert.Equal(t, "Utah Jazz", Name("UTA"))
	assert.Empty(t, Name("XXX"))
}
