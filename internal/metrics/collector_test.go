package metrics

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"retag/internal/parser"
)

func fakeCountry(ip string) (string, error) {
	switch ip {
	case "1.2.3.4":
		return "DE", nil
	case "2001:db8::1":
		return "NL", nil
	}
	return "", errors.New("not found")
}

func TestCollector(t *testing.T) {
	c := New(fakeCountry)
	c.RecordSuccess(&parser.Record{Protocol: parser.VLESS, Host: "1.2.3.4"})
	c.RecordSuccess(&parser.Record{Protocol: parser.VLESS, Host: "example.com"})
	c.RecordSuccess(&parser.Record{Protocol: parser.Trojan, Host: "[2001:db8::1]"})
	c.RecordSuccess(&parser.Record{Protocol: parser.Shadowsocks, Host: "9.9.9.9"})
	c.RecordFailure("protocol not recognized")
	c.RecordFailure("protocol not recognized")
	c.RecordFailure("invalid VLESS link structure")

	assert.Equal(t, map[string]int{"VLESS": 2, "TROJAN": 1, "SHADOWSOCKS": 1}, c.Protocols())
	assert.Equal(t, map[string]int{"DE": 1, "NL": 1, "XX": 1}, c.Countries())

	var out bytes.Buffer
	c.PrintReport(&out)
	report := out.String()
	assert.Contains(t, report, "BATCH REPORT")
	assert.Contains(t, report, "protocol not recognized:")
	assert.Contains(t, report, "Domain hosts:")
}

func TestCollectorWithoutCountries(t *testing.T) {
	c := New(nil)
	c.RecordSuccess(&parser.Record{Protocol: parser.VMess, Host: "1.2.3.4"})

	assert.Empty(t, c.Countries())

	var out bytes.Buffer
	c.PrintReport(&out)
	assert.NotContains(t, out.String(), "COUNTRIES")
}

func TestSortedByCount(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, sortedByCount(map[string]int{"a": 1, "b": 3, "c": 1}))
}
