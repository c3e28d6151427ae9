package metrics

import (
	"fmt"
	"io"
	"net"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"retag/internal/parser"
)

// CountryFunc resolves an IP literal to a country code.
type CountryFunc func(ip string) (string, error)

// Collector tallies the outcome of a batch for the end-of-run report.
type Collector struct {
	mu sync.Mutex

	country CountryFunc

	byProtocol   map[parser.Protocol]int
	totalSuccess int

	errorCounts map[string]int
	totalErrors int

	countries  map[string]int
	namedHosts int // hosts that are not IP literals
}

// New returns a Collector. country may be nil to skip the country breakdown.
func New(country CountryFunc) *Collector {
	return &Collector{
		country:     country,
		byProtocol:  make(map[parser.Protocol]int),
		errorCounts: make(map[string]int),
		countries:   make(map[string]int),
	}
}

func (c *Collector) RecordSuccess(rec *parser.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byProtocol[rec.Protocol]++
	c.totalSuccess++

	if c.country == nil {
		return
	}
	host := strings.Trim(rec.Host, "[]")
	if net.ParseIP(host) == nil {
		c.namedHosts++
		return
	}
	code, err := c.country(host)
	if err != nil {
		code = "XX"
	}
	c.countries[code]++
}

func (c *Collector) RecordFailure(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalErrors++
	c.errorCounts[reason]++
}

// Protocols returns the success count per protocol.
func (c *Collector) Protocols() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]int, len(c.byProtocol))
	for p, n := range c.byProtocol {
		out[p.String()] = n
	}
	return out
}

// Countries returns the per-country count of IP-literal hosts.
func (c *Collector) Countries() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]int, len(c.countries))
	for k, v := range c.countries {
		out[k] = v
	}
	return out
}

func (c *Collector) PrintReport(out io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(out, "\n📊 \033[1mBATCH REPORT\033[0m")
	fmt.Fprintln(out, "────────────────────────────────────────")

	total := c.totalSuccess + c.totalErrors
	fmt.Fprintln(w, "\033[1;36m[ SUMMARY ]\033[0m")
	fmt.Fprintf(w, "  Lines:\t%d\n", total)
	fmt.Fprintf(w, "  Relabeled:\t%d (%.1f%%)\n", c.totalSuccess, percent(c.totalSuccess, total))
	fmt.Fprintf(w, "  Failed:\t%d (%.1f%%)\n", c.totalErrors, percent(c.totalErrors, total))
	fmt.Fprintln(w, "")

	if c.totalSuccess > 0 {
		fmt.Fprintln(w, "\033[1;36m[ PROTOCOLS ]\033[0m")
		protocols := make([]parser.Protocol, 0, len(c.byProtocol))
		for p := range c.byProtocol {
			protocols = append(protocols, p)
		}
		sort.Slice(protocols, func(i, j int) bool { return protocols[i] < protocols[j] })
		for _, p := range protocols {
			fmt.Fprintf(w, "  %s:\t%d\n", p, c.byProtocol[p])
		}
		fmt.Fprintln(w, "")
	}

	if c.totalErrors > 0 {
		fmt.Fprintln(w, "\033[1;36m[ FAILURES ]\033[0m")
		for _, k := range sortedByCount(c.errorCounts) {
			fmt.Fprintf(w, "  %s:\t%d\n", k, c.errorCounts[k])
		}
		fmt.Fprintln(w, "")
	}

	if c.country != nil && c.totalSuccess > 0 {
		fmt.Fprintln(w, "\033[1;36m[ COUNTRIES (IP hosts) ]\033[0m")
		for _, k := range sortedByCount(c.countries) {
			fmt.Fprintf(w, "  %s:\t%d\n", k, c.countries[k])
		}
		fmt.Fprintf(w, "  Domain hosts:\t%d\n", c.namedHosts)
		fmt.Fprintln(w, "")
	}

	w.Flush()
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// sortedByCount orders keys by descending count, then by name.
func sortedByCount(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
