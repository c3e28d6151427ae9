package geoip

import (
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

var (
	countryReader *geoip2.Reader
	mu            sync.RWMutex
)

// Init loads the GeoLite2/GeoIP2 country database. Calling it again replaces
// the open database.
func Init(countryPath string) error {
	reader, err := geoip2.Open(countryPath)
	if err != nil {
		return fmt.Errorf("failed to open Country DB at %s: %w", countryPath, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if countryReader != nil {
		countryReader.Close()
	}
	countryReader = reader
	return nil
}

// Ready reports whether a country database is loaded.
func Ready() bool {
	mu.RLock()
	defer mu.RUnlock()
	return countryReader != nil
}

// Lookup returns the ISO country code of ipStr, or "XX" when the database
// has no entry for it.
func Lookup(ipStr string) (string, error) {
	mu.RLock()
	defer mu.RUnlock()

	if countryReader == nil {
		return "", fmt.Errorf("geoip database not initialized")
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return "", fmt.Errorf("invalid ip: %s", ipStr)
	}

	c, err := countryReader.Country(ip)
	if err != nil || c.Country.IsoCode == "" {
		return "XX", nil
	}
	return c.Country.IsoCode, nil
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if countryReader != nil {
		countryReader.Close()
		countryReader = nil
	}
}
