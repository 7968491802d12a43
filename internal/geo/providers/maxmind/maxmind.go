// Package maxmind answers the geolocation and anonymizer contracts from
// local MaxMind GeoIP2 databases.
package maxmind

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"warden/internal/geo"
	"warden/pkg/platform/provider"
)

const providerName = "maxmind"

// cityReader and anonymousReader are the parts of *geoip2.Reader in use.
type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

type anonymousReader interface {
	AnonymousIP(ip net.IP) (*geoip2.AnonymousIP, error)
	Close() error
}

// Locator reads a GeoIP2/GeoLite2 City database.
type Locator struct {
	db cityReader
}

// OpenLocator opens the City database at path.
func OpenLocator(path string) (*Locator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open maxmind city database: %w", err)
	}
	return &Locator{db: db}, nil
}

func (l *Locator) Locate(ctx context.Context, ip string) (geo.Location, error) {
	if err := ctx.Err(); err != nil {
		return geo.Location{}, err
	}
	addr := net.ParseIP(ip)
	if addr == nil {
		return geo.Location{}, provider.NewError(provider.CategoryBadData, providerName, "invalid address", nil)
	}
	city, err := l.db.City(addr)
	if err != nil {
		return geo.Location{}, provider.NewError(provider.CategoryInternal, providerName, "city lookup failed", err)
	}
	if city.Country.IsoCode == "" {
		return geo.Location{}, provider.NewError(provider.CategoryNotFound, providerName, "address not in database", nil)
	}

	loc := geo.Location{
		Country:     city.Country.Names["en"],
		CountryCode: city.Country.IsoCode,
		City:        city.City.Names["en"],
		Latitude:    city.Location.Latitude,
		Longitude:   city.Location.Longitude,
		Timezone:    city.Location.TimeZone,
	}
	if len(city.Subdivisions) > 0 {
		loc.Region = city.Subdivisions[0].Names["en"]
	}
	return loc, nil
}

func (l *Locator) Close() error {
	return l.db.Close()
}

// Detector reads a GeoIP2 Anonymous IP database. It has no reputation feed,
// so the threat level is inferred from the anonymizer flags alone.
type Detector struct {
	db anonymousReader
}

// OpenDetector opens the Anonymous IP database at path.
func OpenDetector(path string) (*Detector, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open maxmind anonymous-ip database: %w", err)
	}
	return &Detector{db: db}, nil
}

func (d *Detector) Detect(ctx context.Context, ip string) (geo.Signals, error) {
	if err := ctx.Err(); err != nil {
		return geo.Signals{}, err
	}
	addr := net.ParseIP(ip)
	if addr == nil {
		return geo.Signals{}, provider.NewError(provider.CategoryBadData, providerName, "invalid address", nil)
	}
	rec, err := d.db.AnonymousIP(addr)
	if err != nil {
		return geo.Signals{}, provider.NewError(provider.CategoryInternal, providerName, "anonymous-ip lookup failed", err)
	}
	return signalsFrom(rec), nil
}

func (d *Detector) Close() error {
	return d.db.Close()
}

func signalsFrom(rec *geoip2.AnonymousIP) geo.Signals {
	sig := geo.Signals{
		IsVPN:       rec.IsAnonymousVPN,
		IsProxy:     rec.IsPublicProxy || rec.IsResidentialProxy,
		IsTor:       rec.IsTorExitNode,
		ThreatLevel: geo.ThreatLow,
	}
	switch {
	case sig.IsTor:
		sig.ThreatLevel = geo.ThreatHigh
	case sig.IsProxy, sig.IsVPN:
		sig.ThreatLevel = geo.ThreatMedium
	case rec.IsHostingProvider:
		sig.ThreatLevel = geo.ThreatMedium
	}
	return sig
}

// Unconfigured stands in when no City database path is set. Every lookup
// fails without retry, so callers receive degraded records.
type Unconfigured struct{}

func (Unconfigured) Locate(context.Context, string) (geo.Location, error) {
	return geo.Location{}, provider.NewError(provider.CategoryAuthentication, providerName, "no city database configured", nil)
}
