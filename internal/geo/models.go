package geo

import "time"

// ThreatLevel is the VPN/proxy-detection risk class of an address.
type ThreatLevel string

const (
	ThreatLow      ThreatLevel = "low"
	ThreatMedium   ThreatLevel = "medium"
	ThreatHigh     ThreatLevel = "high"
	ThreatCritical ThreatLevel = "critical"
)

var threatRank = map[ThreatLevel]int{
	ThreatLow:      0,
	ThreatMedium:   1,
	ThreatHigh:     2,
	ThreatCritical: 3,
}

func (t ThreatLevel) IsValid() bool {
	_, ok := threatRank[t]
	return ok
}

// AtLeast reports whether t is as severe as other. Unknown levels rank as low.
func (t ThreatLevel) AtLeast(other ThreatLevel) bool {
	return threatRank[t] >= threatRank[other]
}

// ParseThreatLevel maps a collaborator label onto the taxonomy; anything
// unrecognised is low.
func ParseThreatLevel(s string) ThreatLevel {
	t := ThreatLevel(s)
	if t.IsValid() {
		return t
	}
	return ThreatLow
}

// UnknownCountry is the country name carried by degraded records.
const UnknownCountry = "Unknown"

// Location is what the geolocation collaborator knows about an address.
type Location struct {
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Region      string  `json:"region,omitempty"`
	City        string  `json:"city,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone,omitempty"`
	ISP         string  `json:"isp,omitempty"`
}

// Signals is what the VPN/threat collaborator knows about an address.
type Signals struct {
	IsVPN       bool        `json:"is_vpn"`
	IsProxy     bool        `json:"is_proxy"`
	IsTor       bool        `json:"is_tor"`
	ThreatLevel ThreatLevel `json:"threat_level"`
}

// IPGeolocation is the merged, cacheable view of an address. Records are
// values; callers get their own copy.
type IPGeolocation struct {
	IP string `json:"ip"`
	Location
	Signals
	LastUpdated time.Time `json:"last_updated"`
	// Degraded marks a record built without complete collaborator data.
	// Degraded records are never cached.
	Degraded bool `json:"degraded"`
}

// Merge combines collaborator answers into a record stamped at now.
func Merge(ip string, loc Location, sig Signals, now time.Time) IPGeolocation {
	if !sig.ThreatLevel.IsValid() {
		sig.ThreatLevel = ThreatLow
	}
	return IPGeolocation{
		IP:          ip,
		Location:    loc,
		Signals:     sig,
		LastUpdated: now,
	}
}

// DegradedRecord is returned when the location of ip cannot be established.
func DegradedRecord(ip string, now time.Time) IPGeolocation {
	return IPGeolocation{
		IP:          ip,
		Location:    Location{Country: UnknownCountry},
		Signals:     Signals{ThreatLevel: ThreatLow},
		LastUpdated: now,
		Degraded:    true,
	}
}

// Known reports whether the country was resolved.
func (g IPGeolocation) Known() bool {
	return g.CountryCode != ""
}

// Anonymized reports whether any anonymizer signal fired.
func (g IPGeolocation) Anonymized() bool {
	return g.IsVPN || g.IsProxy || g.IsTor
}

// FreshAt reports whether the record may still be served at now under ttl.
func (g IPGeolocation) FreshAt(now time.Time, ttl time.Duration) bool {
	return !g.Degraded && now.Sub(g.LastUpdated) <= ttl
}
