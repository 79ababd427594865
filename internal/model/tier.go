package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tier is the compliance level derived from the overall percentage.
// Higher values are better, so tiers can be compared with < and >.
type Tier int

const (
	// TierPoor is below 40%.
	TierPoor Tier = iota

	// TierModerate is 40% up to, but not including, 60%.
	TierModerate

	// TierGood is 60% up to, but not including, 80%.
	TierGood

	// TierExcellent is 80% and above.
	TierExcellent
)

// Tier lower bounds, inclusive, evaluated top-down.
const (
	ExcellentThreshold = 80.0
	GoodThreshold      = 60.0
	ModerateThreshold  = 40.0
)

// TierFor maps a percentage to its tier.
func TierFor(percentage float64) Tier {
	switch {
	case percentage >= ExcellentThreshold:
		return TierExcellent
	case percentage >= GoodThreshold:
		return TierGood
	case percentage >= ModerateThreshold:
		return TierModerate
	default:
		return TierPoor
	}
}

// String returns the upper case tier name.
func (t Tier) String() string {
	switch t {
	case TierPoor:
		return "POOR"
	case TierModerate:
		return "MODERATE"
	case TierGood:
		return "GOOD"
	case TierExcellent:
		return "EXCELLENT"
	default:
		return "UNKNOWN"
	}
}

// Emoji returns the traffic-light marker shown next to the tier.
func (t Tier) Emoji() string {
	switch t {
	case TierPoor:
		return "🔴"
	case TierModerate:
		return "🟠"
	case TierGood:
		return "🟡"
	case TierExcellent:
		return "🟢"
	default:
		return "⚪"
	}
}

// Label returns the emoji and name, e.g. "🟢 EXCELLENT".
func (t Tier) Label() string {
	return t.Emoji() + " " + t.String()
}

// Recommendation returns the one-line verdict for the tier.
func (t Tier) Recommendation() string {
	switch t {
	case TierExcellent:
		return "Your website is highly AI-compliant!"
	case TierGood:
		return "Good compliance with room for improvement."
	case TierModerate:
		return "Moderate compliance - several areas need attention."
	default:
		return "Poor compliance - significant improvements needed."
	}
}

// ParseTier parses a tier name. Case and a leading emoji are ignored.
func ParseTier(s string) (Tier, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return TierPoor, fmt.Errorf("empty compliance level")
	}
	switch strings.ToUpper(fields[len(fields)-1]) {
	case "EXCELLENT":
		return TierExcellent, nil
	case "GOOD":
		return TierGood, nil
	case "MODERATE":
		return TierModerate, nil
	case "POOR":
		return TierPoor, nil
	default:
		return TierPoor, fmt.Errorf("unknown compliance level %q", s)
	}
}

// MarshalJSON encodes the tier as its name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a tier name.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
