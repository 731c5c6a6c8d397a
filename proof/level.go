package proof

import "fmt"

// TrustLevel is a totally ordered trust declaration (spec.md §3):
// Distrust < None < Low < Medium < High. The same type backs the
// thoroughness/understanding fields of a package review, whose YAML scalar
// vocabulary (none/low/medium/high) is a subset of TrustLevel's.
type TrustLevel int8

const (
	TrustDistrust TrustLevel = iota
	TrustNone
	TrustLow
	TrustMedium
	TrustHigh
)

// String renders the lowercase YAML scalar form.
func (l TrustLevel) String() string {
	switch l {
	case TrustDistrust:
		return "distrust"
	case TrustNone:
		return "none"
	case TrustLow:
		return "low"
	case TrustMedium:
		return "medium"
	case TrustHigh:
		return "high"
	default:
		return fmt.Sprintf("trustlevel(%d)", int8(l))
	}
}

// ParseTrustLevel parses the lowercase YAML scalar form of a TrustLevel.
func ParseTrustLevel(s string) (TrustLevel, error) {
	switch s {
	case "distrust":
		return TrustDistrust, nil
	case "none":
		return TrustNone, nil
	case "low":
		return TrustLow, nil
	case "medium":
		return TrustMedium, nil
	case "high":
		return TrustHigh, nil
	default:
		return 0, fmt.Errorf("proof: unknown trust level %q", s)
	}
}

func (l TrustLevel) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

func (l *TrustLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseTrustLevel(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Rating is a package reviewer's overall verdict.
type Rating int8

const (
	RatingNegative Rating = iota
	RatingNeutral
	RatingPositive
	RatingStrong
)

func (r Rating) String() string {
	switch r {
	case RatingNegative:
		return "negative"
	case RatingNeutral:
		return "neutral"
	case RatingPositive:
		return "positive"
	case RatingStrong:
		return "strong"
	default:
		return fmt.Sprintf("rating(%d)", int8(r))
	}
}

// ParseRating parses the lowercase YAML scalar form of a Rating.
func ParseRating(s string) (Rating, error) {
	switch s {
	case "negative":
		return RatingNegative, nil
	case "neutral":
		return RatingNeutral, nil
	case "positive":
		return RatingPositive, nil
	case "strong":
		return RatingStrong, nil
	default:
		return 0, fmt.Errorf("proof: unknown rating %q", s)
	}
}

func (r Rating) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

func (r *Rating) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseRating(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}
