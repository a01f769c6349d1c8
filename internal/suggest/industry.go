package suggest

import "strings"

// Industry selects one of the assembler's behaviours. New industries get a new
// variant here rather than another string comparison.
type Industry int

const (
	IndustryGeneric Industry = iota
	IndustryFood
)

// ParseIndustry maps a raw query value onto a variant. Anything unrecognised is generic.
func ParseIndustry(raw string) Industry {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "food":
		return IndustryFood
	default:
		return IndustryGeneric
	}
}

func (i Industry) String() string {
	switch i {
	case IndustryFood:
		return "food"
	default:
		return "generic"
	}
}
