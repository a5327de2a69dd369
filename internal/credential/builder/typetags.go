package builder

import "strings"

// TypeTagRule maps a normalized service name to a credential type tag.
type TypeTagRule struct {
	ServiceName string
	Tag         string
}

// TypeGeneralAccess is the fallback tag for services without a dedicated rule.
const TypeGeneralAccess = "GeneralAccessCredential"

// typeTagTable is the ordered service-name lookup table. Order matters only
// for readability; lookups are exact matches on the normalized name.
var typeTagTable = []TypeTagRule{
	{ServiceName: "gym floor", Tag: "GymFloorAccessCredential"},
	{ServiceName: "swimming pool", Tag: "AquaticFacilitiesCredential"},
	{ServiceName: "sauna", Tag: "WellnessCredential"},
	{ServiceName: "steam room", Tag: "WellnessCredential"},
	{ServiceName: "personal training", Tag: "PersonalTrainingCredential"},
	{ServiceName: "group fitness classes", Tag: "GroupFitnessCredential"},
	{ServiceName: "nutrition consultation", Tag: "NutritionCredential"},
}

// tagForService resolves the type tag for one service name.
func tagForService(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, rule := range typeTagTable {
		if rule.ServiceName == normalized {
			return rule.Tag
		}
	}
	return TypeGeneralAccess
}

// inferTypeTags appends one tag per service in iteration order. Duplicates
// are kept: two wellness services yield WellnessCredential twice. Stored
// tokens already encode that shape, so deduplicating would change the bytes
// existing verifiers see.
func inferTypeTags(serviceNames []string) []string {
	tags := make([]string, 0, len(serviceNames))
	for _, name := range serviceNames {
		tags = append(tags, tagForService(name))
	}
	return tags
}
