package generate

import (
	"regexp"
	"strings"

	"github.com/drfirst/go-edi/internal/x12"
)

// Entity type qualifiers for NM102
const (
	EntityPerson       = "1"
	EntityOrganization = "2"
)

// organizationKeywords marks a provider name as a business rather than a person
var organizationKeywords = regexp.MustCompile(`\b(PLLC|LLC|PC|INC|CORP|ASSOCIATES|GROUP|CENTER|CLINIC)\b`)

// ProviderName is a provider name resolved into NM1 parts
type ProviderName struct {
	EntityType string
	Last       string // organization name when EntityType is EntityOrganization
	First      string
}

// ProviderEntity guesses whether a free-text provider name is an organization
// or a person. It is a keyword heuristic; callers that know the entity type
// should not rely on it.
func ProviderEntity(name string) ProviderName {
	clean := x12.CleanName(strings.NewReplacer(".", " ", ",", " ").Replace(name))
	if organizationKeywords.MatchString(clean) {
		return ProviderName{EntityType: EntityOrganization, Last: x12.CleanName(name)}
	}
	parts := strings.Fields(clean)
	switch len(parts) {
	case 0:
		return ProviderName{EntityType: EntityPerson}
	case 1:
		return ProviderName{EntityType: EntityPerson, Last: parts[0]}
	}
	return ProviderName{
		EntityType: EntityPerson,
		Last:       parts[len(parts)-1],
		First:      parts[0],
	}
}
