package entity

// AvailabilityRules holds the text patterns used to classify a product page.
// Patterns are regular expressions matched case-insensitively.
type AvailabilityRules struct {
	OutOfStock []string
	InStock    []string
}

// DefaultAvailabilityRules returns the Danish phrases used by the shop.
func DefaultAvailabilityRules() AvailabilityRules {
	return AvailabilityRules{
		OutOfStock: []string{
			`Ikke på lager`,
			`Udsolgt`,
		},
		InStock: []string{
			`På lager`,
			`Læg i kurv`,
			`Tilføj til kurv`,
		},
	}
}
