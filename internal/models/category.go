package models

// Category is one axis of a player's secret identity
type Category string

const (
	CategoryProfession Category = "profession"
	CategoryBiology    Category = "biology"
	CategoryHealth     Category = "health"
	CategoryHobby      Category = "hobby"
	CategoryBaggage    Category = "baggage"
	CategoryFact       Category = "fact"
	CategoryCondition  Category = "condition"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryProfession,
	CategoryBiology,
	CategoryHealth,
	CategoryHobby,
	CategoryBaggage,
	CategoryFact,
	CategoryCondition,
}

// RevealOrder is the sequence in which rounds make categories public.
// Condition is dealt but never revealed by a round.
var RevealOrder = []Category{
	CategoryProfession,
	CategoryBiology,
	CategoryHealth,
	CategoryHobby,
	CategoryBaggage,
	CategoryFact,
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
