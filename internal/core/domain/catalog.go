package domain

// ComponentType — запись каталога предустановленных типов компонентов
// с дефолтными порогами износа.
type ComponentType struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	ThresholdDistance float64 `json:"threshold_distance"` // км, 0 = не задан
	ThresholdDuration float64 `json:"threshold_duration"` // часы, 0 = не задан
}

var componentCatalog = []ComponentType{
	{ID: "chain", Name: "Chain", ThresholdDistance: 2500},
	{ID: "cassette", Name: "Cassette", ThresholdDistance: 8000},
	{ID: "chainring", Name: "Chainring", ThresholdDistance: 12000},
	{ID: "brake_pads", Name: "Brake pads", ThresholdDistance: 4000},
	{ID: "brake_rotors", Name: "Brake rotors", ThresholdDistance: 10000},
	{ID: "tires", Name: "Tires", ThresholdDistance: 5000},
	{ID: "bar_tape", Name: "Bar tape", ThresholdDuration: 150},
	{ID: "cables", Name: "Cables and housing", ThresholdDistance: 8000},
	{ID: "bottom_bracket", Name: "Bottom bracket", ThresholdDistance: 15000},
	{ID: "suspension_fork", Name: "Suspension fork service", ThresholdDuration: 100},
}

func ComponentTypeByID(id string) (ComponentType, bool) {
	for _, ct := range componentCatalog {
		if ct.ID == id {
			return ct, true
		}
	}
	return ComponentType{}, false
}

func ComponentCatalog() []ComponentType {
	out := make([]ComponentType, len(componentCatalog))
	copy(out, componentCatalog)
	return out
}
