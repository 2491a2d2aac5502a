package domain

// NumericRange es el rango observado de un campo numérico. Min y Max son nil
// cuando el dataset no tiene filas.
type NumericRange struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// DropdownOptions agrupa los valores distintos de cada campo categórico y los
// rangos de los campos numéricos acotados. Todas las claves están siempre
// presentes, aun con dataset vacío.
type DropdownOptions struct {
	Brand            []string     `json:"brand"`
	CarModel         []string     `json:"car_model"`
	YearOfProduction NumericRange `json:"year_of_production"`
	FuelType         []string     `json:"fuel_type"`
	Transmission     []string     `json:"transmission"`
	Body             []string     `json:"body"`
	NumberOfDoors    NumericRange `json:"number_of_doors"`
	Color            []string     `json:"color"`
}

// BrandModelMapping asocia cada marca con sus modelos conocidos, ordenados
// ascendente. El orden de las marcas no está garantizado.
type BrandModelMapping map[string][]string
