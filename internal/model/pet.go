package model

// PetProfile is a read-only view over data owned by the pet-management
// collaborator. This subsystem never writes it.
type PetProfile struct {
	ID        string  `json:"id"`
	OwnerID   string  `json:"owner_id"`
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Breed     string  `json:"breed,omitempty"`
	Sex       string  `json:"sex,omitempty"`
	BirthDate string  `json:"birth_date,omitempty"`
	WeightKg  float64 `json:"weight_kg,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// PetMetric is a single health measurement. The freshest recorded_at for a
// pet drives the weekly-plan freshness gate.
type PetMetric struct {
	PetID      string  `json:"pet_id"`
	Kind       string  `json:"kind"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit,omitempty"`
	RecordedAt int64   `json:"recorded_at"`
}

// ServiceLocation is a nearby vet/grooming/etc. service with coordinates.
type ServiceLocation struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Address  string  `json:"address,omitempty"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// RankedService is a ServiceLocation plus its great-circle distance from the
// query point.
type RankedService struct {
	ServiceLocation
	DistanceKm float64 `json:"distance_km"`
}
