package models

// Status is a lookup row for feed-item statuses (e.g. "Active", "Cancelled").
// Mappers receive the resolved name; repositories resolve ids.
type Status struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActivityType is a lookup row for announcement activity kinds
type ActivityType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Interest is a selectable user interest
type Interest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
