package model

// Category is the top level of the browse hierarchy.
type Category struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

// BusModel belongs to a category and groups serial units.
type BusModel struct {
	ID             string    `json:"_id"`
	Title          string    `json:"title"`
	ParentCategory Reference `json:"parentCategory"`
}

// Bus is a single manufactured unit.
type Bus struct {
	ID           string    `json:"_id"`
	SerialNumber string    `json:"serialNumber"`
	Model        Reference `json:"model"`
}

// BusSummary is the projection served to the upload page's bus picker.
type BusSummary struct {
	ID           string       `json:"_id"`
	SerialNumber string       `json:"serialNumber"`
	Model        ModelSummary `json:"model"`
}

type ModelSummary struct {
	Title string `json:"title"`
}
