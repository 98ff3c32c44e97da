package types

// Objective is the resolved trip objective: the requested coordinate plus
// the metadata every downstream section needs (elevation anchor, local
// timezone for interpreting the planned start time).
type Objective struct {
	Coordinates Coords    `json:"coordinates"`
	Elevation   Elevation `json:"elevation"`
	Timezone    string    `json:"timezone"`
}
