package closecrm

import "encoding/json"

// searchResponse is the subset of a data/search reply we use
type searchResponse struct {
	Data []json.RawMessage `json:"data"`
	// Cursor is null or absent on the last page
	Cursor *string `json:"cursor"`
}

// leadIDFields limits the payload to lead ids
var leadIDFields = map[string][]string{"lead": {"id"}}
