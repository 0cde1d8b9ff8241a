package flows

import "github.com/google/jsonschema-go/jsonschema"

// GeocodeInput is a WGS84 coordinate pair.
type GeocodeInput struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeocodeOutput is the formatted postal address nearest the coordinates.
type GeocodeOutput struct {
	Address string `json:"address"`
}

// ReverseGeocodeFlow resolves visit coordinates to a readable address.
var ReverseGeocodeFlow = define[GeocodeInput, GeocodeOutput](
	ReverseGeocode,
	"Converts latitude and longitude into a formatted address.",
	object([]string{"latitude", "longitude"}, map[string]*jsonschema.Schema{
		"latitude":  number("Latitude in decimal degrees", ptr(-90.0), ptr(90.0)),
		"longitude": number("Longitude in decimal degrees", ptr(-180.0), ptr(180.0)),
	}),
	object([]string{"address"}, map[string]*jsonschema.Schema{
		"address": nonEmpty("Formatted address including locality, city, state and PIN code"),
	}),
	`Provide the most likely formatted street address for the location at
latitude {{.Latitude}} and longitude {{.Longitude}}.
Include locality, city, state and PIN code when known.
Respond with a JSON object containing "address".`,
	nil,
)
