package timezone

import (
	"strings"
	"time"
)

var (
	IST *time.Location // UTC+5:30 - all domestic airports
	GST *time.Location // UTC+4 - Gulf network
	SGT *time.Location // UTC+8 - Singapore
	BST *time.Location // UTC+6 - Dhaka
)

func init() {
	IST = time.FixedZone("IST", 5*60*60+30*60)
	GST = time.FixedZone("GST", 4*60*60)
	SGT = time.FixedZone("SGT", 8*60*60)
	BST = time.FixedZone("BST", 6*60*60)
}

var airportTimezones = map[string]string{
	// IST (UTC+5:30) - domestic network
	"DEL": "IST", // Delhi - Indira Gandhi
	"BOM": "IST", // Mumbai - Chhatrapati Shivaji Maharaj
	"BLR": "IST", // Bengaluru - Kempegowda
	"MAA": "IST", // Chennai
	"CCU": "IST", // Kolkata - Netaji Subhas Chandra Bose
	"HYD": "IST", // Hyderabad - Rajiv Gandhi
	"GOX": "IST", // North Goa - Manohar
	"GOI": "IST", // Goa - Dabolim
	"COK": "IST", // Kochi
	"PNQ": "IST", // Pune
	"AMD": "IST", // Ahmedabad - Sardar Vallabhbhai Patel
	"JAI": "IST", // Jaipur
	"LKO": "IST", // Lucknow - Chaudhary Charan Singh
	"IXC": "IST", // Chandigarh
	"TRV": "IST", // Thiruvananthapuram
	"GAU": "IST", // Guwahati - Lokpriya Gopinath Bordoloi

	// International codes seen on the network
	"DXB": "GST", // Dubai
	"AUH": "GST", // Abu Dhabi - Zayed
	"SIN": "SGT", // Singapore - Changi
	"DAC": "BST", // Dhaka - Hazrat Shahjalal
}

func GetTimezoneByAirport(code string) string {
	code = strings.ToUpper(code)
	if tz, ok := airportTimezones[code]; ok {
		return tz
	}
	return "IST"
}

func GetLocationByAirport(code string) *time.Location {
	switch GetTimezoneByAirport(code) {
	case "GST":
		return GST
	case "SGT":
		return SGT
	case "BST":
		return BST
	default:
		return IST
	}
}

// ConvertToAirport re-expresses an instant in the airport's local zone. The
// instant is unchanged; only the wall clock (and so the hour-of-day bucket
// used by the departure-time filter) moves.
func ConvertToAirport(t time.Time, airportCode string) time.Time {
	return t.In(GetLocationByAirport(airportCode))
}
