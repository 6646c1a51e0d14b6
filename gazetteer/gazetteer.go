package gazetteer

import (
	"sort"
	"strconv"
	"strings"

	"starlings/models"
)

// Place is a single gazetteer entry. Entries are immutable after the
// gazetteer is built; Population is only used as a ranking weight.
type Place struct {
	Name       string
	Prov       string
	Population int
	Lat        float64
	Lng        float64
}

// Gazetteer holds a small ranked index of known places for instant
// autocomplete. It answers from memory only and never touches the
// network, so it is safe to call on every keystroke.
type Gazetteer struct {
	places []Place
}

// DefaultLimit caps how many local matches a search returns.
const DefaultLimit = 5

// High-priority Canadian cities for instant, zero-latency suggestions.
// Common searches like "Toronto" or "High River" should feel
// instantaneous even on slow networks.
var canadianHubs = []Place{
	{Name: "Toronto", Prov: "ON", Population: 2794356, Lat: 43.6532, Lng: -79.3832},
	{Name: "Montreal", Prov: "QC", Population: 1762949, Lat: 45.5017, Lng: -73.5673},
	{Name: "Vancouver", Prov: "BC", Population: 662248, Lat: 49.2827, Lng: -123.1207},
	{Name: "Calgary", Prov: "AB", Population: 1306784, Lat: 51.0447, Lng: -114.0719},
	{Name: "Edmonton", Prov: "AB", Population: 1010899, Lat: 53.5461, Lng: -113.4938},
	{Name: "Ottawa", Prov: "ON", Population: 1017449, Lat: 45.4215, Lng: -75.6972},
	{Name: "Winnipeg", Prov: "MB", Population: 749607, Lat: 49.8951, Lng: -97.1384},
	{Name: "Quebec City", Prov: "QC", Population: 549459, Lat: 46.8139, Lng: -71.2082},
	{Name: "Hamilton", Prov: "ON", Population: 569353, Lat: 43.2557, Lng: -79.8711},
	{Name: "Kitchener", Prov: "ON", Population: 256885, Lat: 43.4516, Lng: -80.4925},
	{Name: "London", Prov: "ON", Population: 422324, Lat: 42.9849, Lng: -81.2453},
	{Name: "Victoria", Prov: "BC", Population: 91861, Lat: 48.4284, Lng: -123.3656},
	{Name: "Halifax", Prov: "NS", Population: 439819, Lat: 44.6488, Lng: -63.5752},
	{Name: "Oshawa", Prov: "ON", Population: 175383, Lat: 43.8971, Lng: -78.8658},
	{Name: "Windsor", Prov: "ON", Population: 229660, Lat: 42.3149, Lng: -83.0364},
	{Name: "Saskatoon", Prov: "SK", Population: 266141, Lat: 52.1332, Lng: -106.6700},
	{Name: "Regina", Prov: "SK", Population: 226403, Lat: 50.4452, Lng: -104.6189},
	{Name: "St. John's", Prov: "NL", Population: 110525, Lat: 47.5615, Lng: -52.7126},
	{Name: "Kelowna", Prov: "BC", Population: 142146, Lat: 49.8871, Lng: -119.4960},
	{Name: "Barrie", Prov: "ON", Population: 147829, Lat: 44.3894, Lng: -79.6903},
	{Name: "Sherbrooke", Prov: "QC", Population: 172985, Lat: 45.4010, Lng: -71.8922},
	{Name: "Guelph", Prov: "ON", Population: 135474, Lat: 43.5448, Lng: -80.2482},
	{Name: "Abbotsford", Prov: "BC", Population: 141397, Lat: 49.0504, Lng: -122.3045},
	{Name: "Kingston", Prov: "ON", Population: 132485, Lat: 44.2312, Lng: -76.4860},
	{Name: "High River", Prov: "AB", Population: 13584, Lat: 50.5806, Lng: -113.8745},
	{Name: "High Prairie", Prov: "AB", Population: 2564, Lat: 55.4334, Lng: -116.4842},
	{Name: "Red Deer", Prov: "AB", Population: 100844, Lat: 52.2690, Lng: -113.8116},
	{Name: "Lethbridge", Prov: "AB", Population: 98406, Lat: 49.6956, Lng: -112.8451},
	{Name: "Nanaimo", Prov: "BC", Population: 99863, Lat: 49.1659, Lng: -123.9401},
	{Name: "Kamloops", Prov: "BC", Population: 97902, Lat: 50.6745, Lng: -120.3273},
	{Name: "Prince George", Prov: "BC", Population: 74003, Lat: 53.9171, Lng: -122.7497},
	{Name: "Moncton", Prov: "NB", Population: 71889, Lat: 46.0878, Lng: -64.7782},
	{Name: "Saint John", Prov: "NB", Population: 67575, Lat: 45.2733, Lng: -66.0633},
	{Name: "Fredericton", Prov: "NB", Population: 58220, Lat: 45.9636, Lng: -66.6431},
	{Name: "Charlottetown", Prov: "PE", Population: 36094, Lat: 46.2382, Lng: -63.1311},
	{Name: "Whitehorse", Prov: "YT", Population: 25085, Lat: 60.7212, Lng: -135.0568},
	{Name: "Yellowknife", Prov: "NT", Population: 19563, Lat: 62.4540, Lng: -114.3718},
	{Name: "Iqaluit", Prov: "NU", Population: 7740, Lat: 63.7467, Lng: -68.5170},
}

// New builds a gazetteer from the built-in hub list plus any extra
// places. Extra places are appended after the built-ins so that equal
// populations keep the curated order on ties.
func New(extra ...Place) *Gazetteer {
	places := make([]Place, 0, len(canadianHubs)+len(extra))
	places = append(places, canadianHubs...)
	places = append(places, extra...)
	return &Gazetteer{places: places}
}

// Search returns up to limit places whose name contains the query,
// prefix matches first, then by population descending. Queries shorter
// than two characters return nil. limit <= 0 falls back to DefaultLimit.
func (g *Gazetteer) Search(query string, limit int) []models.LocationCandidate {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < 2 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var matches []Place
	for _, place := range g.places {
		if strings.Contains(strings.ToLower(place.Name), q) {
			matches = append(matches, place)
		}
	}

	// Boost exact starts, then sort by population. The sort is stable
	// so places with equal population keep their curated order.
	sort.SliceStable(matches, func(i, j int) bool {
		iStarts := strings.HasPrefix(strings.ToLower(matches[i].Name), q)
		jStarts := strings.HasPrefix(strings.ToLower(matches[j].Name), q)
		if iStarts != jStarts {
			return iStarts
		}
		return matches[i].Population > matches[j].Population
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	candidates := make([]models.LocationCandidate, len(matches))
	for i, place := range matches {
		candidates[i] = place.Candidate()
	}
	return candidates
}

// Candidate converts a gazetteer place into the shape shared with the
// remote geocoder results.
func (p Place) Candidate() models.LocationCandidate {
	return models.LocationCandidate{
		DisplayName: p.Name + ", " + p.Prov + ", Canada",
		Lat:         strconv.FormatFloat(p.Lat, 'f', -1, 64),
		Lon:         strconv.FormatFloat(p.Lng, 'f', -1, 64),
		Address: models.Address{
			City:    p.Name,
			Country: "Canada",
		},
	}
}
