package pms

const (
	CheckInTime  = "15:00"
	CheckOutTime = "12:00"
)

// Room is a suite in the demo catalog
type Room struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	MaxGuests       int      `json:"maxGuests"`
	Beds            string   `json:"beds"`
	SizeSqm         int      `json:"sizeSqm"`
	Amenities       []string `json:"amenities"`
	BaseNightlyRate int      `json:"baseNightlyRate"`
}

var catalog = []Room{
	{
		ID:              "junior-suite",
		Name:            "Junior Suite",
		Description:     "Spacious suite with king bed, private balcony, and city views.",
		MaxGuests:       2,
		Beds:            "1 king",
		SizeSqm:         42,
		Amenities:       []string{"Balcony", "Rain shower", "Smart TV", "Nespresso"},
		BaseNightlyRate: 3200,
	},
	{
		ID:              "master-suite",
		Name:            "Master Suite",
		Description:     "Premium suite with separate lounge, king bed, and soaking tub.",
		MaxGuests:       3,
		Beds:            "1 king + sofa bed",
		SizeSqm:         58,
		Amenities:       []string{"Lounge", "Soaking tub", "Workspace", "Smart TV"},
		BaseNightlyRate: 4200,
	},
	{
		ID:              "family-suite",
		Name:            "Family Suite",
		Description:     "Two-room suite ideal for families, with kitchenette and dining area.",
		MaxGuests:       4,
		Beds:            "1 king + 2 twins",
		SizeSqm:         70,
		Amenities:       []string{"Kitchenette", "Dining area", "Microwave", "Smart TV"},
		BaseNightlyRate: 5200,
	},
	{
		ID:              "penthouse-suite",
		Name:            "Penthouse Suite",
		Description:     "Top-floor suite with panoramic terrace and premium amenities.",
		MaxGuests:       2,
		Beds:            "1 king",
		SizeSqm:         85,
		Amenities:       []string{"Terrace", "Premium bar", "City skyline view", "Smart TV"},
		BaseNightlyRate: 7500,
	},
}

// baseInventory is the number of sellable units per room id on a weekday
var baseInventory = map[string]int{
	"junior-suite":    4,
	"master-suite":    3,
	"family-suite":    2,
	"penthouse-suite": 1,
}

// Policies is the house policy sheet returned for FAQ questions
type Policies struct {
	Hotel              string `json:"hotel"`
	CheckInTime        string `json:"checkInTime"`
	CheckOutTime       string `json:"checkOutTime"`
	CancellationPolicy string `json:"cancellationPolicy"`
	PaymentPolicy      string `json:"paymentPolicy"`
	Pets               string `json:"pets"`
	Children           string `json:"children"`
}

func housePolicies(hotel string) Policies {
	return Policies{
		Hotel:              hotel,
		CheckInTime:        CheckInTime,
		CheckOutTime:       CheckOutTime,
		CancellationPolicy: "Free cancellation up to 48h before arrival. After that, first night is charged.",
		PaymentPolicy:      "50% deposit at booking, balance due at check-in.",
		Pets:               "Pets allowed in select suites with advance notice.",
		Children:           "Children welcome; extra beds available on request.",
	}
}

// Rooms returns a copy of the demo catalog
func Rooms() []Room {
	out := make([]Room, len(catalog))
	for i, room := range catalog {
		room.Amenities = append([]string(nil), room.Amenities...)
		out[i] = room
	}
	return out
}
