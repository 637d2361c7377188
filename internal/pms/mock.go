package pms

import (
	"context"
	"strings"

	"github.com/avvvet/concierge-intent/internal/models"
)

// RoomAvailability is one line of an availability answer
type RoomAvailability struct {
	RoomType       string `json:"roomType"`
	RoomID         string `json:"roomId"`
	AvailableRooms int    `json:"availableRooms"`
	RatePerNight   int    `json:"ratePerNight"`
	Total          int    `json:"total"`
}

type AvailabilityData struct {
	Hotel        string             `json:"hotel"`
	Currency     string             `json:"currency"`
	CheckIn      string             `json:"checkIn"`
	CheckOut     string             `json:"checkOut"`
	Nights       int                `json:"nights"`
	Guests       *int               `json:"guests"`
	CheckInTime  string             `json:"checkInTime"`
	CheckOutTime string             `json:"checkOutTime"`
	Rooms        []RoomAvailability `json:"rooms"`
}

// RoomPrice is one line of a pricing answer. Total is nil when the stay
// length is unknown.
type RoomPrice struct {
	RoomType     string `json:"roomType"`
	RoomID       string `json:"roomId"`
	RatePerNight int    `json:"ratePerNight"`
	Total        *int   `json:"total"`
	MaxGuests    int    `json:"maxGuests"`
}

type PricingData struct {
	Hotel    string      `json:"hotel"`
	Currency string      `json:"currency"`
	CheckIn  string      `json:"checkIn,omitempty"`
	CheckOut string      `json:"checkOut,omitempty"`
	Nights   *int        `json:"nights"`
	Guests   *int        `json:"guests"`
	Pricing  []RoomPrice `json:"pricing"`
}

type RoomsData struct {
	Hotel    string `json:"hotel"`
	Currency string `json:"currency"`
	Rooms    []Room `json:"rooms"`
}

// MockGateway answers from the static demo catalog. It is deterministic and
// safe for concurrent use.
type MockGateway struct {
	hotel    string
	currency string
}

func NewMockGateway(hotel, currency string) *MockGateway {
	return &MockGateway{hotel: hotel, currency: currency}
}

func (m *MockGateway) GetAvailability(_ context.Context, params models.RequestParams) Result {
	var missing []string
	if params.CheckIn == "" {
		missing = append(missing, FieldCheckIn)
	}
	if params.CheckOut == "" {
		missing = append(missing, FieldCheckOut)
	}
	if len(missing) > 0 {
		return Missing(missing...)
	}

	checkIn, okIn := parseDate(params.CheckIn)
	checkOut, okOut := parseDate(params.CheckOut)
	if !okIn || !okOut {
		return Failure(ErrInvalidDates)
	}
	nights := nightsBetween(checkIn, checkOut)
	if nights <= 0 {
		return Failure(ErrInvalidDates)
	}

	rooms := make([]RoomAvailability, 0, len(catalog))
	for _, room := range catalog {
		if params.Guests != nil && *params.Guests > 0 && *params.Guests > room.MaxGuests {
			continue
		}
		rate := nightlyRate(room, checkIn)
		rooms = append(rooms, RoomAvailability{
			RoomType:       room.Name,
			RoomID:         room.ID,
			AvailableRooms: unitsLeft(room, checkIn),
			RatePerNight:   rate,
			Total:          rate * nights,
		})
	}

	return Success(&AvailabilityData{
		Hotel:        m.hotel,
		Currency:     m.currency,
		CheckIn:      params.CheckIn,
		CheckOut:     params.CheckOut,
		Nights:       nights,
		Guests:       params.Guests,
		CheckInTime:  CheckInTime,
		CheckOutTime: CheckOutTime,
		Rooms:        rooms,
	})
}

func (m *MockGateway) GetPricing(_ context.Context, params models.RequestParams) Result {
	checkIn, haveCheckIn := parseDate(params.CheckIn)
	checkOut, haveCheckOut := parseDate(params.CheckOut)

	var nights *int
	if haveCheckIn && haveCheckOut {
		if n := nightsBetween(checkIn, checkOut); n > 0 {
			nights = &n
		}
	}

	pricing := make([]RoomPrice, 0, len(catalog))
	for _, room := range catalog {
		if params.RoomType != "" && !strings.EqualFold(room.Name, params.RoomType) {
			continue
		}
		rate := room.BaseNightlyRate
		if haveCheckIn {
			rate = nightlyRate(room, checkIn)
		}
		line := RoomPrice{
			RoomType:     room.Name,
			RoomID:       room.ID,
			RatePerNight: rate,
			MaxGuests:    room.MaxGuests,
		}
		if nights != nil {
			total := rate * *nights
			line.Total = &total
		}
		pricing = append(pricing, line)
	}

	return Success(&PricingData{
		Hotel:    m.hotel,
		Currency: m.currency,
		CheckIn:  params.CheckIn,
		CheckOut: params.CheckOut,
		Nights:   nights,
		Guests:   params.Guests,
		Pricing:  pricing,
	})
}

func (m *MockGateway) GetRooms(_ context.Context) Result {
	return Success(&RoomsData{
		Hotel:    m.hotel,
		Currency: m.currency,
		Rooms:    Rooms(),
	})
}

func (m *MockGateway) GetPolicies(_ context.Context) Result {
	policies := housePolicies(m.hotel)
	return Success(&policies)
}
