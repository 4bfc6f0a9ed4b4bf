package models

// City is one of the six cities offers can be listed in.
type City string

// HousingType describes the kind of property being offered.
type HousingType string

// Amenity is a fixed extra a property can provide.
type Amenity string

// UserType distinguishes regular accounts from pro accounts.
type UserType string

const (
	CityParis      City = "Paris"
	CityCologne    City = "Cologne"
	CityBrussels   City = "Brussels"
	CityAmsterdam  City = "Amsterdam"
	CityHamburg    City = "Hamburg"
	CityDusseldorf City = "Dusseldorf"
)

const (
	HousingApartment HousingType = "apartment"
	HousingHouse     HousingType = "house"
	HousingRoom      HousingType = "room"
	HousingHotel     HousingType = "hotel"
)

const (
	AmenityBreakfast       Amenity = "Breakfast"
	AmenityAirConditioning Amenity = "Air conditioning"
	AmenityLaptopWorkspace Amenity = "Laptop friendly workspace"
	AmenityBabySeat        Amenity = "Baby seat"
	AmenityWasher          Amenity = "Washer"
	AmenityTowels          Amenity = "Towels"
	AmenityFridge          Amenity = "Fridge"
)

const (
	UserTypeRegular UserType = "regular"
	UserTypePro     UserType = "pro"
)

// Cities lists every supported city.
var Cities = []City{CityParis, CityCologne, CityBrussels, CityAmsterdam, CityHamburg, CityDusseldorf}

// HousingTypes lists every supported housing type.
var HousingTypes = []HousingType{HousingApartment, HousingHouse, HousingRoom, HousingHotel}

// Amenities lists every supported amenity.
var Amenities = []Amenity{
	AmenityBreakfast, AmenityAirConditioning, AmenityLaptopWorkspace,
	AmenityBabySeat, AmenityWasher, AmenityTowels, AmenityFridge,
}

// OfferImageCount is the exact number of gallery images an offer carries.
const OfferImageCount = 6

// IsValid reports whether c is one of the supported cities.
func (c City) IsValid() bool {
	for _, v := range Cities {
		if v == c {
			return true
		}
	}
	return false
}

// IsValid reports whether h is one of the supported housing types.
func (h HousingType) IsValid() bool {
	for _, v := range HousingTypes {
		if v == h {
			return true
		}
	}
	return false
}

// IsValid reports whether a is one of the supported amenities.
func (a Amenity) IsValid() bool {
	for _, v := range Amenities {
		if v == a {
			return true
		}
	}
	return false
}

// IsValid reports whether t is a known account type.
func (t UserType) IsValid() bool {
	return t == UserTypeRegular || t == UserTypePro
}
