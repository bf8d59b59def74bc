package validators

import "errors"

var ErrAddressRequired = errors.New("pickup and drop locations with addresses are required")

// LocationInput mirrors what clients submit for pickup and drop.
// Coordinates are optional; the address is not.
type LocationInput struct {
	Address string       `json:"address"`
	Lat     LenientFloat `json:"lat"`
	Lng     LenientFloat `json:"lng"`
}

type CreateRideRequest struct {
	Pickup                *LocationInput `json:"pickup"`
	Drop                  *LocationInput `json:"drop"`
	TotalFare             LenientFloat   `json:"totalFare"`
	MemberShare           LenientFloat   `json:"memberShare"`
	MembersCount          LenientInt     `json:"membersCount"`
	RideDetailsScreenshot string         `json:"rideDetailsScreenshot"`
}

func (r *CreateRideRequest) Validate() error {
	if r.Pickup == nil || r.Drop == nil || r.Pickup.Address == "" || r.Drop.Address == "" {
		return ErrAddressRequired
	}
	return nil
}
