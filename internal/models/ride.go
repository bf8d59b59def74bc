package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideStatus string

const (
	RideStatusRequested          RideStatus = "requested"
	RideStatusAwaitingDriver     RideStatus = "awaiting_driver"
	RideStatusAwaitingMemberJoin RideStatus = "awaiting_member_join"
	RideStatusAccepted           RideStatus = "accepted"
	RideStatusStarted            RideStatus = "started"
	RideStatusCompleted          RideStatus = "completed"
	RideStatusCancelled          RideStatus = "cancelled"
)

// GeoPoint is a pickup or drop location. Address is mandatory;
// coordinates default to 0 when the client could not resolve them.
type GeoPoint struct {
	Lat     float64 `json:"lat" bson:"lat"`
	Lng     float64 `json:"lng" bson:"lng"`
	Address string  `json:"address" bson:"address" validate:"required"`
}

// Ride is a shared-trip request. The creator opens it in
// awaiting_member_join with themselves as the first member; exactly one
// join claims the open slot and flips it to accepted.
//
// accepted_by carries omitempty so an open ride has no accepted_by field
// at all; the join predicate relies on $exists to detect the open slot.
type Ride struct {
	ID                    primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	RiderID               primitive.ObjectID   `json:"rider_id" bson:"rider_id" validate:"required"`
	Pickup                GeoPoint             `json:"pickup" bson:"pickup" validate:"required"`
	Drop                  GeoPoint             `json:"drop" bson:"drop" validate:"required"`
	Status                RideStatus           `json:"status" bson:"status" default:"requested"`
	TotalFare             float64              `json:"total_fare" bson:"total_fare" default:"0"`
	MemberShare           float64              `json:"member_share" bson:"member_share" default:"0"`
	MembersCount          int                  `json:"members_count" bson:"members_count" default:"2"`
	Members               []primitive.ObjectID `json:"members" bson:"members"`
	RideDetailsScreenshot string               `json:"ride_details_screenshot,omitempty" bson:"ride_details_screenshot,omitempty"`
	AcceptedBy            *primitive.ObjectID  `json:"accepted_by,omitempty" bson:"accepted_by,omitempty"`
	AcceptedAt            *time.Time           `json:"accepted_at,omitempty" bson:"accepted_at,omitempty"`
	ChatroomID            *primitive.ObjectID  `json:"chatroom_id,omitempty" bson:"chatroom_id,omitempty"`
	CreatedAt             time.Time            `json:"created_at" bson:"created_at"`
	StartedAt             *time.Time           `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt           *time.Time           `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// IsOpen reports whether the ride still has its slot available.
func (r *Ride) IsOpen() bool {
	return r.Status == RideStatusAwaitingMemberJoin && r.AcceptedBy == nil
}

// IsFull reports whether the ride has reached its member capacity.
func (r *Ride) IsFull() bool {
	return len(r.Members) >= r.MembersCount
}

// HasMember reports whether userID is already part of the ride group.
// The creator counts as a member from creation time.
func (r *Ride) HasMember(userID primitive.ObjectID) bool {
	for _, m := range r.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// CanView reports whether userID may read this ride.
func (r *Ride) CanView(userID primitive.ObjectID) bool {
	return r.RiderID == userID || r.HasMember(userID)
}
