package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carpool/internal/models"
	"carpool/internal/repositories/interfaces"
	"carpool/internal/utils"
	"carpool/internal/validators"
	"carpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Join outcomes. Concurrency losses are expected traffic, not
// exceptions; handlers map each to a distinct user-facing response so
// clients can render "ride taken" apart from "ride vanished".
var (
	ErrRideNotFound       = errors.New("ride not found")
	ErrRideNotOpen        = errors.New("ride is no longer open for joining")
	ErrRideAlreadyClaimed = errors.New("ride has already been accepted by another user")
	ErrAlreadyMember      = errors.New("already a member of this ride")
	ErrJoinConflict       = errors.New("unable to join ride, please try again")
	ErrRideAccessDenied   = errors.New("not authorized to view this ride")
)

type RideService interface {
	CreateRide(ctx context.Context, riderID primitive.ObjectID, request *validators.CreateRideRequest) (*RideView, error)
	JoinRide(ctx context.Context, rideID, userID primitive.ObjectID) (*RideView, error)
	ListAvailableRides(ctx context.Context, userID primitive.ObjectID) ([]*RideView, error)
	GetRide(ctx context.Context, rideID, userID primitive.ObjectID, isAdmin bool) (*RideView, error)
	ListMyRides(ctx context.Context, userID primitive.ObjectID) ([]*RideView, error)
}

// RideView is the populated projection returned to clients: member ids
// resolved to name/contact summaries, membership flags computed relative
// to the requesting user.
type RideView struct {
	RideID                string               `json:"rideId"`
	Pickup                models.GeoPoint      `json:"pickup"`
	Drop                  models.GeoPoint      `json:"drop"`
	Status                models.RideStatus    `json:"status"`
	TotalFare             float64              `json:"totalFare"`
	MemberShare           float64              `json:"memberShare"`
	MembersCount          int                  `json:"membersCount"`
	CurrentMembersCount   int                  `json:"currentMembersCount"`
	RideDetailsScreenshot string               `json:"rideDetailsScreenshot,omitempty"`
	Rider                 models.UserSummary   `json:"rider"`
	Members               []models.UserSummary `json:"members"`
	AcceptedBy            *models.UserSummary  `json:"acceptedBy,omitempty"`
	ChatroomID            string               `json:"chatroomId,omitempty"`
	IsCreator             bool                 `json:"isCreator"`
	IsMember              bool                 `json:"isMember"`
	Role                  string               `json:"role,omitempty"`
	CreatedAt             time.Time            `json:"createdAt"`
	AcceptedAt            *time.Time           `json:"acceptedAt,omitempty"`
	StartedAt             *time.Time           `json:"startedAt,omitempty"`
	CompletedAt           *time.Time           `json:"completedAt,omitempty"`
}

type rideService struct {
	rideRepo     interfaces.RideRepository
	chatroomRepo interfaces.ChatroomRepository
	userRepo     interfaces.UserRepository
	events       EventPublisher
	logger       *logger.Logger
}

func NewRideService(
	rideRepo interfaces.RideRepository,
	chatroomRepo interfaces.ChatroomRepository,
	userRepo interfaces.UserRepository,
	events EventPublisher,
	log *logger.Logger,
) RideService {
	return &rideService{
		rideRepo:     rideRepo,
		chatroomRepo: chatroomRepo,
		userRepo:     userRepo,
		events:       events,
		logger:       log,
	}
}

// CreateRide opens a new shared ride with the requester as its first
// member and announces it to every connected client.
func (s *rideService) CreateRide(ctx context.Context, riderID primitive.ObjectID, request *validators.CreateRideRequest) (*RideView, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	membersCount := int(request.MembersCount)
	if membersCount < utils.MinMembersCount {
		membersCount = utils.DefaultMembersCount
	}

	ride := &models.Ride{
		RiderID: riderID,
		Pickup: models.GeoPoint{
			Lat:     float64(request.Pickup.Lat),
			Lng:     float64(request.Pickup.Lng),
			Address: request.Pickup.Address,
		},
		Drop: models.GeoPoint{
			Lat:     float64(request.Drop.Lat),
			Lng:     float64(request.Drop.Lng),
			Address: request.Drop.Address,
		},
		Status:                models.RideStatusAwaitingMemberJoin,
		TotalFare:             float64(request.TotalFare),
		MemberShare:           float64(request.MemberShare),
		MembersCount:          membersCount,
		Members:               []primitive.ObjectID{riderID},
		RideDetailsScreenshot: request.RideDetailsScreenshot,
	}

	if err := utils.ValidateStruct(ride); err != nil {
		return nil, fmt.Errorf("invalid ride: %w", err)
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	// Announce from the persisted record, never the raw request, so
	// notification text cannot be spoofed by unvalidated fields.
	s.events.Publish(EventNewSharedRide, NewSharedRidePayload{
		RideID:                ride.ID.Hex(),
		Pickup:                ride.Pickup,
		Drop:                  ride.Drop,
		MemberShare:           ride.MemberShare,
		MembersCount:          ride.MembersCount,
		TotalFare:             ride.TotalFare,
		RideDetailsScreenshot: ride.RideDetailsScreenshot,
		Notification: Notification{
			Title:  "New Ride Available!",
			Body:   fmt.Sprintf("A new ride from %s to %s is available. Share: ₹%.2f", ride.Pickup.Address, ride.Drop.Address, ride.MemberShare),
			RideID: ride.ID.Hex(),
		},
	})

	return s.buildRideView(ctx, ride, riderID), nil
}

// JoinRide claims the ride's single open slot first-come-first-serve.
// The claim is one atomic conditional update; the storage engine's
// per-document atomicity is the only serialization point, so among
// concurrent attempts exactly one succeeds. Chatroom provisioning and
// the broadcast are best-effort follow-ups: the claim is the
// irrevocable act and is never rolled back.
func (s *rideService) JoinRide(ctx context.Context, rideID, userID primitive.ObjectID) (*RideView, error) {
	ride, err := s.rideRepo.Accept(ctx, rideID, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotAccepted) {
			return nil, s.classifyJoinFailure(ctx, rideID, userID)
		}
		return nil, err
	}

	s.logger.WithRideID(ride.ID).WithUserID(userID).Debug("ride slot claimed")

	chatroom := &models.Chatroom{
		RideID:       ride.ID,
		Participants: ride.Members,
		IsActive:     true,
	}
	if err := s.chatroomRepo.Create(ctx, chatroom); err != nil {
		// The slot is claimed; the ride stays accepted without a chatroom
		// and the gap shows up as a missing chatroomId on later reads.
		s.logger.WithRideID(ride.ID).WithError(err).Error("chatroom provisioning failed after ride claim")
		return s.buildRideView(ctx, ride, userID), nil
	}

	if err := s.rideRepo.SetChatroom(ctx, ride.ID, chatroom.ID); err != nil {
		s.logger.WithRideID(ride.ID).WithError(err).Error("failed to link chatroom to ride")
	} else {
		ride.ChatroomID = &chatroom.ID
	}

	s.events.Publish(EventRideMemberJoined, RideMemberJoinedPayload{
		RideID:         ride.ID.Hex(),
		NewMemberID:    userID.Hex(),
		NewStatus:      string(ride.Status),
		CurrentMembers: len(ride.Members),
		ChatroomID:     chatroom.ID.Hex(),
		Notification: Notification{
			Title:  "Ride Accepted!",
			Body:   "Someone has accepted your ride request. A chatroom has been created.",
			RideID: ride.ID.Hex(),
		},
	})

	view := s.buildRideView(ctx, ride, userID)
	view.ChatroomID = chatroom.ID.Hex()
	return view, nil
}

// classifyJoinFailure reads the ride after a failed claim to report why
// the predicate did not hold. Diagnostic only: the read never feeds back
// into the mutation, so the race stays confined to the atomic update.
func (s *rideService) classifyJoinFailure(ctx context.Context, rideID, userID primitive.ObjectID) error {
	existing, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrRideNotFound
		}
		return err
	}

	if existing.HasMember(userID) {
		return ErrAlreadyMember
	}
	if existing.AcceptedBy != nil {
		return ErrRideAlreadyClaimed
	}
	if existing.Status != models.RideStatusAwaitingMemberJoin {
		return ErrRideNotOpen
	}
	return ErrJoinConflict
}

func (s *rideService) ListAvailableRides(ctx context.Context, userID primitive.ObjectID) ([]*RideView, error) {
	rides, err := s.rideRepo.GetOpenRides(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*RideView, 0, len(rides))
	for _, ride := range rides {
		if ride.IsFull() {
			continue
		}
		views = append(views, s.buildRideView(ctx, ride, userID))
	}

	return views, nil
}

func (s *rideService) GetRide(ctx context.Context, rideID, userID primitive.ObjectID, isAdmin bool) (*RideView, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	if !ride.CanView(userID) && !isAdmin {
		return nil, ErrRideAccessDenied
	}

	return s.buildRideView(ctx, ride, userID), nil
}

func (s *rideService) ListMyRides(ctx context.Context, userID primitive.ObjectID) ([]*RideView, error) {
	rides, err := s.rideRepo.GetByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*RideView, 0, len(rides))
	for _, ride := range rides {
		views = append(views, s.buildRideView(ctx, ride, userID))
	}

	return views, nil
}

// buildRideView resolves member ids into user summaries. A user that
// has disappeared from the identity store keeps a bare id entry rather
// than failing the whole read.
func (s *rideService) buildRideView(ctx context.Context, ride *models.Ride, viewerID primitive.ObjectID) *RideView {
	ids := make([]primitive.ObjectID, 0, len(ride.Members)+2)
	ids = append(ids, ride.RiderID)
	ids = append(ids, ride.Members...)
	if ride.AcceptedBy != nil {
		ids = append(ids, *ride.AcceptedBy)
	}

	summaries := s.resolveUsers(ctx, ids)

	members := make([]models.UserSummary, 0, len(ride.Members))
	for _, id := range ride.Members {
		members = append(members, summaries[id])
	}

	view := &RideView{
		RideID:                ride.ID.Hex(),
		Pickup:                ride.Pickup,
		Drop:                  ride.Drop,
		Status:                ride.Status,
		TotalFare:             ride.TotalFare,
		MemberShare:           ride.MemberShare,
		MembersCount:          ride.MembersCount,
		CurrentMembersCount:   len(ride.Members),
		RideDetailsScreenshot: ride.RideDetailsScreenshot,
		Rider:                 summaries[ride.RiderID],
		Members:               members,
		IsCreator:             ride.RiderID == viewerID,
		IsMember:              ride.HasMember(viewerID),
		CreatedAt:             ride.CreatedAt,
		AcceptedAt:            ride.AcceptedAt,
		StartedAt:             ride.StartedAt,
		CompletedAt:           ride.CompletedAt,
	}

	if ride.AcceptedBy != nil {
		accepted := summaries[*ride.AcceptedBy]
		view.AcceptedBy = &accepted
	}
	if ride.ChatroomID != nil {
		view.ChatroomID = ride.ChatroomID.Hex()
	}
	if view.IsCreator {
		view.Role = "creator"
	} else if view.IsMember {
		view.Role = "member"
	}

	return view
}

func (s *rideService) resolveUsers(ctx context.Context, ids []primitive.ObjectID) map[primitive.ObjectID]models.UserSummary {
	summaries := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	for _, id := range ids {
		summaries[id] = models.UserSummary{ID: id}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.WithError(err).Warn("failed to resolve ride participants")
		return summaries
	}

	for _, user := range users {
		summaries[user.ID] = user.Summary()
	}

	return summaries
}
