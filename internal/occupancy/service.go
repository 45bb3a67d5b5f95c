// Package occupancy manages buildings, rooms and the per-room check-in /
// check-out state machine. Every operation is scoped to the calling user.
package occupancy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"running-rooms-backend/config"
	"running-rooms-backend/internal/model"
	"running-rooms-backend/internal/parse"
	"running-rooms-backend/internal/store"
)

var (
	// ErrInvalidState is the parent of every state machine rejection.
	ErrInvalidState = errors.New("invalid room state")

	// ErrNoOpenStay is returned when a check-out has no open stay to close.
	ErrNoOpenStay = fmt.Errorf("%w: no check-in record found or check-out already logged", ErrInvalidState)

	// ErrRoomOccupied is returned when a check-in targets an occupied room.
	ErrRoomOccupied = fmt.Errorf("%w: room is already occupied", ErrInvalidState)

	// ErrValidation marks a missing or malformed request field.
	ErrValidation = errors.New("validation failed")
)

// RoomDescriptor is one room entry of an update payload.
type RoomDescriptor struct {
	RoomNumber int
	RoomName   string
}

// BuildingUpdate carries the optional fields of an update. A nil Name and
// nil Rooms together are rejected.
type BuildingUpdate struct {
	Name  *string
	Rooms []RoomDescriptor
}

// CheckIn is an arrival.
type CheckIn struct {
	GuestName string
	Day       string
	InTime    string
}

// CheckOut is a departure.
type CheckOut struct {
	Day     string
	OutTime string
}

// Service implements building management and the occupancy state machine.
type Service struct {
	store            store.Store
	allowOverlapping bool
	maxRooms         int
}

// NewService creates the occupancy service. AllowOverlappingCheckIn lets a
// room be checked into while its latest stay is still open.
func NewService(s store.Store, cfg config.OccupancyConfig) *Service {
	maxRooms := cfg.MaxRoomsPerBuilding
	if maxRooms <= 0 {
		maxRooms = config.DefaultMaxRoomsPerBuilding
	}
	return &Service{store: s, allowOverlapping: cfg.AllowOverlappingCheckIn, maxRooms: maxRooms}
}

// CreateBuilding creates a building with roomCount rooms numbered from 1.
// Missing names default to empty.
func (s *Service) CreateBuilding(ctx context.Context, ownerID, name string, roomCount int, roomNames []string) (*model.Building, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: building name is required", ErrValidation)
	}
	if roomCount < 0 {
		roomCount = 0
	}
	if roomCount > s.maxRooms {
		return nil, fmt.Errorf("%w: a building holds at most %d rooms", ErrValidation, s.maxRooms)
	}

	building := &model.Building{
		Name:    name,
		OwnerID: ownerID,
		Rooms:   make([]model.Room, 0, roomCount),
	}
	for i := 0; i < roomCount; i++ {
		var roomName string
		if i < len(roomNames) {
			roomName = roomNames[i]
		}
		building.Rooms = append(building.Rooms, model.Room{
			Position:   i,
			RoomNumber: i + 1,
			RoomName:   roomName,
			Logs:       []model.StayLog{},
		})
	}

	if err := s.store.CreateBuilding(ctx, building); err != nil {
		return nil, err
	}
	return building, nil
}

// ListBuildings returns the caller's buildings.
func (s *Service) ListBuildings(ctx context.Context, ownerID string) ([]model.Building, error) {
	buildings, err := s.store.ListBuildings(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if buildings == nil {
		buildings = []model.Building{}
	}
	return buildings, nil
}

// GetBuilding returns one of the caller's buildings.
func (s *Service) GetBuilding(ctx context.Context, ownerID, buildingID string) (*model.Building, error) {
	return s.store.GetBuilding(ctx, ownerID, buildingID)
}

// UpdateBuilding renames the building and merges room descriptors into it.
// Existing rooms keep their logs and are never removed; unknown room numbers
// are appended.
func (s *Service) UpdateBuilding(ctx context.Context, ownerID, buildingID string, upd BuildingUpdate) (*model.Building, error) {
	if upd.Name == nil && upd.Rooms == nil {
		return nil, fmt.Errorf("%w: name or rooms must be provided", ErrValidation)
	}

	for _, d := range upd.Rooms {
		if d.RoomNumber < 1 {
			return nil, fmt.Errorf("%w: room number must be positive", ErrValidation)
		}
	}

	building, err := s.store.GetBuilding(ctx, ownerID, buildingID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
		building.Name = strings.TrimSpace(*upd.Name)
	}

	for _, d := range upd.Rooms {
		if existing := building.RoomByNumber(d.RoomNumber); existing != nil {
			if d.RoomName != "" {
				existing.RoomName = d.RoomName
			}
			continue
		}
		if len(building.Rooms) >= s.maxRooms {
			return nil, fmt.Errorf("%w: a building holds at most %d rooms", ErrValidation, s.maxRooms)
		}
		building.Rooms = append(building.Rooms, model.Room{
			Position:   nextPosition(building.Rooms),
			RoomNumber: d.RoomNumber,
			RoomName:   d.RoomName,
			Logs:       []model.StayLog{},
		})
	}

	if err := s.store.SaveBuilding(ctx, building); err != nil {
		return nil, err
	}
	return building, nil
}

// DeleteBuilding removes the building with all its rooms and logs.
func (s *Service) DeleteBuilding(ctx context.Context, ownerID, buildingID string) error {
	return s.store.DeleteBuilding(ctx, ownerID, buildingID)
}

// CheckIn appends an open stay to the room.
func (s *Service) CheckIn(ctx context.Context, ownerID, buildingID, roomID string, in CheckIn) (*model.StayLog, error) {
	if err := validateCheckIn(in); err != nil {
		return nil, err
	}

	building, room, err := s.loadRoom(ctx, ownerID, buildingID, roomID)
	if err != nil {
		return nil, err
	}

	if latest := room.Latest(); latest != nil && latest.Open() && !s.allowOverlapping {
		return nil, ErrRoomOccupied
	}

	room.Logs = append(room.Logs, model.StayLog{
		Seq:    nextSeq(room.Logs),
		Name:   strings.TrimSpace(in.GuestName),
		Day:    strings.TrimSpace(in.Day),
		InTime: strings.TrimSpace(in.InTime),
	})

	if err := s.store.SaveBuilding(ctx, building); err != nil {
		return nil, err
	}
	return room.Latest(), nil
}

// CheckOut closes the most recently appended stay of the room. It fails
// without touching anything when that stay is already closed.
func (s *Service) CheckOut(ctx context.Context, ownerID, buildingID, roomID string, out CheckOut) (*model.StayLog, error) {
	if err := validateCheckOut(out); err != nil {
		return nil, err
	}

	building, room, err := s.loadRoom(ctx, ownerID, buildingID, roomID)
	if err != nil {
		return nil, err
	}

	latest := room.Latest()
	if latest == nil || !latest.Open() {
		return nil, ErrNoOpenStay
	}

	day := strings.TrimSpace(out.Day)
	outTime := strings.TrimSpace(out.OutTime)
	latest.OutDay = &day
	latest.OutTime = &outTime

	if err := s.store.SaveBuilding(ctx, building); err != nil {
		return nil, err
	}
	return latest, nil
}

func (s *Service) loadRoom(ctx context.Context, ownerID, buildingID, roomID string) (*model.Building, *model.Room, error) {
	building, err := s.store.GetBuilding(ctx, ownerID, buildingID)
	if err != nil {
		return nil, nil, err
	}
	room := building.RoomByID(roomID)
	if room == nil {
		return nil, nil, store.ErrNotFound
	}
	return building, room, nil
}

func validateCheckIn(in CheckIn) error {
	if strings.TrimSpace(in.GuestName) == "" {
		return fmt.Errorf("%w: guest name is required", ErrValidation)
	}
	if _, err := parse.Timestamp(in.Day, in.InTime); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func validateCheckOut(out CheckOut) error {
	if _, err := parse.Timestamp(out.Day, out.OutTime); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func nextPosition(rooms []model.Room) int {
	next := 0
	for _, r := range rooms {
		if r.Position >= next {
			next = r.Position + 1
		}
	}
	return next
}

func nextSeq(logs []model.StayLog) int {
	if len(logs) == 0 {
		return 0
	}
	return logs[len(logs)-1].Seq + 1
}
