package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"running-rooms-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUser(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	FindAdmin(ctx context.Context, username string) (*model.Admin, error)

	CreateBuilding(ctx context.Context, building *model.Building) error
	ListBuildings(ctx context.Context, ownerID string) ([]model.Building, error)
	GetBuilding(ctx context.Context, ownerID, buildingID string) (*model.Building, error)
	SaveBuilding(ctx context.Context, building *model.Building) error
	DeleteBuilding(ctx context.Context, ownerID, buildingID string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// CreateUser inserts a user after checking the username is free.
func (s *gormStore) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUsernameFree(tx, &model.User{}, user.Username); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return translateCreateErr("user", err)
		}
		return nil
	})
}

// FindUser looks a user up by exact username.
func (s *gormStore) FindUser(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateLookupErr("user", err)
	}
	return &user, nil
}

// ListUsers returns every registered user in registration order.
func (s *gormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateAdmin inserts an admin after checking the username is free.
func (s *gormStore) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUsernameFree(tx, &model.Admin{}, admin.Username); err != nil {
			return err
		}
		if err := tx.Create(admin).Error; err != nil {
			return translateCreateErr("admin", err)
		}
		return nil
	})
}

// FindAdmin looks an admin up by exact username.
func (s *gormStore) FindAdmin(ctx context.Context, username string) (*model.Admin, error) {
	var admin model.Admin
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, translateLookupErr("admin", err)
	}
	return &admin, nil
}

// CreateBuilding inserts a building together with its rooms and logs.
func (s *gormStore) CreateBuilding(ctx context.Context, building *model.Building) error {
	if err := s.db.WithContext(ctx).Create(building).Error; err != nil {
		return fmt.Errorf("failed to create building %q: %w", building.Name, err)
	}
	return nil
}

// ListBuildings returns every building owned by ownerID with rooms and logs
// in sequence order.
func (s *gormStore) ListBuildings(ctx context.Context, ownerID string) ([]model.Building, error) {
	var buildings []model.Building
	err := withDocument(s.db.WithContext(ctx)).
		Where("owner_id = ?", ownerID).
		Order("created_at, id").
		Find(&buildings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings for user %s: %w", ownerID, err)
	}
	return buildings, nil
}

// GetBuilding loads a single building document scoped to its owner.
func (s *gormStore) GetBuilding(ctx context.Context, ownerID, buildingID string) (*model.Building, error) {
	var building model.Building
	err := withDocument(s.db.WithContext(ctx)).
		Where("id = ? AND owner_id = ?", buildingID, ownerID).
		First(&building).Error
	if err != nil {
		return nil, translateLookupErr("building", err)
	}
	return &building, nil
}

// SaveBuilding writes a whole building document back. Rooms and logs that
// are not yet stored are inserted, stored ones are updated in place; nothing
// is deleted. Concurrent saves of the same building overwrite each other.
func (s *gormStore) SaveBuilding(ctx context.Context, building *model.Building) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Building{}).
			Where("id = ? AND owner_id = ?", building.ID, building.OwnerID).
			Updates(map[string]any{"name": building.Name, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return fmt.Errorf("failed to update building %s: %w", building.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		var roomIDs []string
		if err := tx.Model(&model.Room{}).Where("building_id = ?", building.ID).Pluck("id", &roomIDs).Error; err != nil {
			return fmt.Errorf("failed to fetch rooms of building %s: %w", building.ID, err)
		}
		storedRooms := toSet(roomIDs)

		for i := range building.Rooms {
			room := &building.Rooms[i]
			room.BuildingID = building.ID
			if err := saveRoom(tx, room, storedRooms); err != nil {
				return err
			}
		}

		allRoomIDs := make([]string, 0, len(building.Rooms))
		for _, r := range building.Rooms {
			allRoomIDs = append(allRoomIDs, r.ID)
		}
		var logIDs []string
		if len(allRoomIDs) > 0 {
			if err := tx.Model(&model.StayLog{}).Where("room_id IN ?", allRoomIDs).Pluck("id", &logIDs).Error; err != nil {
				return fmt.Errorf("failed to fetch logs of building %s: %w", building.ID, err)
			}
		}
		storedLogs := toSet(logIDs)

		for i := range building.Rooms {
			room := &building.Rooms[i]
			for j := range room.Logs {
				l := &room.Logs[j]
				l.RoomID = room.ID
				if err := saveLog(tx, l, storedLogs); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// DeleteBuilding removes a building and everything under it.
func (s *gormStore) DeleteBuilding(ctx context.Context, ownerID, buildingID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var building model.Building
		if err := tx.Select("id").Where("id = ? AND owner_id = ?", buildingID, ownerID).First(&building).Error; err != nil {
			return translateLookupErr("building", err)
		}

		var roomIDs []string
		if err := tx.Model(&model.Room{}).Where("building_id = ?", buildingID).Pluck("id", &roomIDs).Error; err != nil {
			return fmt.Errorf("failed to fetch rooms of building %s: %w", buildingID, err)
		}
		if len(roomIDs) > 0 {
			if err := tx.Where("room_id IN ?", roomIDs).Delete(&model.StayLog{}).Error; err != nil {
				return fmt.Errorf("failed to delete logs of building %s: %w", buildingID, err)
			}
			if err := tx.Where("building_id = ?", buildingID).Delete(&model.Room{}).Error; err != nil {
				return fmt.Errorf("failed to delete rooms of building %s: %w", buildingID, err)
			}
		}
		if err := tx.Where("id = ?", buildingID).Delete(&model.Building{}).Error; err != nil {
			return fmt.Errorf("failed to delete building %s: %w", buildingID, err)
		}
		return nil
	})
}

// --- helpers ---

func withDocument(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Rooms.Logs", func(db *gorm.DB) *gorm.DB { return db.Order("seq") })
}

func saveRoom(tx *gorm.DB, room *model.Room, stored map[string]bool) error {
	if room.ID != "" && stored[room.ID] {
		err := tx.Model(&model.Room{}).Where("id = ?", room.ID).Updates(map[string]any{
			"room_number": room.RoomNumber,
			"room_name":   room.RoomName,
			"position":    room.Position,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update room %s: %w", room.ID, err)
		}
		return nil
	}
	if err := tx.Omit("Logs").Create(room).Error; err != nil {
		return fmt.Errorf("failed to add room %d: %w", room.RoomNumber, err)
	}
	return nil
}

func saveLog(tx *gorm.DB, l *model.StayLog, stored map[string]bool) error {
	if l.ID != "" && stored[l.ID] {
		err := tx.Model(&model.StayLog{}).Where("id = ?", l.ID).Updates(map[string]any{
			"name":     l.Name,
			"day":      l.Day,
			"in_time":  l.InTime,
			"out_day":  l.OutDay,
			"out_time": l.OutTime,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update stay log %s: %w", l.ID, err)
		}
		return nil
	}
	if err := tx.Create(l).Error; err != nil {
		return fmt.Errorf("failed to append stay log for room %s: %w", l.RoomID, err)
	}
	return nil
}

func ensureUsernameFree(tx *gorm.DB, table any, username string) error {
	var count int64
	if err := tx.Model(table).Where("username = ?", username).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return ErrDuplicateUsername
	}
	return nil
}

func translateCreateErr(kind string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateUsername
	}
	return fmt.Errorf("failed to create %s: %w", kind, err)
}

func translateLookupErr(kind string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to load %s: %w", kind, err)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
