package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/backstagepass/internal/models"
	"gorm.io/gorm"
)

// Методы комнат совместного просмотра. Отсутствие записи везде
// возвращается как (nil, nil): для координатора это штатный исход,
// а не ошибка.

// RoomByCode возвращает комнату с участниками, отсортированными по
// порядку вступления (по нему детерминированно выбирается новый хост).
func (d *Database) RoomByCode(code string) (*models.WatchRoom, error) {
	var room models.WatchRoom
	err := d.db.
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&room, "room_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (d *Database) CreateRoom(room *models.WatchRoom) error {
	return d.db.Create(room).Error
}

// DeleteRoom удаляет комнату вместе с оставшимися записями участников.
func (d *Database) DeleteRoom(id uuid.UUID) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.WatchRoomMember{}, "watch_room_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.WatchRoom{}, "id = ?", id).Error
	})
}

func (d *Database) AddMember(member *models.WatchRoomMember) error {
	return d.db.Create(member).Error
}

// MemberByConnection ищет участника по соединению вместе с его комнатой.
// Нужен обработчику обрыва: код комнаты оборванное соединение сообщить
// не может.
func (d *Database) MemberByConnection(connectionID string) (*models.WatchRoomMember, error) {
	var member models.WatchRoomMember
	err := d.db.
		Preload("WatchRoom").
		First(&member, "connection_id = ?", connectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (d *Database) RemoveMember(id uint) error {
	return d.db.Delete(&models.WatchRoomMember{}, "id = ?", id).Error
}

func (d *Database) SetMemberRole(id uint, role models.Role) error {
	return d.db.Model(&models.WatchRoomMember{}).Where("id = ?", id).Update("role", role).Error
}

func (d *Database) SetRoomPassword(roomID uuid.UUID, private bool, passwordHash string) error {
	return d.db.Model(&models.WatchRoom{}).Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"is_private":    private,
			"password_hash": passwordHash,
		}).Error
}

// PublicRoomCodes возвращает коды всех публичных комнат.
func (d *Database) PublicRoomCodes() ([]string, error) {
	var codes []string
	err := d.db.Model(&models.WatchRoom{}).
		Where("is_private = ?", false).
		Pluck("room_code", &codes).Error
	return codes, err
}

func (d *Database) RoomExists(code string) (bool, error) {
	var count int64
	err := d.db.Model(&models.WatchRoom{}).Where("room_code = ?", code).Count(&count).Error
	return count > 0, err
}

// RoomUserIDs возвращает идентификаторы пользователей в комнате.
func (d *Database) RoomUserIDs(code string) ([]uuid.UUID, error) {
	room, err := d.RoomByCode(code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(room.Members))
	for _, m := range room.Members {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}
