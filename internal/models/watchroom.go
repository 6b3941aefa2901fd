package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role описывает роль участника комнаты. Ровно два значения:
// хост управляет воспроизведением и модерацией, остальные — гости.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

func (r Role) Valid() bool {
	return r == RoleHost || r == RoleGuest
}

// WatchRoom — комната совместного просмотра. Живет только пока в ней
// есть участники: последний вышедший удаляет комнату.
type WatchRoom struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomCode     string    `gorm:"uniqueIndex;not null"`
	IsPrivate    bool      `gorm:"not null;default:false"`
	PasswordHash string    // пустая строка у публичных комнат
	CreatedAt    time.Time

	// Связи
	Members []WatchRoomMember `gorm:"foreignKey:WatchRoomID"`
}

func (r *WatchRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// WatchRoomMember — одно активное соединение внутри комнаты.
// Автоинкрементный ID задает порядок вступления, по нему выбирается
// новый хост при уходе старого.
type WatchRoomMember struct {
	ID           uint      `gorm:"primaryKey"`
	ConnectionID string    `gorm:"uniqueIndex;not null"`
	WatchRoomID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Role         Role      `gorm:"type:text;not null;check:role IN ('host','guest')"`
	// Идентичность участника; только ссылка, владение у таблицы users
	UserID uuid.UUID `gorm:"type:uuid;not null"`

	// Связи
	WatchRoom WatchRoom `gorm:"foreignKey:WatchRoomID"`
}
