package watch

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/backstagepass/internal/models"
)

// RoomStore — контракт хранилища комнат. Единственный писатель —
// координатор. Отсутствие комнаты или участника возвращается как
// (nil, nil), не как ошибка.
type RoomStore interface {
	// RoomByCode возвращает комнату с участниками, упорядоченными
	// по вступлению (первый в списке — кандидат в хосты).
	RoomByCode(code string) (*models.WatchRoom, error)
	CreateRoom(room *models.WatchRoom) error
	DeleteRoom(id uuid.UUID) error

	AddMember(member *models.WatchRoomMember) error
	// MemberByConnection возвращает участника вместе с комнатой.
	MemberByConnection(connectionID string) (*models.WatchRoomMember, error)
	RemoveMember(id uint) error
	SetMemberRole(id uint, role models.Role) error

	SetRoomPassword(roomID uuid.UUID, private bool, passwordHash string) error
}

// Identity проверяет учетные данные при входе в комнату.
// (nil, nil) означает "активной сессии нет".
type Identity interface {
	Resolve(ctx context.Context, credential string) (*models.User, error)
}

// PasswordHasher — соленое хеширование паролей комнат со сравнением
// за постоянное время.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Pusher — транспортный примитив доставки: именованные группы
// соединений и адресная отправка событий.
type Pusher interface {
	AddToGroup(connectionID, group string)
	RemoveFromGroup(connectionID, group string)
	SendToConnection(connectionID, event string, data interface{})
	SendToGroupExcept(group, excludedConnectionID, event string, data interface{})
}
