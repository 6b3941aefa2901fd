package watch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/thereayou/backstagepass/internal/models"
)

// Coordinator управляет жизненным циклом участников комнат: вход,
// выход, обрыв, передача роли хоста и ретрансляция команд плеера.
//
// Все операции над одной комнатой сериализуются её мьютексом: выбор
// хоста, повышение и удаление пустой комнаты — это
// read-modify-write по общему составу участников, изоляции хранилища
// тут недостаточно. Разные комнаты обрабатываются параллельно.
// Координатор рассчитан на один процесс-владелец всех комнат.
type Coordinator struct {
	store  RoomStore
	hub    Pusher
	ids    Identity
	hasher PasswordHasher

	mu    sync.Mutex
	locks map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

type rolePayload struct {
	Role models.Role `json:"role"`
}

type messagePayload struct {
	Message string `json:"message"`
}

type successPayload struct {
	Success bool `json:"success"`
}

func NewCoordinator(store RoomStore, hub Pusher, ids Identity, hasher PasswordHasher) *Coordinator {
	return &Coordinator{
		store:  store,
		hub:    hub,
		ids:    ids,
		hasher: hasher,
		locks:  make(map[string]*roomLock),
	}
}

// lockRoom берет эксклюзивную секцию комнаты. Возвращает release;
// запись о замке живет, пока на нее кто-то ссылается.
func (c *Coordinator) lockRoom(code string) func() {
	c.mu.Lock()
	l, ok := c.locks[code]
	if !ok {
		l = &roomLock{}
		c.locks[code] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, code)
		}
		c.mu.Unlock()
	}
}

// Join вводит соединение в комнату. Первый вошедший под новым кодом
// создает комнату и задает её приватность; первый участник пустой
// комнаты становится хостом. Возврат ErrUnauthorized означает, что
// соединение надо оборвать.
func (c *Coordinator) Join(connectionID, roomCode, password, credential string) error {
	if credential == "" {
		c.hub.SendToConnection(connectionID, EventUnauthorized, messagePayload{Message: "Missing access token"})
		return ErrUnauthorized
	}

	user, err := c.ids.Resolve(context.Background(), credential)
	if err != nil {
		logrus.WithError(err).Error("identity resolve failed")
		return err
	}
	if user == nil {
		c.hub.SendToConnection(connectionID, EventUnauthorized, messagePayload{Message: "Invalid or expired access token"})
		return ErrUnauthorized
	}

	release := c.lockRoom(roomCode)
	defer release()

	c.hub.AddToGroup(connectionID, roomCode)

	room, err := c.store.RoomByCode(roomCode)
	if err != nil {
		logrus.WithError(err).WithField("room", roomCode).Error("room lookup failed")
		return err
	}

	if room != nil {
		if room.IsPrivate {
			if password == "" {
				c.hub.SendToConnection(connectionID, EventUnauthorized, messagePayload{Message: "Password required"})
				return ErrUnauthorized
			}
			if !c.hasher.Verify(password, room.PasswordHash) {
				c.hub.SendToConnection(connectionID, EventUnauthorized, messagePayload{Message: "Incorrect password"})
				return ErrUnauthorized
			}
		}
	} else {
		// Новая комната: приватность задается наличием пароля у
		// первого вошедшего
		room = &models.WatchRoom{
			RoomCode:  roomCode,
			CreatedAt: time.Now(),
			IsPrivate: password != "",
		}
		if room.IsPrivate {
			hash, err := c.hasher.Hash(password)
			if err != nil {
				logrus.WithError(err).Error("room password hash failed")
				return err
			}
			room.PasswordHash = hash
		}

		if err := c.store.CreateRoom(room); err != nil {
			logrus.WithError(err).WithField("room", roomCode).Error("room create failed")
			return err
		}
	}

	// Первый участник — хост
	role := models.RoleGuest
	if len(room.Members) == 0 {
		role = models.RoleHost
	}

	member := &models.WatchRoomMember{
		ConnectionID: connectionID,
		WatchRoomID:  room.ID,
		Role:         role,
		UserID:       user.ID,
	}
	if err := c.store.AddMember(member); err != nil {
		logrus.WithError(err).WithField("room", roomCode).Error("member insert failed")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"room": roomCode,
		"user": user.ID,
		"role": role,
	}).Info("member joined")

	return nil
}

// Leave выводит соединение из комнаты. Повторный выход и выход не
// участника — no-op.
func (c *Coordinator) Leave(connectionID, roomCode string) {
	c.hub.RemoveFromGroup(connectionID, roomCode)

	release := c.lockRoom(roomCode)
	defer release()

	room, err := c.store.RoomByCode(roomCode)
	if err != nil {
		logrus.WithError(err).WithField("room", roomCode).Error("room lookup failed")
		return
	}
	if room == nil {
		return
	}

	c.removeAndReconcile(room, connectionID)
}

// Disconnect обрабатывает обрыв соединения. Код комнаты оборванное
// соединение сообщить не может, поэтому он берется из записи
// участника. Гонка с явным Leave сходится к no-op: запись уже удалена.
func (c *Coordinator) Disconnect(connectionID string) {
	member, err := c.store.MemberByConnection(connectionID)
	if err != nil {
		logrus.WithError(err).Error("member lookup failed")
		return
	}
	if member == nil {
		return
	}

	roomCode := member.WatchRoom.RoomCode

	release := c.lockRoom(roomCode)
	defer release()

	// Перечитываем под замком: состав мог измениться
	room, err := c.store.RoomByCode(roomCode)
	if err != nil {
		logrus.WithError(err).WithField("room", roomCode).Error("room lookup failed")
		return
	}
	if room == nil {
		return
	}

	c.removeAndReconcile(room, connectionID)
}

// removeAndReconcile удаляет участника и восстанавливает инварианты
// комнаты: ровно один хост пока комната непуста, пустая комната
// удаляется. Вызывается только под замком комнаты.
func (c *Coordinator) removeAndReconcile(room *models.WatchRoom, connectionID string) {
	var leaving *models.WatchRoomMember
	remaining := make([]models.WatchRoomMember, 0, len(room.Members))
	for i := range room.Members {
		if room.Members[i].ConnectionID == connectionID {
			leaving = &room.Members[i]
		} else {
			remaining = append(remaining, room.Members[i])
		}
	}
	if leaving == nil {
		return
	}

	if err := c.store.RemoveMember(leaving.ID); err != nil {
		logrus.WithError(err).WithField("room", room.RoomCode).Error("member remove failed")
		return
	}

	if leaving.Role == models.RoleHost && len(remaining) > 0 {
		// Новый хост — самый ранний из оставшихся
		next := remaining[0]
		if err := c.store.SetMemberRole(next.ID, models.RoleHost); err != nil {
			logrus.WithError(err).WithField("room", room.RoomCode).Error("host promotion failed")
			return
		}
		c.hub.SendToConnection(next.ConnectionID, EventSetRole, rolePayload{Role: models.RoleHost})

		logrus.WithFields(logrus.Fields{
			"room": room.RoomCode,
			"user": next.UserID,
		}).Info("host promoted")
	}

	if len(remaining) == 0 {
		if err := c.store.DeleteRoom(room.ID); err != nil {
			logrus.WithError(err).WithField("room", room.RoomCode).Error("room delete failed")
			return
		}
		logrus.WithField("room", room.RoomCode).Info("room deleted")
	}
}

// Command обрабатывает команду участника. Не-участники, чужие и
// недопустимые команды молча отбрасываются: отправителю не сообщается
// даже о существовании комнаты.
func (c *Coordinator) Command(connectionID, roomCode string, cmd Command) {
	release := c.lockRoom(roomCode)
	defer release()

	room, err := c.store.RoomByCode(roomCode)
	if err != nil {
		logrus.WithError(err).WithField("room", roomCode).Error("room lookup failed")
		return
	}
	if room == nil {
		return
	}

	member := findByConnection(room, connectionID)
	if member == nil {
		return
	}

	switch v := cmd.(type) {
	case GetRole:
		// Всегда разрешена, отвечает только отправителю
		c.hub.SendToConnection(connectionID, EventSetRole, rolePayload{Role: member.Role})

	case TransferHost:
		if member.Role != models.RoleHost {
			return
		}
		target := findByUser(room, v.UserID)
		if target == nil || target.ConnectionID == connectionID {
			return
		}

		if err := c.store.SetMemberRole(member.ID, models.RoleGuest); err != nil {
			logrus.WithError(err).WithField("room", roomCode).Error("host demotion failed")
			return
		}
		if err := c.store.SetMemberRole(target.ID, models.RoleHost); err != nil {
			logrus.WithError(err).WithField("room", roomCode).Error("host promotion failed")
			return
		}

		c.hub.SendToConnection(target.ConnectionID, EventSetRole, rolePayload{Role: models.RoleHost})
		c.hub.SendToConnection(connectionID, EventSetRole, rolePayload{Role: models.RoleGuest})

	case Kick:
		if member.Role != models.RoleHost {
			return
		}
		target := findByUser(room, v.UserID)
		if target == nil || target.ConnectionID == connectionID {
			return
		}

		if err := c.store.RemoveMember(target.ID); err != nil {
			logrus.WithError(err).WithField("room", roomCode).Error("kick failed")
			return
		}

		c.hub.SendToConnection(target.ConnectionID, EventKicked, messagePayload{Message: "You were kicked by the host"})
		// Соединение выкинутого живет дальше, но рассылки комнаты
		// больше не получает; закрыть его — забота клиента
		c.hub.RemoveFromGroup(target.ConnectionID, roomCode)

	case SetPassword:
		if member.Role != models.RoleHost {
			return
		}

		private := v.Password != ""
		hash := ""
		if private {
			var err error
			hash, err = c.hasher.Hash(v.Password)
			if err != nil {
				logrus.WithError(err).Error("room password hash failed")
				return
			}
		}

		if err := c.store.SetRoomPassword(room.ID, private, hash); err != nil {
			logrus.WithError(err).WithField("room", roomCode).Error("password update failed")
			return
		}

		c.hub.SendToConnection(connectionID, EventPasswordUpdated, successPayload{Success: true})

	case Generic:
		// Команды плеера ретранслирует только хост, всем кроме себя.
		// Payload не интерпретируется.
		if member.Role != models.RoleHost {
			return
		}
		c.hub.SendToGroupExcept(roomCode, connectionID, v.Name, v.Data)
	}
}

func findByConnection(room *models.WatchRoom, connectionID string) *models.WatchRoomMember {
	for i := range room.Members {
		if room.Members[i].ConnectionID == connectionID {
			return &room.Members[i]
		}
	}
	return nil
}

func findByUser(room *models.WatchRoom, userID uuid.UUID) *models.WatchRoomMember {
	for i := range room.Members {
		if room.Members[i].UserID == userID {
			return &room.Members[i]
		}
	}
	return nil
}
