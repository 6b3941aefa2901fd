package database

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/backstagepass/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return NewDatabase(db)
}

func addRoom(t *testing.T, d *Database, code string, private bool) *models.WatchRoom {
	t.Helper()
	room := &models.WatchRoom{
		RoomCode:  code,
		IsPrivate: private,
		CreatedAt: time.Now(),
	}
	require.NoError(t, d.CreateRoom(room))
	return room
}

func addMember(t *testing.T, d *Database, room *models.WatchRoom, conn string, role models.Role) *models.WatchRoomMember {
	t.Helper()
	m := &models.WatchRoomMember{
		ConnectionID: conn,
		WatchRoomID:  room.ID,
		Role:         role,
		UserID:       uuid.New(),
	}
	require.NoError(t, d.AddMember(m))
	return m
}

func TestRoomByCodeMissing(t *testing.T) {
	d := newTestDB(t)

	room, err := d.RoomByCode("nope")
	require.NoError(t, err)
	assert.Nil(t, room, "missing room is not an error")
}

func TestRoomByCodeOrdersMembersByJoin(t *testing.T) {
	d := newTestDB(t)
	room := addRoom(t, d, "r1", false)

	addMember(t, d, room, "first", models.RoleHost)
	addMember(t, d, room, "second", models.RoleGuest)
	addMember(t, d, room, "third", models.RoleGuest)

	got, err := d.RoomByCode("r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Members, 3)
	assert.Equal(t, "first", got.Members[0].ConnectionID)
	assert.Equal(t, "second", got.Members[1].ConnectionID)
	assert.Equal(t, "third", got.Members[2].ConnectionID)
}

func TestMemberByConnectionLoadsRoom(t *testing.T) {
	d := newTestDB(t)
	room := addRoom(t, d, "r1", false)
	addMember(t, d, room, "c1", models.RoleHost)

	m, err := d.MemberByConnection("c1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "r1", m.WatchRoom.RoomCode)
	assert.Equal(t, models.RoleHost, m.Role)

	m, err = d.MemberByConnection("ghost")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestRemoveMemberAndSetRole(t *testing.T) {
	d := newTestDB(t)
	room := addRoom(t, d, "r1", false)
	m1 := addMember(t, d, room, "c1", models.RoleHost)
	m2 := addMember(t, d, room, "c2", models.RoleGuest)

	require.NoError(t, d.RemoveMember(m1.ID))
	require.NoError(t, d.SetMemberRole(m2.ID, models.RoleHost))

	got, err := d.RoomByCode("r1")
	require.NoError(t, err)
	require.Len(t, got.Members, 1)
	assert.Equal(t, "c2", got.Members[0].ConnectionID)
	assert.Equal(t, models.RoleHost, got.Members[0].Role)
}

func TestDeleteRoomRemovesMembers(t *testing.T) {
	d := newTestDB(t)
	room := addRoom(t, d, "r1", false)
	addMember(t, d, room, "c1", models.RoleHost)

	require.NoError(t, d.DeleteRoom(room.ID))

	got, err := d.RoomByCode("r1")
	require.NoError(t, err)
	assert.Nil(t, got)

	m, err := d.MemberByConnection("c1")
	require.NoError(t, err)
	assert.Nil(t, m, "members go away with the room")
}

func TestSetRoomPassword(t *testing.T) {
	d := newTestDB(t)
	room := addRoom(t, d, "r1", false)

	require.NoError(t, d.SetRoomPassword(room.ID, true, "hashed"))

	got, err := d.RoomByCode("r1")
	require.NoError(t, err)
	assert.True(t, got.IsPrivate)
	assert.Equal(t, "hashed", got.PasswordHash)

	require.NoError(t, d.SetRoomPassword(room.ID, false, ""))

	got, err = d.RoomByCode("r1")
	require.NoError(t, err)
	assert.False(t, got.IsPrivate)
	assert.Empty(t, got.PasswordHash)
}

func TestPublicRoomCodes(t *testing.T) {
	d := newTestDB(t)
	addRoom(t, d, "open1", false)
	addRoom(t, d, "secret", true)
	addRoom(t, d, "open2", false)

	codes, err := d.PublicRoomCodes()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"open1", "open2"}, codes)
}

func TestRoomExists(t *testing.T) {
	d := newTestDB(t)
	addRoom(t, d, "r1", false)

	exists, err := d.RoomExists("r1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = d.RoomExists("r2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRoomUserIDs(t *testing.T) {
	d := newTestDB(t)
	room := addRoom(t, d, "r1", false)
	m1 := addMember(t, d, room, "c1", models.RoleHost)
	m2 := addMember(t, d, room, "c2", models.RoleGuest)

	ids, err := d.RoomUserIDs("r1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{m1.UserID, m2.UserID}, ids)

	ids, err = d.RoomUserIDs("missing")
	require.NoError(t, err)
	assert.Nil(t, ids)
}
