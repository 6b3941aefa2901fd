package watch

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Имена событий, уходящих клиентам. Протокол зафиксирован, менять
// нельзя: на эти строки подписан плеер.
const (
	EventUnauthorized    = "unauthorized"
	EventSetRole         = "set_role"
	EventKicked          = "kicked"
	EventPasswordUpdated = "password_updated"
)

// Имена структурных команд. Всё остальное — непрозрачная ретрансляция.
const (
	cmdGetRole      = "get_role"
	cmdTransferHost = "transfer_host"
	cmdKick         = "kick"
	cmdSetPassword  = "set_password"
)

// Command — закрытое объединение команд комнаты. Полезная нагрузка
// разбирается один раз на границе; ретранслируемые команды несут
// сырой payload и не интерпретируются.
type Command interface {
	isCommand()
}

type GetRole struct{}

type TransferHost struct {
	UserID uuid.UUID
}

type Kick struct {
	UserID uuid.UUID
}

type SetPassword struct {
	Password string
}

type Generic struct {
	Name string
	Data json.RawMessage
}

func (GetRole) isCommand()      {}
func (TransferHost) isCommand() {}
func (Kick) isCommand()         {}
func (SetPassword) isCommand()  {}
func (Generic) isCommand()      {}

type userIDArgs struct {
	UserID uuid.UUID `json:"userId"`
}

type passwordArgs struct {
	Password string `json:"password"`
}

// ParseCommand разбирает имя команды и её payload в вариант Command.
func ParseCommand(name string, data json.RawMessage) (Command, error) {
	switch name {
	case cmdGetRole:
		return GetRole{}, nil

	case cmdTransferHost:
		var args userIDArgs
		if err := json.Unmarshal(data, &args); err != nil {
			return nil, ErrInvalidMessage
		}
		if args.UserID == uuid.Nil {
			return nil, ErrInvalidMessage
		}
		return TransferHost{UserID: args.UserID}, nil

	case cmdKick:
		var args userIDArgs
		if err := json.Unmarshal(data, &args); err != nil {
			return nil, ErrInvalidMessage
		}
		if args.UserID == uuid.Nil {
			return nil, ErrInvalidMessage
		}
		return Kick{UserID: args.UserID}, nil

	case cmdSetPassword:
		var args passwordArgs
		if len(data) > 0 {
			if err := json.Unmarshal(data, &args); err != nil {
				return nil, ErrInvalidMessage
			}
		}
		return SetPassword{Password: args.Password}, nil

	default:
		if name == "" {
			return nil, ErrInvalidMessage
		}
		return Generic{Name: name, Data: data}, nil
	}
}
