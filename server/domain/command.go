package domain

import "strings"

// CommandSentinel marks a payload as a command. Payloads without it are
// ignored by the broker.
const CommandSentinel = '/'

type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandRegister
	CommandIdentify
	CommandPublish
	CommandSubscribe
)

var commandKinds = map[string]CommandKind{
	"reg": CommandRegister,
	"id":  CommandIdentify,
	"pub": CommandPublish,
	"sub": CommandSubscribe,
}

func (k CommandKind) String() string {
	switch k {
	case CommandRegister:
		return "reg"
	case CommandIdentify:
		return "id"
	case CommandPublish:
		return "pub"
	case CommandSubscribe:
		return "sub"
	default:
		return "unknown"
	}
}

// MinArgs is the fewest arguments a handler accepts before acting.
func (k CommandKind) MinArgs() int {
	switch k {
	case CommandRegister:
		return 3
	case CommandIdentify:
		return 2
	case CommandPublish, CommandSubscribe:
		return 1
	default:
		return 0
	}
}

func (k CommandKind) Usage() string {
	switch k {
	case CommandRegister:
		return "usage: /reg <channel_id> <name> <password>"
	case CommandIdentify:
		return "usage: /id <channel_id> <password>"
	case CommandPublish:
		return "usage: /pub <message>"
	case CommandSubscribe:
		return "usage: /sub <publisher_channel_id>"
	default:
		return "commands: /reg /id /pub /sub"
	}
}

type Command struct {
	Kind CommandKind
	Name string
	Args []string
}

// ParseCommand tokenizes payload by whitespace. It reports false when
// payload does not start with CommandSentinel.
func ParseCommand(payload []byte) (Command, bool) {
	if len(payload) == 0 || payload[0] != CommandSentinel {
		return Command{}, false
	}
	fields := strings.Fields(string(payload[1:]))
	if len(fields) == 0 {
		return Command{Kind: CommandUnknown}, true
	}
	return Command{
		Kind: commandKinds[fields[0]],
		Name: fields[0],
		Args: fields[1:],
	}, true
}

func (c Command) HasMinArgs() bool {
	return len(c.Args) >= c.Kind.MinArgs()
}
