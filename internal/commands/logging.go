package commands

import (
	"strings"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const commandModuleRoot = "blog.commands"

// MessageLogger returns the logger for handlers of msg. Message types read
// "blog.<group>.<action>"; the group picks the logger namespace, so
// blog.catalog.refresh logs under blog.commands.catalog.
func MessageLogger(provider interfaces.LoggerProvider, msg command.Message) interfaces.Logger {
	group := messageGroup(command.GetMessageType(msg))
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+group)
	return logging.WithFields(logger, map[string]any{
		"component":     "command",
		"command_group": group,
	})
}

func messageGroup(messageType string) string {
	parts := strings.Split(strings.TrimSpace(messageType), ".")
	if len(parts) >= 3 && parts[0] == "blog" && parts[1] != "" {
		return parts[1]
	}
	return "core"
}
