// internal/core/domain/checkout/admin.go
package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"solboost-bot/pkg/logger"
)

// Команды админов
const (
	CommandAdmin       = "admin"
	CommandAddAdmin    = "addadmin"
	CommandRemoveAdmin = "removeadmin"
	CommandListAdmins  = "listadmins"
)

// IsAdminCommand относится ли команда к админским
func IsAdminCommand(command string) bool {
	switch command {
	case CommandAdmin, CommandAddAdmin, CommandRemoveAdmin, CommandListAdmins:
		return true
	}
	return false
}

// HandleAdminCommand выполняет админскую команду. Сессия чата не затрагивается.
func (m *Machine) HandleAdminCommand(ctx context.Context, chatID int64, sender Sender, command, args string) error {
	m.metrics.ObserveEvent(EventCommand)

	if !m.roster.IsOperator(sender.ID) {
		logger.Warn("⛔ Пользователь %d попытался выполнить /%s", sender.ID, command)
		return m.reply(ctx, chatID, Messages.Unauthorized, ErrUnauthorized)
	}

	switch command {
	case CommandAdmin:
		return m.reply(ctx, chatID, adminCommandsText(), nil)

	case CommandAddAdmin:
		id, ok := parseUserID(args)
		if !ok {
			return m.reply(ctx, chatID, "❗ *Usage:* `/addadmin <UserID>`", ErrValidation)
		}
		added, err := m.roster.Add(ctx, id)
		if err != nil {
			logger.Error("❌ Не удалось добавить админа %d: %v", id, err)
			return m.reply(ctx, chatID, "⚠️ *Failed to update the admin list. Please try again later.*", err)
		}
		if !added {
			return m.reply(ctx, chatID, "❌ *This user is already an admin.*", nil)
		}
		logger.Info("👑 Пользователь %d добавил админа %d", sender.ID, id)
		return m.reply(ctx, chatID, fmt.Sprintf("✅ *User ID %d has been added as an admin.*", id), nil)

	case CommandRemoveAdmin:
		id, ok := parseUserID(args)
		if !ok {
			return m.reply(ctx, chatID, "❗ *Usage:* `/removeadmin <UserID>`", ErrValidation)
		}
		removed, err := m.roster.Remove(ctx, id)
		if err != nil {
			logger.Error("❌ Не удалось удалить админа %d: %v", id, err)
			return m.reply(ctx, chatID, "⚠️ *Failed to update the admin list. Please try again later.*", err)
		}
		if !removed {
			return m.reply(ctx, chatID, "❌ *User ID not found in admin list.*", nil)
		}
		logger.Info("👑 Пользователь %d удалил админа %d", sender.ID, id)
		return m.reply(ctx, chatID, fmt.Sprintf("✅ *User ID %d has been removed from admins.*", id), nil)

	case CommandListAdmins:
		ids := m.roster.List()
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, strconv.FormatInt(id, 10))
		}
		return m.reply(ctx, chatID, fmt.Sprintf("👑 *Current Admins:* \n`%s`", strings.Join(parts, ", ")), nil)
	}

	return m.reply(ctx, chatID, adminCommandsText(), ErrValidation)
}

func parseUserID(args string) (int64, bool) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
