package utils

import (
	"slices"

	"github.com/spf13/viper"
	tele "gopkg.in/telebot.v3"
)

func IsAdmin(userID int64) bool {
	return slices.Contains(viper.GetIntSlice("bot.admin-ids"), int(userID))
}

// AdminIDs returns bot.admin-ids as int64 for middleware.Whitelist.
func AdminIDs() []int64 {
	admins := viper.GetIntSlice("bot.admin-ids")
	ids := make([]int64, len(admins))
	for i, v := range admins {
		ids[i] = int64(v)
	}
	return ids
}

func GetMessageText(msg *tele.Message) string {
	switch {
	case msg == nil:
		return ""
	case msg.Text != "":
		return msg.Text
	case msg.Caption != "":
		return msg.Caption
	default:
		return ""
	}
}
