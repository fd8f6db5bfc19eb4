package postgres

import "github.com/qrstudio/qrstudio-bot/internal/domain/entity"

// Migrations is a list of all gorm migrations for the database.
var Migrations = []interface{}{
	&entity.User{},
	&entity.QRCode{},
}
