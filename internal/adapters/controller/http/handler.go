// Package http exposes the QR renderer as a small JSON API next to the bot.
package http

import (
	"context"

	"github.com/qrstudio/qrstudio-bot/internal/domain/dto"
	"github.com/qrstudio/qrstudio-bot/internal/domain/service"
	"github.com/qrstudio/qrstudio-bot/pkg/logger/types"
)

type qrService interface {
	Render(ctx context.Context, req dto.QRRequest) (*service.Result, error)
	Terminal(req dto.QRRequest) (string, error)
}

type Handler struct {
	qrService qrService

	logger *types.Logger
}

func NewHandler(qrService qrService, logger *types.Logger) *Handler {
	logger.Info("http handler created")
	return &Handler{
		qrService: qrService,
		logger:    logger,
	}
}
