package handlers

import (
	"context"
	"net/http"

	"github.com/agentic-etl/etl-backend/pkg/errs"
	"github.com/agentic-etl/etl-backend/pkg/service"
)

type ModeHandler struct {
	modeService service.ModeService
}

func (h *ModeHandler) GetMode(ctx context.Context, _ *http.Request, _ any) (*service.ModeResult, error) {
	return &service.ModeResult{Mode: h.modeService.Current(ctx)}, nil
}

// SwitchMode takes its mode as a bare JSON string body, `"automated"` or
// `"interactive"`, matching what the frontend sends.
func (h *ModeHandler) SwitchMode(ctx context.Context, _ *http.Request, in string) (*service.ModeResult, error) {
	const op errs.Op = "ModeHandler.SwitchMode"

	mode, err := service.ParseMode(in)
	if err != nil {
		return nil, errs.E(op, errs.InvalidRequest, errs.Parameter("mode"), err)
	}

	current, err := h.modeService.Switch(ctx, mode)
	if err != nil {
		return nil, err
	}

	return &service.ModeResult{Mode: current}, nil
}

func NewModeHandler(modeService service.ModeService) *ModeHandler {
	return &ModeHandler{
		modeService: modeService,
	}
}
