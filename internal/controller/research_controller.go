package controller

import (
	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"
	internalWS "ai-research-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IResearchController interface {
	RegisterRoutes(r fiber.Router)
	RegisterWebsocket(r fiber.Router)
	GenerateReport(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type researchController struct {
	researcherService service.IResearcherService
	manager           *internalWS.Manager
	logger            logger.ILogger
}

func NewResearchController(researcherService service.IResearcherService, manager *internalWS.Manager, log logger.ILogger) IResearchController {
	return &researchController{
		researcherService: researcherService,
		manager:           manager,
		logger:            log,
	}
}

func (c *researchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/report/v1")
	h.Post("", c.GenerateReport)
}

// RegisterWebsocket hangs the streaming endpoint off the root router so
// clients connect to /ws, outside the /api prefix.
func (c *researchController) RegisterWebsocket(r fiber.Router) {
	r.Get("/ws", c.ServeWs)
}

// GenerateReport is the non-streaming path: run the job synchronously
// and return the finished report in one response body.
func (c *researchController) GenerateReport(ctx *fiber.Ctx) error {
	var req dto.ResearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res, err := c.researcherService.RunRequest(ctx.Context(), &req, nil)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate report", dto.GenerateReportResponse{Report: res}))
}

// ServeWs upgrades the request and hands the connection to the read loop.
func (c *researchController) ServeWs(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("ResearchController", "Starting WebSocket session", nil)
			internalWS.ServeWs(c.manager, c.researcherService, c.logger, conn)
			c.logger.Info("ResearchController", "WebSocket session ended", nil)
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
