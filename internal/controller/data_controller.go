package controller

import (
	"fmt"
	"io"

	"offline-chat-be/internal/pkg/serverutils"
	"offline-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const backupFileField = "file"

// IDataController serves search, backup/restore and the analysis data
// produced by the generation pipeline.
type IDataController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	ListAnalysis(ctx *fiber.Ctx) error
	ClearAnalysis(ctx *fiber.Ctx) error
}

type dataController struct {
	searchService   service.ISearchService
	backupService   service.IBackupService
	analysisService service.IAnalysisService
}

func NewDataController(
	searchService service.ISearchService,
	backupService service.IBackupService,
	analysisService service.IAnalysisService,
) IDataController {
	return &dataController{
		searchService:   searchService,
		backupService:   backupService,
		analysisService: analysisService,
	}
}

func (c *dataController) RegisterRoutes(r fiber.Router) {
	r.Get("/search", c.Search)
	r.Get("/backup", c.Export)
	r.Post("/backup/restore", c.Restore)
	r.Get("/analysis-data", c.ListAnalysis)
	r.Delete("/analysis-data", c.ClearAnalysis)
}

func (c *dataController) Search(ctx *fiber.Ctx) error {
	res, err := c.searchService.Search(ctx.UserContext(), ctx.Query("q"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search", res))
}

// Export answers with the bare backup document so the download can be fed
// straight back into Restore.
func (c *dataController) Export(ctx *fiber.Ctx) error {
	doc, err := c.backupService.Export(ctx.UserContext())
	if err != nil {
		return err
	}

	name := fmt.Sprintf("offline-chat-backup-%s.json", doc.Metadata.ExportedAt.Format("2006-01-02"))
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return ctx.JSON(doc)
}

// Restore takes the document as the raw JSON body or as a multipart "file".
func (c *dataController) Restore(ctx *fiber.Ctx) error {
	raw := ctx.Body()
	if header, err := ctx.FormFile(backupFileField); err == nil {
		file, err := header.Open()
		if err != nil {
			return err
		}
		defer file.Close()

		if raw, err = io.ReadAll(file); err != nil {
			return err
		}
	}

	res, err := c.backupService.Import(ctx.UserContext(), raw)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *dataController) ListAnalysis(ctx *fiber.Ctx) error {
	res, err := c.analysisService.List(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list analysis data", res))
}

func (c *dataController) ClearAnalysis(ctx *fiber.Ctx) error {
	res, err := c.analysisService.Clear(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}
