package folioService

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/akraev/folioterm/internal/model"
	"github.com/akraev/folioterm/internal/service"
	"github.com/akraev/folioterm/utils"
)

type ReportGenerator interface {
	Generate(ctx context.Context, reports []model.PortfolioReport) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

// ExportHoldingsReport builds a workbook over every portfolio of the current
// user and either uploads it to cloud storage or, when none is configured,
// writes it next to the binary. Returns the download link or the local path.
func (s *FolioService) ExportHoldingsReport(ctx context.Context) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FolioService.ExportHoldingsReport"

	slog.Debug("ExportHoldingsReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ExportHoldingsReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	portfolios, err := s.Portfolios(ctx)
	if err != nil {
		return "", err
	}
	if len(portfolios) == 0 {
		return "", service.ErrNothingToReport
	}

	reports := make([]model.PortfolioReport, 0, len(portfolios))
	for _, p := range portfolios {
		holdings, summary, err := s.Holdings(ctx, p.ID, model.SortBySymbol, model.SortAsc)
		if err != nil {
			slog.Error("can't load holdings for report", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", p.ID), slog.String("err", err.Error()))
			return "", err
		}
		reports = append(reports, model.PortfolioReport{Portfolio: p, Holdings: holdings, Summary: summary})
	}

	fileBytes, ext, err := s.reportGenerator.Generate(ctx, reports)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	filename := fmt.Sprintf("holdings_%s%s", time.Now().Format("2006-01-02"), ext)

	if s.cloudStorage == nil {
		if err := os.WriteFile(filename, fileBytes, 0o644); err != nil {
			slog.Error("can't write report file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return "", err
		}
		return filename, nil
	}

	link, err := s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return link, nil
}
