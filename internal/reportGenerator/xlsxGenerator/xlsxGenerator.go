package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/akraev/folioterm/internal/model"
	"github.com/akraev/folioterm/utils"
	"github.com/xuri/excelize/v2"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

func (g *XLSXGenerator) Generate(ctx context.Context, reports []model.PortfolioReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if len(reports) == 0 {
		return nil, "", errors.New("empty reports")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	for i, report := range reports {
		err := g.fillSheet(ctx, f, report, i+1)
		if err != nil {
			return nil, "", err
		}
	}

	// drop the default "Sheet1"
	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillSheet(ctx context.Context, f *excelize.File, report model.PortfolioReport, ordinal int) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.fillSheet"

	sheetName := fmt.Sprintf("%d. %s", ordinal, report.Portfolio.Name)
	_, err := f.NewSheet(sheetName)
	if err != nil {
		slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = f.MergeCell(sheetName, "A1", "H1")
	if err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "Holdings")

	headerStyleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, "A1", "A1", headerStyleID); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	_ = f.SetCellStr(sheetName, "A2", "symbol")
	_ = f.SetCellStr(sheetName, "B2", "name")
	_ = f.SetCellStr(sheetName, "C2", "shares")
	_ = f.SetCellStr(sheetName, "D2", "avg cost")
	_ = f.SetCellStr(sheetName, "E2", "price")
	_ = f.SetCellStr(sheetName, "F2", "market value")
	_ = f.SetCellStr(sheetName, "G2", "gain")
	_ = f.SetCellStr(sheetName, "H2", "gain %")

	row := 3
	for _, h := range report.Holdings {
		avgCost := 0.0
		if h.AverageCost != nil {
			avgCost, _ = h.AverageCost.Float64()
		}
		shares, _ := h.TotalShares.Float64()
		price, _ := h.CurrentPrice.Float64()
		value, _ := h.MarketValue.Float64()
		gain, _ := h.UnrealizedGain.Float64()
		gainPct, _ := h.UnrealizedGainPercent.Float64()

		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), h.Security.Symbol)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), h.Security.Name)
		_ = f.SetCellFloat(sheetName, fmt.Sprintf("C%d", row), shares, -1, 64)
		_ = f.SetCellFloat(sheetName, fmt.Sprintf("D%d", row), avgCost, -1, 64)
		_ = f.SetCellFloat(sheetName, fmt.Sprintf("E%d", row), price, -1, 64)
		_ = f.SetCellFloat(sheetName, fmt.Sprintf("F%d", row), value, -1, 64)
		_ = f.SetCellFloat(sheetName, fmt.Sprintf("G%d", row), gain, -1, 64)
		_ = f.SetCellFloat(sheetName, fmt.Sprintf("H%d", row), gainPct, -1, 64)
		row++
	}

	totalValue, _ := report.Summary.TotalValue.Float64()
	totalCost, _ := report.Summary.TotalCost.Float64()
	totalGain, _ := report.Summary.TotalGain.Float64()
	totalGainPct, _ := report.Summary.TotalGainPercent.Float64()

	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), "total")
	_ = f.SetCellFloat(sheetName, fmt.Sprintf("D%d", row), totalCost, -1, 64)
	_ = f.SetCellFloat(sheetName, fmt.Sprintf("F%d", row), totalValue, -1, 64)
	_ = f.SetCellFloat(sheetName, fmt.Sprintf("G%d", row), totalGain, -1, 64)
	_ = f.SetCellFloat(sheetName, fmt.Sprintf("H%d", row), totalGainPct, -1, 64)

	totalStyleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), totalStyleID); err != nil {
		return fmt.Errorf("apply total style: %w", err)
	}

	return nil
}
