package export

import (
	"fmt"

	"er-dashboard/internal/domain"
	"er-dashboard/internal/stats"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Leaderboard"

var Headers = []string{"Rank", "ID", "Name", "Weapon", "Tier", "Win %", "Pick %", "MMR", "Survival", "Honey"}

// Leaderboard renders rows, in the order given, as an xlsx workbook with a
// single sheet. honey marks the rows that get the top performer flag.
func Leaderboard(rows []domain.CharacterSummary, honey map[int]struct{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(SheetName); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(Headers), 1)
	f.SetCellStyle(SheetName, "A1", last, headerStyle)

	row := 2
	for i, c := range rows {
		mark := ""
		if _, ok := honey[c.ID]; ok {
			mark = "🍯"
		}

		f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), c.ID)
		f.SetCellValue(SheetName, fmt.Sprintf("C%d", row), c.Name)
		f.SetCellValue(SheetName, fmt.Sprintf("D%d", row), c.Weapon)
		f.SetCellValue(SheetName, fmt.Sprintf("E%d", row), string(c.Tier))
		f.SetCellValue(SheetName, fmt.Sprintf("F%d", row), fmt.Sprintf("%.2f%%", c.WinRate*100))
		f.SetCellValue(SheetName, fmt.Sprintf("G%d", row), fmt.Sprintf("%.2f%%", c.PickRate*100))
		f.SetCellValue(SheetName, fmt.Sprintf("H%d", row), c.MMRGain)
		f.SetCellValue(SheetName, fmt.Sprintf("I%d", row), stats.FormatDuration(c.AvgSurvival))
		f.SetCellValue(SheetName, fmt.Sprintf("J%d", row), mark)
		row++
	}

	f.SetColWidth(SheetName, "A", "B", 8)
	f.SetColWidth(SheetName, "C", "D", 20)
	f.SetColWidth(SheetName, "E", "J", 12)
	f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
