package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yigit/achievement-portal/internal/app/ranking"
)

const leaderboardSheet = "Leaderboard"

var leaderboardHeader = []string{"Rank", "Name", "Roll Number", "Department", "Section", "Year", "Total Points"}

// LeaderboardWorkbook builds a single-sheet workbook of ranked entries.
func LeaderboardWorkbook(entries []ranking.Entry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", leaderboardSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for c, h := range leaderboardHeader {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellStr(leaderboardSheet, cell, h); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}

	for i, e := range entries {
		row := i + 2
		values := []interface{}{e.Position, e.Name, e.RollNumber, string(e.Department), e.Section, string(e.Year), e.TotalPoints}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(leaderboardSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("set row %d: %w", row, err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(leaderboardHeader))
	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(leaderboardSheet, "A1", last+"1", bold)
	}
	_ = f.AutoFilter(leaderboardSheet, "A1:"+last+"1", nil)
	_ = f.SetPanes(leaderboardSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	widths := []float64{8, 28, 16, 14, 10, 8, 14}
	for c, w := range widths {
		col, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(leaderboardSheet, col, col, w)
	}
	return f, nil
}

// WriteLeaderboard streams the workbook for entries to w.
func WriteLeaderboard(w io.Writer, entries []ranking.Entry) error {
	f, err := LeaderboardWorkbook(entries)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

// LeaderboardFilename names an export, e.g. "leaderboard-CSE-III-2026-01-02.xlsx".
func LeaderboardFilename(department, year string, at time.Time) string {
	parts := []string{"leaderboard"}
	for _, p := range []string{department, year} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, at.Format("2006-01-02"))
	return invalidFileRe.ReplaceAllString(strings.Join(parts, "-"), "_") + ".xlsx"
}
