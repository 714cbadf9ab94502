package threatmodel

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	sheetThreats    = "Threats"
	sheetComponents = "Components"
	sheetFlows      = "Data Flows"
	sheetCoverage   = "STRIDE Coverage"
	sheetLegend     = "Legend"
)

type cellFill struct {
	Fill string
	Font string
}

// Categorical cell palettes, keyed case-insensitively. Values outside the
// palette render uncolored instead of erroring.
var riskPalette = map[string]cellFill{
	"critical": {Fill: "FFC7CE", Font: "9C0006"},
	"high":     {Fill: "FFCC99", Font: "974706"},
	"medium":   {Fill: "FFEB9C", Font: "9C6500"},
	"low":      {Fill: "C6EFCE", Font: "006100"},
}

var statusPalette = map[string]cellFill{
	"identified":  {Fill: "E7E6E6", Font: "3F3F3F"},
	"in_progress": {Fill: "BDD7EE", Font: "1F4E79"},
	"mitigated":   {Fill: "C6EFCE", Font: "006100"},
	"accepted":    {Fill: "FFEB9C", Font: "9C6500"},
	"transferred": {Fill: "D9D2E9", Font: "4C3A77"},
}

// coverage heat colors by threat count per cell
var coverageHeat = []struct {
	min  int
	fill string
}{
	{min: 5, fill: "F4CCCC"},
	{min: 3, fill: "FCE5CD"},
	{min: 1, fill: "FFF2CC"},
}

// WriteXLSX writes the multi-sheet workbook: the 21-column threat table, the
// component and data-flow sheets, the STRIDE coverage matrix with heat
// coloring and the identifier-mapping legend. I/O failures propagate, there
// is no retry - regeneration recomputes everything from the source graph.
func (r Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close() // nolint:errcheck

	if err := f.SetSheetName("Sheet1", sheetThreats); err != nil {
		return errors.Wrap(err, "could not name threat sheet")
	}
	for _, sheet := range []string{sheetComponents, sheetFlows, sheetCoverage, sheetLegend} {
		if _, err := f.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "could not create sheet %s", sheet)
		}
	}

	if err := r.writeThreatSheet(f); err != nil {
		return err
	}
	if err := r.writeComponentSheet(f); err != nil {
		return err
	}
	if err := r.writeFlowSheet(f); err != nil {
		return err
	}
	if err := r.writeCoverageSheet(f); err != nil {
		return err
	}
	if err := r.writeLegendSheet(f); err != nil {
		return err
	}

	return errors.Wrap(f.Write(w), "could not write workbook")
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"44546A"}},
	})
}

func fillStyle(f *excelize.File, fill cellFill) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: fill.Font},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill.Fill}},
	})
}

func writeHeader(f *excelize.File, sheet string, header []string) error {
	style, err := headerStyle(f)
	if err != nil {
		return errors.Wrap(err, "could not create header style")
	}
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	return f.SetCellStyle(sheet, first, last, style)
}

// setCategoricalCell writes a value and colors it via the palette when the
// lowercased value has an entry.
func setCategoricalCell(f *excelize.File, sheet, cell, value string, palette map[string]cellFill) error {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return err
	}
	fill, ok := palette[strings.ToLower(value)]
	if !ok {
		return nil
	}
	style, err := fillStyle(f, fill)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}

func (r Report) writeThreatSheet(f *excelize.File) error {
	if err := writeHeader(f, sheetThreats, threatTableHeader); err != nil {
		return err
	}

	// risk columns M (13) and O (15), status column U (21)
	coloredColumns := map[int]map[string]cellFill{
		13: riskPalette,
		15: riskPalette,
		21: statusPalette,
	}

	for i, threat := range r.Threats {
		row := threatTableRow(threat)
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if palette, ok := coloredColumns[col+1]; ok {
				if err := setCategoricalCell(f, sheetThreats, cell, value, palette); err != nil {
					return err
				}
				continue
			}
			if err := f.SetCellValue(sheetThreats, cell, value); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(sheetThreats, "A", "U", 22)
}

func (r Report) writeComponentSheet(f *excelize.File) error {
	header := []string{"Diagram ID", "Name", "Type", "Technology", "Criticality", "Data Classification", "Trust Boundary"}
	if err := writeHeader(f, sheetComponents, header); err != nil {
		return err
	}
	for i, component := range r.Graph.Components {
		values := []string{
			component.DiagramID,
			component.Name,
			component.Type,
			component.Technology,
			string(component.Criticality),
			component.DataClassification,
			component.TrustBoundary,
		}
		if err := writeRow(f, sheetComponents, i+2, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetComponents, "A", "G", 24)
}

func (r Report) writeFlowSheet(f *excelize.File) error {
	header := []string{"Diagram ID", "Source", "Target", "Label", "Protocol", "Data Type", "Encrypted", "Authenticated", "Crosses Trust Boundary"}
	if err := writeHeader(f, sheetFlows, header); err != nil {
		return err
	}
	for i, flow := range r.Graph.Flows {
		source, _ := r.Graph.Component(flow.SourceID)
		target, _ := r.Graph.Component(flow.TargetID)
		values := []any{
			flow.DiagramID,
			source.Name,
			target.Name,
			flow.Label,
			flow.Protocol,
			flow.DataType,
			flow.Encrypted,
			flow.Authenticated,
			flow.CrossesTrustBoundary,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetFlows, cell, value); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(sheetFlows, "A", "I", 20)
}

func (r Report) writeCoverageSheet(f *excelize.File) error {
	header := []string{"Diagram ID", "Component"}
	for _, category := range StrideCategories {
		header = append(header, strings.Title(strings.ReplaceAll(string(category), "_", " "))) // nolint:staticcheck
	}
	if err := writeHeader(f, sheetCoverage, header); err != nil {
		return err
	}

	counts := r.coverageCounts()
	for i, component := range r.Graph.Components {
		row := i + 2
		if err := writeRow(f, sheetCoverage, row, []string{component.DiagramID, component.Name}); err != nil {
			return err
		}
		for j, category := range StrideCategories {
			count := counts[component.DiagramID][category]
			cell, err := excelize.CoordinatesToCellName(j+3, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetCoverage, cell, count); err != nil {
				return err
			}
			if fill := heatFill(count); fill != "" {
				style, err := fillStyle(f, cellFill{Fill: fill, Font: "000000"})
				if err != nil {
					return err
				}
				if err := f.SetCellStyle(sheetCoverage, cell, cell, style); err != nil {
					return err
				}
			}
		}
	}
	return f.SetColWidth(sheetCoverage, "A", "H", 20)
}

func (r Report) writeLegendSheet(f *excelize.File) error {
	header := []string{"Diagram ID", "Name", "Kind"}
	if err := writeHeader(f, sheetLegend, header); err != nil {
		return err
	}
	row := 2
	for _, component := range r.Graph.Components {
		if err := writeRow(f, sheetLegend, row, []string{component.DiagramID, component.Name, "component"}); err != nil {
			return err
		}
		row++
	}
	for _, flow := range r.Graph.Flows {
		source, _ := r.Graph.Component(flow.SourceID)
		target, _ := r.Graph.Component(flow.TargetID)
		name := source.Name + " -> " + target.Name
		if err := writeRow(f, sheetLegend, row, []string{flow.DiagramID, name, "data flow"}); err != nil {
			return err
		}
		row++
	}
	return f.SetColWidth(sheetLegend, "A", "C", 28)
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func heatFill(count int) string {
	for _, heat := range coverageHeat {
		if count >= heat.min {
			return heat.fill
		}
	}
	return ""
}
