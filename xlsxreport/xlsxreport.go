// Package xlsxreport dumps a candidate matrix or a filtered mapping to an
// .xlsx workbook for analyst inspection. It is a caller-side debugging
// affordance, never invoked by filter or spsm, and reads only what
// matrix.CandidateMapping already exposes. Grounded on excel/excel.go's
// sheet-oriented wrapper around excelize.
package xlsxreport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/onnttf/spsm/container"
	"github.com/onnttf/spsm/matrix"
	"github.com/onnttf/spsm/relation"
	"github.com/onnttf/spsm/tree"
)

// relationSheets lists, in display order, every relation that gets its own
// candidate-dump sheet. IDK entries never populate a CandidateMapping (see
// matrix.CandidateMapping.Set), so there is no IDK sheet.
var relationSheets = [...]relation.Relation{relation.EQ, relation.MG, relation.LG, relation.DJ}

// WriteCandidateWorkbook writes one sheet per non-IDK relation present in m,
// each a source-name x target-name grid with "1" marking an asserted pair.
// Empty relations are skipped.
func WriteCandidateWorkbook(w io.Writer, m *matrix.CandidateMapping) error {
	wb := excelize.NewFile()
	defer wb.Close()

	wroteSheet := false
	for _, rel := range relationSheets {
		pairs := pairsForRelation(m, rel)
		if len(pairs) == 0 {
			continue
		}
		name := rel.String()
		if !wroteSheet {
			if err := wb.SetSheetName("Sheet1", sheetName(rel)); err != nil {
				return fmt.Errorf("xlsxreport: rename default sheet: %w", err)
			}
		} else if _, err := wb.NewSheet(sheetName(rel)); err != nil {
			return fmt.Errorf("xlsxreport: create sheet for relation %s: %w", name, err)
		}
		if err := writeRelationSheet(wb, sheetName(rel), m, pairs); err != nil {
			return err
		}
		wroteSheet = true
	}

	if !wroteSheet {
		// No asserted relations at all; emit an empty placeholder sheet
		// rather than a workbook with zero sheets, which excelize rejects.
		if err := wb.SetCellValue("Sheet1", "A1", "no candidate relations"); err != nil {
			return fmt.Errorf("xlsxreport: write placeholder: %w", err)
		}
	}

	if _, err := wb.WriteTo(w); err != nil {
		return fmt.Errorf("xlsxreport: write workbook: %w", err)
	}
	return nil
}

// WriteMappingWorkbook writes a single "mapping" sheet listing every
// (source name, target name, relation) triple m currently holds, typically
// the filtered output of filter.Engine.Process.
func WriteMappingWorkbook(w io.Writer, m *matrix.CandidateMapping) error {
	wb := excelize.NewFile()
	defer wb.Close()

	const sheet = "mapping"
	if err := wb.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("xlsxreport: rename default sheet: %w", err)
	}
	if err := wb.SetSheetRow(sheet, "A1", &[]any{"source", "target", "relation", "similarity"}); err != nil {
		return fmt.Errorf("xlsxreport: write header: %w", err)
	}

	row := 2
	for _, elem := range m.Elements() {
		sName := nodeName(m.SourceContext, elem.Source)
		tName := nodeName(m.TargetContext, elem.Target)
		cell := fmt.Sprintf("A%d", row)
		values := []any{sName, tName, elem.Relation.String()}
		if row == 2 {
			values = append(values, m.GetSimilarity())
		}
		if err := wb.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("xlsxreport: write mapping row %d: %w", row, err)
		}
		row++
	}

	if _, err := wb.WriteTo(w); err != nil {
		return fmt.Errorf("xlsxreport: write workbook: %w", err)
	}
	return nil
}

func sheetName(r relation.Relation) string {
	switch r {
	case relation.EQ:
		return "EQ"
	case relation.MG:
		return "MG"
	case relation.LG:
		return "LG"
	case relation.DJ:
		return "DJ"
	default:
		return "IDK"
	}
}

type pair struct {
	source tree.NodeID
	target tree.NodeID
}

func pairsForRelation(m *matrix.CandidateMapping, rel relation.Relation) []pair {
	var out []pair
	for _, elem := range m.Elements() {
		if elem.Relation == rel {
			out = append(out, pair{source: elem.Source, target: elem.Target})
		}
	}
	return out
}

// writeRelationSheet renders pairs as a source x target grid on sheet,
// header row/column holding node names, "1" marking an asserted pair.
func writeRelationSheet(wb *excelize.File, sheet string, m *matrix.CandidateMapping, pairs []pair) error {
	sources := uniqueSources(pairs)
	targets := uniqueTargets(pairs)

	header := make([]any, 0, len(targets)+1)
	header = append(header, "")
	for _, t := range targets {
		header = append(header, nodeName(m.TargetContext, t))
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsxreport: write sheet %s header: %w", sheet, err)
	}

	marked := make(map[pair]bool, len(pairs))
	for _, p := range pairs {
		marked[p] = true
	}

	for i, s := range sources {
		row := make([]any, 0, len(targets)+1)
		row = append(row, nodeName(m.SourceContext, s))
		for _, t := range targets {
			if marked[pair{source: s, target: t}] {
				row = append(row, 1)
			} else {
				row = append(row, "")
			}
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsxreport: write sheet %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func uniqueSources(pairs []pair) []tree.NodeID {
	sources := make([]tree.NodeID, len(pairs))
	for i, p := range pairs {
		sources[i] = p.source
	}
	return container.Deduplicate(sources)
}

func uniqueTargets(pairs []pair) []tree.NodeID {
	targets := make([]tree.NodeID, len(pairs))
	for i, p := range pairs {
		targets[i] = p.target
	}
	return container.Deduplicate(targets)
}

func nodeName(t *tree.Tree, id tree.NodeID) string {
	n := t.Node(id)
	if n == nil {
		return fmt.Sprintf("#%d", id)
	}
	return n.Name
}
