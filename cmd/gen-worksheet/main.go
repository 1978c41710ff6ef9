package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/numberhop/numberhop/internal/importer"
	"github.com/numberhop/numberhop/pkg/domain"
)

// gen-worksheet writes a starter question worksheet in the layout the
// seed and validate commands expect: level in column A, expression in
// column B, answer in column C, header on row 1. The extension of the
// target path picks the format (.csv or .xlsx).
func main() {
	target := "worksheets/starter.xlsx"
	if len(os.Args) > 1 {
		target = os.Args[1]
	}

	// Ensure dir exists
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			panic(err)
		}
	}

	fmt.Printf("Generating starter worksheet in: %s\n", target)

	// 1. Draw a fixed batch per level so every run produces the same file.
	var questions []domain.Question
	for level := 1; level <= 3; level++ {
		questions = append(questions, importer.Generate(level, 8, int64(level))...)
	}

	// 2. Write it in the format the extension asks for.
	switch strings.ToLower(filepath.Ext(target)) {
	case ".csv":
		check(writeCSV(target, questions))
	default:
		check(writeExcel(target, questions))
	}

	fmt.Printf("Done. Load it with: numberhop seed --file %s\n", target)
}

func writeExcel(path string, questions []domain.Question) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &[]string{"level", "prompt", "answer"}); err != nil {
		return err
	}
	for i, q := range questions {
		row := []any{q.Level, q.Prompt, q.Answer}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeCSV(path string, questions []domain.Question) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"level", "prompt", "answer"}); err != nil {
		return err
	}
	for _, q := range questions {
		row := []string{strconv.Itoa(q.Level), q.Prompt, strconv.Itoa(q.Answer)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
