// Package importer loads practice questions into the exercise bank from
// spreadsheet files. Excel (.xlsx) and CSV share one column convention
// so a lesson author can use either tool. Every row is checked against
// the walk rules before it is stored: the prompt must parse to at least
// one step, and a stated answer must match where the walk really lands.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/numberhop/numberhop/internal/expr"
	"github.com/numberhop/numberhop/internal/logging"
	"github.com/numberhop/numberhop/internal/sequencer"
	"github.com/numberhop/numberhop/pkg/domain"
	"github.com/numberhop/numberhop/pkg/ports"
)

// Config describes where question data lives inside a file.
type Config struct {
	FilePath     string // path to the .xlsx or .csv file
	SheetName    string // Excel sheet to read, ignored for CSV
	LevelColumn  string // column with the difficulty level
	PromptColumn string // column with the arithmetic expression
	AnswerColumn string // column with the expected result, may be blank
	StartRow     int    // first data row, 1-based
	DryRun       bool   // validate rows without writing questions
}

// DefaultConfig returns the layout the seed spreadsheets use.
func DefaultConfig() Config {
	return Config{
		SheetName:    "Sheet1",
		LevelColumn:  "A",
		PromptColumn: "B",
		AnswerColumn: "C",
		StartRow:     2, // row 1 is the header
	}
}

// Result summarizes one import run.
type Result struct {
	Processed int
	Created   int
	Skipped   int
	Errors    []string
}

// Importer writes validated questions through a QuestionStore.
type Importer struct {
	questions ports.QuestionStore
	logger    *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger used for per-row diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) {
		im.logger = logger
	}
}

// New creates an Importer backed by the given question store.
func New(questions ports.QuestionStore, opts ...Option) *Importer {
	im := &Importer{
		questions: questions,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ImportFile reads the file named by cfg and stores every valid row.
// Rows that fail validation are recorded in the result and skipped;
// only I/O failures abort the run.
func (im *Importer) ImportFile(ctx context.Context, cfg Config) (*Result, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(cfg.FilePath)) {
	case ".csv":
		rows, err = readCSV(cfg.FilePath)
	default:
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}
	return im.importRows(ctx, rows, cfg)
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (im *Importer) importRows(ctx context.Context, rows [][]string, cfg Config) (*Result, error) {
	result := &Result{Errors: make([]string, 0)}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		if blankRow(row) {
			continue
		}
		result.Processed++

		if err := im.importRow(ctx, row, cfg); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			im.logger.Warn("question row skipped", "row", rowNum, "err", err)
			continue
		}
		result.Created++
	}
	return result, nil
}

func (im *Importer) importRow(ctx context.Context, row []string, cfg Config) error {
	levelText := strings.TrimSpace(cell(row, cfg.LevelColumn))
	prompt := strings.TrimSpace(cell(row, cfg.PromptColumn))
	answerText := strings.TrimSpace(cell(row, cfg.AnswerColumn))

	level, err := strconv.Atoi(levelText)
	if err != nil || level < 1 {
		return fmt.Errorf("level %q is not a positive number", levelText)
	}
	steps := expr.Parse(prompt)
	if len(steps) == 0 {
		return fmt.Errorf("prompt %q holds no steps", prompt)
	}

	// The stored answer is always the computed landing position. A
	// stated answer only has to agree with it.
	answer := sequencer.Final(steps)
	if answerText != "" {
		stated, err := strconv.Atoi(answerText)
		if err != nil {
			return fmt.Errorf("answer %q is not a number", answerText)
		}
		if stated != answer {
			return fmt.Errorf("answer %d does not match the walk, which lands on %d", stated, answer)
		}
	}

	if cfg.DryRun {
		return nil
	}
	return im.questions.AddQuestion(ctx, &domain.Question{
		Level:  level,
		Prompt: prompt,
		Answer: answer,
	})
}

// ValidateFile runs a full import pass against the file without storing
// anything. It needs no question store, so a worksheet can be checked
// before a database even exists.
func ValidateFile(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	im := &Importer{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(im)
	}
	cfg.DryRun = true
	return im.ImportFile(ctx, cfg)
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cell returns the value at a spreadsheet column letter, or "" when the
// row is too short.
func cell(row []string, column string) string {
	idx := columnIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func columnIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	idx := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		idx = idx*26 + int(column[i]-'A'+1)
	}
	return idx - 1
}
