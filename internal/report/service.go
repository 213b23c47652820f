// Package report renders the shopping list as text and CSV.
package report

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/money"
)

const (
	TextFile = "report.txt"
	CSVFile  = "items.csv"
)

// Ledger is the read side of ledger.Service.
type Ledger interface {
	Items() []*ledger.LineItem
	AggregateTotal() decimal.Decimal
	Ceiling() (decimal.Decimal, bool)
	Remaining() (decimal.Decimal, bool)
}

// Summary is a snapshot of the list at report time.
type Summary struct {
	Items      []*ledger.LineItem
	Total      decimal.Decimal
	Ceiling    *decimal.Decimal
	Remaining  *decimal.Decimal
	OverBudget bool
}

type Service struct {
	ledger Ledger
}

func NewService(l Ledger) *Service {
	return &Service{ledger: l}
}

func (s *Service) Summary() Summary {
	sum := Summary{
		Items: s.ledger.Items(),
		Total: s.ledger.AggregateTotal(),
	}

	if c, ok := s.ledger.Ceiling(); ok {
		sum.Ceiling = &c
	}

	if r, ok := s.ledger.Remaining(); ok {
		sum.Remaining = &r
		sum.OverBudget = r.IsNegative()
	}

	return sum
}

// Text renders one line per item followed by the totals.
func (s *Service) Text() string {
	sum := s.Summary()

	var sb strings.Builder

	for _, item := range sum.Items {
		barcode := item.Barcode
		if barcode == "" {
			barcode = "-"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s x %d | %s\n",
			barcode, item.Name, money.Format(item.UnitPrice), item.Quantity, money.Format(item.LineTotal()))
	}

	if len(sum.Items) == 0 {
		sb.WriteString("Lista vazia\n")
	}

	fmt.Fprintf(&sb, "\nTotal: %s\n", money.Format(sum.Total))

	if sum.Ceiling != nil {
		fmt.Fprintf(&sb, "Orçamento: %s\n", money.Format(*sum.Ceiling))
		fmt.Fprintf(&sb, "Restante: %s\n", money.Format(*sum.Remaining))

		if sum.OverBudget {
			sb.WriteString("Orçamento excedido\n")
		}
	}

	return sb.String()
}

// WriteCSV writes the items with plain decimal amounts.
func (s *Service) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"barcode", "name", "unit_price", "quantity", "total"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, item := range s.ledger.Items() {
		row := []string{
			item.Barcode,
			item.Name,
			item.UnitPrice.StringFixed(2),
			strconv.Itoa(item.Quantity),
			item.LineTotal().StringFixed(2),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteArchive writes a zip holding the text report and the CSV.
func (s *Service) WriteArchive(w io.Writer) error {
	zw := zip.NewWriter(w)

	tf, err := zw.Create(TextFile)
	if err != nil {
		return fmt.Errorf("adding %s: %w", TextFile, err)
	}

	if _, err := io.WriteString(tf, s.Text()); err != nil {
		return fmt.Errorf("writing %s: %w", TextFile, err)
	}

	cf, err := zw.Create(CSVFile)
	if err != nil {
		return fmt.Errorf("adding %s: %w", CSVFile, err)
	}

	if err := s.WriteCSV(cf); err != nil {
		return err
	}

	return zw.Close()
}

// Export writes the text report and the CSV into outputDir and returns their paths.
func (s *Service) Export(outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	textPath := filepath.Join(outputDir, TextFile)
	if err := os.WriteFile(textPath, []byte(s.Text()), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", TextFile, err)
	}

	csvPath := filepath.Join(outputDir, CSVFile)

	f, err := os.Create(csvPath)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", CSVFile, err)
	}
	defer f.Close()

	if err := s.WriteCSV(f); err != nil {
		return nil, err
	}

	return []string{textPath, csvPath}, nil
}
