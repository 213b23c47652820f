package importer

import "strings"

type column int

const (
	colBarcode column = iota
	colName
	colPrice
)

// headerAliases lists the header spellings accepted for each column, lower-cased.
var headerAliases = map[column][]string{
	colBarcode: {"ean", "código", "codigo", "código de barras", "codigo de barras", "barcode", "gtin"},
	colName:    {"nome", "produto", "name", "product", "descrição", "descricao"},
	colPrice:   {"valor", "preço", "preco", "price"},
}

// layout maps the recognised columns of a header row to their index.
type layout map[column]int

// matchHeader reports the layout of row when it carries at least the barcode and name columns.
func matchHeader(row []string) (layout, bool) {
	l := make(layout)

	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "" {
			continue
		}

		for col, aliases := range headerAliases {
			if _, seen := l[col]; seen {
				continue
			}

			for _, alias := range aliases {
				if name == alias {
					l[col] = i
				}
			}
		}
	}

	_, hasBarcode := l[colBarcode]
	_, hasName := l[colName]

	return l, hasBarcode && hasName
}

func (l layout) cell(row []string, col column) string {
	idx, ok := l[col]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
