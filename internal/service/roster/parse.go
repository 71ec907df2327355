package roster

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// findTable walks the document and returns the first <table> element carrying
// the given class token, or nil when none exists.
func findTable(node *html.Node, class string) *html.Node {
	if node.Type == html.ElementNode && node.Data == "table" && hasClass(node, class) {
		return node
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if table := findTable(child, class); table != nil {
			return table
		}
	}

	return nil
}

// hasClass reports whether the element's class attribute contains the token.
func hasClass(node *html.Node, class string) bool {
	for _, attr := range node.Attr {
		if attr.Key != "class" {
			continue
		}

		for _, token := range strings.Fields(attr.Val) {
			if token == class {
				return true
			}
		}
	}

	return false
}

// tableRows returns the cell texts of every data row in the table. Header
// rows use <th> cells and therefore produce no entry.
func tableRows(table *html.Node) [][]string {
	var rows [][]string

	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			if cells := rowCells(node); len(cells) > 0 {
				rows = append(rows, cells)
			}

			return
		}

		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	walk(table)

	return rows
}

// rowCells returns the trimmed text of each <td> cell in the row.
func rowCells(row *html.Node) []string {
	var cells []string

	for child := row.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "td" {
			cells = append(cells, cellText(child))
		}
	}

	return cells
}

// cellText flattens a cell's text content, collapsing interior whitespace.
func cellText(node *html.Node) string {
	var sb strings.Builder

	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}

		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	walk(node)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// parseTable decodes the body, locates the table with the given class and
// returns its data rows.
func parseTable(body io.Reader, class string) ([][]string, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML document: %w", err)
	}

	table := findTable(doc, class)
	if table == nil {
		return nil, fmt.Errorf("no table with class %q in document", class)
	}

	return tableRows(table), nil
}

// parseInt converts a cell to an integer, naming the column on failure.
func parseInt(cell, column string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s %q: %w", column, cell, err)
	}

	return value, nil
}

// parseFloat converts a cell to a float, naming the column on failure.
func parseFloat(cell, column string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s %q: %w", column, cell, err)
	}

	return value, nil
}
