// Package export renders a surviving network set for downstream
// consumers: a two-column CSV file and a terminal table.
package export

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// File permissions for exported reports.
const exportFilePerm = 0644

// WriteCSV writes networks as two-column CSV: a header row "id,label",
// then one row per network with a zero-based id and the CIDR string as a
// quoted label.
//
// The label is always quoted, so the format is emitted directly rather
// than through encoding/csv, which quotes only fields that need it.
func WriteCSV(w io.Writer, networks []string) error {
	if _, err := fmt.Fprintln(w, "id,label"); err != nil {
		return err
	}
	for i, network := range networks {
		if _, err := fmt.Fprintf(w, "%d,%q\n", i, network); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSVFile writes the CSV report to the given path, truncating any
// existing file.
func WriteCSVFile(path string, networks []string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, exportFilePerm)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteCSV(file, networks); err != nil {
		return err
	}
	return file.Sync()
}

// RenderTable renders networks as an id/label table for terminal output.
func RenderTable(w io.Writer, networks []string) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Network")
	for i, network := range networks {
		if err := table.Append([]string{strconv.Itoa(i), network}); err != nil {
			return err
		}
	}
	return table.Render()
}
