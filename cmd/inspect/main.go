// Command inspect prints the keys of a secure-chat badger store as a table.
// Group records are decoded into a summary; message bodies are never shown.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"secure-chat/internal"
	"secure-chat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

var header = []string{"Key", "Type", "Namespace", "Timestamp", "Entity ID", "Detail"}

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "group:", "Prefix to scan")
	limit := flag.Int("limit", 500, "Maximum number of rows, 0 for all")
	colours := flag.Bool("colours", true, "Colourize the title")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	rows, err := buildRows(db, *prefix, *limit)
	if err != nil {
		log.Fatal(err)
	}

	title := fmt.Sprintf("  ====== %s (%d keys) ======", *prefix, len(rows))
	if *colours {
		title = color.New(color.BgBlack, color.FgGreen).Render(title)
	}
	fmt.Println(title)
	render(os.Stdout, rows)
}

func buildRows(db *badger.DB, prefix string, limit int) ([][]string, error) {
	scanned, err := internal.ScanKeys(db, prefix, limit, groupMapper)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(scanned))
	for _, row := range scanned {
		rows = append(rows, []string{row.Key, row.Type, row.Namespace, row.Timestamp, shortID(row.EntityID), detailOf(row)})
	}
	return rows, nil
}

// groupMapper decodes group values; other keys keep the default description.
func groupMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)
	if row.Type != "group" {
		return row
	}
	group, err := repositories.DecodeGroup(val)
	if err != nil {
		row.Detail = "undecodable: " + err.Error()
		return row
	}
	row.Namespace = string(group.Type)
	row.Timestamp = group.CreatedAt.Format("2006-01-02 15:04:05")
	row.Detail = fmt.Sprintf("group %q owner=%s members=%d/%d requests=%d banished=%d",
		group.Name, shortID(group.OwnerID), len(group.Members), group.MaxMembers,
		len(group.JoinRequests), len(group.BanishedUsers))
	return row
}

func detailOf(row internal.InspectRow) string {
	if row.Detail != "" {
		return row.Detail
	}
	return "Size: " + strconv.Itoa(row.Size) + " bytes"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func render(w io.Writer, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.AppendBulk(rows)
	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
