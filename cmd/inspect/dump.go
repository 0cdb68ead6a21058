package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"teamspace/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

const (
	kindBoards   = "boards"
	kindTasks    = "tasks"
	kindMessages = "messages"
)

type layout struct {
	prefix string
	header []string
	row    func(val []byte) ([]string, error)
}

var layouts = map[string]layout{
	kindBoards: {
		prefix: "board:",
		header: []string{"ID", "Name", "Created by", "Created at"},
		row: decoded(func(b domain.Board) []string {
			return []string{strconv.FormatInt(int64(b.ID), 10), b.Name, b.CreatedBy, b.CreatedAt.Format("2006-01-02 15:04:05")}
		}),
	},
	kindTasks: {
		prefix: "task:",
		header: []string{"Board", "Task", "Title", "Status", "Assignee", "Updated at"},
		row: decoded(func(t domain.Task) []string {
			return []string{
				strconv.FormatInt(int64(t.BoardID), 10), shortID(t.ID.String()), t.Title,
				string(t.Status), t.AssigneeID, t.UpdatedAt.Format("2006-01-02 15:04:05"),
			}
		}),
	},
	kindMessages: {
		prefix: "msg:",
		header: []string{"Room", "Message", "Author", "Content", "At"},
		row: decoded(func(m domain.ChatMessage) []string {
			return []string{m.Room, shortID(m.ID.String()), m.Author, m.Content, m.At.Format("15:04:05")}
		}),
	},
}

func decoded[T any](columns func(T) []string) func([]byte) ([]string, error) {
	return func(val []byte) ([]string, error) {
		var v T
		if err := json.Unmarshal(val, &v); err != nil {
			return nil, err
		}
		return columns(v), nil
	}
}

// shortID keeps the first 8 characters for readability.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// dump writes one table of the given kind. Records that fail to decode are reported in place.
func dump(db *badger.DB, kind string, w io.Writer, colours bool) error {
	l, ok := layouts[kind]
	if !ok {
		return fmt.Errorf("unknown kind %q", kind)
	}

	title := fmt.Sprintf("  ====== %s ======", kind)
	if colours {
		title = color.New(color.BgBlack, color.FgGreen).Render(title)
	}
	fmt.Fprintln(w, title)

	table := tablewriter.NewWriter(w)
	table.SetHeader(l.header)
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

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(l.prefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				row, err := l.row(val)
				if err != nil {
					fmt.Fprintf(w, "Error unmarshaling key %s: %v\n", item.Key(), err)
					return nil
				}
				table.Append(row)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	fmt.Fprintf(w, "%d %s\n\n", table.NumLines(), kind)
	return nil
}
