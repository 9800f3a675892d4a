package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/c14220110/apotek-antrian-backend/internal/antrian/models"
)

const upNextLimit = 5

func renderBoard(board models.DisplayBoard, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "APOTEK  %s\n\n", now.Format("15:04:05"))

	serving := newTable("NOW SERVING")
	if board.NowServing != nil {
		serving.AppendRow(table.Row{text.Bold.Sprint(board.NowServing.QueueNumber)})
	} else {
		serving.AppendRow(table.Row{"-"})
	}
	b.WriteString(serving.Render())
	b.WriteString("\n\n")

	upNext := newTable("UP NEXT", "WAITING")
	for i, e := range board.UpNext {
		if i == upNextLimit {
			upNext.AppendFooter(table.Row{fmt.Sprintf("+%d lagi", len(board.UpNext)-upNextLimit), ""})
			break
		}
		upNext.AppendRow(table.Row{e.QueueNumber, waited(e, now)})
	}
	b.WriteString(upNext.Render())
	b.WriteString("\n\n")

	active := newTable("DISIAPKAN", "SEVERITY", "WAITING")
	active.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	for _, e := range board.Active {
		active.AppendRow(table.Row{e.QueueNumber, strconv.Itoa(e.SeverityImpact), waited(e, now)})
	}
	b.WriteString(active.Render())

	if len(board.RecentlyCompleted) > 0 {
		done := make([]string, len(board.RecentlyCompleted))
		for i, e := range board.RecentlyCompleted {
			done[i] = e.QueueNumber
		}
		fmt.Fprintf(&b, "\n\nSelesai: %s", strings.Join(done, "  "))
	}
	b.WriteString("\n")
	return b.String()
}

func newTable(headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	tw.AppendHeader(row)
	return tw
}

func waited(e models.QueueEntry, now time.Time) string {
	if e.EntryTime.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%dm", int(now.Sub(e.EntryTime).Minutes()))
}
