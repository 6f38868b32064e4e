package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/1F47E/go-framereel/pkg/meta"
)

func probe(w io.Writer, filename string) error {
	m, err := meta.Read(filename)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, metaTable(m))
	return nil
}

func metaTable(m meta.Metadata) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Path", m.Path},
		{"Frame size", m.FrameSize},
		{"Frame rate", fmt.Sprintf("%d fps", m.FrameRate)},
		{"Duration", m.Duration},
		{"Frames", m.Frames()},
		{"Video codec", m.VideoCodec},
		{"Audio codec", m.AudioCodec},
	})
	return t.Render()
}
