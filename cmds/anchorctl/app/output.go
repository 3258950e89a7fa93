package app

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/mandelsoft/goutils/sliceutils"
	"sigs.k8s.io/yaml"
)

// Table is the tabular representation of a command result.
type Table struct {
	Columns []string
	Rows    [][]string
}

func Output(w io.Writer, format string, t *Table, elems interface{}) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "":
		return PrintTable(w, t, "")
	case "json":
		data, err := json.Marshal(elems)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", string(data))
	case "yaml":
		data, err := yaml.Marshal(elems)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s", string(data))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}

func PrintTable(w io.Writer, t *Table, sortField string) error {
	if len(t.Rows) == 0 {
		fmt.Fprintf(w, "no anchor found\n")
		return nil
	}

	sortField = strings.ToUpper(strings.TrimSpace(sortField))
	if sortField != "" {
		sort := slices.Index(t.Columns, sortField)
		if sort < 0 {
			return fmt.Errorf("unknown sort field %q", sortField)
		}
		slices.SortStableFunc(t.Rows, func(a, b []string) int { return strings.Compare(a[sort], b[sort]) })
	}

	max := make([]int, len(t.Columns))
	for i, s := range t.Columns {
		max[i] = len(s)
	}
	for _, cols := range t.Rows {
		for i, s := range cols {
			if max[i] < len(s) {
				max[i] = len(s)
			}
		}
	}

	f := formatString(max)
	printLine(w, t.Columns, f)
	for _, cols := range t.Rows {
		printLine(w, cols, f)
	}
	return nil
}

func printLine(w io.Writer, cols []string, msg string) {
	fmt.Fprintf(w, "%s\n", strings.TrimRight(fmt.Sprintf(msg, sliceutils.Convert[any](cols)...), " "))
}

func formatString(max []int) string {
	msg := ""
	for _, l := range max {
		msg += fmt.Sprintf("%%-%ds ", l)
	}
	return msg[:len(msg)-1]
}
