// Package console is the interactive surface: prompts, menus and result
// rendering. It consumes only the exported APIs of the core packages.
package console

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dynoquery/dynoquery/pkg/models"
)

// errQuit signals that input was closed and the menu loop should end
var errQuit = errors.New("input closed")

// Console wraps line input and result rendering
type Console struct {
	rl  *readline.Instance
	out io.Writer
}

// NewConsole initializes readline-backed input
func NewConsole() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize console: %w", err)
	}
	return &Console{rl: rl, out: rl.Stdout()}, nil
}

// Close releases the readline instance
func (c *Console) Close() {
	if c.rl != nil {
		_ = c.rl.Close()
	}
}

func (c *Console) println(args ...interface{}) {
	fmt.Fprintln(c.out, args...)
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// prompt asks one question and returns the trimmed answer
func (c *Console) prompt(label string) (string, error) {
	c.rl.SetPrompt(label)
	line, err := c.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", errQuit
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptNonEmpty re-asks until a non-empty answer arrives
func (c *Console) promptNonEmpty(label string) (string, error) {
	for {
		v, err := c.prompt(label)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
		c.println("Value cannot be empty.")
	}
}

// promptIntRange re-asks until an integer in [lo, hi] arrives
func (c *Console) promptIntRange(label string, lo, hi int) (int, error) {
	for {
		v, err := c.prompt(label)
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(v)
		if convErr == nil && n >= lo && n <= hi {
			return n, nil
		}
		c.printf("Enter a number between %d and %d.\n", lo, hi)
	}
}

// confirm asks a yes/no question
func (c *Console) confirm(label string) (bool, error) {
	v, err := c.prompt(label)
	if err != nil {
		return false, err
	}
	ans := strings.ToLower(v)
	return ans == "y" || ans == "yes", nil
}

// choose presents a numbered list and returns the selected item
func (c *Console) choose(label string, items []string) (string, error) {
	for i, item := range items {
		c.printf("%d. %s\n", i+1, item)
	}
	n, err := c.promptIntRange(label, 1, len(items))
	if err != nil {
		return "", err
	}
	return items[n-1], nil
}

// renderResult prints a result set as a table
func (c *Console) renderResult(rs models.ResultSet) {
	if len(rs.Rows) == 0 {
		c.println("No rows returned.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(rs.Columns))
	for i, col := range rs.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rs.Rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			if v == nil {
				r[i] = "NULL"
			} else {
				r[i] = v
			}
		}
		t.AppendRow(r)
	}

	t.Render()
	c.printf("(%d rows)\n", len(rs.Rows))
}

var (
	intPattern   = regexp.MustCompile(`^-?\d+$`)
	floatPattern = regexp.MustCompile(`^-?\d+\.\d+$`)
)

// parseParam applies the report-parameter heuristic: integers, decimals
// and booleans are typed, blank is NULL, everything else stays a string.
func parseParam(raw string) interface{} {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return nil
	case intPattern.MatchString(s):
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	case floatPattern.MatchString(s):
		v, _ := strconv.ParseFloat(s, 64)
		return v
	case strings.EqualFold(s, "true"):
		return true
	case strings.EqualFold(s, "false"):
		return false
	default:
		return s
	}
}
