package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/rsprolipsi/compplan/internal/calculator"
	"github.com/rsprolipsi/compplan/internal/route"
	"github.com/rsprolipsi/compplan/internal/settings"
)

// report is the printable state of one page.
type report struct {
	View     string          `yaml:"view"`
	Path     string          `yaml:"path"`
	State    string          `yaml:"state"`
	Banner   string          `yaml:"banner,omitempty"`
	Issues   []issueReport   `yaml:"issues,omitempty"`
	Sections []sectionReport `yaml:"sections"`
}

type issueReport struct {
	Field       string `yaml:"field"`
	Message     string `yaml:"message"`
	Enforcement string `yaml:"enforcement"`
}

type sectionReport struct {
	Name       string        `yaml:"name"`
	Pool       string        `yaml:"pool"`
	Total      string        `yaml:"total,omitempty"`
	Difference string        `yaml:"difference,omitempty"`
	Valid      *bool         `yaml:"valid,omitempty"`
	Entries    []entryReport `yaml:"entries"`
}

type entryReport struct {
	Label      string `yaml:"label"`
	Percentage string `yaml:"percentage,omitempty"`
	Amount     string `yaml:"amount"`
}

func newReport(v route.View, state settings.State, banner settings.Banner, issues []settings.Issue, preview settings.Preview) report {
	r := report{
		View:  v.Title(),
		Path:  v.Path(),
		State: state.String(),
	}
	if !banner.Empty() {
		r.Banner = banner.Message
	}
	for _, i := range issues {
		r.Issues = append(r.Issues, issueReport{
			Field:       i.Field,
			Message:     i.Message,
			Enforcement: i.Enforcement.String(),
		})
	}
	for _, s := range preview.Sections {
		sr := sectionReport{Name: s.Name, Pool: calculator.FormatBRL(s.Pool)}
		if s.Check != nil {
			valid := s.Check.Valid
			sr.Total = s.Check.ActualTotal.String() + "%"
			sr.Difference = s.Check.Difference.String()
			sr.Valid = &valid
		}
		for _, e := range s.Entries {
			er := entryReport{Label: e.Label, Amount: calculator.FormatBRL(e.Amount)}
			if !e.Percentage.IsZero() {
				er.Percentage = e.Percentage.String() + "%"
			}
			sr.Entries = append(sr.Entries, er)
		}
		r.Sections = append(r.Sections, sr)
	}
	return r
}

// Output formats.
const (
	outputText = "text"
	outputYAML = "yaml"
)

func render(w io.Writer, format string, reports ...report) error {
	switch format {
	case outputYAML:
		return renderYAML(w, reports)
	case outputText, "":
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := renderText(w, r); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, outputText, outputYAML)
	}
}

func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func renderText(w io.Writer, r report) error {
	fmt.Fprintf(w, "%s (%s) [%s]\n", r.View, r.Path, r.State)
	if r.Banner != "" {
		fmt.Fprintf(w, "  %s\n", r.Banner)
	}
	for _, i := range r.Issues {
		fmt.Fprintf(w, "  %s %s: %s\n", strings.ToUpper(i.Enforcement), i.Field, i.Message)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range r.Sections {
		fmt.Fprintf(tw, "\n  %s\tpool %s", s.Name, s.Pool)
		if s.Valid != nil {
			status := "ok"
			if !*s.Valid {
				status = "off by " + s.Difference
			}
			fmt.Fprintf(tw, "\ttotal %s (%s)", s.Total, status)
		}
		fmt.Fprintln(tw)
		for _, e := range s.Entries {
			fmt.Fprintf(tw, "    %s\t%s\t%s\n", e.Label, e.Percentage, e.Amount)
		}
	}
	return tw.Flush()
}

// routeRow is one line of the routes listing.
type routeRow struct {
	Path  string `yaml:"path"`
	Title string `yaml:"title"`
}

func renderRoutes(w io.Writer, format string, views []route.View) error {
	rows := make([]routeRow, len(views))
	for i, v := range views {
		rows[i] = routeRow{Path: v.Path(), Title: v.Title()}
	}
	if format == outputYAML {
		return renderYAML(w, rows)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.Path, r.Title)
	}
	return tw.Flush()
}
