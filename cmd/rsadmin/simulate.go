package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rsprolipsi/compplan/internal/calculator"
	"github.com/rsprolipsi/compplan/internal/settings"
)

// scenarioFile is the YAML form of a settings.Scenario:
//
//	uplines: [ana, bruno, carla]   # direct sponsor first
//	ranking: [davi, eva]           # Top SIGMA position 1 first
//	lines: [100, 50, 10]           # career cycles per direct line
//	inactive: [bruno]              # not active in the base matrix
type scenarioFile struct {
	Uplines  []string `yaml:"uplines"`
	Ranking  []string `yaml:"ranking"`
	Lines    []int    `yaml:"lines"`
	Inactive []string `yaml:"inactive"`
}

func readScenario(r io.Reader) (settings.Scenario, error) {
	var f scenarioFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return settings.Scenario{}, fmt.Errorf("failed to decode scenario: %w", err)
	}

	sc := settings.Scenario{}
	for i, id := range f.Uplines {
		sc.Uplines = append(sc.Uplines, calculator.Upline{ID: id, Level: i + 1})
	}
	for i, id := range f.Ranking {
		sc.Ranking = append(sc.Ranking, calculator.RankedConsultant{ID: id, Position: i + 1})
	}
	for i, n := range f.Lines {
		if n < 0 {
			return settings.Scenario{}, fmt.Errorf("line %d: cycles cannot be negative", i+1)
		}
		sc.Lines = append(sc.Lines, calculator.LineCycles{Line: i + 1, Cycles: n})
	}

	inactive := make(map[string]bool, len(f.Inactive))
	for _, id := range f.Inactive {
		inactive[id] = true
	}
	sc.Eligible = calculator.EligibilityFunc(func(_ context.Context, id string) (bool, error) {
		return !inactive[id], nil
	})
	return sc, nil
}

func (a *app) simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate -f scenario.yaml",
		Short: "Distribute the bonus pools over a hypothetical cycle",
		Long: `Load the whole plan and pay one cycle close: depth and fidelity bonuses
by dynamic compression over the uplines, Top SIGMA over the ranking, and
the career ladder by VMEC-capped cycles.

The scenario file lists uplines (direct sponsor first), ranking (position 1
first), lines (cycles per direct line) and inactive consultants. Use "-f -"
to read it from stdin and --defaults to simulate the built-in plan.`,
		Args: cobra.NoArgs,
		RunE: a.runSimulate,
	}
	cmd.Flags().StringVarP(&a.scenario, "file", "f", "", "Scenario YAML file, or - for stdin")
	cmd.Flags().BoolVar(&a.useDefaults, "defaults", false, "Simulate the built-in plan instead of the server's")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) runSimulate(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if a.scenario != "-" {
		f, err := os.Open(a.scenario)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	sc, err := readScenario(in)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	plan := settings.DefaultPlan()
	if !a.useDefaults {
		if plan, err = settings.LoadPlan(ctx, a.client); err != nil {
			return err
		}
	}

	payout, err := settings.SimulatePayout(ctx, plan, sc)
	if err != nil {
		return err
	}
	r := newPayoutReport(payout)
	if a.output == outputYAML {
		return renderYAML(cmd.OutOrStdout(), r)
	}
	return renderPayout(cmd.OutOrStdout(), r)
}

type payoutReport struct {
	CyclePayout string                `yaml:"cycle_payout"`
	Sections    []payoutSectionReport `yaml:"sections"`
	Career      []pinReport           `yaml:"career"`
	Pin         string                `yaml:"pin,omitempty"`
}

type payoutSectionReport struct {
	Name          string              `yaml:"name"`
	Pool          string              `yaml:"pool"`
	Paid          string              `yaml:"paid"`
	Beneficiaries []beneficiaryReport `yaml:"beneficiaries"`
}

type beneficiaryReport struct {
	Consultant string `yaml:"consultant"`
	Level      int    `yaml:"level"`
	Amount     string `yaml:"amount"`
}

type pinReport struct {
	Name        string `yaml:"name"`
	Required    int    `yaml:"required"`
	ValidCycles int    `yaml:"valid_cycles"`
	Qualified   bool   `yaml:"qualified"`
	CycleBonus  string `yaml:"cycle_bonus"`
	Reward      string `yaml:"reward"`
}

func newPayoutReport(p settings.Payout) payoutReport {
	r := payoutReport{CyclePayout: calculator.FormatBRL(p.CyclePayout), Pin: p.Pin}
	for _, s := range p.Sections {
		sr := payoutSectionReport{
			Name: s.Name,
			Pool: calculator.FormatBRL(s.Pool),
			Paid: calculator.FormatBRL(s.Paid),
		}
		for _, b := range s.Beneficiaries {
			sr.Beneficiaries = append(sr.Beneficiaries, beneficiaryReport{
				Consultant: b.ConsultantID,
				Level:      b.Level,
				Amount:     calculator.FormatBRL(b.Amount),
			})
		}
		r.Sections = append(r.Sections, sr)
	}
	for _, s := range p.Career {
		r.Career = append(r.Career, pinReport{
			Name:        s.Name,
			Required:    s.Required,
			ValidCycles: s.ValidCycles,
			Qualified:   s.Qualified,
			CycleBonus:  calculator.FormatBRL(s.CycleBonus),
			Reward:      calculator.FormatBRL(s.Reward),
		})
	}
	return r
}

func renderPayout(w io.Writer, r payoutReport) error {
	fmt.Fprintf(w, "Cycle payout %s\n", r.CyclePayout)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range r.Sections {
		fmt.Fprintf(tw, "\n  %s\tpool %s\tpaid %s\n", s.Name, s.Pool, s.Paid)
		for _, b := range s.Beneficiaries {
			fmt.Fprintf(tw, "    L%d\t%s\t%s\n", b.Level, b.Consultant, b.Amount)
		}
	}
	fmt.Fprintf(tw, "\n  career\tPIN %s\n", orNone(r.Pin))
	for _, p := range r.Career {
		mark := " "
		if p.Qualified {
			mark = "*"
		}
		fmt.Fprintf(tw, "  %s %s\t%d/%d cycles\t%s\t%s\n", mark, p.Name, p.ValidCycles, p.Required, p.CycleBonus, p.Reward)
	}
	return tw.Flush()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
