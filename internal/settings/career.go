package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/rsprolipsi/compplan/internal/calculator"
	"github.com/rsprolipsi/compplan/internal/models"
	"github.com/rsprolipsi/compplan/internal/storage"
)

// ErrTooManyPins is returned when adding a PIN beyond models.MaxPinLevels.
var ErrTooManyPins = fmt.Errorf("at most %d PINs are allowed", models.MaxPinLevels)

// ErrPinNotFound is returned when removing a PIN the draft does not hold.
var ErrPinNotFound = errors.New("pin not found")

// PinRow is one editable row of the Career Plan table.
type PinRow struct {
	ID       string
	Name     string
	Cycles   int
	MinLines int
	VMEC     string
	Bonus    decimal.Decimal
	Image    *string
	Active   bool
}

// VMECRule parses the row's VMEC notation.
func (r PinRow) VMECRule() calculator.VMEC {
	return calculator.VMEC{RequiredLines: r.MinLines, Percentages: calculator.ParseVMEC(r.VMEC)}
}

// CareerDraft is the editable Career Plan: general rules plus the ordered PIN
// ladder. PIN rewards are independent amounts, not shares of a pool.
type CareerDraft struct {
	BonusFactorValue  decimal.Decimal
	BonusPercentage   decimal.Decimal
	CalculationPeriod string
	Pins              []PinRow
	// Removed holds the IDs of stored PINs deleted from the draft.
	Removed []string
}

// NetBonusPerCycle is BonusFactorValue * BonusPercentage / 100.
func (d CareerDraft) NetBonusPerCycle() decimal.Decimal {
	return calculator.ComputePoolAmount(d.BonusFactorValue, d.BonusPercentage)
}

// AddPin appends a blank row with a temporary ID and returns that ID.
func (d *CareerDraft) AddPin(name string) (string, error) {
	if len(d.Pins) >= models.MaxPinLevels {
		return "", ErrTooManyPins
	}
	if name == "" {
		name = "Novo PIN"
	}
	row := PinRow{
		ID:     models.NewTemporaryID(),
		Name:   name,
		VMEC:   "—",
		Bonus:  decimal.Zero,
		Active: true,
	}
	d.Pins = append(d.Pins, row)
	return row.ID, nil
}

// RemovePin drops the row with id. Stored rows are remembered so Save can
// delete them.
func (d *CareerDraft) RemovePin(id string) error {
	for i, p := range d.Pins {
		if p.ID != id {
			continue
		}
		d.Pins = append(d.Pins[:i], d.Pins[i+1:]...)
		if !models.IsTemporaryID(id) {
			d.Removed = append(d.Removed, id)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrPinNotFound, id)
}

// Set changes one field from its text form. Keys: factor, percentage,
// period, add-pin (value is the name), remove-pin (value is the ID or the
// 1-based row number) and pin.N.{name,cycles,lines,vmec,bonus,image}.
func (d *CareerDraft) Set(key, value string) error {
	var err error
	switch key {
	case "factor":
		d.BonusFactorValue, err = parseAmount(value)
		return err
	case "percentage":
		d.BonusPercentage, err = parseAmount(value)
		return err
	case "period":
		d.CalculationPeriod = value
		return nil
	case "add-pin":
		_, err = d.AddPin(value)
		return err
	case "remove-pin":
		if _, i, _, ok := indexedKey("pin." + value); ok && i < len(d.Pins) {
			return d.RemovePin(d.Pins[i].ID)
		}
		return d.RemovePin(value)
	}

	prefix, i, field, ok := indexedKey(key)
	if !ok || prefix != "pin" {
		return unknownField("career", key)
	}
	if i >= len(d.Pins) {
		return fmt.Errorf("pin %d out of range (have %d)", i+1, len(d.Pins))
	}
	row := &d.Pins[i]
	switch field {
	case "name":
		row.Name = strings.TrimSpace(value)
	case "cycles":
		row.Cycles, err = parseCount(value)
	case "lines":
		row.MinLines, err = parseCount(value)
	case "vmec":
		row.VMEC = value
	case "bonus":
		row.Bonus, err = calculator.ParseBRL(value)
	case "image":
		if value == "" {
			row.Image = nil
		} else {
			row.Image = &value
		}
	default:
		return unknownField("career", key)
	}
	return err
}

// CareerPage is the Career Plan settings page.
type CareerPage struct{}

var _ Page[CareerDraft] = CareerPage{}

func (CareerPage) Name() string { return "career plan" }

func (CareerPage) Defaults() CareerDraft {
	return careerDraftFrom(models.DefaultCareerRules(), models.DefaultPinLevels())
}

func (CareerPage) Clone(d CareerDraft) CareerDraft {
	d.Pins = append([]PinRow(nil), d.Pins...)
	d.Removed = append([]string(nil), d.Removed...)
	return d
}

// Load reads the rules and the ladder. An empty ladder is replaced by the
// official one.
func (CareerPage) Load(ctx context.Context, remote Remote) (CareerDraft, error) {
	rules, err := remote.GetCareerRules(ctx)
	if err != nil {
		return CareerDraft{}, fmt.Errorf("failed to load career rules: %w", err)
	}
	pins, err := remote.ListPinLevels(ctx)
	if err != nil {
		return CareerDraft{}, fmt.Errorf("failed to load pin levels: %w", err)
	}
	if len(pins) == 0 {
		pins = models.DefaultPinLevels()
	}
	return careerDraftFrom(*rules, pins), nil
}

func careerDraftFrom(rules models.CareerRules, pins []models.PinLevel) CareerDraft {
	d := CareerDraft{
		BonusFactorValue:  calculator.Coerce(rules.BonusFactorValue),
		BonusPercentage:   calculator.Coerce(rules.BonusPercentage),
		CalculationPeriod: rules.CalculationPeriod,
	}
	for _, p := range pins {
		d.Pins = append(d.Pins, PinRow{
			ID:       p.ID,
			Name:     p.Name,
			Cycles:   p.DisplayOrder,
			MinLines: p.RequiredPersonalRecruits,
			VMEC:     p.Benefits,
			Bonus:    decimal.New(p.RequiredPV, -2),
			Image:    p.PinImage,
			Active:   p.IsActive,
		})
	}
	return d
}

// Validate checks the ladder size, names, rewards and each PIN's VMEC caps.
// No rule ties the rewards to 100%.
func (CareerPage) Validate(d CareerDraft) []Issue {
	var issues []Issue
	if d.BonusPercentage.GreaterThan(hundred) {
		issues = append(issues, blockIssue("percentage", "Career bonus percentage must be between 0 and 100"))
	}
	switch d.CalculationPeriod {
	case "Mensal", "Trimestral", "Semestral", "Anual":
	default:
		issues = append(issues, blockIssue("period", fmt.Sprintf("Unknown calculation period %q", d.CalculationPeriod)))
	}
	if len(d.Pins) > models.MaxPinLevels {
		issues = append(issues, blockIssue("pins", ErrTooManyPins.Error()))
	}

	for i, p := range d.Pins {
		field := fmt.Sprintf("pin.%d", i+1)
		if strings.TrimSpace(p.Name) == "" {
			issues = append(issues, blockIssue(field+".name", fmt.Sprintf("PIN %d needs a name", i+1)))
		}
		if p.Bonus.IsNegative() {
			issues = append(issues, blockIssue(field+".bonus", fmt.Sprintf("PIN %s: reward cannot be negative", p.Name)))
		}
		vmec := calculator.ParseVMEC(p.VMEC)
		issues = checkRule(issues, field+".vmec",
			calculator.CapRule("PIN "+p.Name+" VMEC", calculator.Block),
			entriesOf(calculator.Levels, vmec))
	}
	return issues
}

// Save writes the rules, deletes removed PINs, then creates or updates every
// row in order. The first failure stops the save. Deleted IDs leave
// d.Removed and created rows take their server ID as each call succeeds, so
// saving again picks up where the failure happened. A PIN that is already
// gone counts as deleted.
func (CareerPage) Save(ctx context.Context, remote Remote, d *CareerDraft) error {
	if _, err := remote.UpdateCareerRules(ctx, &models.CareerRules{
		BonusFactorValue:  calculator.Float(d.BonusFactorValue),
		BonusPercentage:   calculator.Float(d.BonusPercentage),
		CalculationPeriod: d.CalculationPeriod,
	}); err != nil {
		return fmt.Errorf("failed to save career rules: %w", err)
	}

	for len(d.Removed) > 0 {
		id := d.Removed[0]
		if err := remote.DeletePinLevel(ctx, id); err != nil && !isNotFound(err) {
			return fmt.Errorf("failed to delete pin %s: %w", id, err)
		}
		d.Removed = d.Removed[1:]
	}

	for i := range d.Pins {
		row := &d.Pins[i]
		level := pinLevelFrom(*row)
		if !models.IsTemporaryID(row.ID) {
			if _, err := remote.UpdatePinLevel(ctx, level); err != nil {
				return fmt.Errorf("failed to save pin %s: %w", row.Name, err)
			}
			continue
		}
		created, err := remote.CreatePinLevel(ctx, level)
		if err != nil {
			return fmt.Errorf("failed to save pin %s: %w", row.Name, err)
		}
		if created != nil && created.ID != "" {
			row.ID = created.ID
		}
	}
	return nil
}

// isNotFound reports whether err says the remote object does not exist,
// either from the store directly or through the RPC layer.
func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound) || connect.CodeOf(err) == connect.CodeNotFound
}

func pinLevelFrom(row PinRow) *models.PinLevel {
	vmec := row.VMEC
	if strings.TrimSpace(vmec) == "" {
		vmec = "—"
	}
	level := &models.PinLevel{
		Name:                     row.Name,
		Code:                     models.PinCode(row.Name),
		DisplayOrder:             row.Cycles,
		RequiredPersonalRecruits: row.MinLines,
		Benefits:                 vmec,
		RequiredPV:               row.Bonus.Shift(2).Round(0).IntPart(),
		PinImage:                 row.Image,
		IsActive:                 row.Active,
	}
	if !models.IsTemporaryID(row.ID) {
		level.ID = row.ID
	}
	return level
}

// Preview lists the net bonus per cycle and every PIN reward.
func (CareerPage) Preview(d CareerDraft) Preview {
	s := Section{Name: "career", Pool: d.NetBonusPerCycle()}
	for _, p := range d.Pins {
		s.Entries = append(s.Entries, PreviewEntry{Label: p.Name, Amount: p.Bonus})
	}
	return Preview{Sections: []Section{s}}
}
