package service

import (
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rsprolipsi/compplan/internal/calculator"
	"github.com/rsprolipsi/compplan/internal/models"
)

// ruleCheck is one sum rule applied to an incoming document.
type ruleCheck struct {
	rule    calculator.SumRule
	entries []calculator.Entry
}

// checkDocument runs the struct tags of doc and then every rule. Warn rules
// are counted and logged; the first Block rule rejects the write.
func (s *ConfigService) checkDocument(key models.DocumentKey, doc any, rules ...ruleCheck) error {
	if err := s.validate.Struct(doc); err != nil {
		s.metrics.ObserveViolation(key.String(), "fields", calculator.Block.String())
		return connect.NewError(connect.CodeInvalidArgument, fieldErrors(err))
	}

	for _, rc := range rules {
		_, v := rc.rule.Evaluate(rc.entries)
		if v == nil {
			continue
		}
		s.metrics.ObserveViolation(key.String(), v.Rule, v.Enforcement.String())
		if v.Blocking() {
			return connect.NewError(connect.CodeInvalidArgument, v)
		}
		s.logger.Warn("Document saved with rule warning", "document", key, "rule", v.Rule, "reason", v.Message)
	}
	return nil
}

// fieldErrors renders validator errors as one readable message.
func fieldErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
		}
	}
	return fmt.Errorf("invalid document: %s", strings.Join(msgs, "; "))
}

var hundred = decimal.NewFromInt(100)

// fractionEntries turns stored fractions (0.07) into percentage entries (7).
// The conversion is done in decimal so 0.07 becomes exactly 7.
func fractionEntries(labeler func(...float64) []calculator.Entry, fractions []float64) []calculator.Entry {
	entries := labeler(make([]float64, len(fractions))...)
	for i, f := range fractions {
		entries[i].Percentage = calculator.Coerce(f).Mul(hundred)
	}
	return entries
}

func fidelityRules(cfg *models.FidelityBonusConfig) []ruleCheck {
	levels := cfg.OrderedLevels()
	fractions := make([]float64, len(levels))
	for i, l := range levels {
		fractions[i] = l.Percentage
	}
	entries := fractionEntries(calculator.Levels, fractions)
	return []ruleCheck{
		{rule: calculator.CapRule("fidelity levels", calculator.Block), entries: entries},
		{rule: calculator.NewSumRule("fidelity levels", calculator.Warn), entries: entries},
	}
}

func topSigmaRules(cfg *models.TopSigmaConfig) []ruleCheck {
	return []ruleCheck{
		{rule: calculator.NewSumRule("ranking weights", calculator.Block), entries: calculator.Ranks(cfg.LevelWeights...)},
	}
}

func sigmaRules(s *models.SigmaSettings) []ruleCheck {
	depth := make([]float64, len(s.DepthBonus.Levels))
	for i, l := range s.DepthBonus.Levels {
		depth[i] = l.Percent
	}
	return []ruleCheck{
		{rule: calculator.NewSumRule("depth bonus levels", calculator.Warn), entries: calculator.Levels(depth...)},
	}
}

func pinRules(level *models.PinLevel) []ruleCheck {
	var pcts []float64
	for _, p := range calculator.ParseVMEC(level.Benefits) {
		pcts = append(pcts, calculator.Float(p))
	}
	return []ruleCheck{
		{rule: calculator.CapRule("PIN "+level.Name+" VMEC", calculator.Block), entries: calculator.Levels(pcts...)},
	}
}
