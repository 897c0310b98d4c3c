// Package route names the settings views and resolves them from a URL hash
// fragment or a command-line argument.
//
// View is a closed set. Code that needs to act on every view implements
// Visitor and dispatches with Visit, so a new view fails to compile until each
// visitor handles it.
package route

import (
	"fmt"
	"strings"
)

// View is one settings view.
type View interface {
	// Path is the canonical hash route ("#/top-sigma").
	Path() string
	Title() string
	view()
}

type (
	CareerPlan    struct{}
	FidelityBonus struct{}
	TopSigma      struct{}
	SigmaSettings struct{}

	// NotFound is returned by Parse for an unknown route.
	NotFound struct {
		Raw string
	}
)

func (CareerPlan) Path() string    { return "#/career-plan" }
func (FidelityBonus) Path() string { return "#/fidelity-bonus" }
func (TopSigma) Path() string      { return "#/top-sigma" }
func (SigmaSettings) Path() string { return "#/sigma-settings" }
func (n NotFound) Path() string    { return n.Raw }

func (CareerPlan) Title() string    { return "Career Plan" }
func (FidelityBonus) Title() string { return "Fidelity Bonus" }
func (TopSigma) Title() string      { return "Top SIGMA" }
func (SigmaSettings) Title() string { return "SIGMA Settings" }
func (NotFound) Title() string      { return "Not Found" }

func (CareerPlan) view()    {}
func (FidelityBonus) view() {}
func (TopSigma) view()      {}
func (SigmaSettings) view() {}
func (NotFound) view()      {}

// All returns every routable view in menu order.
func All() []View {
	return []View{CareerPlan{}, FidelityBonus{}, TopSigma{}, SigmaSettings{}}
}

// aliases maps the legacy view keys to their views.
var aliases = map[string]View{
	"careerplan":     CareerPlan{},
	"plano-carreira": CareerPlan{},
	"fidelitybonus":  FidelityBonus{},
	"topsigma":       TopSigma{},
	"sigmasettings":  SigmaSettings{},
	"sigma":          SigmaSettings{},
}

// Parse resolves s to a view. It accepts the hash form ("#/top-sigma"), a
// bare slug ("top-sigma") and the legacy camel-case keys ("topSigma"). Query
// strings and trailing slashes are ignored. Anything else yields NotFound.
func Parse(s string) View {
	slug := strings.TrimSpace(s)
	slug = strings.TrimPrefix(slug, "#")
	if i := strings.IndexAny(slug, "?#"); i >= 0 {
		slug = slug[:i]
	}
	slug = strings.ToLower(strings.Trim(slug, "/"))

	for _, v := range All() {
		if slug == strings.TrimPrefix(v.Path(), "#/") {
			return v
		}
	}
	if v, ok := aliases[slug]; ok {
		return v
	}
	return NotFound{Raw: s}
}

// Visitor handles each view kind.
type Visitor[T any] interface {
	CareerPlan(CareerPlan) T
	FidelityBonus(FidelityBonus) T
	TopSigma(TopSigma) T
	SigmaSettings(SigmaSettings) T
	NotFound(NotFound) T
}

// Visit calls the method of vis that matches v. A nil view is treated as
// NotFound.
func Visit[T any](v View, vis Visitor[T]) T {
	switch v := v.(type) {
	case CareerPlan:
		return vis.CareerPlan(v)
	case FidelityBonus:
		return vis.FidelityBonus(v)
	case TopSigma:
		return vis.TopSigma(v)
	case SigmaSettings:
		return vis.SigmaSettings(v)
	case NotFound:
		return vis.NotFound(v)
	case nil:
		return vis.NotFound(NotFound{})
	default:
		// Only reachable if a view type is added without a case here.
		panic(fmt.Sprintf("route: unhandled view %T", v))
	}
}
