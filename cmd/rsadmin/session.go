package main

import (
	"context"

	"github.com/rsprolipsi/compplan/internal/route"
	"github.com/rsprolipsi/compplan/internal/settings"
)

// session drives one settings page from the command line.
type session interface {
	Load(ctx context.Context) error
	Apply(key, value string) error
	Validate() []settings.Issue
	Save(ctx context.Context) error
	Report(v route.View) report
}

// setter is a draft type edited by key/value pairs.
type setter[D any] interface {
	*D
	Set(key, value string) error
}

type pageSession[D any, P setter[D]] struct {
	ctrl *settings.Controller[D]
}

func newSession[D any, P setter[D]](page settings.Page[D], remote settings.Remote, opts []settings.Option) session {
	return &pageSession[D, P]{ctrl: settings.New(page, remote, opts...)}
}

func (s *pageSession[D, P]) Load(ctx context.Context) error { return s.ctrl.Load(ctx) }

func (s *pageSession[D, P]) Apply(key, value string) error {
	return s.ctrl.Edit(func(d *D) error { return P(d).Set(key, value) })
}

func (s *pageSession[D, P]) Validate() []settings.Issue { return s.ctrl.Validate() }

func (s *pageSession[D, P]) Save(ctx context.Context) error { return s.ctrl.Save(ctx) }

func (s *pageSession[D, P]) Report(v route.View) report {
	return newReport(v, s.ctrl.State(), s.ctrl.Banner(), s.ctrl.Issues(), s.ctrl.Preview())
}

// sessions opens a session for each view. NotFound yields nil.
type sessions struct {
	remote settings.Remote
	opts   []settings.Option
}

var _ route.Visitor[session] = sessions{}

func (f sessions) CareerPlan(route.CareerPlan) session {
	return newSession[settings.CareerDraft](settings.CareerPage{}, f.remote, f.opts)
}

func (f sessions) FidelityBonus(route.FidelityBonus) session {
	return newSession[settings.FidelityDraft](settings.FidelityPage{}, f.remote, f.opts)
}

func (f sessions) TopSigma(route.TopSigma) session {
	return newSession[settings.TopSigmaDraft](settings.TopSigmaPage{}, f.remote, f.opts)
}

func (f sessions) SigmaSettings(route.SigmaSettings) session {
	return newSession[settings.SigmaDraft](settings.SigmaPage{}, f.remote, f.opts)
}

func (f sessions) NotFound(route.NotFound) session { return nil }
