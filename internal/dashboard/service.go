package dashboard

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/auth"
	"github.com/sharath018/temple-waste-backend/internal/dailylog"
	"github.com/sharath018/temple-waste-backend/internal/ngo"
	"github.com/sharath018/temple-waste-backend/internal/store"
	"github.com/sharath018/temple-waste-backend/internal/temple"
)

type TempleReader interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, q store.Query) ([]temple.Temple, error)
	GetByCode(ctx context.Context, code string) (*temple.Temple, error)
	TotalPoints(ctx context.Context) (int64, error)
}

type NGOReader interface {
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uint) (*ngo.NGO, error)
}

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type LogReader interface {
	List(ctx context.Context, f dailylog.ListFilter) ([]dailylog.DailyLog, error)
	Totals(ctx context.Context, templeCodes ...string) (dailylog.Totals, error)
}

// Service assembles the read-only dashboards. Every read of a dashboard runs
// concurrently; the first failure cancels the rest.
type Service interface {
	Admin(ctx context.Context) (*AdminDashboard, error)
	Temple(ctx context.Context, p *auth.Principal) (*TempleDashboard, error)
	NGO(ctx context.Context, p *auth.Principal) (*NGODashboard, error)
}

type service struct {
	temples   TempleReader
	ngos      NGOReader
	inventory Counter
	logs      LogReader
	log       *zap.SugaredLogger
}

func NewService(temples TempleReader, ngos NGOReader, inventory Counter, logs LogReader, log *zap.SugaredLogger) Service {
	return &service{
		temples:   temples,
		ngos:      ngos,
		inventory: inventory,
		logs:      logs,
		log:       log.With("service", "DashboardService"),
	}
}

func (s *service) Admin(ctx context.Context) (*AdminDashboard, error) {
	d := &AdminDashboard{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.Counts.Temples, err = s.temples.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Counts.NGOs, err = s.ngos.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Counts.Inventory, err = s.inventory.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Totals, err = s.logs.Totals(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalPoints, err = s.temples.TotalPoints(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.TopTemples, err = s.temples.List(ctx, store.Query{}.
			OrderBy("donation_points", true).
			OrderBy("name", false).
			Take(topTemples))
		return err
	})
	g.Go(func() (err error) {
		d.RecentLogs, err = s.logs.List(ctx, dailylog.ListFilter{Limit: recentLogs})
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Errorw("admin dashboard failed", "err", err)
		return nil, err
	}
	d.Counts.Logs = d.Totals.Logs
	d.WasteMix = ComputeWasteMix(d.Totals)
	return d, nil
}

func (s *service) Temple(ctx context.Context, p *auth.Principal) (*TempleDashboard, error) {
	if p == nil || p.TempleCode == nil || *p.TempleCode == "" {
		return nil, apperr.NotFound("no temple is linked to this profile")
	}
	code := *p.TempleCode

	d := &TempleDashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.temples.GetByCode(gctx, code)
		if err != nil {
			return err
		}
		d.Temple = *t
		return nil
	})
	s.templeActivity(gctx, g, code, &d.Totals, &d.RecentLogs)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	d.WasteMix = ComputeWasteMix(d.Totals)
	return d, nil
}

// NGO shows the NGO and, when it is assigned to a temple, that temple's
// activity.
func (s *service) NGO(ctx context.Context, p *auth.Principal) (*NGODashboard, error) {
	if p == nil || p.NGOID == nil {
		return nil, apperr.NotFound("no NGO is linked to this profile")
	}
	n, err := s.ngos.GetByID(ctx, *p.NGOID)
	if err != nil {
		return nil, err
	}
	d := &NGODashboard{NGO: *n, RecentLogs: []dailylog.DailyLog{}}
	if n.AssignedTempleCode == nil || *n.AssignedTempleCode == "" {
		return d, nil
	}
	code := *n.AssignedTempleCode

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.temples.GetByCode(gctx, code)
		if err != nil {
			return err
		}
		d.AssignedTemple = t
		return nil
	})
	s.templeActivity(gctx, g, code, &d.Totals, &d.RecentLogs)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	d.WasteMix = ComputeWasteMix(d.Totals)
	return d, nil
}

func (s *service) templeActivity(ctx context.Context, g *errgroup.Group, code string, totals *dailylog.Totals, recent *[]dailylog.DailyLog) {
	g.Go(func() (err error) {
		*totals, err = s.logs.Totals(ctx, code)
		return err
	})
	g.Go(func() (err error) {
		*recent, err = s.logs.List(ctx, dailylog.ListFilter{TempleCode: code, Limit: recentLogs})
		return err
	})
}
