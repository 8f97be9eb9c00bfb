package service

import (
	"context"
	"fmt"
	"regexp"

	"scctower/internal/domain"
)

// dcIDPattern restricts the optional DC filter to identifier characters.
// The value is embedded in the statement text — which is also the cache
// key — so parameter markers would fragment the cache for no gain.
var dcIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DCInventory lists current inventory positions at distribution centers,
// largest first. dcID optionally filters to a single DC.
func (s *DashboardService) DCInventory(ctx context.Context, dcID string) ([]domain.DCInventoryRow, error) {
	where := ""
	if dcID != "" {
		if !dcIDPattern.MatchString(dcID) {
			return nil, domain.ErrValidation("dc_id may only contain letters, digits, '_' and '-'")
		}
		where = fmt.Sprintf("AND i.dc_id = '%s'", dcID)
	}

	query := fmt.Sprintf(`
        SELECT i.product_id, p.name as product_name,
               i.dc_id, s.location_name as dc_name,
               i.allocated_qty, i.safety_stock, i.excess_qty, i.total_qty,
               CAST(i.snapshot_date AS STRING) as snapshot_date
        FROM %[1]s.fact_dc_inventory i
        JOIN %[1]s.dim_product p ON i.product_id = p.product_id
        JOIN %[1]s.dim_storage_location s ON i.dc_id = s.location_id
        WHERE i.snapshot_date = (SELECT MAX(snapshot_date) FROM %[1]s.fact_dc_inventory)
        %[2]s
        ORDER BY i.total_qty DESC
        LIMIT 10`, s.schema, where)

	rows := s.rows.GetOrCompute(ctx, query, s.ttl)
	out := make([]domain.DCInventoryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.DCInventoryRow{
			ProductID:    str(r, "product_id"),
			ProductName:  str(r, "product_name"),
			DCID:         str(r, "dc_id"),
			DCName:       str(r, "dc_name"),
			AllocatedQty: whole(r, "allocated_qty"),
			SafetyStock:  whole(r, "safety_stock"),
			ExcessQty:    whole(r, "excess_qty"),
			TotalQty:     whole(r, "total_qty"),
			SnapshotDate: str(r, "snapshot_date"),
		})
	}
	return out, nil
}

// IncomingSupply lists inbound shipments headed to distribution centers,
// soonest first.
func (s *DashboardService) IncomingSupply(ctx context.Context) ([]domain.IncomingSupplyRow, error) {
	query := fmt.Sprintf(`
        SELECT i.shipment_id,
               src.location_name as source_location,
               p.name as product_name,
               dst.location_name as destination_dc,
               i.qty, i.expected_arrival_days,
               CAST(i.expected_arrival_date AS STRING) as expected_arrival_date
        FROM %[1]s.fact_incoming_supply i
        JOIN %[1]s.dim_product p ON i.product_id = p.product_id
        JOIN %[1]s.dim_storage_location src ON i.source_location_id = src.location_id
        JOIN %[1]s.dim_storage_location dst ON i.destination_dc_id = dst.location_id
        WHERE i.snapshot_date = (SELECT MAX(snapshot_date) FROM %[1]s.fact_incoming_supply)
        ORDER BY i.expected_arrival_days ASC
        LIMIT 10`, s.schema)

	rows := s.rows.GetOrCompute(ctx, query, s.ttl)
	out := make([]domain.IncomingSupplyRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.IncomingSupplyRow{
			ShipmentID:          str(r, "shipment_id"),
			SourceLocation:      str(r, "source_location"),
			ProductName:         str(r, "product_name"),
			DestinationDC:       str(r, "destination_dc"),
			Qty:                 whole(r, "qty"),
			ExpectedArrivalDays: whole(r, "expected_arrival_days"),
			ExpectedArrivalDate: str(r, "expected_arrival_date"),
		})
	}
	return out, nil
}

// ShippingSchedule lists planned outbound shipments to customers in
// schedule order.
func (s *DashboardService) ShippingSchedule(ctx context.Context) ([]domain.ShippingScheduleRow, error) {
	query := fmt.Sprintf(`
        SELECT ss.schedule_id, p.name as product_name,
               sl.location_name as dc_name, c.name as customer_name,
               CAST(ss.schedule_date AS STRING) as schedule_date, ss.qty
        FROM %[1]s.fact_shipping_schedule ss
        JOIN %[1]s.dim_product p ON ss.product_id = p.product_id
        JOIN %[1]s.dim_storage_location sl ON ss.location_id = sl.location_id
        JOIN %[1]s.dim_customer c ON ss.customer_id = c.customer_id
        WHERE ss.snapshot_date = (SELECT MAX(snapshot_date) FROM %[1]s.fact_shipping_schedule)
        ORDER BY ss.schedule_date ASC
        LIMIT 10`, s.schema)

	rows := s.rows.GetOrCompute(ctx, query, s.ttl)
	out := make([]domain.ShippingScheduleRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ShippingScheduleRow{
			ScheduleID:   str(r, "schedule_id"),
			ProductName:  str(r, "product_name"),
			DCName:       str(r, "dc_name"),
			CustomerName: str(r, "customer_name"),
			ScheduleDate: str(r, "schedule_date"),
			Qty:          whole(r, "qty"),
		})
	}
	return out, nil
}

// SupplierOrders lists open purchase orders, soonest arrival first.
func (s *DashboardService) SupplierOrders(ctx context.Context) ([]domain.SupplierOrderRow, error) {
	query := fmt.Sprintf(`
        SELECT so.order_id, sup.name as supplier_name,
               p.name as product_name, so.qty,
               so.expected_arrival_days,
               CAST(so.expected_arrival_date AS STRING) as expected_arrival_date
        FROM %[1]s.fact_supplier_orders so
        JOIN %[1]s.dim_supplier sup ON so.supplier_id = sup.supplier_id
        JOIN %[1]s.dim_product p ON so.product_id = p.product_id
        WHERE so.snapshot_date = (SELECT MAX(snapshot_date) FROM %[1]s.fact_supplier_orders)
        ORDER BY so.expected_arrival_days ASC
        LIMIT 10`, s.schema)

	rows := s.rows.GetOrCompute(ctx, query, s.ttl)
	out := make([]domain.SupplierOrderRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.SupplierOrderRow{
			OrderID:             str(r, "order_id"),
			SupplierName:        str(r, "supplier_name"),
			ProductName:         str(r, "product_name"),
			Qty:                 whole(r, "qty"),
			ExpectedArrivalDays: whole(r, "expected_arrival_days"),
			ExpectedArrivalDate: str(r, "expected_arrival_date"),
		})
	}
	return out, nil
}

// StockoutRisk ranks product/DC pairs by days of remaining supply, derived
// from average daily shipped quantity. Pairs with no recorded demand get a
// sentinel 999 days and rank last.
func (s *DashboardService) StockoutRisk(ctx context.Context) ([]domain.StockoutRiskRow, error) {
	query := fmt.Sprintf(`
        WITH daily_demand AS (
            SELECT product_id, location_id, AVG(CAST(qty AS DOUBLE)) as avg_daily
            FROM %[1]s.fact_shipping_schedule
            GROUP BY product_id, location_id
        )
        SELECT p.name as product_name, sl.location_name as dc_name,
               i.total_qty as current_qty, i.safety_stock,
               CASE WHEN COALESCE(d.avg_daily, 0) > 0
                    THEN ROUND(CAST(i.total_qty AS DOUBLE) / d.avg_daily, 1)
                    ELSE 999 END as days_of_supply,
               CASE
                    WHEN COALESCE(d.avg_daily, 0) > 0 AND CAST(i.total_qty AS DOUBLE) / d.avg_daily < 3 THEN 'Critical'
                    WHEN COALESCE(d.avg_daily, 0) > 0 AND CAST(i.total_qty AS DOUBLE) / d.avg_daily < 7 THEN 'High'
                    WHEN COALESCE(d.avg_daily, 0) > 0 AND CAST(i.total_qty AS DOUBLE) / d.avg_daily < 14 THEN 'Medium'
                    ELSE 'Low'
               END as risk_level
        FROM %[1]s.fact_dc_inventory i
        JOIN %[1]s.dim_product p ON i.product_id = p.product_id
        JOIN %[1]s.dim_storage_location sl ON i.dc_id = sl.location_id
        LEFT JOIN daily_demand d ON i.product_id = d.product_id AND i.dc_id = d.location_id
        WHERE i.snapshot_date = (SELECT MAX(snapshot_date) FROM %[1]s.fact_dc_inventory)
        ORDER BY days_of_supply ASC
        LIMIT 10`, s.schema)

	rows := s.rows.GetOrCompute(ctx, query, s.ttl)
	out := make([]domain.StockoutRiskRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.StockoutRiskRow{
			ProductName:  str(r, "product_name"),
			DCName:       str(r, "dc_name"),
			CurrentQty:   whole(r, "current_qty"),
			SafetyStock:  whole(r, "safety_stock"),
			DaysOfSupply: num(r, "days_of_supply"),
			RiskLevel:    str(r, "risk_level"),
		})
	}
	return out, nil
}

// StorageLocations returns every warehouse, DC, and plant site with its
// coordinates for the map view.
func (s *DashboardService) StorageLocations(ctx context.Context) ([]domain.StorageLocation, error) {
	query := fmt.Sprintf(`
        SELECT location_id, location_name, type, location, latitude, longitude
        FROM %s.dim_storage_location`, s.schema)

	rows := s.rows.GetOrCompute(ctx, query, s.ttl)
	out := make([]domain.StorageLocation, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.StorageLocation{
			LocationID:   str(r, "location_id"),
			LocationName: str(r, "location_name"),
			Type:         str(r, "type"),
			Location:     str(r, "location"),
			Latitude:     num(r, "latitude"),
			Longitude:    num(r, "longitude"),
		})
	}
	return out, nil
}

// CustomerLocations returns every customer delivery site with its
// coordinates for the map view.
func (s *DashboardService) CustomerLocations(ctx context.Context) ([]domain.CustomerLocation, error) {
	query := fmt.Sprintf(`
        SELECT customer_id, name, location, latitude, longitude
        FROM %s.dim_customer`, s.schema)

	rows := s.rows.GetOrCompute(ctx, query, s.ttl)
	out := make([]domain.CustomerLocation, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.CustomerLocation{
			CustomerID: str(r, "customer_id"),
			Name:       str(r, "name"),
			Location:   str(r, "location"),
			Latitude:   num(r, "latitude"),
			Longitude:  num(r, "longitude"),
		})
	}
	return out, nil
}
