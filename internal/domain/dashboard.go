package domain

// Row is one materialized warehouse result row, column name to scalar value.
// Values arrive as the wire types of the statement API (strings for most
// warehouse types); callers coerce them when shaping typed responses.
type Row map[string]any

// KpiCard is one headline metric on the executive dashboard.
type KpiCard struct {
	ID         string  `json:"id" yaml:"id"`
	Label      string  `json:"label" yaml:"label"`
	Value      float64 `json:"value" yaml:"value"`
	Unit       string  `json:"unit" yaml:"unit"`
	Prefix     string  `json:"prefix" yaml:"prefix"`
	Change     float64 `json:"change" yaml:"change"`
	ChangeUnit string  `json:"change_unit" yaml:"change_unit"`
}

// ChartDataPoint is one month/value pair in a trend chart.
type ChartDataPoint struct {
	Month string  `json:"month" yaml:"month"`
	Value float64 `json:"value" yaml:"value"`
}

// SupplierRisk is the headline supplier risk indicator.
type SupplierRisk struct {
	Label      string  `json:"label" yaml:"label"`
	Value      string  `json:"value" yaml:"value"`
	Change     float64 `json:"change" yaml:"change"`
	ChangeUnit string  `json:"change_unit" yaml:"change_unit"`
}

// DemandForecastingSection is the demand forecast accuracy panel.
type DemandForecastingSection struct {
	Title         string           `json:"title" yaml:"title"`
	AccuracyLabel string           `json:"accuracy_label" yaml:"accuracy_label"`
	AccuracyValue float64          `json:"accuracy_value" yaml:"accuracy_value"`
	Unit          string           `json:"unit" yaml:"unit"`
	Period        string           `json:"period" yaml:"period"`
	ChartData     []ChartDataPoint `json:"chart_data" yaml:"chart_data"`
}

// InventoryLocation is one named slice of the inventory value breakdown.
type InventoryLocation struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// InventoryLevels is the inventory value panel.
type InventoryLevels struct {
	Title      string              `json:"title" yaml:"title"`
	Subtitle   string              `json:"subtitle" yaml:"subtitle"`
	TotalValue float64             `json:"total_value" yaml:"total_value"`
	Unit       string              `json:"unit" yaml:"unit"`
	Prefix     string              `json:"prefix" yaml:"prefix"`
	Period     string              `json:"period" yaml:"period"`
	Locations  []InventoryLocation `json:"locations" yaml:"locations"`
}

// SupplierPerformance is one supplier's scorecard row.
type SupplierPerformance struct {
	Name           string  `json:"name" yaml:"name"`
	OnTimeDelivery float64 `json:"on_time_delivery" yaml:"on_time_delivery"`
	QualityScore   float64 `json:"quality_score" yaml:"quality_score"`
	LeadTime       string  `json:"lead_time" yaml:"lead_time"`
	RiskScore      string  `json:"risk_score" yaml:"risk_score"`
}

// SupplierPerformanceSection is the supplier scorecard panel.
type SupplierPerformanceSection struct {
	Title     string                `json:"title" yaml:"title"`
	Columns   []string              `json:"columns" yaml:"columns"`
	Suppliers []SupplierPerformance `json:"suppliers" yaml:"suppliers"`
}

// RiskFactor is one named risk with a severity rating.
type RiskFactor struct {
	Factor   string `json:"factor" yaml:"factor"`
	Severity string `json:"severity" yaml:"severity"`
}

// RiskAssessment is the qualitative risk panel.
type RiskAssessment struct {
	Title   string       `json:"title" yaml:"title"`
	Factors []RiskFactor `json:"factors" yaml:"factors"`
}

// ContributingFactor is one weighted driver of disruption risk.
type ContributingFactor struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// DisruptionType is one disruption category with its probability.
type DisruptionType struct {
	Type        string  `json:"type" yaml:"type"`
	Probability float64 `json:"probability" yaml:"probability"`
}

// PredictiveRisk is the predictive disruption analysis panel.
type PredictiveRisk struct {
	Title               string               `json:"title" yaml:"title"`
	DisruptionLabel     string               `json:"disruption_label" yaml:"disruption_label"`
	DisruptionLevel     string               `json:"disruption_level" yaml:"disruption_level"`
	Period              string               `json:"period" yaml:"period"`
	ContributingFactors []ContributingFactor `json:"contributing_factors" yaml:"contributing_factors"`
	DisruptionTypes     []DisruptionType     `json:"disruption_types" yaml:"disruption_types"`
}

// LogisticsMetric is one logistics trend with its chart data.
type LogisticsMetric struct {
	Label     string           `json:"label" yaml:"label"`
	Value     float64          `json:"value" yaml:"value"`
	Unit      string           `json:"unit" yaml:"unit"`
	Period    string           `json:"period" yaml:"period"`
	ChartData []ChartDataPoint `json:"chart_data" yaml:"chart_data"`
}

// LogisticsTransportation is the logistics panel.
type LogisticsTransportation struct {
	Title            string          `json:"title" yaml:"title"`
	ExpeditedDelayed LogisticsMetric `json:"expedited_delayed" yaml:"expedited_delayed"`
	OtifOverTime     LogisticsMetric `json:"otif_over_time" yaml:"otif_over_time"`
}

// ExecutiveDashboard is the full executive dashboard payload: a static
// template enriched with live warehouse aggregates where available.
type ExecutiveDashboard struct {
	Title                   string                     `json:"title" yaml:"title"`
	Subtitle                string                     `json:"subtitle" yaml:"subtitle"`
	KpiCards                []KpiCard                  `json:"kpi_cards" yaml:"kpi_cards"`
	SupplierRisk            SupplierRisk               `json:"supplier_risk" yaml:"supplier_risk"`
	DemandForecasting       DemandForecastingSection   `json:"demand_forecasting" yaml:"demand_forecasting"`
	InventoryLevels         InventoryLevels            `json:"inventory_levels" yaml:"inventory_levels"`
	SupplierPerformance     SupplierPerformanceSection `json:"supplier_performance" yaml:"supplier_performance"`
	RiskAssessment          RiskAssessment             `json:"risk_assessment" yaml:"risk_assessment"`
	PredictiveRiskAnalysis  PredictiveRisk             `json:"predictive_risk_analysis" yaml:"predictive_risk_analysis"`
	LogisticsTransportation LogisticsTransportation    `json:"logistics_transportation" yaml:"logistics_transportation"`
}

// DCInventoryRow is one distribution-center inventory position.
type DCInventoryRow struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	DCID         string `json:"dc_id"`
	DCName       string `json:"dc_name"`
	AllocatedQty int    `json:"allocated_qty"`
	SafetyStock  int    `json:"safety_stock"`
	ExcessQty    int    `json:"excess_qty"`
	TotalQty     int    `json:"total_qty"`
	SnapshotDate string `json:"snapshot_date"`
}

// IncomingSupplyRow is one inbound shipment headed to a distribution center.
type IncomingSupplyRow struct {
	ShipmentID          string `json:"shipment_id"`
	SourceLocation      string `json:"source_location"`
	ProductName         string `json:"product_name"`
	DestinationDC       string `json:"destination_dc"`
	Qty                 int    `json:"qty"`
	ExpectedArrivalDays int    `json:"expected_arrival_days"`
	ExpectedArrivalDate string `json:"expected_arrival_date"`
}

// ShippingScheduleRow is one planned outbound shipment to a customer.
type ShippingScheduleRow struct {
	ScheduleID   string `json:"schedule_id"`
	ProductName  string `json:"product_name"`
	DCName       string `json:"dc_name"`
	CustomerName string `json:"customer_name"`
	ScheduleDate string `json:"schedule_date"`
	Qty          int    `json:"qty"`
}

// SupplierOrderRow is one open purchase order against a supplier.
type SupplierOrderRow struct {
	OrderID             string `json:"order_id"`
	SupplierName        string `json:"supplier_name"`
	ProductName         string `json:"product_name"`
	Qty                 int    `json:"qty"`
	ExpectedArrivalDays int    `json:"expected_arrival_days"`
	ExpectedArrivalDate string `json:"expected_arrival_date"`
}

// StockoutRiskRow is one product/DC pair ranked by days of remaining supply.
type StockoutRiskRow struct {
	ProductName  string  `json:"product_name"`
	DCName       string  `json:"dc_name"`
	CurrentQty   int     `json:"current_qty"`
	SafetyStock  int     `json:"safety_stock"`
	DaysOfSupply float64 `json:"days_of_supply"`
	RiskLevel    string  `json:"risk_level"`
}

// StorageLocation is one warehouse, DC, or plant site.
type StorageLocation struct {
	LocationID   string  `json:"location_id"`
	LocationName string  `json:"location_name"`
	Type         string  `json:"type"`
	Location     string  `json:"location"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// CustomerLocation is one customer delivery site.
type CustomerLocation struct {
	CustomerID string  `json:"customer_id"`
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// User is the workspace identity of the calling user (SCIM Me shape).
type User struct {
	ID          string `json:"id"`
	UserName    string `json:"userName"`
	DisplayName string `json:"displayName"`
	Active      bool   `json:"active"`
}
