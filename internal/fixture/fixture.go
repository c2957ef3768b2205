// Package fixture provides a small FMCG master-data snapshot shared by package tests.
package fixture

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gyaneshwarpardhi/promoengine/internal/condition"
	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
	"github.com/gyaneshwarpardhi/promoengine/internal/hierarchy"
)

// OrgNodes is a two-region organization tree.
//
//	REG-N > ST-DL > AR-01 > DIST-01, DIST-02
//	REG-S > ST-KA > AR-07 > DIST-09
func OrgNodes() []hierarchy.Node {
	return []hierarchy.Node{
		{ID: "REG-N", Name: "North", Level: hierarchy.LevelRegion},
		{ID: "ST-DL", Name: "Delhi", Level: hierarchy.LevelState, ParentID: "REG-N"},
		{ID: "AR-01", Name: "Central Delhi", Level: hierarchy.LevelArea, ParentID: "ST-DL"},
		{ID: "DIST-01", Name: "Sharma Traders", Level: hierarchy.LevelDistributor, ParentID: "AR-01"},
		{ID: "DIST-02", Name: "Gupta Agencies", Level: hierarchy.LevelDistributor, ParentID: "AR-01"},
		{ID: "REG-S", Name: "South", Level: hierarchy.LevelRegion},
		{ID: "ST-KA", Name: "Karnataka", Level: hierarchy.LevelState, ParentID: "REG-S"},
		{ID: "AR-07", Name: "Bengaluru Urban", Level: hierarchy.LevelArea, ParentID: "ST-KA"},
		{ID: "DIST-09", Name: "Iyer Stores", Level: hierarchy.LevelDistributor, ParentID: "AR-07"},
	}
}

// ProductNodes is a two-category product tree.
//
//	CAT-BEV > BRAND-1 > PROD-001, PROD-002
//	CAT-BEV > BRAND-2 > PROD-003
//	CAT-SNK > BRAND-3 > PROD-004
func ProductNodes() []hierarchy.Node {
	return []hierarchy.Node{
		{ID: "CAT-BEV", Name: "Beverages", Level: hierarchy.LevelCategory},
		{ID: "BRAND-1", Name: "Chai Gold", Level: hierarchy.LevelBrand, ParentID: "CAT-BEV"},
		{ID: "PROD-001", Name: "Chai Gold 250g", Level: hierarchy.LevelSKU, ParentID: "BRAND-1"},
		{ID: "PROD-002", Name: "Chai Gold 1kg", Level: hierarchy.LevelSKU, ParentID: "BRAND-1"},
		{ID: "BRAND-2", Name: "Kaapi", Level: hierarchy.LevelBrand, ParentID: "CAT-BEV"},
		{ID: "PROD-003", Name: "Kaapi 500g", Level: hierarchy.LevelSKU, ParentID: "BRAND-2"},
		{ID: "CAT-SNK", Name: "Snacks", Level: hierarchy.LevelCategory},
		{ID: "BRAND-3", Name: "Crunchies", Level: hierarchy.LevelBrand, ParentID: "CAT-SNK"},
		{ID: "PROD-004", Name: "Crunchies 100g", Level: hierarchy.LevelSKU, ParentID: "BRAND-3"},
	}
}

// Prices is the unit price list for every SKU.
func Prices() domain.PriceList {
	return domain.PriceList{
		"PROD-001": decimal.NewFromInt(2000),
		"PROD-002": decimal.NewFromInt(2500),
		"PROD-003": decimal.NewFromInt(1500),
		"PROD-004": decimal.NewFromInt(500),
	}
}

// Context builds an evaluation context over the fixture snapshot. It panics on
// malformed fixture data, which would be a bug in this package.
func Context() *condition.Context {
	org, err := hierarchy.NewForest(OrgNodes())
	if err != nil {
		panic(err)
	}
	products, err := hierarchy.NewForest(ProductNodes())
	if err != nil {
		panic(err)
	}
	return &condition.Context{Org: org, Products: products, Prices: Prices()}
}

// Date returns midnight UTC of the given day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Line builds an order line with an integer unit price.
func Line(productID string, qty, unitPrice int64) domain.LineItem {
	return domain.LineItem{ProductID: productID, Quantity: qty, UnitPrice: decimal.NewFromInt(unitPrice)}
}

// BrandOneOrder is a ₹45,000 order from DIST-01 dated 2025-03-15, entirely under BRAND-1.
func BrandOneOrder() *domain.Order {
	return &domain.Order{
		ID:            "ORD-A",
		DistributorID: "DIST-01",
		Date:          time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
		Items: []domain.LineItem{
			Line("PROD-001", 10, 2000),
			Line("PROD-002", 10, 2500),
		},
	}
}
