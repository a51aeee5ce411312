package domain

// SupplierOffer is one supplier's offer for a catalog product.
type SupplierOffer struct {
	SupplierName string  `json:"supplier_name" bson:"supplier_name"`
	SupplierTel  string  `json:"supplier_tel,omitempty" bson:"supplier_tel,omitempty"`
	PurchaseURL  string  `json:"purchase_url,omitempty" bson:"purchase_url,omitempty"`
	Price        float64 `json:"price" bson:"price"`
}

// ProductAttribute is a standardized name/value pair of a catalog product.
type ProductAttribute struct {
	Name  string `json:"standard_name" bson:"standard_name"`
	Value string `json:"standard_value" bson:"standard_value"`
	Unit  string `json:"unit,omitempty" bson:"unit,omitempty"`
}

// CatalogProduct is a read-only snapshot of a deduplicated catalog product.
// ProductHash is content-addressed: a hash of the canonical product attributes.
type CatalogProduct struct {
	ProductHash string             `json:"product_hash" bson:"product_hash"`
	OKPD2Code   string             `json:"okpd2_code" bson:"okpd2_code"`
	OKPD2Name   string             `json:"okpd2_name,omitempty" bson:"okpd2_name,omitempty"`
	Title       string             `json:"sample_title,omitempty" bson:"sample_title,omitempty"`
	Brand       string             `json:"sample_brand,omitempty" bson:"sample_brand,omitempty"`
	Attributes  []ProductAttribute `json:"standardized_attributes,omitempty" bson:"standardized_attributes,omitempty"`
	Suppliers   []SupplierOffer    `json:"suppliers,omitempty" bson:"unique_suppliers,omitempty"`
}
