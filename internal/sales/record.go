package sales

// Column names of the input file, in their canonical order.
const (
	ColOrderID    = "order_id"
	ColProduct    = "product"
	ColCategory   = "category"
	ColQuantity   = "quantity"
	ColPrice      = "price"
	ColOrderDate  = "order_date"
	ColCustomerID = "customer_id"
)

// Columns lists the required input columns in canonical order.
var Columns = []string{
	ColOrderID,
	ColProduct,
	ColCategory,
	ColQuantity,
	ColPrice,
	ColOrderDate,
	ColCustomerID,
}

// NullKey is the grouping key shared by every null value of a column.
const NullKey = ""

// SalesRecord is one row of the input batch.
//
// Cells hold the trimmed source text. An empty cell is null. Typed access
// goes through QuantityValue, PriceValue, TotalValue and DateValue so the
// failure of a malformed cell surfaces in the view that needs it.
type SalesRecord struct {
	Line       int    `json:"line"` // 1-based source line (header is line 1)
	OrderID    string `json:"order_id"`
	Product    string `json:"product"`
	Category   string `json:"category"`
	Quantity   string `json:"quantity"`
	Price      string `json:"price"`
	OrderDate  string `json:"order_date"`
	CustomerID string `json:"customer_id"`
}

// CategoryName returns the record's category cell.
func (r SalesRecord) CategoryName() string {
	return r.Category
}

// Cells returns the record's cells in canonical column order.
func (r SalesRecord) Cells() []string {
	return []string{r.OrderID, r.Product, r.Category, r.Quantity, r.Price, r.OrderDate, r.CustomerID}
}

// Batch is the complete, immutable set of records for one run.
type Batch []SalesRecord

// Len returns the number of records.
func (b Batch) Len() int {
	return len(b)
}
