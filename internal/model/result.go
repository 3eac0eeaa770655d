package model

import "time"

// ScanResult is one recorded outcome for one item within one store.
// Results are immutable once written; they disappear only through
// session deletion or retention cleanup.
type ScanResult struct {
	// ID is the auto-incrementing sequence number assigned by the store.
	// Zero until the result has been inserted.
	ID int64 `json:"id"`

	// SessionID references the owning session.
	SessionID string `json:"session_id"`

	// Store is the identifier of the store the item was scanned in.
	Store string `json:"store"`

	// ItemCode is the 10-character alphanumeric item identifier.
	ItemCode string `json:"item_code"`

	// Success reports whether the item was extracted successfully.
	Success bool `json:"success"`

	// Timestamp is when the result was produced by the scanning engine.
	Timestamp time.Time `json:"timestamp"`

	// Name is the extracted display name of the item, empty on failure.
	Name string `json:"name,omitempty"`

	// Price is the extracted price as displayed, empty on failure.
	Price string `json:"price,omitempty"`

	// ImageURL is the URL of the item's primary image.
	ImageURL string `json:"image_url,omitempty"`

	// ProductURL is the URL of the item's product page.
	ProductURL string `json:"product_url,omitempty"`

	// LoadTime is how long the page took to load. Persisted with
	// millisecond precision.
	LoadTime time.Duration `json:"load_time"`

	// ErrorMessage describes the failure, empty on success.
	ErrorMessage string `json:"error_message,omitempty"`

	// RetryCount is how many retries the scanning engine needed.
	RetryCount int `json:"retry_count"`

	// Variants lists the item's variations (size, color, ...).
	// Stored as a serialized JSON column.
	Variants []Variant `json:"variants,omitempty"`

	// BundleParts lists the components of a bundled item.
	// Stored as a serialized JSON column.
	BundleParts []BundlePart `json:"bundle_parts,omitempty"`

	// Details holds free-form extraction details keyed by field name.
	// Stored as a serialized JSON column.
	Details map[string]string `json:"details,omitempty"`

	// MerchData holds merchandising data with no fixed shape.
	// Stored as a serialized JSON column.
	MerchData map[string]any `json:"merch_data,omitempty"`
}

// Variant is one variation of an item (for example a size or color).
type Variant struct {
	// Code is the variation's own item code.
	Code string `json:"code"`

	// Label is the human-readable variation label.
	Label string `json:"label,omitempty"`

	// Price is the variation's price as displayed.
	Price string `json:"price,omitempty"`
}

// BundlePart is one component of a bundled item.
type BundlePart struct {
	// Code is the component's own item code.
	Code string `json:"code"`

	// Name is the component's display name.
	Name string `json:"name,omitempty"`

	// Quantity is how many units of the component the bundle contains.
	Quantity int `json:"quantity,omitempty"`
}
