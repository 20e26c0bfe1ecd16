package core

// StatusTrading is the exchange status of an instrument that is open for trading
const StatusTrading = "TRADING"

// AssetInfo contains market information about a trading pair
type AssetInfo struct {
	Pair       string
	BaseAsset  string
	QuoteAsset string

	// Exchange trading status, e.g. TRADING, BREAK, DELISTED
	Status string

	MinPrice    float64
	MaxPrice    float64
	MinQuantity float64
	MaxQuantity float64
	StepSize    float64
	TickSize    float64

	QuotePrecision     int
	BaseAssetPrecision int
}

// GetBaseAsset returns the base asset of the trading pair
func (a AssetInfo) GetBaseAsset() string { return a.BaseAsset }

// GetQuoteAsset returns the quote asset of the trading pair
func (a AssetInfo) GetQuoteAsset() string { return a.QuoteAsset }

// GetStepSize returns the step size for quantity increments
func (a AssetInfo) GetStepSize() float64 { return a.StepSize }

// IsTradeable returns whether the instrument is open for trading
func (a AssetInfo) IsTradeable() bool { return a.Status == StatusTrading }
