// market/instruments.go
package market

type InstrumentMeta struct {
	Symbol     string
	Name       string
	BasePrice  float64
	Volatility float64 // max fractional price move per tick
	BaseVolume int64
}

var Instruments = map[string]InstrumentMeta{
	"ES": {
		Symbol:     "ES",
		Name:       "E-mini S&P 500",
		BasePrice:  4520.25,
		Volatility: 0.0006,
		BaseVolume: 1_250_000,
	},
	"NQ": {
		Symbol:     "NQ",
		Name:       "E-mini Nasdaq-100",
		BasePrice:  15830.50,
		Volatility: 0.0009,
		BaseVolume: 520_000,
	},
	"YM": {
		Symbol:     "YM",
		Name:       "E-mini Dow",
		BasePrice:  35420.0,
		Volatility: 0.0005,
		BaseVolume: 180_000,
	},
	"RTY": {
		Symbol:     "RTY",
		Name:       "E-mini Russell 2000",
		BasePrice:  1885.40,
		Volatility: 0.0010,
		BaseVolume: 210_000,
	},
	"CL": {
		Symbol:     "CL",
		Name:       "Crude Oil",
		BasePrice:  78.35,
		Volatility: 0.0022,
		BaseVolume: 680_000,
	},
	"GC": {
		Symbol:     "GC",
		Name:       "Gold",
		BasePrice:  2045.80,
		Volatility: 0.0012,
		BaseVolume: 240_000,
	},
	"SI": {
		Symbol:     "SI",
		Name:       "Silver",
		BasePrice:  23.15,
		Volatility: 0.0018,
		BaseVolume: 95_000,
	},
	"ZB": {
		Symbol:     "ZB",
		Name:       "30-Year T-Bond",
		BasePrice:  118.53,
		Volatility: 0.0004,
		BaseVolume: 310_000,
	},
}
