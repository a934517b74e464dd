// market/data.go
package market

import "time"

// Data is an immutable snapshot of one instrument's quote state.
// The feed replaces the whole value on every tick; readers never see a
// partially updated quote.
type Data struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	PreviousClose float64   `json:"previousClose"`
	Time          time.Time `json:"time"`
}
