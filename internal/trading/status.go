package trading

// Status is the operator-facing runtime snapshot, logged periodically
// and served on the health endpoint.
type Status struct {
	BuyInFlight    bool `json:"buy_in_flight"`
	SellInFlight   bool `json:"sell_in_flight"`
	DailyTrades    int  `json:"daily_trades"`
	DailyCap       int  `json:"daily_cap"`
	OpenPositions  int  `json:"open_positions"`
	SimulationMode bool `json:"simulation_mode"`
}

// Status reports the trader's current state.
func (t *Trader) Status() Status {
	gs := t.gate.Status()
	return Status{
		BuyInFlight:    gs.BuyInFlight,
		SellInFlight:   gs.SellInFlight,
		DailyTrades:    gs.DailyTrades,
		DailyCap:       gs.DailyCap,
		OpenPositions:  t.ledger.OpenCount(),
		SimulationMode: t.cfg.SimulationMode,
	}
}
