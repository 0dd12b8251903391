package models

// Requests for analysis HTTP endpoints. Defined in domain for consistency and reuse.

type SnapshotRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Market string `query:"market" json:"market" default:"sh" validate:"oneof=sh sz hk us"`
}

type RegimeStatusRequest struct {
	History int `query:"history" json:"history" default:"0" validate:"gte=0,lte=100"`
}

type ParametersRequest struct {
	Regime string `query:"regime" json:"regime" validate:"omitempty,oneof=normal volatile trending"`
}

type RegimeHistoryRequest struct {
	Limit int `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=100"`
}

type BarsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Market string `query:"market" json:"market" default:"sh" validate:"oneof=sh sz hk us"`
	From   string `query:"from" json:"from" validate:"required"`
	To     string `query:"to" json:"to" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=50000"`
}
