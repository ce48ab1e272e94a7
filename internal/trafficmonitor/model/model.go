package model

import "fmt"

// Reading is a single traffic signal observation: how many vehicles passed signal SignalId at Timestamp.
type Reading struct {
	Timestamp    int64
	SignalId     int64
	VehicleCount int64
}

func (r Reading) String() string {
	return fmt.Sprintf("%d %d %d", r.Timestamp, r.SignalId, r.VehicleCount)
}

// SignalTotal is the cumulative vehicle count of one signal, as ranked in the congestion report.
type SignalTotal struct {
	SignalId int64 `json:"signalId"`
	Total    int64 `json:"total"`
}
